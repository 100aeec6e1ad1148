package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	*base
}

// Resolve resolves an arbitrary link. Links to unknown hosts return null media.
func (h *MediaHandler) Resolve(c *gin.Context) {
	var input struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	media, err := h.Resolver.Resolve(c.Request.Context(), input.URL).Unwrap()
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": input.URL, "media": media})
}
