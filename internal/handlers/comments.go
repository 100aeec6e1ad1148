package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	*base
	posts *PostHandler
}

// GetComments returns the flattened comment thread of a post.
func (h *CommentHandler) GetComments(c *gin.Context) {
	id := c.Param("id")
	acct, ok := h.account(c)
	if !ok {
		return
	}

	if c.Query("refresh") != "true" {
		if out, ok := h.posts.cached(c, id); ok {
			c.JSON(http.StatusOK, out.Comments)
			return
		}
	}

	out, ok := h.posts.fetch(c, acct, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, out.Comments)
}
