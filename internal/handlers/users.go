package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*base
}

// GetUserProfile returns a reddit user's about record, cache-through.
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	name := c.Param("name")
	acct, ok := h.account(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if c.Query("refresh") != "true" {
		if user, err := h.Store.User(ctx, name); err == nil && h.fresh(user.FetchedAt) {
			c.JSON(http.StatusOK, user)
			return
		}
	}

	token, ok := h.accessToken(c, acct)
	if !ok {
		return
	}
	user, err := h.Reddit.FetchUser(ctx, token, name).Unwrap()
	if err != nil {
		upstreamError(c, err)
		return
	}

	user.FetchedAt = time.Now().UTC()
	if err := h.Store.UpsertUser(ctx, user); err != nil {
		h.Log.WithError(err).WithField("user", name).Warn("failed to cache user")
	}
	c.JSON(http.StatusOK, user)
}
