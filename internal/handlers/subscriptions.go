package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// maxSubscriptionPages caps a sync at 2000 subreddits.
const maxSubscriptionPages = 20

type SubscriptionHandler struct {
	*base
}

func (h *SubscriptionHandler) GetSubscriptions(c *gin.Context) {
	acct, ok := h.account(c)
	if !ok {
		return
	}
	subs, err := h.Store.Subscriptions(c.Request.Context(), acct.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}
	c.JSON(http.StatusOK, subs)
}

// Sync pages through the account's subscriptions on reddit and replaces the cached list.
func (h *SubscriptionHandler) Sync(c *gin.Context) {
	acct, ok := h.account(c)
	if !ok {
		return
	}
	token, ok := h.accessToken(c, acct)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	subs := []models.Subscription{}
	after := ""
	for page := 0; page < maxSubscriptionPages; page++ {
		res, err := h.Reddit.FetchSubscriptions(ctx, token, after).Unwrap()
		if err != nil {
			upstreamError(c, err)
			return
		}
		subs = append(subs, res.Items...)
		if res.After == "" {
			break
		}
		after = res.After
	}

	if err := h.Store.ReplaceSubscriptions(ctx, acct.Username, subs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscriptions"})
		return
	}
	h.Log.WithFields(logrus.Fields{"account": acct.Username, "count": len(subs)}).Info("Subscriptions synced")

	saved, err := h.Store.Subscriptions(ctx, acct.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}
	c.JSON(http.StatusOK, saved)
}
