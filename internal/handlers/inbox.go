package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type InboxHandler struct {
	*base
}

func listLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}

// GetInbox lists cached inbox messages; ?unread=true keeps unread ones only.
func (h *InboxHandler) GetInbox(c *gin.Context) {
	acct, ok := h.account(c)
	if !ok {
		return
	}
	msgs, err := h.Store.Messages(c.Request.Context(), acct.Username, c.Query("unread") == "true", listLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inbox"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Poll runs one inbox poll for the caller right away.
func (h *InboxHandler) Poll(c *gin.Context) {
	acct, ok := h.account(c)
	if !ok {
		return
	}
	report := h.Poller.PollAccount(c.Request.Context(), acct)
	body := gin.H{
		"account":  report.Account,
		"full":     report.Full,
		"fetched":  report.Fetched,
		"notified": report.Notified,
	}
	if report.Err != nil {
		body["error"] = report.Err.Error()
		if report.FetchFailed {
			upstreamError(c, report.Err)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}

// MarkRead marks messages read on reddit and in the cache.
func (h *InboxHandler) MarkRead(c *gin.Context) {
	var input struct {
		Names []string `json:"names" binding:"required,min=1,dive,required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acct, ok := h.account(c)
	if !ok {
		return
	}
	token, ok := h.accessToken(c, acct)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := h.Reddit.MarkRead(ctx, token, input.Names).Err(); err != nil {
		upstreamError(c, err)
		return
	}
	if err := h.Store.MarkMessagesRead(ctx, acct.Username, input.Names...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inbox"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read", "names": input.Names})
}

func (h *InboxHandler) GetNotifications(c *gin.Context) {
	acct, ok := h.account(c)
	if !ok {
		return
	}
	list, err := h.Store.Notifications(c.Request.Context(), acct.Username, listLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, list)
}
