package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

type PostHandler struct {
	*base
}

// GetPost serves a post with its comments, from the cache while it is fresh.
// ?refresh=true always refetches.
func (h *PostHandler) GetPost(c *gin.Context) {
	id := c.Param("id")
	acct, ok := h.account(c)
	if !ok {
		return
	}

	if c.Query("refresh") != "true" {
		if out, ok := h.cached(c, id); ok {
			c.JSON(http.StatusOK, out)
			return
		}
	}

	out, ok := h.fetch(c, acct, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, out)
}

// cached returns the stored copy of a post when it is still fresh.
func (h *PostHandler) cached(c *gin.Context, id string) (*models.PostWithComments, bool) {
	ctx := c.Request.Context()
	post, err := h.Store.Post(ctx, id)
	if err != nil || !h.fresh(post.FetchedAt) {
		return nil, false
	}
	comments, err := h.Store.Comments(ctx, id)
	if err != nil {
		return nil, false
	}
	return &models.PostWithComments{Post: *post, Comments: comments}, true
}

// fetch loads a post from reddit, resolves its media and caches it. A failed
// resolution keeps whatever media the cached copy had.
func (h *PostHandler) fetch(c *gin.Context, acct *models.Account, id string) (*models.PostWithComments, bool) {
	token, ok := h.accessToken(c, acct)
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()

	out, err := h.Reddit.FetchPost(ctx, token, id).Unwrap()
	if err != nil {
		upstreamError(c, err)
		return nil, false
	}

	h.Resolver.ResolvePost(ctx, &out.Post)
	if out.Post.Media == nil {
		if prev, err := h.Store.Post(ctx, out.Post.ID); err == nil && prev.Media != nil {
			out.Post.Media = prev.Media
			for i := range out.Post.Crossposts {
				out.Post.Crossposts[i].Media = prev.Media
			}
		}
	}

	out.Post.FetchedAt = time.Now().UTC()
	if err := h.Store.UpsertPosts(ctx, out.Post); err != nil {
		h.Log.WithError(err).WithField("post", id).Warn("failed to cache post")
	} else if err := h.Store.ReplaceComments(ctx, out.Post.ID, out.Comments); err != nil {
		h.Log.WithError(err).WithField("post", id).Warn("failed to cache comments")
	}
	return out, true
}

// ResolveMedia refetches a post and resolves its third-party media.
func (h *PostHandler) ResolveMedia(c *gin.Context) {
	id := c.Param("id")
	acct, ok := h.account(c)
	if !ok {
		return
	}
	token, ok := h.accessToken(c, acct)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	out, err := h.Reddit.FetchPost(ctx, token, id).Unwrap()
	if err != nil {
		upstreamError(c, err)
		return
	}

	media, err := h.Resolver.ResolvePost(ctx, &out.Post).Unwrap()
	if err != nil {
		upstreamError(c, err)
		return
	}
	if media != nil {
		if err := h.Store.SetPostMedia(ctx, &out.Post); err != nil {
			h.Log.WithError(err).WithField("post", id).Warn("failed to cache media")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"post_id": out.Post.ID,
		"url":     out.Post.URL,
		"media":   media,
	})
}

// VotePost casts an up, down or clearing vote on a post.
func (h *PostHandler) VotePost(c *gin.Context) {
	var input struct {
		Dir *int `json:"dir" binding:"required,min=-1,max=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dir must be -1, 0 or 1"})
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

	fullname := c.Param("id")
	if !strings.HasPrefix(fullname, "t3_") {
		fullname = "t3_" + fullname
	}
	if err := h.Reddit.Vote(c.Request.Context(), token, fullname, *input.Dir).Err(); err != nil {
		upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded", "id": fullname, "dir": *input.Dir})
}
