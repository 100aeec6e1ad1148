package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
	"github.com/emilythestrangee/reddit-companion/backend/internal/reddit"
)

// maxPageSize is the largest listing page reddit serves.
const maxPageSize = 100

type SubredditHandler struct {
	*base
}

func (h *SubredditHandler) GetSubreddit(c *gin.Context) {
	name := c.Param("name")
	acct, ok := h.account(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if c.Query("refresh") != "true" {
		if sub, err := h.Store.Subreddit(ctx, name); err == nil && h.fresh(sub.FetchedAt) {
			c.JSON(http.StatusOK, sub)
			return
		}
	}

	token, ok := h.accessToken(c, acct)
	if !ok {
		return
	}
	sub, err := h.Reddit.FetchSubreddit(ctx, token, name).Unwrap()
	if err != nil {
		upstreamError(c, err)
		return
	}

	sub.FetchedAt = time.Now().UTC()
	if err := h.Store.UpsertSubreddit(ctx, sub); err != nil {
		h.Log.WithError(err).WithField("subreddit", name).Warn("failed to cache subreddit")
	}
	c.JSON(http.StatusOK, sub)
}

// GetPosts lists a subreddit page with media resolved. Listings are not cached.
func (h *SubredditHandler) GetPosts(c *gin.Context) {
	sort := c.DefaultQuery("sort", "hot")
	if !reddit.IsListingSort(sort) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be hot, new, top, rising or controversial"})
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

	limit := min(listLimit(c), maxPageSize)
	page, err := h.Reddit.FetchListing(ctx, token, c.Param("name"), sort, c.Query("after"), limit).Unwrap()
	if err != nil {
		upstreamError(c, err)
		return
	}

	posts := make([]*models.Post, len(page.Posts))
	for i := range page.Posts {
		posts[i] = &page.Posts[i]
	}
	h.Resolver.ResolvePosts(ctx, posts)
	c.JSON(http.StatusOK, page)
}

// GetRules serves cached rules when present; rules carry no timestamp of
// their own so ?refresh=true is the way to pick up changes.
func (h *SubredditHandler) GetRules(c *gin.Context) {
	name := c.Param("name")
	acct, ok := h.account(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if c.Query("refresh") != "true" {
		if rules, err := h.Store.Rules(ctx, name); err == nil && len(rules) > 0 {
			c.JSON(http.StatusOK, rules)
			return
		}
	}

	token, ok := h.accessToken(c, acct)
	if !ok {
		return
	}
	rules, err := h.Reddit.FetchRules(ctx, token, name).Unwrap()
	if err != nil {
		upstreamError(c, err)
		return
	}
	if err := h.Store.ReplaceRules(ctx, name, rules); err != nil {
		h.Log.WithError(err).WithField("subreddit", name).Warn("failed to cache rules")
	}
	c.JSON(http.StatusOK, rules)
}

func (h *SubredditHandler) GetFlairs(c *gin.Context) {
	name := c.Param("name")
	acct, ok := h.account(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if c.Query("refresh") != "true" {
		if flairs, err := h.Store.Flairs(ctx, name); err == nil && len(flairs) > 0 {
			c.JSON(http.StatusOK, flairs)
			return
		}
	}

	token, ok := h.accessToken(c, acct)
	if !ok {
		return
	}
	flairs, err := h.Reddit.FetchFlairs(ctx, token, name).Unwrap()
	if err != nil {
		upstreamError(c, err)
		return
	}
	if err := h.Store.ReplaceFlairs(ctx, name, flairs); err != nil {
		h.Log.WithError(err).WithField("subreddit", name).Warn("failed to cache flairs")
	}
	c.JSON(http.StatusOK, flairs)
}
