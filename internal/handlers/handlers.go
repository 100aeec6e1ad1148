package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/reddit-companion/backend/internal/apiresult"
	"github.com/emilythestrangee/reddit-companion/backend/internal/inbox"
	"github.com/emilythestrangee/reddit-companion/backend/internal/middleware"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
	"github.com/emilythestrangee/reddit-companion/backend/internal/reddit"
	"github.com/emilythestrangee/reddit-companion/backend/internal/session"
	"github.com/emilythestrangee/reddit-companion/backend/internal/store"
	"github.com/emilythestrangee/reddit-companion/backend/internal/thirdparty"
)

// Deps are the services shared by all handlers.
type Deps struct {
	Store     *store.Store
	Reddit    *reddit.Client
	Tokens    *session.Tokens
	Resolver  *thirdparty.Resolver
	Poller    *inbox.Poller
	JWTSecret []byte
	// CacheTTL is how long cached reddit records are served without refetching.
	CacheTTL time.Duration
	Log      logrus.FieldLogger
}

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	Post         *PostHandler
	Comment      *CommentHandler
	User         *UserHandler
	Subreddit    *SubredditHandler
	Inbox        *InboxHandler
	Subscription *SubscriptionHandler
	Media        *MediaHandler
}

func NewHandler(d Deps) *Handler {
	b := &base{Deps: d}
	posts := &PostHandler{base: b}
	return &Handler{
		Auth:         &AuthHandler{base: b},
		Post:         posts,
		Comment:      &CommentHandler{base: b, posts: posts},
		User:         &UserHandler{base: b},
		Subreddit:    &SubredditHandler{base: b},
		Inbox:        &InboxHandler{base: b},
		Subscription: &SubscriptionHandler{base: b},
		Media:        &MediaHandler{base: b},
	}
}

type base struct {
	Deps
}

// account loads the authenticated account or writes an error response.
func (b *base) account(c *gin.Context) (*models.Account, bool) {
	id, exists := c.Get(middleware.AccountIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	acct, err := b.Store.Account(c.Request.Context(), id.(int))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return nil, false
	}
	return acct, true
}

// accessToken returns a reddit bearer token for acct or writes an error response.
func (b *base) accessToken(c *gin.Context, acct *models.Account) (string, bool) {
	token, err := b.Tokens.AccessToken(c.Request.Context(), acct)
	if err != nil {
		b.Log.WithError(err).WithField("account", acct.Username).Warn("token refresh failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Reddit authorization failed"})
		return "", false
	}
	return token, true
}

func (b *base) fresh(fetchedAt time.Time) bool {
	return !fetchedAt.IsZero() && time.Since(fetchedAt) < b.CacheTTL
}

// upstreamError maps a failed remote call to a response. Reddit's 401, 403
// and 404 pass through; everything else is a bad gateway.
func upstreamError(c *gin.Context, err error) {
	status := apiresult.StatusCode(err)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
	default:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
