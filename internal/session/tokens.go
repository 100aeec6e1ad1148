// Package session hands out valid reddit access tokens per account.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

var ErrNoRefreshToken = errors.New("account has no refresh token")

// Refresher exchanges an expired token for a fresh one.
type Refresher interface {
	Token(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error)
}

// TokenStore persists refreshed tokens.
type TokenStore interface {
	SaveToken(ctx context.Context, accountID int, access, refresh string, expiry time.Time) error
}

type Tokens struct {
	refresher Refresher
	store     TokenStore
}

func NewTokens(refresher Refresher, store TokenStore) *Tokens {
	return &Tokens{refresher: refresher, store: store}
}

// AccessToken returns a usable bearer token for acct, refreshing and saving
// it when the cached one expired. acct is updated in place.
func (t *Tokens) AccessToken(ctx context.Context, acct *models.Account) (string, error) {
	current := &oauth2.Token{
		AccessToken:  acct.AccessToken,
		RefreshToken: acct.RefreshToken,
		Expiry:       acct.TokenExpiry,
	}
	if acct.AccessToken != "" && current.Valid() {
		return acct.AccessToken, nil
	}
	if acct.RefreshToken == "" {
		return "", fmt.Errorf("account %s: %w", acct.Username, ErrNoRefreshToken)
	}

	tok, err := t.refresher.Token(ctx, current)
	if err != nil {
		return "", err
	}

	if err := t.store.SaveToken(ctx, acct.ID, tok.AccessToken, tok.RefreshToken, tok.Expiry); err != nil {
		return "", fmt.Errorf("save refreshed token: %w", err)
	}
	acct.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		acct.RefreshToken = tok.RefreshToken
	}
	acct.TokenExpiry = tok.Expiry
	return tok.AccessToken, nil
}
