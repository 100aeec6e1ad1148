package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

type fakeRefresher struct {
	calls int
	tok   *oauth2.Token
	err   error
}

func (f *fakeRefresher) Token(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error) {
	f.calls++
	return f.tok, f.err
}

type fakeTokenStore struct {
	saved map[int]string
	err   error
}

func (f *fakeTokenStore) SaveToken(ctx context.Context, accountID int, access, refresh string, expiry time.Time) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = map[int]string{}
	}
	f.saved[accountID] = access
	return nil
}

func TestAccessTokenReusesValidToken(t *testing.T) {
	ref := &fakeRefresher{}
	tokens := NewTokens(ref, &fakeTokenStore{})
	acct := &models.Account{ID: 1, AccessToken: "cached", RefreshToken: "r", TokenExpiry: time.Now().Add(time.Hour)}

	tok, err := tokens.AccessToken(context.Background(), acct)
	require.NoError(t, err)
	assert.Equal(t, "cached", tok)
	assert.Zero(t, ref.calls)
}

func TestAccessTokenRefreshesAndSaves(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	ref := &fakeRefresher{tok: &oauth2.Token{AccessToken: "fresh", RefreshToken: "r2", Expiry: expiry}}
	store := &fakeTokenStore{}
	tokens := NewTokens(ref, store)
	acct := &models.Account{ID: 7, Username: "spez", AccessToken: "old", RefreshToken: "r1", TokenExpiry: time.Now().Add(-time.Minute)}

	tok, err := tokens.AccessToken(context.Background(), acct)
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Equal(t, 1, ref.calls)
	assert.Equal(t, "fresh", store.saved[7])
	assert.Equal(t, "r2", acct.RefreshToken)
	assert.Equal(t, expiry, acct.TokenExpiry)
}

func TestAccessTokenWithoutRefreshToken(t *testing.T) {
	tokens := NewTokens(&fakeRefresher{}, &fakeTokenStore{})
	acct := &models.Account{ID: 1, Username: "spez"}

	_, err := tokens.AccessToken(context.Background(), acct)
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestAccessTokenPropagatesErrors(t *testing.T) {
	refreshErr := errors.New("invalid_grant")
	tokens := NewTokens(&fakeRefresher{err: refreshErr}, &fakeTokenStore{})
	_, err := tokens.AccessToken(context.Background(), &models.Account{ID: 1, RefreshToken: "r"})
	assert.ErrorIs(t, err, refreshErr)

	saveErr := errors.New("db down")
	tokens = NewTokens(&fakeRefresher{tok: &oauth2.Token{AccessToken: "x"}}, &fakeTokenStore{err: saveErr})
	_, err = tokens.AccessToken(context.Background(), &models.Account{ID: 1, RefreshToken: "r"})
	assert.ErrorIs(t, err, saveErr)
}
