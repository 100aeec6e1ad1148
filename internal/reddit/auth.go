package reddit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const defaultTokenURL = "https://www.reddit.com/api/v1/access_token"

type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenURL     string
	UserAgent    string
	HTTPClient   *http.Client
}

// Authenticator refreshes account tokens against reddit's OAuth2 endpoint.
type Authenticator struct {
	conf *oauth2.Config
	http *http.Client
}

func NewAuthenticator(cfg AuthConfig) *Authenticator {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	// reddit rejects token requests without a descriptive User-Agent
	httpClient := &http.Client{
		Timeout:   base.Timeout,
		Transport: &userAgentTransport{agent: cfg.UserAgent, next: transport},
	}

	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		http: httpClient,
	}
}

// Token returns current when it is still valid, or a refreshed token.
func (a *Authenticator) Token(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.http)
	tok, err := a.conf.TokenSource(ctx, current).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh reddit token: %w", err)
	}
	return tok, nil
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.agent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.agent)
	}
	return t.next.RoundTrip(req)
}
