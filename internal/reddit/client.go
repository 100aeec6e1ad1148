// Package reddit is a small OAuth client for the reddit REST API.
//
// Every call returns an apiresult.Result: non-2xx responses carry their status,
// transport and decoding failures carry status 0. Nothing is retried.
package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/emilythestrangee/reddit-companion/backend/internal/apiresult"
	"github.com/emilythestrangee/reddit-companion/backend/internal/metrics"
)

const maxBodyBytes = 8 << 20

var (
	ErrNotFound    = errors.New("not found")
	errInvalidJSON = errors.New("invalid JSON response")
)

type Config struct {
	BaseURL           string
	UserAgent         string
	RequestsPerMinute int
	HTTPClient        *http.Client
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	log       logrus.FieldLogger
}

func New(cfg Config, log logrus.FieldLogger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(float64(rpm)/60), burst),
		log:       log.WithField("component", "reddit"),
	}
}

func (c *Client) get(ctx context.Context, op, token, path string, query url.Values) apiresult.Result[[]byte] {
	return c.do(ctx, op, token, http.MethodGet, path, query, nil)
}

func (c *Client) postForm(ctx context.Context, op, token, path string, form url.Values) apiresult.Result[[]byte] {
	return c.do(ctx, op, token, http.MethodPost, path, nil, form)
}

func (c *Client) do(ctx context.Context, op, token, method, path string, query, form url.Values) apiresult.Result[[]byte] {
	if err := c.limiter.Wait(ctx); err != nil {
		return apiresult.Failure[[]byte](0, fmt.Errorf("%s: %w", op, err))
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("raw_json", "1")
	endpoint := c.baseURL + path + "?" + query.Encode()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return apiresult.Failure[[]byte](0, fmt.Errorf("%s: %w", op, err))
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RedditRequest(op, 0)
		c.log.WithError(err).WithField("op", op).Warn("reddit request failed")
		return apiresult.Failure[[]byte](0, fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()
	metrics.RedditRequest(op, resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apiresult.Failure[[]byte](0, fmt.Errorf("%s: read body: %w", op, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WithFields(logrus.Fields{"op": op, "status": resp.StatusCode}).Warn("reddit returned an error status")
		return apiresult.Failure[[]byte](resp.StatusCode, fmt.Errorf("%s: %s", op, http.StatusText(resp.StatusCode)))
	}
	if !gjson.ValidBytes(data) {
		return apiresult.Failure[[]byte](0, fmt.Errorf("%s: %w", op, errInvalidJSON))
	}

	return apiresult.Success(data)
}

func unixTime(v float64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(v), 0).UTC()
}

// httpURL keeps only absolute http(s) URLs; reddit uses words like "self" or "default" as placeholders.
func httpURL(s string) string {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return ""
}

// cleanIcon strips the resizing query reddit appends to icon URLs.
func cleanIcon(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	return httpURL(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
