package thirdparty

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/emilythestrangee/reddit-companion/backend/internal/apiresult"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// GifHostConfig describes one of the near-identical gif hosting APIs.
// Field paths are gjson paths into the lookup response.
type GifHostConfig struct {
	Provider     string
	BaseURL      string
	PathTemplate string // %s is replaced by the id
	VideoPath    string
	FallbackPath string
	PosterPath   string
	WidthPath    string
	HeightPath   string

	// TokenPath enables a temporary bearer token fetched from BaseURL+TokenPath.
	TokenPath string
	TokenTTL  time.Duration
}

func GfycatConfig(baseURL string) GifHostConfig {
	return GifHostConfig{
		Provider:     "gfycat",
		BaseURL:      baseURL,
		PathTemplate: "/v1/gfycats/%s",
		VideoPath:    "gfyItem.mp4Url",
		FallbackPath: "gfyItem.mobileUrl",
		PosterPath:   "gfyItem.posterUrl",
		WidthPath:    "gfyItem.width",
		HeightPath:   "gfyItem.height",
	}
}

func RedgifsConfig(baseURL string) GifHostConfig {
	return GifHostConfig{
		Provider:     "redgifs",
		BaseURL:      baseURL,
		PathTemplate: "/v2/gifs/%s",
		VideoPath:    "gif.urls.hd",
		FallbackPath: "gif.urls.sd",
		PosterPath:   "gif.urls.poster",
		WidthPath:    "gif.width",
		HeightPath:   "gif.height",
		TokenPath:    "/v2/auth/temporary",
		TokenTTL:     12 * time.Hour,
	}
}

type GifHostClient struct {
	cfg  GifHostConfig
	http *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewGifHostClient(cfg GifHostConfig, httpClient *http.Client) *GifHostClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GifHostClient{cfg: cfg, http: httpClient}
}

// Fetch looks up a clip by id. A 401 invalidates the cached token and the
// lookup is retried once with a fresh one.
func (c *GifHostClient) Fetch(ctx context.Context, id string) apiresult.Result[*models.Media] {
	res := c.lookup(ctx, id)
	if res.StatusCode() == http.StatusUnauthorized && c.cfg.TokenPath != "" {
		c.invalidateToken()
		res = c.lookup(ctx, id)
	}
	body, err := res.Unwrap()
	if err != nil {
		return apiresult.FromError[*models.Media](fmt.Errorf("%s %s: %w", c.cfg.Provider, id, err))
	}

	video := gjson.GetBytes(body, c.cfg.VideoPath).String()
	fallback := gjson.GetBytes(body, c.cfg.FallbackPath).String()
	if video == "" {
		video, fallback = fallback, ""
	}
	if video == "" {
		return apiresult.Failure[*models.Media](http.StatusNotFound, fmt.Errorf("%s %s: no video url", c.cfg.Provider, id))
	}

	return apiresult.Success(&models.Media{
		Kind:        models.MediaVideo,
		Provider:    c.cfg.Provider,
		SourceID:    id,
		URL:         video,
		FallbackURL: fallback,
		PosterURL:   gjson.GetBytes(body, c.cfg.PosterPath).String(),
		Width:       int(gjson.GetBytes(body, c.cfg.WidthPath).Int()),
		Height:      int(gjson.GetBytes(body, c.cfg.HeightPath).Int()),
	})
}

func (c *GifHostClient) lookup(ctx context.Context, id string) apiresult.Result[[]byte] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+fmt.Sprintf(c.cfg.PathTemplate, id), nil)
	if err != nil {
		return apiresult.Failure[[]byte](0, err)
	}
	if c.cfg.TokenPath != "" {
		token, err := c.bearer(ctx)
		if err != nil {
			return apiresult.FromError[[]byte](err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return fetchJSON(c.http, req)
}

func (c *GifHostClient) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+c.cfg.TokenPath, nil)
	if err != nil {
		return "", err
	}
	body, err := fetchJSON(c.http, req).Unwrap()
	if err != nil {
		return "", fmt.Errorf("temporary token: %w", err)
	}
	token := gjson.GetBytes(body, "token").String()
	if token == "" {
		return "", fmt.Errorf("temporary token: empty token in response")
	}

	c.token = token
	c.tokenExpiry = time.Now().Add(c.cfg.TokenTTL)
	return token, nil
}

func (c *GifHostClient) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
