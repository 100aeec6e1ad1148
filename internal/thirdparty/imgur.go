package thirdparty

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/emilythestrangee/reddit-companion/backend/internal/apiresult"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

type ImgurClient struct {
	baseURL  string
	clientID string
	http     *http.Client
}

func NewImgurClient(baseURL, clientID string, httpClient *http.Client) *ImgurClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &ImgurClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     httpClient,
	}
}

func (c *ImgurClient) Album(ctx context.Context, id string) apiresult.Result[*models.Media] {
	return c.fetch(ctx, "/3/album/", id)
}

// Gallery also accepts ids of gallery posts holding a single image.
func (c *ImgurClient) Gallery(ctx context.Context, id string) apiresult.Result[*models.Media] {
	return c.fetch(ctx, "/3/gallery/", id)
}

func (c *ImgurClient) fetch(ctx context.Context, prefix, id string) apiresult.Result[*models.Media] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+prefix+url.PathEscape(id), nil)
	if err != nil {
		return apiresult.Failure[*models.Media](0, err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.clientID)

	body, err := fetchJSON(c.http, req).Unwrap()
	if err != nil {
		return apiresult.FromError[*models.Media](fmt.Errorf("imgur %s: %w", id, err))
	}

	data := gjson.GetBytes(body, "data")
	var items []models.MediaItem
	if images := data.Get("images"); images.IsArray() {
		images.ForEach(func(_, img gjson.Result) bool {
			items = append(items, imgurItem(img))
			return true
		})
	} else if data.Get("link").Exists() {
		items = append(items, imgurItem(data))
	}
	if len(items) == 0 {
		return apiresult.Failure[*models.Media](http.StatusNotFound, fmt.Errorf("imgur %s: no images", id))
	}

	media := &models.Media{
		Kind:     models.MediaGallery,
		Provider: "imgur",
		SourceID: id,
		URL:      items[0].URL,
		Width:    items[0].Width,
		Height:   items[0].Height,
		Items:    items,
	}
	if len(items) == 1 {
		media.Kind = items[0].Kind
		media.Items = nil
	}
	return apiresult.Success(media)
}

func imgurItem(img gjson.Result) models.MediaItem {
	item := models.MediaItem{
		Kind:        models.MediaImage,
		URL:         img.Get("link").String(),
		Description: img.Get("description").String(),
		Width:       int(img.Get("width").Int()),
		Height:      int(img.Get("height").Int()),
	}
	mp4 := img.Get("mp4").String()
	if mp4 != "" || strings.HasPrefix(img.Get("type").String(), "video/") {
		item.Kind = models.MediaVideo
		if mp4 != "" {
			item.URL = mp4
		}
	}
	return item
}
