package thirdparty

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/reddit-companion/backend/internal/config"
	"github.com/emilythestrangee/reddit-companion/backend/internal/logging"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

type fakeHosts struct {
	srv     *httptest.Server
	lookups int32
}

func newFakeHosts(t *testing.T) *fakeHosts {
	h := &fakeHosts{}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&h.lookups, 1)
		switch r.URL.Path {
		case "/3/album/Alb":
			w.Write([]byte(`{"data":{"images":[{"link":"https://i.imgur.com/a.jpg"},{"link":"https://i.imgur.com/b.jpg"}]}}`))
		case "/v1/gfycats/clip":
			w.Write([]byte(`{"gfyItem":{"mp4Url":"https://giant.gfycat.com/Clip.mp4"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *fakeHosts) resolver(cache MediaCache) *Resolver {
	return NewResolver(
		NewImgurClient(h.srv.URL, "cid", h.srv.Client()),
		NewGifHostClient(GfycatConfig(h.srv.URL), h.srv.Client()),
		NewGifHostClient(RedgifsConfig(h.srv.URL), h.srv.Client()),
		cache,
		logging.Discard(),
	)
}

func TestResolveLocalTargets(t *testing.T) {
	hosts := newFakeHosts(t)
	r := hosts.resolver(nil)

	res := r.Resolve(context.Background(), "https://i.imgur.com/Vid01.gifv")
	require.True(t, res.IsSuccess())
	assert.Equal(t, models.MediaVideo, res.Value().Kind)
	assert.Equal(t, "https://i.imgur.com/Vid01.mp4", res.Value().URL)

	res = r.Resolve(context.Background(), "https://i.imgur.com/Pic01.png")
	require.True(t, res.IsSuccess())
	assert.Equal(t, models.MediaImage, res.Value().Kind)
	assert.Equal(t, "https://i.imgur.com/Pic01.png", res.Value().URL)

	res = r.Resolve(context.Background(), "https://example.com/article")
	assert.True(t, res.IsSuccess())
	assert.Nil(t, res.Value())

	assert.Zero(t, atomic.LoadInt32(&hosts.lookups))
}

func TestResolveUsesCache(t *testing.T) {
	hosts := newFakeHosts(t)
	r := hosts.resolver(NewLRUCache(16, time.Minute))

	for i := 0; i < 3; i++ {
		res := r.Resolve(context.Background(), "https://gfycat.com/Clip")
		require.True(t, res.IsSuccess(), "%v", res.Err())
		assert.Equal(t, "https://giant.gfycat.com/Clip.mp4", res.Value().URL)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&hosts.lookups))
}

func TestResolveFailureIsNotCached(t *testing.T) {
	hosts := newFakeHosts(t)
	r := hosts.resolver(NewLRUCache(16, time.Minute))

	for i := 0; i < 2; i++ {
		res := r.Resolve(context.Background(), "https://imgur.com/a/Gone")
		assert.Equal(t, http.StatusNotFound, res.StatusCode())
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&hosts.lookups))
}

func TestResolvePostSetsCrosspostMedia(t *testing.T) {
	hosts := newFakeHosts(t)
	r := hosts.resolver(nil)

	post := &models.Post{
		ID:              "xpost",
		URL:             "/r/pics/comments/orig/title/",
		CrosspostParent: "t3_orig",
		Crossposts:      []models.Post{{ID: "orig", URL: "https://imgur.com/a/Alb"}},
	}
	res := r.ResolvePost(context.Background(), post)
	require.True(t, res.IsSuccess(), "%v", res.Err())

	require.NotNil(t, post.Media)
	assert.Equal(t, models.MediaGallery, post.Media.Kind)
	assert.Len(t, post.Media.Items, 2)
	assert.Same(t, post.Media, post.Crossposts[0].Media)
}

func TestResolvePostLeavesPostOnFailure(t *testing.T) {
	hosts := newFakeHosts(t)
	r := hosts.resolver(nil)

	previous := &models.Media{Kind: models.MediaImage, URL: "https://i.imgur.com/old.jpg"}
	post := &models.Post{ID: "p", URL: "https://imgur.com/a/Gone", Media: previous}
	res := r.ResolvePost(context.Background(), post)
	assert.False(t, res.IsSuccess())
	assert.Same(t, previous, post.Media)

	plain := &models.Post{ID: "q", URL: "https://example.com"}
	assert.True(t, r.ResolvePost(context.Background(), plain).IsSuccess())
	assert.Nil(t, plain.Media)
}

func TestResolvePosts(t *testing.T) {
	hosts := newFakeHosts(t)
	r := hosts.resolver(nil)

	posts := []*models.Post{
		{ID: "1", URL: "https://imgur.com/a/Alb"},
		{ID: "2", URL: "https://gfycat.com/Clip"},
		{ID: "3", URL: "https://imgur.com/a/Gone"},
		{ID: "4", URL: "https://example.com"},
	}
	r.ResolvePosts(context.Background(), posts)

	assert.NotNil(t, posts[0].Media)
	assert.Equal(t, "https://giant.gfycat.com/Clip.mp4", posts[1].Media.URL)
	assert.Nil(t, posts[2].Media)
	assert.Nil(t, posts[3].Media)
}

func TestEffectiveURL(t *testing.T) {
	orig := models.Post{URL: "https://gfycat.com/Clip"}

	assert.Equal(t, "https://gfycat.com/Clip",
		EffectiveURL(&models.Post{URL: "https://www.reddit.com/r/a/comments/x/", CrosspostParent: "t3_x", Crossposts: []models.Post{orig}}))
	assert.Equal(t, "https://imgur.com/a/Own",
		EffectiveURL(&models.Post{URL: "https://imgur.com/a/Own", CrosspostParent: "t3_x", Crossposts: []models.Post{orig}}))
	assert.Equal(t, "/r/a/comments/x/",
		EffectiveURL(&models.Post{URL: "/r/a/comments/x/"}))
}

func TestLRUCacheExpires(t *testing.T) {
	cache := NewLRUCache(4, 20*time.Millisecond)
	media := &models.Media{URL: "u"}
	cache.Set(context.Background(), "k", media)

	got, ok := cache.Get(context.Background(), "k")
	require.True(t, ok)
	assert.Same(t, media, got)

	assert.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNewCacheDefaultsToLRU(t *testing.T) {
	cache, err := NewCache(context.Background(), config.MediaCache{Size: 8, TTL: time.Minute}, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &LRUCache{}, cache)

	_, err = NewCache(context.Background(), config.MediaCache{RedisURL: "://bad"}, logging.Discard())
	assert.Error(t, err)
}
