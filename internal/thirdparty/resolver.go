package thirdparty

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/emilythestrangee/reddit-companion/backend/internal/apiresult"
	"github.com/emilythestrangee/reddit-companion/backend/internal/metrics"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

const defaultResolveConcurrency = 4

type Resolver struct {
	imgur       *ImgurClient
	gfycat      *GifHostClient
	redgifs     *GifHostClient
	cache       MediaCache
	log         logrus.FieldLogger
	concurrency int
}

// NewResolver wires the host clients. A nil cache disables caching.
func NewResolver(imgur *ImgurClient, gfycat, redgifs *GifHostClient, cache MediaCache, log logrus.FieldLogger) *Resolver {
	return &Resolver{
		imgur:       imgur,
		gfycat:      gfycat,
		redgifs:     redgifs,
		cache:       cache,
		log:         log.WithField("component", "resolver"),
		concurrency: defaultResolveConcurrency,
	}
}

// Resolve turns a link into media. Links to unknown hosts succeed with nil media.
func (r *Resolver) Resolve(ctx context.Context, link string) apiresult.Result[*models.Media] {
	target := Classify(link)
	provider := target.Kind.Provider()

	switch target.Kind {
	case KindNone:
		return apiresult.Success[*models.Media](nil)
	case KindImgurVideo:
		return apiresult.Success(&models.Media{
			Kind:     models.MediaVideo,
			Provider: provider,
			SourceID: target.ID,
			URL:      "https://i.imgur.com/" + target.ID + ".mp4",
		})
	case KindDirectImage:
		return apiresult.Success(&models.Media{
			Kind:     models.MediaImage,
			Provider: provider,
			SourceID: target.ID,
			URL:      "https://i.imgur.com/" + target.ID + "." + target.Ext,
		})
	}

	key := target.CacheKey()
	if r.cache != nil {
		if media, ok := r.cache.Get(ctx, key); ok {
			metrics.MediaResolution(provider, "hit")
			return apiresult.Success(media)
		}
	}

	res := r.fetch(ctx, target)
	if !res.IsSuccess() {
		metrics.MediaResolution(provider, "error")
		r.log.WithError(res.Err()).WithFields(logrus.Fields{"provider": provider, "id": target.ID}).Warn("media resolution failed")
		return res
	}
	metrics.MediaResolution(provider, "ok")
	if r.cache != nil {
		r.cache.Set(ctx, key, res.Value())
	}
	return res
}

func (r *Resolver) fetch(ctx context.Context, target Target) apiresult.Result[*models.Media] {
	switch target.Kind {
	case KindImgurAlbum:
		return r.imgur.Album(ctx, target.ID)
	case KindImgurGallery:
		return r.imgur.Gallery(ctx, target.ID)
	case KindGfycat:
		return r.gfycat.Fetch(ctx, target.ID)
	case KindRedgifs:
		return r.redgifs.Fetch(ctx, target.ID)
	}
	return apiresult.Failure[*models.Media](0, fmt.Errorf("no client for %s", target.Kind))
}

// ResolvePost resolves the post's effective link and attaches the media to the
// post and all of its crossposts. On failure or unknown hosts the post is unchanged.
func (r *Resolver) ResolvePost(ctx context.Context, post *models.Post) apiresult.Result[*models.Media] {
	res := r.Resolve(ctx, EffectiveURL(post))
	media := res.Value()
	if media == nil {
		return res
	}
	post.Media = media
	for i := range post.Crossposts {
		post.Crossposts[i].Media = media
	}
	return res
}

// ResolvePosts resolves a batch concurrently. Failures are logged and skipped.
func (r *Resolver) ResolvePosts(ctx context.Context, posts []*models.Post) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, post := range posts {
		g.Go(func() error {
			if res := r.ResolvePost(ctx, post); !res.IsSuccess() {
				r.log.WithError(res.Err()).WithField("post", post.ID).Debug("skipping unresolved post")
			}
			return nil
		})
	}
	_ = g.Wait()
}

// EffectiveURL is the link media should be resolved from. A crosspost whose own
// link points back at reddit uses the original post's link instead.
func EffectiveURL(post *models.Post) string {
	if post.IsCrosspost() && len(post.Crossposts) > 0 && pointsAtReddit(post.URL) {
		return post.Crossposts[0].URL
	}
	return post.URL
}

func pointsAtReddit(link string) bool {
	if strings.HasPrefix(link, "/") {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "reddit.com" || strings.HasSuffix(host, ".reddit.com")
}
