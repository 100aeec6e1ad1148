// Package thirdparty resolves links to third-party media hosts into playable media.
package thirdparty

import (
	"net/url"
	"regexp"
	"strings"
)

type Kind int

const (
	KindNone Kind = iota
	KindImgurAlbum
	KindImgurGallery
	KindImgurVideo
	KindDirectImage
	KindGfycat
	KindRedgifs
)

func (k Kind) String() string {
	switch k {
	case KindImgurAlbum:
		return "imgur_album"
	case KindImgurGallery:
		return "imgur_gallery"
	case KindImgurVideo:
		return "imgur_video"
	case KindDirectImage:
		return "direct_image"
	case KindGfycat:
		return "gfycat"
	case KindRedgifs:
		return "redgifs"
	default:
		return "none"
	}
}

// Provider is the host name used for metrics and Media.Provider.
func (k Kind) Provider() string {
	switch k {
	case KindImgurAlbum, KindImgurGallery, KindImgurVideo, KindDirectImage:
		return "imgur"
	case KindGfycat:
		return "gfycat"
	case KindRedgifs:
		return "redgifs"
	default:
		return "none"
	}
}

// Target is a classified media link.
type Target struct {
	Kind Kind
	ID   string
	// Ext is the file extension for direct links.
	Ext string
}

func (t Target) CacheKey() string {
	return t.Kind.String() + ":" + t.ID
}

type rule struct {
	kind    Kind
	pattern *regexp.Regexp
	id      func(m []string) string
}

func firstGroup(m []string) string { return m[1] }

func lowerGroup(m []string) string { return strings.ToLower(m[1]) }

// newer imgur links prefix the id with a title slug: /gallery/funny-cat-AbC12
func slugSuffix(m []string) string {
	id := m[1]
	if i := strings.LastIndexByte(id, '-'); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// Patterns are matched against host+path with the host lower-cased and "www."/"m." removed.
var rules = []rule{
	{KindImgurAlbum, regexp.MustCompile(`^imgur\.com/a/([A-Za-z0-9-]+)/?$`), slugSuffix},
	{KindImgurGallery, regexp.MustCompile(`^imgur\.com/(?:gallery|t/[^/]+)/([A-Za-z0-9-]+)/?$`), slugSuffix},
	{KindImgurVideo, regexp.MustCompile(`^i\.imgur\.com/([A-Za-z0-9]+)\.(?i:gifv|mp4)$`), firstGroup},
	{KindDirectImage, regexp.MustCompile(`^i\.imgur\.com/([A-Za-z0-9]+\.(?i:jpe?g|png|gif))$`), firstGroup},
	{KindGfycat, regexp.MustCompile(`^thumbs\.gfycat\.com/([A-Za-z]+)`), lowerGroup},
	{KindGfycat, regexp.MustCompile(`^gfycat\.com/(?:[^/]+/)*([A-Za-z]+)(?:-[^/]*)?/?$`), lowerGroup},
	{KindRedgifs, regexp.MustCompile(`^(?:v3\.)?redgifs\.com/(?:watch|ifr)/([A-Za-z]+)`), lowerGroup},
	{KindRedgifs, regexp.MustCompile(`^i\.redgifs\.com/i/([A-Za-z]+)`), lowerGroup},
}

// Classify maps a link to a media host target. Unknown links give KindNone.
func Classify(raw string) Target {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return Target{}
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	subject := host + u.Path

	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(subject)
		if m == nil {
			continue
		}
		t := Target{Kind: r.kind, ID: r.id(m)}
		if r.kind == KindDirectImage {
			dot := strings.LastIndexByte(t.ID, '.')
			t.Ext = strings.ToLower(t.ID[dot+1:])
			t.ID = t.ID[:dot]
		}
		return t
	}
	return Target{}
}
