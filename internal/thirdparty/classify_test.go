package thirdparty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want Target
	}{
		{"https://imgur.com/a/AbC12", Target{Kind: KindImgurAlbum, ID: "AbC12"}},
		{"https://m.imgur.com/a/AbC12/", Target{Kind: KindImgurAlbum, ID: "AbC12"}},
		{"https://imgur.com/gallery/funny-cat-XyZ9", Target{Kind: KindImgurGallery, ID: "XyZ9"}},
		{"https://imgur.com/t/cats/Qw3rt", Target{Kind: KindImgurGallery, ID: "Qw3rt"}},
		{"https://i.imgur.com/Vid01.gifv", Target{Kind: KindImgurVideo, ID: "Vid01"}},
		{"https://i.imgur.com/Vid01.mp4", Target{Kind: KindImgurVideo, ID: "Vid01"}},
		{"https://i.imgur.com/Pic01.JPG", Target{Kind: KindDirectImage, ID: "Pic01", Ext: "jpg"}},
		{"https://i.imgur.com/Pic01.png", Target{Kind: KindDirectImage, ID: "Pic01", Ext: "png"}},
		{"https://gfycat.com/SomeCamelCaseName", Target{Kind: KindGfycat, ID: "somecamelcasename"}},
		{"https://www.gfycat.com/gifs/detail/SomeName", Target{Kind: KindGfycat, ID: "somename"}},
		{"https://gfycat.com/SomeName-funny-tag", Target{Kind: KindGfycat, ID: "somename"}},
		{"https://thumbs.gfycat.com/SomeName-size_restricted.gif", Target{Kind: KindGfycat, ID: "somename"}},
		{"https://www.redgifs.com/watch/GreenLeaf", Target{Kind: KindRedgifs, ID: "greenleaf"}},
		{"https://redgifs.com/ifr/greenleaf", Target{Kind: KindRedgifs, ID: "greenleaf"}},
		{"https://i.redgifs.com/i/GreenLeaf.jpg", Target{Kind: KindRedgifs, ID: "greenleaf"}},
		{"https://www.reddit.com/r/golang/comments/abc/title/", Target{}},
		{"https://i.redd.it/xyz.jpg", Target{}},
		{"not a url", Target{}},
		{"", Target{}},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.url))
		})
	}
}

func TestKindProvider(t *testing.T) {
	assert.Equal(t, "imgur", KindImgurAlbum.Provider())
	assert.Equal(t, "imgur", KindDirectImage.Provider())
	assert.Equal(t, "gfycat", KindGfycat.Provider())
	assert.Equal(t, "redgifs", KindRedgifs.Provider())
	assert.Equal(t, "none", KindNone.Provider())
	assert.Equal(t, "gfycat:abc", Target{Kind: KindGfycat, ID: "abc"}.CacheKey())
}
