package models

import "time"

type Post struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	FullName        string    `json:"fullname"`
	Subreddit       string    `gorm:"index" json:"subreddit"`
	Author          string    `json:"author"`
	Title           string    `gorm:"not null" json:"title"`
	SelfText        string    `json:"selftext,omitempty"`
	URL             string    `json:"url"`
	Permalink       string    `json:"permalink"`
	Domain          string    `json:"domain"`
	PostHint        string    `json:"post_hint,omitempty"`
	Thumbnail       string    `json:"thumbnail,omitempty"`
	PreviewURL      string    `json:"preview_url,omitempty"`
	RedditVideoURL  string    `json:"reddit_video_url,omitempty"`
	FlairText       string    `json:"flair_text,omitempty"`
	IsSelf          bool      `json:"is_self"`
	IsVideo         bool      `json:"is_video"`
	IsGallery       bool      `json:"is_gallery"`
	Over18          bool      `json:"over_18"`
	Spoiler         bool      `json:"spoiler"`
	Score           int       `json:"score"`
	UpvoteRatio     float64   `json:"upvote_ratio"`
	NumComments     int       `json:"num_comments"`
	CrosspostParent string    `json:"crosspost_parent,omitempty"`
	Media           *Media    `gorm:"serializer:json" json:"media,omitempty"`
	Crossposts      []Post    `gorm:"serializer:json" json:"crossposts,omitempty"`
	CreatedUTC      time.Time `json:"created_utc"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// IsCrosspost reports whether the post reshares another post.
func (p *Post) IsCrosspost() bool {
	return p.CrosspostParent != "" || len(p.Crossposts) > 0
}

type MediaKind string

const (
	MediaImage   MediaKind = "image"
	MediaVideo   MediaKind = "video"
	MediaGallery MediaKind = "gallery"
)

// Media is playable or viewable content resolved from a third-party host.
type Media struct {
	Kind        MediaKind   `json:"kind"`
	Provider    string      `json:"provider"`
	SourceID    string      `json:"source_id"`
	URL         string      `json:"url"`
	FallbackURL string      `json:"fallback_url,omitempty"`
	PosterURL   string      `json:"poster_url,omitempty"`
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	Items       []MediaItem `json:"items,omitempty"`
}

type MediaItem struct {
	Kind        MediaKind `json:"kind"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
}

// PostWithComments is the payload returned for a single post view.
type PostWithComments struct {
	Post     Post      `json:"post"`
	Comments []Comment `json:"comments"`
}
