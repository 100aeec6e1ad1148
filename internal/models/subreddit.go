package models

import "time"

type Subreddit struct {
	Name              string    `gorm:"primaryKey" json:"name"`
	FullName          string    `json:"fullname"`
	Title             string    `json:"title"`
	PublicDescription string    `json:"public_description"`
	Description       string    `json:"description"`
	IconURL           string    `json:"icon_url"`
	BannerURL         string    `json:"banner_url"`
	Subscribers       int       `json:"subscribers"`
	ActiveUsers       int       `json:"active_users"`
	Over18            bool      `json:"over_18"`
	CreatedUTC        time.Time `json:"created_utc"`
	FetchedAt         time.Time `json:"fetched_at"`
}

type Rule struct {
	ID              int    `gorm:"primaryKey" json:"-"`
	Subreddit       string `gorm:"index;not null" json:"-"`
	ShortName       string `json:"short_name"`
	Description     string `json:"description"`
	Kind            string `json:"kind"`
	ViolationReason string `json:"violation_reason"`
	Priority        int    `json:"priority"`
}

type Flair struct {
	ID              string `gorm:"primaryKey" json:"id"`
	Subreddit       string `gorm:"index;not null" json:"-"`
	Text            string `json:"text"`
	TextEditable    bool   `json:"text_editable"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	ModOnly         bool   `json:"mod_only"`
}
