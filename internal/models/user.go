package models

import "time"

// Account is a reddit account registered with the companion.
type Account struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"` // reddit username
	Password string `gorm:"not null" json:"-"`               // bcrypt hash for companion login
	Phone    string `json:"phone"`                           // SMS target for notifications

	// OAuth fields
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"-"`

	NotificationsEnabled bool `gorm:"default:true" json:"notifications_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserInfo is the cached "about" record of a reddit user.
type UserInfo struct {
	Name         string    `gorm:"primaryKey" json:"name"`
	FullName     string    `json:"fullname"`
	IconURL      string    `json:"icon_url"`
	BannerURL    string    `json:"banner_url"`
	Description  string    `json:"description"`
	LinkKarma    int       `json:"link_karma"`
	CommentKarma int       `json:"comment_karma"`
	TotalKarma   int       `json:"total_karma"`
	IsGold       bool      `json:"is_gold"`
	IsMod        bool      `json:"is_mod"`
	Verified     bool      `json:"verified"`
	CreatedUTC   time.Time `json:"created_utc"`
	FetchedAt    time.Time `json:"fetched_at"`
}

type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required,min=6"`
	RefreshToken string `json:"refresh_token" binding:"required"`
	AccessToken  string `json:"access_token"`
	Phone        string `json:"phone"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SettingsRequest struct {
	Phone                *string `json:"phone"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}
