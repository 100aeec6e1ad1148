package models

import "time"

// Subscription is a subreddit an account is subscribed to.
type Subscription struct {
	ID          int       `gorm:"primaryKey" json:"-"`
	AccountName string    `gorm:"uniqueIndex:idx_subscription_account_name;not null" json:"-"`
	Name        string    `gorm:"uniqueIndex:idx_subscription_account_name;not null" json:"name"`
	FullName    string    `json:"fullname"`
	IconURL     string    `json:"icon_url"`
	Over18      bool      `json:"over_18"`
	CreatedAt   time.Time `json:"created_at"`
}
