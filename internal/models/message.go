package models

import "time"

// Thing kinds as reddit names them.
const (
	KindComment = "t1"
	KindLink    = "t3"
	KindMessage = "t4"
)

// Message is an inbox entry cached per account.
type Message struct {
	ID          int       `gorm:"primaryKey" json:"-"`
	AccountName string    `gorm:"uniqueIndex:idx_message_account_name;not null" json:"-"`
	Name        string    `gorm:"uniqueIndex:idx_message_account_name;not null" json:"name"` // fullname
	Kind        string    `json:"kind"`
	Author      string    `json:"author"`
	Dest        string    `json:"dest"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Subreddit   string    `json:"subreddit,omitempty"`
	LinkTitle   string    `json:"link_title,omitempty"`
	Context     string    `json:"context,omitempty"`
	ParentID    string    `json:"parent_id,omitempty"`
	WasComment  bool      `json:"was_comment"`
	New         bool      `gorm:"column:unread" json:"new"`
	Notified    bool      `gorm:"default:false" json:"-"`
	CreatedUTC  time.Time `json:"created_utc"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Notification is one raised alert for a newly seen inbox message.
type Notification struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	AccountName string    `gorm:"uniqueIndex:idx_notification_account_message;not null" json:"account"`
	MessageName string    `gorm:"uniqueIndex:idx_notification_account_message;not null" json:"message"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        string    `json:"link"`
	Phone       string    `gorm:"-" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationDelivery records that one sink delivered a notification, so a
// retried notification skips sinks that already succeeded.
type NotificationDelivery struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	AccountName string    `gorm:"uniqueIndex:idx_delivery_account_message_sink;not null" json:"account"`
	MessageName string    `gorm:"uniqueIndex:idx_delivery_account_message_sink;not null" json:"message"`
	Sink        string    `gorm:"uniqueIndex:idx_delivery_account_message_sink;not null" json:"sink"`
	CreatedAt   time.Time `json:"created_at"`
}
