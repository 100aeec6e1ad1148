package models

import "time"

type Comment struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	FullName      string    `json:"fullname"`
	PostID        string    `gorm:"index" json:"post_id"`
	ParentID      string    `json:"parent_id"` // t1_ or t3_ fullname
	Author        string    `json:"author"`
	Body          string    `json:"body"`
	Score         int       `json:"score"`
	Depth         int       `json:"depth"`
	Position      int       `json:"-"` // pre-order index inside the thread
	IsSubmitter   bool      `json:"is_submitter"`
	Distinguished string    `json:"distinguished,omitempty"`
	CreatedUTC    time.Time `json:"created_utc"`
}
