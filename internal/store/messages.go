package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// columns refreshed on upsert; notified is never overwritten
var messageUpdateColumns = []string{
	"kind", "author", "dest", "subject", "body", "subreddit", "link_title",
	"context", "parent_id", "was_comment", "unread", "created_utc", "updated_at",
}

func upsertMessages(tx *gorm.DB, account string, msgs []models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	// a batch may not touch the same row twice; the last copy wins
	index := make(map[string]int, len(msgs))
	rows := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		m.ID = 0
		m.AccountName = account
		m.Notified = false
		if i, ok := index[m.Name]; ok {
			rows[i] = m
			continue
		}
		index[m.Name] = len(rows)
		rows = append(rows, m)
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_name"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns(messageUpdateColumns),
	}).Create(&rows).Error
}

// UpsertMessages caches fetched inbox messages for an account.
func (s *Store) UpsertMessages(ctx context.Context, account string, msgs []models.Message) error {
	if err := upsertMessages(s.db.WithContext(ctx), account, msgs); err != nil {
		return fmt.Errorf("upsert messages: %w", err)
	}
	return nil
}

// RefreshInbox is the full-fetch refresh: it upserts msgs and clears the
// unread flag on cached messages the fetch no longer reports.
func (s *Store) RefreshInbox(ctx context.Context, account string, msgs []models.Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertMessages(tx, account, msgs); err != nil {
			return fmt.Errorf("upsert messages: %w", err)
		}

		q := tx.Model(&models.Message{}).Where("account_name = ? AND unread = ?", account, true)
		if len(msgs) > 0 {
			q = q.Where("name NOT IN ?", messageNames(msgs))
		}
		return q.Update("unread", false).Error
	})
}

// Messages lists cached inbox entries, newest first.
func (s *Store) Messages(ctx context.Context, account string, unreadOnly bool, limit int) ([]models.Message, error) {
	msgs := []models.Message{}
	q := s.db.WithContext(ctx).Where("account_name = ?", account)
	if unreadOnly {
		q = q.Where("unread = ?", true)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("created_utc desc").Find(&msgs).Error
	return msgs, err
}

// NotifiedNames returns which of names were already notified for account.
func (s *Store) NotifiedNames(ctx context.Context, account string, names []string) (map[string]bool, error) {
	seen := make(map[string]bool)
	if len(names) == 0 {
		return seen, nil
	}
	var found []string
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("account_name = ? AND notified = ? AND name IN ?", account, true, names).
		Pluck("name", &found).Error
	if err != nil {
		return nil, err
	}
	for _, n := range found {
		seen[n] = true
	}
	return seen, nil
}

func (s *Store) MarkNotified(ctx context.Context, account string, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Message{}).
		Where("account_name = ? AND name IN ?", account, names).
		Update("notified", true).Error
}

// MarkMessagesRead clears the unread flag after the user read them remotely.
func (s *Store) MarkMessagesRead(ctx context.Context, account string, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Message{}).
		Where("account_name = ? AND name IN ?", account, names).
		Update("unread", false).Error
}

func messageNames(msgs []models.Message) []string {
	names := make([]string, len(msgs))
	for i, m := range msgs {
		names[i] = m.Name
	}
	return names
}
