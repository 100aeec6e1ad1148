package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// SaveNotification records a notification once per (account, message).
func (s *Store) SaveNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_name"}, {Name: "message_name"}},
			DoNothing: true,
		}).
		Create(n).Error
}

func (s *Store) Notifications(ctx context.Context, account string, limit int) ([]models.Notification, error) {
	out := []models.Notification{}
	q := s.db.WithContext(ctx).Where("account_name = ?", account).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// DeliveredSinks returns the sinks that already delivered a message's notification.
func (s *Store) DeliveredSinks(ctx context.Context, account, message string) (map[string]bool, error) {
	var sinks []string
	err := s.db.WithContext(ctx).Model(&models.NotificationDelivery{}).
		Where("account_name = ? AND message_name = ?", account, message).
		Pluck("sink", &sinks).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(sinks))
	for _, sink := range sinks {
		out[sink] = true
	}
	return out, nil
}

func (s *Store) RecordDelivery(ctx context.Context, account, message, sink string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_name"}, {Name: "message_name"}, {Name: "sink"}},
			DoNothing: true,
		}).
		Create(&models.NotificationDelivery{AccountName: account, MessageName: message, Sink: sink}).Error
}
