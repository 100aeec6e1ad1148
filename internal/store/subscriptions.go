package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// ReplaceSubscriptions swaps the cached subscription list of an account.
func (s *Store) ReplaceSubscriptions(ctx context.Context, account string, subs []models.Subscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_name = ?", account).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		if len(subs) == 0 {
			return nil
		}
		for i := range subs {
			subs[i].ID = 0
			subs[i].AccountName = account
		}
		return tx.CreateInBatches(&subs, 200).Error
	})
}

func (s *Store) Subscriptions(ctx context.Context, account string) ([]models.Subscription, error) {
	subs := []models.Subscription{}
	err := s.db.WithContext(ctx).Where("account_name = ?", account).Order("LOWER(name)").Find(&subs).Error
	return subs, err
}
