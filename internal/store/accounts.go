package store

import (
	"context"
	"fmt"
	"time"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

func (s *Store) CreateAccount(ctx context.Context, acct *models.Account) error {
	if err := s.db.WithContext(ctx).Create(acct).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *Store) Account(ctx context.Context, id int) (*models.Account, error) {
	var acct models.Account
	if err := s.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &acct, nil
}

func (s *Store) AccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var acct models.Account
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&acct).Error; err != nil {
		return nil, notFound(err)
	}
	return &acct, nil
}

// NotifiableAccounts lists accounts the inbox poller should visit.
func (s *Store) NotifiableAccounts(ctx context.Context) ([]models.Account, error) {
	var accts []models.Account
	err := s.db.WithContext(ctx).
		Where("notifications_enabled = ? AND refresh_token <> ''", true).
		Order("id").
		Find(&accts).Error
	return accts, err
}

func (s *Store) UpdateSettings(ctx context.Context, acct *models.Account) error {
	return s.db.WithContext(ctx).Model(acct).
		Select("phone", "notifications_enabled").
		Updates(acct).Error
}

// SaveToken persists a refreshed OAuth token.
func (s *Store) SaveToken(ctx context.Context, accountID int, access, refresh string, expiry time.Time) error {
	updates := map[string]any{
		"access_token": access,
		"token_expiry": expiry,
	}
	if refresh != "" {
		updates["refresh_token"] = refresh
	}
	res := s.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", accountID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UsernameTaken reports whether an account already uses username.
func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Account{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return count > 0, nil
}
