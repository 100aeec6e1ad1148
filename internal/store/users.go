package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

func (s *Store) UpsertUser(ctx context.Context, user *models.UserInfo) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, UpdateAll: true}).
		Create(user).Error
}

func (s *Store) User(ctx context.Context, name string) (*models.UserInfo, error) {
	var user models.UserInfo
	if err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
