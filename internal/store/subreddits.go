package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

func (s *Store) UpsertSubreddit(ctx context.Context, sub *models.Subreddit) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, UpdateAll: true}).
		Create(sub).Error
}

// Subreddit looks a subreddit up by name, case-insensitively.
func (s *Store) Subreddit(ctx context.Context, name string) (*models.Subreddit, error) {
	var sub models.Subreddit
	if err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&sub).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

func (s *Store) ReplaceRules(ctx context.Context, subreddit string, rules []models.Rule) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("LOWER(subreddit) = LOWER(?)", subreddit).Delete(&models.Rule{}).Error; err != nil {
			return err
		}
		if len(rules) == 0 {
			return nil
		}
		for i := range rules {
			rules[i].ID = 0
			rules[i].Subreddit = subreddit
		}
		return tx.Create(&rules).Error
	})
}

func (s *Store) Rules(ctx context.Context, subreddit string) ([]models.Rule, error) {
	rules := []models.Rule{}
	err := s.db.WithContext(ctx).Where("LOWER(subreddit) = LOWER(?)", subreddit).Order("priority").Find(&rules).Error
	return rules, err
}

func (s *Store) ReplaceFlairs(ctx context.Context, subreddit string, flairs []models.Flair) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("LOWER(subreddit) = LOWER(?)", subreddit).Delete(&models.Flair{}).Error; err != nil {
			return err
		}
		if len(flairs) == 0 {
			return nil
		}
		for i := range flairs {
			flairs[i].Subreddit = subreddit
		}
		return tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			Create(&flairs).Error
	})
}

func (s *Store) Flairs(ctx context.Context, subreddit string) ([]models.Flair, error) {
	flairs := []models.Flair{}
	err := s.db.WithContext(ctx).Where("LOWER(subreddit) = LOWER(?)", subreddit).Order("text").Find(&flairs).Error
	return flairs, err
}
