package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// UpsertPosts writes posts, replacing cached copies.
func (s *Store) UpsertPosts(ctx context.Context, posts ...models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&posts).Error
	if err != nil {
		return fmt.Errorf("upsert posts: %w", err)
	}
	return nil
}

func (s *Store) Post(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// SetPostMedia stores the resolved media of a cached post and its crossposts.
func (s *Store) SetPostMedia(ctx context.Context, post *models.Post) error {
	update := models.Post{ID: post.ID, Media: post.Media, Crossposts: post.Crossposts}
	return s.db.WithContext(ctx).Model(&update).Select("media", "crossposts").Updates(&update).Error
}

// ReplaceComments swaps the cached thread of a post.
func (s *Store) ReplaceComments(ctx context.Context, postID string, comments []models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if len(comments) == 0 {
			return nil
		}
		for i := range comments {
			comments[i].PostID = postID
			comments[i].Position = i
		}
		return tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			CreateInBatches(&comments, 200).Error
	})
}

// Comments returns the cached thread in display order.
func (s *Store) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("position").Find(&comments).Error
	return comments, err
}
