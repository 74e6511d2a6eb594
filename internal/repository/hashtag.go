package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ppsu-social/ppsu-social/internal/models"
)

type HashtagRepository struct {
	db *gorm.DB
}

func NewHashtagRepository(db *gorm.DB) *HashtagRepository {
	return &HashtagRepository{db: db}
}

func (r *HashtagRepository) Search(ctx context.Context, query string, offset, limit int) ([]*models.Hashtag, error) {
	var hashtags []*models.Hashtag
	db := r.db.WithContext(ctx)

	if query != "" {
		db = db.Where("name ILIKE ?", "%"+query+"%")
	}

	if err := db.Order("posts_count DESC, last_used_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&hashtags).Error; err != nil {
		return nil, fmt.Errorf("failed to search hashtags: %w", err)
	}
	return hashtags, nil
}

func (r *HashtagRepository) Top(ctx context.Context, limit int) ([]*models.Hashtag, error) {
	var hashtags []*models.Hashtag
	if err := r.db.WithContext(ctx).
		Order("posts_count DESC, last_used_at DESC").
		Limit(limit).
		Find(&hashtags).Error; err != nil {
		return nil, fmt.Errorf("failed to get top hashtags: %w", err)
	}
	return hashtags, nil
}

// upsertHashtags bumps usage counters for tags seen on a new post. Runs
// inside the post-create transaction.
func upsertHashtags(tx *gorm.DB, tags []string, usedAt time.Time) error {
	for _, tag := range tags {
		hashtag := models.Hashtag{Name: tag, PostsCount: 1, LastUsedAt: usedAt}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"posts_count":  gorm.Expr("hashtags.posts_count + 1"),
				"last_used_at": usedAt,
			}),
		}).Create(&hashtag).Error; err != nil {
			return err
		}
	}
	return nil
}
