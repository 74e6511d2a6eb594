package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppsu-social/ppsu-social/internal/models"
)

type StoryRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) *StoryRepository {
	return &StoryRepository{db: db}
}

func (r *StoryRepository) Create(ctx context.Context, story *models.Story) error {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

func (r *StoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).
		Preload("Author").
		First(&story, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return &story, nil
}

// ActiveByAuthors lists unexpired stories from the author set, newest
// first. Expiry is a read-time filter on expires_at.
func (r *StoryRepository) ActiveByAuthors(ctx context.Context, authorIDs []uuid.UUID, now time.Time, offset, limit int) ([]*models.Story, error) {
	if len(authorIDs) == 0 {
		return []*models.Story{}, nil
	}

	var stories []*models.Story
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id IN ? AND is_active = ? AND expires_at > ?", authorIDs, true, now).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("failed to get stories feed: %w", err)
	}
	return stories, nil
}

func (r *StoryRepository) ActiveByAuthor(ctx context.Context, authorID uuid.UUID, now time.Time) ([]*models.Story, error) {
	var stories []*models.Story
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ? AND is_active = ? AND expires_at > ?", authorID, true, now).
		Order("created_at DESC").
		Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("failed to get user stories: %w", err)
	}
	return stories, nil
}

// MarkViewed records the view edge once per (story, viewer) and bumps
// viewsCount only when a new edge was inserted. Repeat views are no-ops.
func (r *StoryRepository) MarkViewed(ctx context.Context, storyID, viewerID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		view := &models.StoryView{StoryID: storyID, ViewerID: viewerID}
		if err := tx.Create(view).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				return nil
			}
			return err
		}
		return tx.Model(&models.Story{}).
			Where("id = ?", storyID).
			UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
	})
	if err != nil {
		return fmt.Errorf("failed to mark story viewed: %w", err)
	}
	return nil
}

func (r *StoryRepository) Viewers(ctx context.Context, storyID uuid.UUID, offset, limit int) ([]*models.StoryView, error) {
	var views []*models.StoryView
	if err := r.db.WithContext(ctx).
		Preload("Viewer").
		Where("story_id = ?", storyID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to get story viewers: %w", err)
	}
	return views, nil
}

func (r *StoryRepository) Deactivate(ctx context.Context, storyID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ?", storyID).
		Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate story: %w", err)
	}
	return nil
}

// PurgeExpired hard-deletes stories past their expiry, with their view
// edges. Called periodically by the worker; the stand-in for a TTL index.
func (r *StoryRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.Story{}).
			Where("expires_at <= ?", now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Delete(&models.StoryView{}, "story_id IN ?", ids).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Story{}, "id IN ?", ids)
		purged = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired stories: %w", err)
	}
	return purged, nil
}
