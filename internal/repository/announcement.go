package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppsu-social/ppsu-social/internal/models"
)

type AnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if err := r.db.WithContext(ctx).Create(announcement).Error; err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	var announcement models.Announcement
	if err := r.db.WithContext(ctx).
		Preload("Author").
		First(&announcement, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &announcement, nil
}

type AnnouncementFilter struct {
	Category string
	Audience string
}

// List returns active, unexpired announcements, most urgent and newest
// first.
func (r *AnnouncementRepository) List(ctx context.Context, filter AnnouncementFilter, now time.Time, offset, limit int) ([]*models.Announcement, error) {
	var announcements []*models.Announcement
	db := r.db.WithContext(ctx).
		Preload("Author").
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now)

	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Audience != "" {
		db = db.Where("target_audience IN ?", []string{filter.Audience, "all"})
	}

	if err := db.Order("priority = 'urgent' DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&announcements).Error; err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

// Update persists the author-editable fields. viewsCount is derived from
// the view edge table and never written here.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	if err := r.db.WithContext(ctx).
		Model(announcement).
		Select("title", "content", "category", "priority", "target_audience", "expires_at", "updated_at").
		Updates(announcement).Error; err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Announcement{}).
		Where("id = ?", id).
		Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate announcement: %w", err)
	}
	return nil
}

// MarkViewed records one view edge per (announcement, viewer) and bumps
// viewsCount only on first view.
func (r *AnnouncementRepository) MarkViewed(ctx context.Context, announcementID, viewerID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		view := &models.AnnouncementView{AnnouncementID: announcementID, ViewerID: viewerID}
		if err := tx.Create(view).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				return nil
			}
			return err
		}
		return tx.Model(&models.Announcement{}).
			Where("id = ?", announcementID).
			UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
	})
	if err != nil {
		return fmt.Errorf("failed to mark announcement viewed: %w", err)
	}
	return nil
}
