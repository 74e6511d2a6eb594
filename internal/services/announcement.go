package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/policy"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/sanitize"
)

type AnnouncementService struct {
	announcementRepo *repository.AnnouncementRepository
	userRepo         *repository.UserRepository
	logger           *logger.Logger
}

func NewAnnouncementService(announcementRepo *repository.AnnouncementRepository, userRepo *repository.UserRepository, logger *logger.Logger) *AnnouncementService {
	return &AnnouncementService{
		announcementRepo: announcementRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

type CreateAnnouncementRequest struct {
	Title          string     `json:"title" binding:"required,min=1,max=200"`
	Content        string     `json:"content" binding:"required,min=1,max=5000"`
	Category       string     `json:"category" binding:"omitempty,oneof=general academic administrative emergency placement exam"`
	Priority       string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	TargetAudience string     `json:"targetAudience" binding:"omitempty,oneof=all students faculty staff"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

type UpdateAnnouncementRequest struct {
	Title          *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Content        *string    `json:"content" binding:"omitempty,min=1,max=5000"`
	Category       *string    `json:"category" binding:"omitempty,oneof=general academic administrative emergency placement exam"`
	Priority       *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	TargetAudience *string    `json:"targetAudience" binding:"omitempty,oneof=all students faculty staff"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

// canPublish gates announcement authorship to faculty and admin accounts.
func canPublish(user *models.User) bool {
	return user.Role == models.RoleFaculty || user.Role == models.RoleAdmin
}

func (s *AnnouncementService) Create(ctx context.Context, userID string, req *CreateAnnouncementRequest) (*models.Announcement, error) {
	authorID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, apperr.NotFound("User not found")
	}
	if !canPublish(author) {
		return nil, apperr.Forbidden("Only faculty and admins can post announcements")
	}

	announcement := &models.Announcement{
		AuthorID:       authorID,
		Title:          sanitize.Text(req.Title),
		Content:        sanitize.Text(req.Content),
		Category:       defaultString(req.Category, "general"),
		Priority:       defaultString(req.Priority, "medium"),
		TargetAudience: defaultString(req.TargetAudience, "all"),
		IsActive:       true,
		ExpiresAt:      req.ExpiresAt,
	}

	if err := s.announcementRepo.Create(ctx, announcement); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"announcement_id": announcement.ID,
		"user_id":         userID,
		"priority":        announcement.Priority,
	}).Info("Announcement created successfully")

	return announcement, nil
}

func (s *AnnouncementService) Get(ctx context.Context, announcementID string) (*models.Announcement, error) {
	id, err := uuid.Parse(announcementID)
	if err != nil {
		return nil, apperr.Validation("Invalid announcement ID")
	}

	announcement, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if announcement == nil {
		return nil, apperr.NotFound("Announcement not found")
	}
	return announcement, nil
}

func (s *AnnouncementService) List(ctx context.Context, category, audience string, page, limit int) ([]*models.Announcement, error) {
	filter := repository.AnnouncementFilter{Category: category, Audience: audience}
	offset := pageOffset(page, limit)
	return s.announcementRepo.List(ctx, filter, time.Now().UTC(), offset, limit)
}

func (s *AnnouncementService) Update(ctx context.Context, announcementID, userID string, req *UpdateAnnouncementRequest) (*models.Announcement, error) {
	announcement, err := s.Get(ctx, announcementID)
	if err != nil {
		return nil, err
	}

	principal, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}
	if !policy.OwnsResource(principal, announcement) {
		return nil, apperr.Forbidden("Not authorized to update this announcement")
	}

	if req.Title != nil {
		announcement.Title = sanitize.Text(*req.Title)
	}
	if req.Content != nil {
		announcement.Content = sanitize.Text(*req.Content)
	}
	if req.Category != nil {
		announcement.Category = *req.Category
	}
	if req.Priority != nil {
		announcement.Priority = *req.Priority
	}
	if req.TargetAudience != nil {
		announcement.TargetAudience = *req.TargetAudience
	}
	if req.ExpiresAt != nil {
		announcement.ExpiresAt = req.ExpiresAt
	}

	if err := s.announcementRepo.Update(ctx, announcement); err != nil {
		return nil, err
	}
	return announcement, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, announcementID, userID string) error {
	announcement, err := s.Get(ctx, announcementID)
	if err != nil {
		return err
	}

	principal, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}

	actor, err := s.userRepo.GetByID(ctx, principal)
	if err != nil {
		return err
	}
	if actor == nil {
		return apperr.NotFound("User not found")
	}
	if !policy.OwnsResource(principal, announcement) && actor.Role != models.RoleAdmin {
		return apperr.Forbidden("Not authorized to delete this announcement")
	}

	return s.announcementRepo.Deactivate(ctx, announcement.ID)
}

// MarkViewed is idempotent per viewer.
func (s *AnnouncementService) MarkViewed(ctx context.Context, announcementID, userID string) error {
	announcement, err := s.Get(ctx, announcementID)
	if err != nil {
		return err
	}

	viewerID, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}

	return s.announcementRepo.MarkViewed(ctx, announcement.ID, viewerID)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
