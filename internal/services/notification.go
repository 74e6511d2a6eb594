package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
)

type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *logger.Logger
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

type NotificationList struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (*NotificationList, error) {
	recipientID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	offset := pageOffset(page, limit)
	notifications, err := s.notificationRepo.GetByRecipient(ctx, recipientID, unreadOnly, offset, limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.notificationRepo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	return &NotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	recipientID, err := uuid.Parse(userID)
	if err != nil {
		return 0, apperr.Validation("Invalid user ID")
	}
	return s.notificationRepo.CountUnread(ctx, recipientID)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	id, err := uuid.Parse(notificationID)
	if err != nil {
		return apperr.Validation("Invalid notification ID")
	}
	recipientID, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}

	if err := s.notificationRepo.MarkRead(ctx, id, recipientID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.NotFound("Notification not found")
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	recipientID, err := uuid.Parse(userID)
	if err != nil {
		return 0, apperr.Validation("Invalid user ID")
	}

	count, err := s.notificationRepo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"count":   count,
		}).Info("Notifications marked read")
	}
	return count, nil
}
