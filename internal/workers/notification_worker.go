package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/queue"
)

// NotificationWorker turns engagement events into notification rows.
// Actors never get notified about their own activity; the services
// filter self-engagement before publishing, and the worker re-checks.
type NotificationWorker struct {
	notificationRepo *repository.NotificationRepository
	consumer         *queue.KafkaConsumer
	logger           *logger.Logger
}

func NewNotificationWorker(
	notificationRepo *repository.NotificationRepository,
	consumer *queue.KafkaConsumer,
	logger *logger.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		notificationRepo: notificationRepo,
		consumer:         consumer,
		logger:           logger,
	}
}

func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker...")

	return w.consumer.Subscribe(ctx, func(msg queue.Message) error {
		var event queue.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}

		w.logger.WithFields(map[string]interface{}{
			"event_type": event.Type,
			"timestamp":  event.Timestamp,
		}).Info("Processing event")

		switch event.Type {
		case queue.EventFollowCreated:
			return w.handleFollowCreated(ctx, event)
		case queue.EventPostLiked:
			return w.handlePostLiked(ctx, event)
		case queue.EventCommentLiked:
			return w.handleCommentLiked(ctx, event)
		case queue.EventCommentCreated:
			return w.handleCommentCreated(ctx, event)
		case queue.EventEventRSVPAdded:
			return w.handleRSVPAdded(ctx, event)
		case queue.EventUserRegistered, queue.EventFollowDeleted, queue.EventPostCreated,
			queue.EventPostDeleted, queue.EventPostUnliked, queue.EventStoryViewed,
			queue.EventEventRSVPRemoved:
			// Consumed for offset progress; no notification is produced.
			return nil
		default:
			w.logger.WithField("event_type", event.Type).Warn("Unknown event type")
			return nil
		}
	})
}

func (w *NotificationWorker) handleFollowCreated(ctx context.Context, event queue.Event) error {
	var data queue.FollowEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("failed to unmarshal follow event data: %w", err)
	}

	recipientID, senderID, err := parsePair(data.FollowingID, data.FollowerID)
	if err != nil {
		return err
	}
	if recipientID == senderID {
		return nil
	}

	return w.create(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotificationFollow,
		Title:       "New follower",
		Message:     fmt.Sprintf("%s started following you", data.FollowerName),
	})
}

func (w *NotificationWorker) handlePostLiked(ctx context.Context, event queue.Event) error {
	var data queue.LikeEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("failed to unmarshal like event data: %w", err)
	}

	recipientID, senderID, err := parsePair(data.OwnerID, data.ActorID)
	if err != nil {
		return err
	}
	if recipientID == senderID {
		return nil
	}

	postID, err := uuid.Parse(data.PostID)
	if err != nil {
		return fmt.Errorf("invalid post ID: %w", err)
	}

	return w.create(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotificationLike,
		Title:       "New like",
		Message:     fmt.Sprintf("%s liked your post", data.ActorName),
		PostID:      &postID,
	})
}

func (w *NotificationWorker) handleCommentLiked(ctx context.Context, event queue.Event) error {
	var data queue.LikeEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("failed to unmarshal like event data: %w", err)
	}

	recipientID, senderID, err := parsePair(data.OwnerID, data.ActorID)
	if err != nil {
		return err
	}
	if recipientID == senderID {
		return nil
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotificationLike,
		Title:       "New like",
		Message:     fmt.Sprintf("%s liked your comment", data.ActorName),
	}
	if commentID, err := uuid.Parse(data.CommentID); err == nil {
		notification.CommentID = &commentID
	}

	return w.create(ctx, notification)
}

func (w *NotificationWorker) handleCommentCreated(ctx context.Context, event queue.Event) error {
	var data queue.CommentEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("failed to unmarshal comment event data: %w", err)
	}

	recipientID, senderID, err := parsePair(data.OwnerID, data.ActorID)
	if err != nil {
		return err
	}
	if recipientID == senderID {
		return nil
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotificationComment,
		Title:       "New comment",
		Message:     fmt.Sprintf("%s commented: %s", data.ActorName, truncate(data.Content, 80)),
	}
	if postID, err := uuid.Parse(data.PostID); err == nil {
		notification.PostID = &postID
	}
	if commentID, err := uuid.Parse(data.CommentID); err == nil {
		notification.CommentID = &commentID
	}

	return w.create(ctx, notification)
}

func (w *NotificationWorker) handleRSVPAdded(ctx context.Context, event queue.Event) error {
	var data queue.RSVPEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("failed to unmarshal rsvp event data: %w", err)
	}

	recipientID, senderID, err := parsePair(data.OrganizerID, data.ActorID)
	if err != nil {
		return err
	}
	if recipientID == senderID {
		return nil
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotificationEventRSVP,
		Title:       "New RSVP",
		Message:     fmt.Sprintf("%s is attending %s", data.ActorName, data.EventTitle),
	}
	if eventID, err := uuid.Parse(data.EventID); err == nil {
		notification.EventID = &eventID
	}

	return w.create(ctx, notification)
}

func (w *NotificationWorker) create(ctx context.Context, notification *models.Notification) error {
	if err := w.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	w.logger.WithFields(map[string]interface{}{
		"recipient_id": notification.RecipientID,
		"type":         notification.Type,
	}).Info("Notification created")

	return nil
}

func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker...")
	return w.consumer.Close()
}

func parsePair(recipient, sender string) (uuid.UUID, uuid.UUID, error) {
	recipientID, err := uuid.Parse(recipient)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid recipient ID: %w", err)
	}
	senderID, err := uuid.Parse(sender)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid sender ID: %w", err)
	}
	return recipientID, senderID, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// StoryPurger deactivates expired stories on a fixed interval. Read
// paths already filter by expiry, so the purge only reclaims rows.
type StoryPurger struct {
	storyRepo *repository.StoryRepository
	interval  time.Duration
	logger    *logger.Logger
}

func NewStoryPurger(storyRepo *repository.StoryRepository, interval time.Duration, logger *logger.Logger) *StoryPurger {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StoryPurger{
		storyRepo: storyRepo,
		interval:  interval,
		logger:    logger,
	}
}

func (p *StoryPurger) Start(ctx context.Context) {
	p.logger.Info("Starting story purger...")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := p.storyRepo.PurgeExpired(ctx, time.Now().UTC())
			if err != nil {
				p.logger.WithError(err).Error("Failed to purge expired stories")
				continue
			}
			if purged > 0 {
				p.logger.WithField("count", purged).Info("Purged expired stories")
			}
		}
	}
}
