package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationFollow    NotificationType = "follow"
	NotificationLike      NotificationType = "like"
	NotificationComment   NotificationType = "comment"
	NotificationEventRSVP NotificationType = "event_rsvp"
)

// Notification rows are written by the background worker from engagement
// events; the API layer only reads and marks them.
type Notification struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecipientID uuid.UUID        `json:"recipientId" gorm:"type:uuid;not null;index:idx_notifications_recipient"`
	SenderID    uuid.UUID        `json:"senderId" gorm:"type:uuid"`
	Type        NotificationType `json:"type" gorm:"not null"`
	Title       string           `json:"title" gorm:"not null"`
	Message     string           `json:"message" gorm:"not null"`
	PostID      *uuid.UUID       `json:"postId,omitempty" gorm:"type:uuid"`
	CommentID   *uuid.UUID       `json:"commentId,omitempty" gorm:"type:uuid"`
	EventID     *uuid.UUID       `json:"eventId,omitempty" gorm:"type:uuid"`
	IsRead      bool             `json:"isRead" gorm:"default:false;index:idx_notifications_recipient"`
	ReadAt      *time.Time       `json:"readAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt" gorm:"index"`

	Sender User `json:"sender" gorm:"foreignKey:SenderID"`
}

func (Notification) TableName() string {
	return "notifications"
}
