package models

import (
	"time"

	"github.com/google/uuid"
)

// Story is ephemeral content. Expiry is a filter on expires_at applied by
// every read; the worker purges expired rows in the background.
type Story struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuthorID   uuid.UUID `json:"authorId" gorm:"type:uuid;not null;index:idx_stories_author_expiry"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	Type       string    `json:"type" gorm:"default:text"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	VideoURL   string    `json:"videoUrl,omitempty"`
	ViewsCount int64     `json:"viewsCount" gorm:"default:0"`
	IsActive   bool      `json:"isActive" gorm:"default:true"`
	ExpiresAt  time.Time `json:"expiresAt" gorm:"not null;index:idx_stories_author_expiry"`
	CreatedAt  time.Time `json:"createdAt"`

	Author User `json:"author" gorm:"foreignKey:AuthorID"`
}

type StoryView struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoryID   uuid.UUID `json:"storyId" gorm:"type:uuid;not null;uniqueIndex:idx_story_views_pair"`
	ViewerID  uuid.UUID `json:"viewerId" gorm:"type:uuid;not null;uniqueIndex:idx_story_views_pair"`
	CreatedAt time.Time `json:"viewedAt"`

	Viewer User `json:"viewer" gorm:"foreignKey:ViewerID"`
}

func (s *Story) OwnerID() uuid.UUID {
	return s.AuthorID
}

func (s *Story) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func (Story) TableName() string {
	return "stories"
}

func (StoryView) TableName() string {
	return "story_views"
}
