package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Announcement struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuthorID       uuid.UUID      `json:"authorId" gorm:"type:uuid;not null;index"`
	Title          string         `json:"title" gorm:"not null"`
	Content        string         `json:"content" gorm:"type:text;not null"`
	Category       string         `json:"category" gorm:"default:general;index"`
	Priority       string         `json:"priority" gorm:"default:medium"`
	TargetAudience string         `json:"targetAudience" gorm:"default:all"`
	ViewsCount     int64          `json:"viewsCount" gorm:"default:0"`
	IsActive       bool           `json:"isActive" gorm:"default:true;index"`
	ExpiresAt      *time.Time     `json:"expiresAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt      time.Time      `json:"-"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	Author User `json:"author" gorm:"foreignKey:AuthorID"`
}

type AnnouncementView struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AnnouncementID uuid.UUID `json:"announcementId" gorm:"type:uuid;not null;uniqueIndex:idx_announcement_views_pair"`
	ViewerID       uuid.UUID `json:"viewerId" gorm:"type:uuid;not null;uniqueIndex:idx_announcement_views_pair"`
	CreatedAt      time.Time `json:"viewedAt"`
}

func (a *Announcement) OwnerID() uuid.UUID {
	return a.AuthorID
}

func (Announcement) TableName() string {
	return "announcements"
}

func (AnnouncementView) TableName() string {
	return "announcement_views"
}
