package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizerID    uuid.UUID      `json:"organizerId" gorm:"type:uuid;not null;index"`
	Title          string         `json:"title" gorm:"not null"`
	Description    string         `json:"description" gorm:"type:text;not null"`
	Category       string         `json:"category" gorm:"default:social;index"`
	Location       string         `json:"location" gorm:"not null"`
	StartDate      time.Time      `json:"startDate" gorm:"not null;index"`
	EndDate        time.Time      `json:"endDate" gorm:"not null"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	MaxAttendees   int64          `json:"maxAttendees,omitempty"`
	AttendeesCount int64          `json:"attendeesCount" gorm:"default:0"`
	IsPublic       bool           `json:"isPublic" gorm:"default:true"`
	IsCancelled    bool           `json:"isCancelled" gorm:"default:false"`
	Requirements   string         `json:"requirements,omitempty"`
	ContactInfo    string         `json:"contactInfo,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"-"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	Organizer User `json:"organizer" gorm:"foreignKey:OrganizerID"`
}

// EventRSVP is the attendance edge behind attendeesCount.
type EventRSVP struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID   uuid.UUID `json:"eventId" gorm:"type:uuid;not null;uniqueIndex:idx_event_rsvps_pair"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_event_rsvps_pair"`
	CreatedAt time.Time `json:"createdAt"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (e *Event) OwnerID() uuid.UUID {
	return e.OrganizerID
}

func (Event) TableName() string {
	return "events"
}

func (EventRSVP) TableName() string {
	return "event_rsvps"
}
