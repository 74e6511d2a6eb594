package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ppsu-social/ppsu-social/internal/models"
)

// ErrEventFull is returned when an RSVP would exceed maxAttendees.
var ErrEventFull = errors.New("event is full")

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).
		Preload("Organizer").
		First(&event, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

type EventFilter struct {
	Category     string
	UpcomingFrom *time.Time
}

func (r *EventRepository) List(ctx context.Context, filter EventFilter, offset, limit int) ([]*models.Event, error) {
	var events []*models.Event
	db := r.db.WithContext(ctx).
		Preload("Organizer").
		Where("is_public = ? AND is_cancelled = ?", true, false)

	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.UpcomingFrom != nil {
		db = db.Where("start_date >= ?", *filter.UpcomingFrom)
	}

	if err := db.Order("start_date ASC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) GetByOrganizer(ctx context.Context, organizerID uuid.UUID, offset, limit int) ([]*models.Event, error) {
	var events []*models.Event
	if err := r.db.WithContext(ctx).
		Preload("Organizer").
		Where("organizer_id = ?", organizerID).
		Order("start_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get events by organizer: %w", err)
	}
	return events, nil
}

// Update persists the organizer-editable fields. attendeesCount is
// derived from the rsvp edge table and never written here.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).
		Model(event).
		Select("title", "description", "category", "location", "start_date", "end_date",
			"image_url", "max_attendees", "requirements", "contact_info", "updated_at").
		Updates(event).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

func (r *EventRepository) Cancel(ctx context.Context, eventID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("is_cancelled", true).Error; err != nil {
		return fmt.Errorf("failed to cancel event: %w", err)
	}
	return nil
}

// ToggleRSVP flips the attendance edge and adjusts attendeesCount under a
// row lock on the event, so the capacity check and the toggle are atomic
// against concurrent RSVPs.
func (r *EventRepository) ToggleRSVP(ctx context.Context, eventID, userID uuid.UUID) (attending bool, attendeesCount int64, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", eventID).Error; err != nil {
			return err
		}

		res := tx.Where("event_id = ? AND user_id = ?", eventID, userID).
			Delete(&models.EventRSVP{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			attending = false
			attendeesCount = event.AttendeesCount - 1
			if attendeesCount < 0 {
				attendeesCount = 0
			}
		} else {
			if event.MaxAttendees > 0 && event.AttendeesCount >= event.MaxAttendees {
				return ErrEventFull
			}
			if err := tx.Create(&models.EventRSVP{EventID: eventID, UserID: userID}).Error; err != nil {
				return err
			}
			attending = true
			attendeesCount = event.AttendeesCount + 1
		}

		return tx.Model(&models.Event{}).
			Where("id = ?", eventID).
			UpdateColumn("attendees_count", attendeesCount).Error
	})
	if err != nil {
		if errors.Is(err, ErrEventFull) || err == gorm.ErrRecordNotFound {
			return false, 0, err
		}
		return false, 0, fmt.Errorf("failed to toggle rsvp: %w", err)
	}
	return attending, attendeesCount, nil
}

func (r *EventRepository) Attendees(ctx context.Context, eventID uuid.UUID, offset, limit int) ([]*models.EventRSVP, error) {
	var rsvps []*models.EventRSVP
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&rsvps).Error; err != nil {
		return nil, fmt.Errorf("failed to get attendees: %w", err)
	}
	return rsvps, nil
}

func (r *EventRepository) Search(ctx context.Context, query string, offset, limit int) ([]*models.Event, error) {
	var events []*models.Event
	db := r.db.WithContext(ctx).
		Preload("Organizer").
		Where("is_public = ? AND is_cancelled = ?", true, false)

	if query != "" {
		pattern := "%" + query + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ? OR location ILIKE ?", pattern, pattern, pattern)
	}

	if err := db.Order("start_date ASC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	return events, nil
}
