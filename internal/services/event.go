package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/policy"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/queue"
	"github.com/ppsu-social/ppsu-social/pkg/sanitize"
)

type EventService struct {
	eventRepo *repository.EventRepository
	producer  *queue.KafkaProducer
	logger    *logger.Logger
}

func NewEventService(eventRepo *repository.EventRepository, producer *queue.KafkaProducer, logger *logger.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		producer:  producer,
		logger:    logger,
	}
}

type CreateEventRequest struct {
	Title        string    `json:"title" binding:"required,min=1,max=200"`
	Description  string    `json:"description" binding:"required,min=1,max=2000"`
	Category     string    `json:"category" binding:"omitempty,oneof=academic sports cultural social workshop seminar other"`
	Location     string    `json:"location" binding:"required,min=1,max=200"`
	StartDate    time.Time `json:"startDate" binding:"required"`
	EndDate      time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
	ImageURL     string    `json:"imageUrl" binding:"omitempty,url"`
	MaxAttendees int64     `json:"maxAttendees" binding:"omitempty,min=1"`
	Requirements string    `json:"requirements" binding:"omitempty,max=500"`
	ContactInfo  string    `json:"contactInfo" binding:"omitempty,max=200"`
}

type UpdateEventRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description  *string    `json:"description" binding:"omitempty,min=1,max=2000"`
	Category     *string    `json:"category" binding:"omitempty,oneof=academic sports cultural social workshop seminar other"`
	Location     *string    `json:"location" binding:"omitempty,min=1,max=200"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	ImageURL     *string    `json:"imageUrl" binding:"omitempty,url"`
	MaxAttendees *int64     `json:"maxAttendees" binding:"omitempty,min=1"`
	Requirements *string    `json:"requirements" binding:"omitempty,max=500"`
	ContactInfo  *string    `json:"contactInfo" binding:"omitempty,max=200"`
}

type RSVPResult struct {
	Attending      bool  `json:"isAttending"`
	AttendeesCount int64 `json:"attendeesCount"`
}

func (s *EventService) Create(ctx context.Context, userID string, req *CreateEventRequest) (*models.Event, error) {
	organizerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	category := req.Category
	if category == "" {
		category = "social"
	}

	event := &models.Event{
		OrganizerID:  organizerID,
		Title:        sanitize.Text(req.Title),
		Description:  sanitize.Text(req.Description),
		Category:     category,
		Location:     sanitize.Text(req.Location),
		StartDate:    req.StartDate.UTC(),
		EndDate:      req.EndDate.UTC(),
		ImageURL:     req.ImageURL,
		MaxAttendees: req.MaxAttendees,
		IsPublic:     true,
		Requirements: sanitize.Text(req.Requirements),
		ContactInfo:  sanitize.Text(req.ContactInfo),
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"event_id": event.ID,
		"user_id":  userID,
	}).Info("Event created successfully")

	return event, nil
}

func (s *EventService) Get(ctx context.Context, eventID string) (*models.Event, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, apperr.Validation("Invalid event ID")
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperr.NotFound("Event not found")
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context, category string, upcoming bool, page, limit int) ([]*models.Event, error) {
	filter := repository.EventFilter{Category: category}
	if upcoming {
		now := time.Now().UTC()
		filter.UpcomingFrom = &now
	}

	offset := pageOffset(page, limit)
	return s.eventRepo.List(ctx, filter, offset, limit)
}

func (s *EventService) ByOrganizer(ctx context.Context, organizerID string, page, limit int) ([]*models.Event, error) {
	id, err := uuid.Parse(organizerID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	offset := pageOffset(page, limit)
	return s.eventRepo.GetByOrganizer(ctx, id, offset, limit)
}

func (s *EventService) Update(ctx context.Context, eventID, userID string, req *UpdateEventRequest) (*models.Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	principal, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}
	if !policy.OwnsResource(principal, event) {
		return nil, apperr.Forbidden("Not authorized to update this event")
	}

	if req.Title != nil {
		event.Title = sanitize.Text(*req.Title)
	}
	if req.Description != nil {
		event.Description = sanitize.Text(*req.Description)
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Location != nil {
		event.Location = sanitize.Text(*req.Location)
	}
	if req.StartDate != nil {
		event.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		event.EndDate = req.EndDate.UTC()
	}
	if event.EndDate.Before(event.StartDate) {
		return nil, apperr.Validation("Invalid input",
			apperr.FieldError{Field: "endDate", Message: "end date must be after start date"})
	}
	if req.ImageURL != nil {
		event.ImageURL = *req.ImageURL
	}
	if req.MaxAttendees != nil {
		event.MaxAttendees = *req.MaxAttendees
	}
	if req.Requirements != nil {
		event.Requirements = sanitize.Text(*req.Requirements)
	}
	if req.ContactInfo != nil {
		event.ContactInfo = sanitize.Text(*req.ContactInfo)
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Cancel(ctx context.Context, eventID, userID string) error {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return err
	}

	principal, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}
	if !policy.OwnsResource(principal, event) {
		return apperr.Forbidden("Not authorized to cancel this event")
	}

	if err := s.eventRepo.Cancel(ctx, event.ID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"event_id": eventID,
		"user_id":  userID,
	}).Info("Event cancelled")

	return nil
}

// ToggleRSVP flips the caller's attendance. Capacity and cancellation
// are enforced atomically with the toggle.
func (s *EventService) ToggleRSVP(ctx context.Context, eventID, userID, userName string) (*RSVPResult, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsCancelled {
		return nil, apperr.Validation("Event is cancelled")
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	attending, count, err := s.eventRepo.ToggleRSVP(ctx, event.ID, userUUID)
	if err != nil {
		if errors.Is(err, repository.ErrEventFull) {
			return nil, apperr.Validation("Event is full")
		}
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Event not found")
		}
		return nil, err
	}

	if attending && event.OrganizerID != userUUID {
		rsvpEvent, err := queue.NewEvent(queue.EventEventRSVPAdded, queue.RSVPEventData{
			EventID:     eventID,
			OrganizerID: event.OrganizerID.String(),
			ActorID:     userID,
			ActorName:   userName,
			EventTitle:  event.Title,
		})
		if err == nil {
			if err := s.producer.Publish(ctx, userID, rsvpEvent); err != nil {
				s.logger.WithError(err).Error("Failed to publish rsvp event")
			}
		}
	}

	return &RSVPResult{Attending: attending, AttendeesCount: count}, nil
}

func (s *EventService) Attendees(ctx context.Context, eventID string, offset, limit int) ([]models.UserSummary, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, apperr.Validation("Invalid event ID")
	}

	rsvps, err := s.eventRepo.Attendees(ctx, id, offset, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(rsvps))
	for _, r := range rsvps {
		summaries = append(summaries, r.User.Summary())
	}
	return summaries, nil
}
