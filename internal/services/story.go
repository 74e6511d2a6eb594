package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/config"
	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/policy"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/queue"
	"github.com/ppsu-social/ppsu-social/pkg/sanitize"
)

type StoryService struct {
	storyRepo  *repository.StoryRepository
	followRepo *repository.FollowRepository
	producer   *queue.KafkaProducer
	config     *config.FeedConfig
	logger     *logger.Logger
}

func NewStoryService(
	storyRepo *repository.StoryRepository,
	followRepo *repository.FollowRepository,
	producer *queue.KafkaProducer,
	config *config.FeedConfig,
	logger *logger.Logger,
) *StoryService {
	return &StoryService{
		storyRepo:  storyRepo,
		followRepo: followRepo,
		producer:   producer,
		config:     config,
		logger:     logger,
	}
}

type CreateStoryRequest struct {
	Content  string `json:"content" binding:"required,min=1,max=500"`
	Type     string `json:"type" binding:"omitempty,oneof=text image video"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url"`
	VideoURL string `json:"videoUrl" binding:"omitempty,url"`
}

// AuthorStories groups a story feed page by author, the shape story
// trays render from.
type AuthorStories struct {
	Author  models.UserSummary `json:"author"`
	Stories []*models.Story    `json:"stories"`
}

func (s *StoryService) Create(ctx context.Context, userID string, req *CreateStoryRequest) (*models.Story, error) {
	authorID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	storyType := req.Type
	if storyType == "" {
		storyType = "text"
	}
	if storyType == "image" && req.ImageURL == "" {
		return nil, apperr.Validation("Invalid input",
			apperr.FieldError{Field: "imageUrl", Message: "image URL is required for image stories"})
	}
	if storyType == "video" && req.VideoURL == "" {
		return nil, apperr.Validation("Invalid input",
			apperr.FieldError{Field: "videoUrl", Message: "video URL is required for video stories"})
	}

	now := time.Now().UTC()
	story := &models.Story{
		AuthorID:  authorID,
		Content:   sanitize.Text(req.Content),
		Type:      storyType,
		ImageURL:  req.ImageURL,
		VideoURL:  req.VideoURL,
		IsActive:  true,
		ExpiresAt: now.Add(s.config.StoryLifetime),
		CreatedAt: now,
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"story_id": story.ID,
		"user_id":  userID,
	}).Info("Story created successfully")

	return story, nil
}

// Feed returns unexpired stories from the caller's follow set plus their
// own, grouped by author.
func (s *StoryService) Feed(ctx context.Context, userID string, page, limit int) ([]*AuthorStories, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	authorIDs, err := s.followRepo.FollowingIDs(ctx, id, s.config.FollowingIDCap)
	if err != nil {
		return nil, err
	}
	authorIDs = append(authorIDs, id)

	offset := pageOffset(page, limit)
	stories, err := s.storyRepo.ActiveByAuthors(ctx, authorIDs, time.Now().UTC(), offset, limit)
	if err != nil {
		return nil, err
	}

	return groupByAuthor(stories), nil
}

func (s *StoryService) UserStories(ctx context.Context, userID string) ([]*models.Story, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}
	return s.storyRepo.ActiveByAuthor(ctx, id, time.Now().UTC())
}

// MarkViewed records the view once per viewer; repeat views are no-ops.
func (s *StoryService) MarkViewed(ctx context.Context, storyID, viewerID string) error {
	id, err := uuid.Parse(storyID)
	if err != nil {
		return apperr.Validation("Invalid story ID")
	}
	viewerUUID, err := uuid.Parse(viewerID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}

	story, err := s.storyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if story == nil || !story.IsActive || story.Expired(time.Now().UTC()) {
		return apperr.NotFound("Story not found")
	}

	if err := s.storyRepo.MarkViewed(ctx, id, viewerUUID); err != nil {
		return err
	}

	if story.AuthorID != viewerUUID {
		event, err := queue.NewEvent(queue.EventStoryViewed, queue.StoryViewEventData{
			StoryID:  storyID,
			OwnerID:  story.AuthorID.String(),
			ViewerID: viewerID,
		})
		if err == nil {
			if err := s.producer.Publish(ctx, viewerID, event); err != nil {
				s.logger.WithError(err).Error("Failed to publish story viewed event")
			}
		}
	}

	return nil
}

// Viewers lists who saw a story; only its author may ask.
func (s *StoryService) Viewers(ctx context.Context, storyID, userID string, offset, limit int) ([]models.UserSummary, int64, error) {
	id, err := uuid.Parse(storyID)
	if err != nil {
		return nil, 0, apperr.Validation("Invalid story ID")
	}
	principal, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, apperr.Validation("Invalid user ID")
	}

	story, err := s.storyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if story == nil {
		return nil, 0, apperr.NotFound("Story not found")
	}

	if !policy.OwnsResource(principal, story) {
		return nil, 0, apperr.Forbidden("Not authorized to view story viewers")
	}

	views, err := s.storyRepo.Viewers(ctx, id, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]models.UserSummary, 0, len(views))
	for _, v := range views {
		summaries = append(summaries, v.Viewer.Summary())
	}
	return summaries, story.ViewsCount, nil
}

func (s *StoryService) Delete(ctx context.Context, storyID, userID string) error {
	id, err := uuid.Parse(storyID)
	if err != nil {
		return apperr.Validation("Invalid story ID")
	}
	principal, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}

	story, err := s.storyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if story == nil {
		return apperr.NotFound("Story not found")
	}

	if !policy.OwnsResource(principal, story) {
		return apperr.Forbidden("Not authorized to delete this story")
	}

	return s.storyRepo.Deactivate(ctx, id)
}

func groupByAuthor(stories []*models.Story) []*AuthorStories {
	grouped := make([]*AuthorStories, 0)
	byAuthor := make(map[uuid.UUID]*AuthorStories)

	for _, story := range stories {
		group, ok := byAuthor[story.AuthorID]
		if !ok {
			group = &AuthorStories{Author: story.Author.Summary()}
			byAuthor[story.AuthorID] = group
			grouped = append(grouped, group)
		}
		group.Stories = append(group.Stories, story)
	}
	return grouped
}
