package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/policy"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/queue"
	"github.com/ppsu-social/ppsu-social/pkg/sanitize"
)

type CommentService struct {
	postRepo    *repository.PostRepository
	commentRepo *repository.CommentRepository
	producer    *queue.KafkaProducer
	logger      *logger.Logger
}

func NewCommentService(
	postRepo *repository.PostRepository,
	commentRepo *repository.CommentRepository,
	producer *queue.KafkaProducer,
	logger *logger.Logger,
) *CommentService {
	return &CommentService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		producer:    producer,
		logger:      logger,
	}
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=500"`
}

func (s *CommentService) Create(ctx context.Context, userID, userName, postID string, req *CreateCommentRequest) (*models.Comment, error) {
	authorID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperr.Validation("Invalid post ID")
	}

	post, err := s.postRepo.GetByID(ctx, postUUID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("Post not found")
	}

	content := sanitize.Text(req.Content)
	if content == "" {
		return nil, apperr.Validation("Invalid input",
			apperr.FieldError{Field: "content", Message: "content cannot be empty"})
	}

	comment := &models.Comment{
		PostID:   postUUID,
		AuthorID: authorID,
		Content:  content,
	}

	if err := s.commentRepo.CreateWithCount(ctx, comment); err != nil {
		return nil, err
	}

	event, err := queue.NewEvent(queue.EventCommentCreated, queue.CommentEventData{
		CommentID: comment.ID.String(),
		PostID:    postID,
		OwnerID:   post.AuthorID.String(),
		ActorID:   userID,
		ActorName: userName,
		Content:   content,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish comment created event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    postID,
		"user_id":    userID,
	}).Info("Comment created successfully")

	return comment, nil
}

func (s *CommentService) GetByPost(ctx context.Context, postID string, page, limit int) ([]*models.Comment, error) {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperr.Validation("Invalid post ID")
	}

	offset := pageOffset(page, limit)
	return s.commentRepo.GetByPostID(ctx, postUUID, offset, limit)
}

// Delete removes a comment. The comment author and the author of the
// post it sits under may both delete it.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	id, err := uuid.Parse(commentID)
	if err != nil {
		return apperr.Validation("Invalid comment ID")
	}
	principal, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment == nil {
		return apperr.NotFound("Comment not found")
	}

	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return err
	}

	var moderator uuid.UUID
	if post != nil {
		moderator = post.AuthorID
	}
	if !policy.CanModerate(principal, comment, moderator) {
		return apperr.Forbidden("Not authorized to delete this comment")
	}

	if err := s.commentRepo.DeleteWithCount(ctx, comment); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"comment_id": commentID,
		"user_id":    userID,
	}).Info("Comment deleted successfully")

	return nil
}
