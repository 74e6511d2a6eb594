package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/queue"
)

type LikeService struct {
	postRepo    *repository.PostRepository
	commentRepo *repository.CommentRepository
	likeRepo    *repository.LikeRepository
	producer    *queue.KafkaProducer
	logger      *logger.Logger
}

func NewLikeService(
	postRepo *repository.PostRepository,
	commentRepo *repository.CommentRepository,
	likeRepo *repository.LikeRepository,
	producer *queue.KafkaProducer,
	logger *logger.Logger,
) *LikeService {
	return &LikeService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		producer:    producer,
		logger:      logger,
	}
}

type ToggleResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

// TogglePostLike flips the caller's like on a post. The edge and counter
// change in one atomic operation; toggling twice restores the original
// state.
func (s *LikeService) TogglePostLike(ctx context.Context, userID, userName, postID string) (*ToggleResult, error) {
	userUUID, err := uuid.Parse(userID)
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

	liked, likesCount, err := s.likeRepo.TogglePost(ctx, userUUID, postUUID)
	if err != nil {
		return nil, err
	}

	if liked {
		s.publishLike(ctx, queue.EventPostLiked, queue.LikeEventData{
			PostID:    postID,
			OwnerID:   post.AuthorID.String(),
			ActorID:   userID,
			ActorName: userName,
		})
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"post_id": postID,
		"liked":   liked,
	}).Info("Post like toggled")

	return &ToggleResult{Liked: liked, LikesCount: likesCount}, nil
}

func (s *LikeService) ToggleCommentLike(ctx context.Context, userID, userName, commentID string) (*ToggleResult, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}
	commentUUID, err := uuid.Parse(commentID)
	if err != nil {
		return nil, apperr.Validation("Invalid comment ID")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentUUID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperr.NotFound("Comment not found")
	}

	liked, likesCount, err := s.likeRepo.ToggleComment(ctx, userUUID, commentUUID)
	if err != nil {
		return nil, err
	}

	if liked {
		s.publishLike(ctx, queue.EventCommentLiked, queue.LikeEventData{
			PostID:    comment.PostID.String(),
			CommentID: commentID,
			OwnerID:   comment.AuthorID.String(),
			ActorID:   userID,
			ActorName: userName,
		})
	}

	return &ToggleResult{Liked: liked, LikesCount: likesCount}, nil
}

func (s *LikeService) PostLikers(ctx context.Context, postID string, offset, limit int) ([]models.UserSummary, error) {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperr.Validation("Invalid post ID")
	}

	likes, err := s.likeRepo.GetByPostID(ctx, postUUID, offset, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(likes))
	for _, like := range likes {
		summaries = append(summaries, like.User.Summary())
	}
	return summaries, nil
}

func (s *LikeService) publishLike(ctx context.Context, eventType queue.EventType, data queue.LikeEventData) {
	event, err := queue.NewEvent(eventType, data)
	if err != nil {
		return
	}
	if err := s.producer.Publish(ctx, data.ActorID, event); err != nil {
		s.logger.WithError(err).Error("Failed to publish like event")
	}
}
