package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/config"
	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/queue"
	"github.com/ppsu-social/ppsu-social/pkg/sanitize"
)

type UserService struct {
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	authCfg    *config.AuthConfig
	producer   *queue.KafkaProducer
	logger     *logger.Logger
}

func NewUserService(
	userRepo *repository.UserRepository,
	followRepo *repository.FollowRepository,
	authCfg *config.AuthConfig,
	producer *queue.KafkaProducer,
	logger *logger.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		authCfg:    authCfg,
		producer:   producer,
		logger:     logger,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=2,max=50"`
	Bio        *string `json:"bio" binding:"omitempty,max=150"`
	AvatarURL  *string `json:"avatarUrl" binding:"omitempty,url"`
	CoverURL   *string `json:"coverUrl" binding:"omitempty,url"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	Location   *string `json:"location" binding:"omitempty,max=100"`
	Website    *string `json:"website" binding:"omitempty,max=200"`
}

// Profile is a user as seen by a particular viewer.
type Profile struct {
	models.User
	IsFollowing   bool `json:"isFollowing"`
	IsCurrentUser bool `json:"isCurrentUser"`
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if !s.authCfg.EmailDomainAllowed(req.Email) {
		return nil, apperr.Forbidden("Registration restricted to PPSU email domains.")
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User already exists with this email.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     sanitize.Text(req.Name),
		Email:    req.Email,
		Password: string(hashed),
	}

	// The precheck cannot stop two concurrent registrations; the unique
	// index decides the race.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, apperr.Conflict("User already exists with this email.")
		}
		return nil, err
	}

	event, err := queue.NewEvent(queue.EventUserRegistered, map[string]string{
		"userId": user.ID.String(),
		"name":   user.Name,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, user.ID.String(), event); err != nil {
			s.logger.WithError(err).Error("Failed to publish user registered event")
		}
	}

	s.logger.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	if !s.authCfg.EmailDomainAllowed(req.Email) {
		return nil, apperr.Forbidden("Login restricted to PPSU email domains.")
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.Unauthenticated("Invalid credentials.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthenticated("Invalid credentials.")
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in successfully")
	return user, nil
}

// GetProfile resolves a user along with the viewer's relationship to
// them. viewerID is empty for anonymous requests.
func (s *UserService) GetProfile(ctx context.Context, userID, viewerID string) (*Profile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	profile := &Profile{User: *user}

	if viewerID != "" {
		viewerUUID, err := uuid.Parse(viewerID)
		if err == nil {
			if viewerUUID == user.ID {
				profile.IsCurrentUser = true
			} else {
				following, err := s.followRepo.IsFollowing(ctx, viewerUUID, user.ID)
				if err != nil {
					return nil, err
				}
				profile.IsFollowing = following
			}
		}
	}

	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	if req.Name != nil {
		user.Name = sanitize.Text(*req.Name)
	}
	if req.Bio != nil {
		user.Bio = sanitize.Text(*req.Bio)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.CoverURL != nil {
		user.CoverURL = *req.CoverURL
	}
	if req.Department != nil {
		user.Department = sanitize.Text(*req.Department)
	}
	if req.Location != nil {
		user.Location = sanitize.Text(*req.Location)
	}
	if req.Website != nil {
		user.Website = *req.Website
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("Profile updated successfully")
	return user, nil
}

// Follow creates the directed edge follower -> target. Self-follow is a
// validation error, a duplicate edge a conflict; the edge insert and both
// counter updates commit atomically.
func (s *UserService) Follow(ctx context.Context, followerID, followerName, targetID string) error {
	followerUUID, err := uuid.Parse(followerID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}
	targetUUID, err := uuid.Parse(targetID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}

	if followerUUID == targetUUID {
		return apperr.Validation("Cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetUUID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFound("User not found")
	}

	follow, err := s.followRepo.CreateWithCounters(ctx, followerUUID, targetUUID)
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			return apperr.Conflict("Already following this user")
		}
		return err
	}

	event, err := queue.NewEvent(queue.EventFollowCreated, queue.FollowEventData{
		FollowerID:   followerID,
		FollowerName: followerName,
		FollowingID:  targetID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, followerID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish follow created event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  followerID,
		"following_id": targetID,
		"follow_id":    follow.ID,
	}).Info("User followed successfully")

	return nil
}

// Unfollow removes the edge; a missing edge is a not-found error and
// leaves the counters untouched.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID string) error {
	followerUUID, err := uuid.Parse(followerID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}
	targetUUID, err := uuid.Parse(targetID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}

	if err := s.followRepo.DeleteWithCounters(ctx, followerUUID, targetUUID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.NotFound("Not following this user")
		}
		return err
	}

	event, err := queue.NewEvent(queue.EventFollowDeleted, queue.FollowEventData{
		FollowerID:  followerID,
		FollowingID: targetID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, followerID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish follow deleted event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  followerID,
		"following_id": targetID,
	}).Info("User unfollowed successfully")

	return nil
}

func (s *UserService) GetFollowers(ctx context.Context, userID string, offset, limit int) ([]models.UserSummary, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	follows, err := s.followRepo.GetFollowers(ctx, id, offset, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(follows))
	for _, f := range follows {
		summary := f.Follower.Summary()
		summary.FollowedAt = f.CreatedAt
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *UserService) GetFollowing(ctx context.Context, userID string, offset, limit int) ([]models.UserSummary, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	follows, err := s.followRepo.GetFollowing(ctx, id, offset, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(follows))
	for _, f := range follows {
		summary := f.Following.Summary()
		summary.FollowedAt = f.CreatedAt
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
