package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/config"
	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/policy"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/cache"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/queue"
	"github.com/ppsu-social/ppsu-social/pkg/sanitize"
)

const (
	trendingHashtagsKey = "hashtags:trending"

	// publicFeedCacheKey holds the default first page of the public feed,
	// the page every client requests on open.
	publicFeedCacheKey = "feed:public:firstpage"
)

type FeedService struct {
	postRepo    *repository.PostRepository
	followRepo  *repository.FollowRepository
	likeRepo    *repository.LikeRepository
	hashtagRepo *repository.HashtagRepository
	cache       *cache.RedisClient
	producer    *queue.KafkaProducer
	config      *config.FeedConfig
	logger      *logger.Logger
}

func NewFeedService(
	postRepo *repository.PostRepository,
	followRepo *repository.FollowRepository,
	likeRepo *repository.LikeRepository,
	hashtagRepo *repository.HashtagRepository,
	cache *cache.RedisClient,
	producer *queue.KafkaProducer,
	config *config.FeedConfig,
	logger *logger.Logger,
) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		hashtagRepo: hashtagRepo,
		cache:       cache,
		producer:    producer,
		config:      config,
		logger:      logger,
	}
}

type MediaInput struct {
	Type      string `json:"type" binding:"required,oneof=image video"`
	URL       string `json:"url" binding:"required,url"`
	Thumbnail string `json:"thumbnail" binding:"omitempty,url"`
	Duration  int    `json:"duration" binding:"omitempty,min=0"`
}

type CreatePostRequest struct {
	Caption  string       `json:"caption" binding:"max=500"`
	Media    []MediaInput `json:"media" binding:"omitempty,max=10,dive"`
	Location string       `json:"location" binding:"omitempty,max=200"`
	IsPublic *bool        `json:"isPublic"`
}

// PostView is a post annotated with the viewer's like state.
type PostView struct {
	*models.Post
	Liked bool `json:"liked"`
}

type FeedResponse struct {
	Posts      []*PostView `json:"posts"`
	NextCursor string      `json:"nextCursor,omitempty"`
	HasMore    bool        `json:"hasMore"`
}

func (s *FeedService) CreatePost(ctx context.Context, userID, userName string, req *CreatePostRequest) (*models.Post, error) {
	authorID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	caption := sanitize.Text(req.Caption)
	if caption == "" && len(req.Media) == 0 {
		return nil, apperr.Validation("Invalid input",
			apperr.FieldError{Field: "caption", Message: "caption or media is required"})
	}

	post := &models.Post{
		AuthorID:  authorID,
		Caption:   caption,
		PostType:  postType(req.Media),
		Location:  sanitize.Text(req.Location),
		Tags:      ExtractHashtags(caption),
		IsPublic:  true,
		CreatedAt: time.Now().UTC(),
	}
	if req.IsPublic != nil {
		post.IsPublic = *req.IsPublic
	}
	for _, m := range req.Media {
		post.Media = append(post.Media, models.PostMedia{
			Type:      m.Type,
			URL:       m.URL,
			Thumbnail: m.Thumbnail,
			Duration:  m.Duration,
		})
	}

	if err := s.postRepo.CreateWithCount(ctx, post); err != nil {
		return nil, err
	}

	if post.IsPublic {
		s.invalidatePublicFeed(ctx)
	}

	for _, tag := range post.Tags {
		if err := s.cache.ZIncrBy(ctx, trendingHashtagsKey, 1, tag); err != nil {
			s.logger.WithError(err).Debug("Failed to bump trending hashtag")
		}
	}

	event, err := queue.NewEvent(queue.EventPostCreated, queue.PostEventData{
		PostID:     post.ID.String(),
		AuthorID:   userID,
		AuthorName: userName,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish post created event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"user_id": userID,
	}).Info("Post created successfully")

	return post, nil
}

func (s *FeedService) GetPost(ctx context.Context, postID, viewerID string) (*PostView, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperr.Validation("Invalid post ID")
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("Post not found")
	}

	view := &PostView{Post: post}
	if viewerID != "" {
		if viewerUUID, err := uuid.Parse(viewerID); err == nil {
			liked, err := s.likeRepo.IsLiked(ctx, viewerUUID, post.ID)
			if err != nil {
				return nil, err
			}
			view.Liked = liked
		}
	}
	return view, nil
}

// DeletePost removes a post after the ownership gate. The post row, its
// comments, its like edges and the author's postsCount change together.
func (s *FeedService) DeletePost(ctx context.Context, postID, userID string) error {
	id, err := uuid.Parse(postID)
	if err != nil {
		return apperr.Validation("Invalid post ID")
	}
	principal, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validation("Invalid user ID")
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return apperr.NotFound("Post not found")
	}

	if !policy.OwnsResource(principal, post) {
		return apperr.Forbidden("Not authorized to delete this post")
	}

	if err := s.postRepo.DeleteWithCount(ctx, post); err != nil {
		return err
	}

	if post.IsPublic {
		s.invalidatePublicFeed(ctx)
	}

	event, err := queue.NewEvent(queue.EventPostDeleted, queue.PostEventData{
		PostID:   postID,
		AuthorID: userID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish post deleted event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"post_id": postID,
		"user_id": userID,
	}).Info("Post deleted successfully")

	return nil
}

// PublicFeed pages all public posts, newest first. The default first
// page is served from redis when present; like-state annotation stays
// per-viewer, so the cached rows carry no viewer data.
func (s *FeedService) PublicFeed(ctx context.Context, viewerID, cursor string, page, limit int) (*FeedResponse, error) {
	repoPage, err := s.buildPage(cursor, page, limit)
	if err != nil {
		return nil, err
	}

	cacheable := s.firstPage(cursor, repoPage)
	if cacheable {
		var cached []*models.Post
		if err := s.cache.GetJSON(ctx, publicFeedCacheKey, &cached); err == nil && len(cached) > 0 {
			return s.buildResponse(ctx, viewerID, cached, repoPage.Limit)
		}
	}

	posts, err := s.postRepo.PublicFeed(ctx, repoPage)
	if err != nil {
		return nil, err
	}

	if cacheable && len(posts) > 0 {
		if err := s.cache.SetJSON(ctx, publicFeedCacheKey, posts, s.config.CacheTTL); err != nil {
			s.logger.WithError(err).Debug("Failed to cache public feed page")
		}
	}

	return s.buildResponse(ctx, viewerID, posts, repoPage.Limit)
}

// firstPage reports whether the request addresses the default first
// page, the only page kept in redis.
func (s *FeedService) firstPage(cursor string, p repository.Page) bool {
	return cursor == "" && p.Offset == 0 && p.Limit == s.config.DefaultPageSize
}

func (s *FeedService) invalidatePublicFeed(ctx context.Context) {
	if err := s.cache.Delete(ctx, publicFeedCacheKey); err != nil {
		s.logger.WithError(err).Debug("Failed to invalidate public feed cache")
	}
}

// FollowingFeed resolves the caller's follow edges, then pages public
// posts authored by that set. The caller's own posts can never appear:
// self-follow edges are rejected at creation.
func (s *FeedService) FollowingFeed(ctx context.Context, userID, cursor string, page, limit int) (*FeedResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	repoPage, err := s.buildPage(cursor, page, limit)
	if err != nil {
		return nil, err
	}

	authorIDs, err := s.followRepo.FollowingIDs(ctx, id, s.config.FollowingIDCap)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.FeedByAuthors(ctx, authorIDs, repoPage)
	if err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, userID, posts, repoPage.Limit)
}

func (s *FeedService) UserPosts(ctx context.Context, userID, viewerID string, page, limit int) ([]*PostView, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	limit = s.clampLimit(limit)
	offset := pageOffset(page, limit)

	publicOnly := viewerID != userID
	posts, err := s.postRepo.GetByAuthor(ctx, id, publicOnly, offset, limit)
	if err != nil {
		return nil, err
	}

	resp, err := s.buildResponse(ctx, viewerID, posts, limit)
	if err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

func (s *FeedService) buildPage(cursor string, page, limit int) (repository.Page, error) {
	repoPage := repository.Page{Limit: s.clampLimit(limit)}

	if cursor != "" {
		createdAt, id, err := DecodeCursor(cursor)
		if err != nil {
			return repository.Page{}, apperr.Validation("Invalid cursor")
		}
		repoPage.Before = &repository.FeedCursor{CreatedAt: createdAt, ID: id}
		return repoPage, nil
	}

	repoPage.Offset = pageOffset(page, repoPage.Limit)
	return repoPage, nil
}

// buildResponse annotates the page with the viewer's like state and
// computes the next cursor. Fetching limit+1 rows is avoided; instead a
// full page implies more may follow.
func (s *FeedService) buildResponse(ctx context.Context, viewerID string, posts []*models.Post, limit int) (*FeedResponse, error) {
	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, &PostView{Post: p})
	}

	if viewerID != "" && len(posts) > 0 {
		if viewerUUID, err := uuid.Parse(viewerID); err == nil {
			ids := make([]uuid.UUID, 0, len(posts))
			for _, p := range posts {
				ids = append(ids, p.ID)
			}
			liked, err := s.likeRepo.LikedPostIDs(ctx, viewerUUID, ids)
			if err != nil {
				return nil, err
			}
			for _, v := range views {
				v.Liked = liked[v.ID]
			}
		}
	}

	resp := &FeedResponse{Posts: views, HasMore: len(posts) == limit}
	if resp.HasMore {
		last := posts[len(posts)-1]
		resp.NextCursor = EncodeCursor(last.CreatedAt, last.ID)
	}
	return resp, nil
}

func (s *FeedService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.config.DefaultPageSize
	}
	if limit > s.config.MaxPageSize {
		return s.config.MaxPageSize
	}
	return limit
}

func pageOffset(page, limit int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * limit
}

func postType(media []MediaInput) string {
	if len(media) == 0 {
		return "text"
	}
	if len(media) > 1 {
		return "carousel"
	}
	return media[0].Type
}

// EncodeCursor packs the (createdAt, id) sort key of the last item on a
// page into an opaque token.
func EncodeCursor(createdAt time.Time, id uuid.UUID) string {
	raw := fmt.Sprintf("%d.%s", createdAt.UnixNano(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("failed to decode cursor: %w", err)
	}

	parts := strings.SplitN(string(raw), ".", 2)
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, fmt.Errorf("malformed cursor")
	}

	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("malformed cursor timestamp: %w", err)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("malformed cursor id: %w", err)
	}

	return time.Unix(0, nanos).UTC(), id, nil
}
