package services

import (
	"context"
	"strings"
	"time"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/models"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/cache"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
)

const (
	recentSearchKeyPrefix = "search:recent:"
	recentSearchCap       = 10
	recentSearchTTL       = 30 * 24 * time.Hour
)

type SearchService struct {
	userRepo    *repository.UserRepository
	postRepo    *repository.PostRepository
	eventRepo   *repository.EventRepository
	hashtagRepo *repository.HashtagRepository
	cache       *cache.RedisClient
	logger      *logger.Logger
}

func NewSearchService(
	userRepo *repository.UserRepository,
	postRepo *repository.PostRepository,
	eventRepo *repository.EventRepository,
	hashtagRepo *repository.HashtagRepository,
	cache *cache.RedisClient,
	logger *logger.Logger,
) *SearchService {
	return &SearchService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		eventRepo:   eventRepo,
		hashtagRepo: hashtagRepo,
		cache:       cache,
		logger:      logger,
	}
}

type SearchResults struct {
	Users    []*models.User    `json:"users,omitempty"`
	Posts    []*models.Post    `json:"posts,omitempty"`
	Events   []*models.Event   `json:"events,omitempty"`
	Hashtags []*models.Hashtag `json:"hashtags,omitempty"`
	Total    int               `json:"total"`
}

type TrendingHashtag struct {
	Name       string `json:"name"`
	PostsCount int64  `json:"postsCount"`
}

// Search runs a query across the requested result types. searchType is one
// of "all", "users", "posts", "events", "hashtags".
func (s *SearchService) Search(ctx context.Context, userID, query, searchType string, page, limit int) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Invalid input",
			apperr.FieldError{Field: "q", Message: "search query is required"})
	}

	offset := pageOffset(page, limit)
	results := &SearchResults{}

	if searchType == "all" || searchType == "users" {
		users, err := s.userRepo.Search(ctx, query, offset, limit)
		if err != nil {
			return nil, err
		}
		results.Users = users
		results.Total += len(users)
	}

	if searchType == "all" || searchType == "posts" {
		posts, err := s.postRepo.Search(ctx, query, offset, limit)
		if err != nil {
			return nil, err
		}
		results.Posts = posts
		results.Total += len(posts)
	}

	if searchType == "all" || searchType == "events" {
		events, err := s.eventRepo.Search(ctx, query, offset, limit)
		if err != nil {
			return nil, err
		}
		results.Events = events
		results.Total += len(events)
	}

	if searchType == "all" || searchType == "hashtags" {
		hashtags, err := s.hashtagRepo.Search(ctx, strings.TrimPrefix(query, "#"), offset, limit)
		if err != nil {
			return nil, err
		}
		results.Hashtags = hashtags
		results.Total += len(hashtags)
	}

	if userID != "" {
		s.recordRecent(ctx, userID, query)
	}

	return results, nil
}

// Trending reads the hashtag leaderboard from Redis and falls back to the
// database counters when Redis is unavailable or empty.
func (s *SearchService) Trending(ctx context.Context, limit int) ([]TrendingHashtag, error) {
	members, err := s.cache.ZRevRangeWithScores(ctx, trendingHashtagsKey, 0, int64(limit-1))
	if err == nil && len(members) > 0 {
		trending := make([]TrendingHashtag, 0, len(members))
		for _, m := range members {
			name, ok := m.Member.(string)
			if !ok {
				continue
			}
			trending = append(trending, TrendingHashtag{Name: name, PostsCount: int64(m.Score)})
		}
		return trending, nil
	}
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read trending hashtags from cache")
	}

	hashtags, err := s.hashtagRepo.Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	trending := make([]TrendingHashtag, 0, len(hashtags))
	for _, h := range hashtags {
		trending = append(trending, TrendingHashtag{Name: h.Name, PostsCount: h.PostsCount})
	}
	return trending, nil
}

func (s *SearchService) RecentSearches(ctx context.Context, userID string) ([]string, error) {
	recent, err := s.cache.LRange(ctx, recentSearchKeyPrefix+userID, 0, recentSearchCap-1)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read recent searches")
		return []string{}, nil
	}
	return recent, nil
}

func (s *SearchService) ClearRecentSearches(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, recentSearchKeyPrefix+userID)
}

// recordRecent is best effort; a cache failure never fails the search.
// Each write refreshes the list TTL, so inactive accounts stop holding
// redis keys.
func (s *SearchService) recordRecent(ctx context.Context, userID, query string) {
	key := recentSearchKeyPrefix + userID
	if err := s.cache.LPushCapped(ctx, key, recentSearchCap, query); err != nil {
		s.logger.WithError(err).Warn("Failed to record recent search")
		return
	}
	if err := s.cache.Expire(ctx, key, recentSearchTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to refresh recent search ttl")
	}
}
