package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppsu-social/ppsu-social/internal/models"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreateWithCount inserts the post (and media rows), bumps the author's
// postsCount and upserts hashtag usage, all in one transaction.
func (r *PostRepository) CreateWithCount(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", post.AuthorID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1")).Error; err != nil {
			return err
		}
		return upsertHashtags(tx, post.Tags, post.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Media").
		First(&post, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// DeleteWithCount soft-deletes the post and its comments, removes the like
// edges and decrements the author's postsCount in one transaction.
func (r *PostRepository) DeleteWithCount(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Post{}, "id = ?", post.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, "post_id = ?", post.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Like{}, "post_id = ?", post.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND posts_count > 0", post.AuthorID).
			UpdateColumn("posts_count", gorm.Expr("posts_count - 1")).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// PublicFeed lists public posts newest first. Cursor paging keys on
// (created_at, id); offset is the compatibility fallback.
func (r *PostRepository) PublicFeed(ctx context.Context, page Page) ([]*models.Post, error) {
	var posts []*models.Post
	db := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Media").
		Where("is_public = ?", true)

	db = applyFeedPage(db, page)

	if err := db.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get public feed: %w", err)
	}
	return posts, nil
}

// FeedByAuthors lists public posts authored by the given id set, newest
// first. Used by the following feed after resolving follow edges.
func (r *PostRepository) FeedByAuthors(ctx context.Context, authorIDs []uuid.UUID, page Page) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}

	var posts []*models.Post
	db := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Media").
		Where("author_id IN ? AND is_public = ?", authorIDs, true)

	db = applyFeedPage(db, page)

	if err := db.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get following feed: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) GetByAuthor(ctx context.Context, authorID uuid.UUID, publicOnly bool, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	db := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Media").
		Where("author_id = ?", authorID)
	if publicOnly {
		db = db.Where("is_public = ?", true)
	}

	if err := db.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts by author: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Search(ctx context.Context, query string, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	db := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Media").
		Where("is_public = ?", true)

	if query != "" {
		db = db.Where("caption ILIKE ?", "%"+query+"%")
	}

	if err := db.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return posts, nil
}

func applyFeedPage(db *gorm.DB, page Page) *gorm.DB {
	if page.Before != nil {
		db = db.Where("(created_at, id) < (?, ?)", page.Before.CreatedAt, page.Before.ID)
	} else if page.Offset > 0 {
		db = db.Offset(page.Offset)
	}
	return db.Order("created_at DESC, id DESC").Limit(page.Limit)
}
