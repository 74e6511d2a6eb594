package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuthorID      uuid.UUID      `json:"authorId" gorm:"type:uuid;not null;index"`
	Caption       string         `json:"caption" gorm:"type:text;not null"`
	PostType      string         `json:"postType" gorm:"default:text"`
	Location      string         `json:"location"`
	Tags          []string       `json:"tags" gorm:"serializer:json;type:jsonb"`
	IsPublic      bool           `json:"isPublic" gorm:"default:true;index"`
	LikesCount    int64          `json:"likesCount" gorm:"default:0"`
	CommentsCount int64          `json:"commentsCount" gorm:"default:0"`
	SharesCount   int64          `json:"sharesCount" gorm:"default:0"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time      `json:"-"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	Author User        `json:"author" gorm:"foreignKey:AuthorID"`
	Media  []PostMedia `json:"media" gorm:"foreignKey:PostID"`
}

type PostMedia struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID    uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	Type      string    `json:"type" gorm:"not null"`
	URL       string    `json:"url" gorm:"not null"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Duration  int       `json:"duration,omitempty"`
}

// Like is the membership edge behind a post's likesCount. One row per
// (user, post) pair, enforced by the composite unique index.
type Like struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_likes_pair"`
	PostID    uuid.UUID `json:"postId" gorm:"type:uuid;not null;uniqueIndex:idx_likes_pair;index"`
	CreatedAt time.Time `json:"createdAt"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

type Comment struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID     uuid.UUID      `json:"postId" gorm:"type:uuid;not null;index"`
	AuthorID   uuid.UUID      `json:"authorId" gorm:"type:uuid;not null"`
	Content    string         `json:"content" gorm:"type:text;not null"`
	LikesCount int64          `json:"likesCount" gorm:"default:0"`
	CreatedAt  time.Time      `json:"createdAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	Author User `json:"author" gorm:"foreignKey:AuthorID"`
}

type CommentLike struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_pair"`
	CommentID uuid.UUID `json:"commentId" gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_pair;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// Hashtag tracks per-tag usage so search can list tags without scanning
// posts. Rows are upserted on post creation.
type Hashtag struct {
	Name       string    `json:"name" gorm:"primary_key"`
	PostsCount int64     `json:"postsCount" gorm:"default:0"`
	LastUsedAt time.Time `json:"lastUsed"`
}

func (p *Post) OwnerID() uuid.UUID {
	return p.AuthorID
}

func (c *Comment) OwnerID() uuid.UUID {
	return c.AuthorID
}

func (Post) TableName() string {
	return "posts"
}

func (PostMedia) TableName() string {
	return "post_media"
}

func (Like) TableName() string {
	return "likes"
}

func (Comment) TableName() string {
	return "comments"
}

func (CommentLike) TableName() string {
	return "comment_likes"
}

func (Hashtag) TableName() string {
	return "hashtags"
}
