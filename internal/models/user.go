package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

type User struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string         `json:"name" gorm:"not null"`
	Email          string         `json:"email" gorm:"uniqueIndex;not null"`
	Password       string         `json:"-" gorm:"not null"`
	AvatarURL      string         `json:"avatarUrl"`
	CoverURL       string         `json:"coverUrl"`
	Bio            string         `json:"bio"`
	Role           string         `json:"role" gorm:"default:student"`
	Department     string         `json:"department"`
	Location       string         `json:"location"`
	Website        string         `json:"website"`
	IsVerified     bool           `json:"isVerified" gorm:"default:false"`
	FollowersCount int64          `json:"followersCount" gorm:"default:0"`
	FollowingCount int64          `json:"followingCount" gorm:"default:0"`
	PostsCount     int64          `json:"postsCount" gorm:"default:0"`
	CreatedAt      time.Time      `json:"joinedDate"`
	UpdatedAt      time.Time      `json:"-"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Follow is a directed edge in the social graph. The edge table is the
// ground truth; the per-user counters are derived and adjusted in the same
// transaction as every edge insert or delete.
type Follow struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FollowerID  uuid.UUID `json:"followerId" gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index"`
	FollowingID uuid.UUID `json:"followingId" gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index"`
	CreatedAt   time.Time `json:"createdAt"`

	Follower  User `json:"-" gorm:"foreignKey:FollowerID"`
	Following User `json:"-" gorm:"foreignKey:FollowingID"`
}

// UserSummary is the public profile slice embedded in follower and
// following listings.
type UserSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	AvatarURL      string    `json:"avatarUrl"`
	Bio            string    `json:"bio"`
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	FollowedAt     time.Time `json:"followedAt"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		AvatarURL:      u.AvatarURL,
		Bio:            u.Bio,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
	}
}

func (User) TableName() string {
	return "users"
}

func (Follow) TableName() string {
	return "follows"
}
