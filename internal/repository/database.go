package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ppsu-social/ppsu-social/internal/config"
	"github.com/ppsu-social/ppsu-social/internal/models"
)

type Database struct {
	*gorm.DB
}

func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	dsn := cfg.DSN()

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	return &Database{db}, nil
}

func (db *Database) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.PostMedia{},
		&models.Like{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Hashtag{},
		&models.Story{},
		&models.StoryView{},
		&models.Event{},
		&models.EventRSVP{},
		&models.Announcement{},
		&models.AnnouncementView{},
		&models.Notification{},
	)
}

func (db *Database) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// FeedCursor is the (createdAt, id) tuple feed pagination keys on.
// Cursor paging is stable under concurrent inserts, unlike offset paging.
type FeedCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Page carries pagination for list queries. When Before is set the query
// keys on the cursor; otherwise it falls back to Offset for callers still
// on the page/limit contract.
type Page struct {
	Limit  int
	Offset int
	Before *FeedCursor
}
