package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ppsu-social/ppsu-social/internal/models"
)

// sqlCapture records the statements gorm builds so dry-run tests can
// assert on the generated SQL.
type sqlCapture struct {
	statements []string
}

func (c *sqlCapture) LogMode(gormlogger.LogLevel) gormlogger.Interface { return c }
func (c *sqlCapture) Info(context.Context, string, ...interface{})     {}
func (c *sqlCapture) Warn(context.Context, string, ...interface{})     {}
func (c *sqlCapture) Error(context.Context, string, ...interface{})    {}

func (c *sqlCapture) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	c.statements = append(c.statements, sql)
}

func (c *sqlCapture) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, c.statements)
	return c.statements[len(c.statements)-1]
}

func newDryRunDB(t *testing.T) (*gorm.DB, *sqlCapture) {
	t.Helper()
	capture := &sqlCapture{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 capture,
	})
	require.NoError(t, err)
	return db, capture
}

func TestUserUpdateLeavesCountersAlone(t *testing.T) {
	db, capture := newDryRunDB(t)
	repo := NewUserRepository(db)

	user := &models.User{
		ID:             uuid.New(),
		Name:           "Asha Patel",
		Bio:            "",
		FollowersCount: 5,
		FollowingCount: 2,
		PostsCount:     3,
	}
	require.NoError(t, repo.Update(context.Background(), user))

	stmt := capture.last(t)
	assert.Contains(t, stmt, `UPDATE "users"`)
	assert.Contains(t, stmt, `"name"`)
	assert.Contains(t, stmt, `"bio"`)
	assert.NotContains(t, stmt, "followers_count")
	assert.NotContains(t, stmt, "following_count")
	assert.NotContains(t, stmt, "posts_count")
	assert.NotContains(t, stmt, `"email"`)
	assert.NotContains(t, stmt, `"role"`)
}

func TestEventUpdateLeavesCountersAlone(t *testing.T) {
	db, capture := newDryRunDB(t)
	repo := NewEventRepository(db)

	event := &models.Event{
		ID:             uuid.New(),
		OrganizerID:    uuid.New(),
		Title:          "Tech Fest",
		Description:    "Annual tech fest",
		Location:       "Main auditorium",
		StartDate:      time.Now().Add(24 * time.Hour),
		EndDate:        time.Now().Add(26 * time.Hour),
		AttendeesCount: 12,
	}
	require.NoError(t, repo.Update(context.Background(), event))

	stmt := capture.last(t)
	assert.Contains(t, stmt, `UPDATE "events"`)
	assert.Contains(t, stmt, `"title"`)
	assert.Contains(t, stmt, `"max_attendees"`)
	assert.NotContains(t, stmt, "attendees_count")
	assert.NotContains(t, stmt, "is_cancelled")
	assert.NotContains(t, stmt, "organizer_id")
}

func TestAnnouncementUpdateLeavesCountersAlone(t *testing.T) {
	db, capture := newDryRunDB(t)
	repo := NewAnnouncementRepository(db)

	announcement := &models.Announcement{
		ID:         uuid.New(),
		AuthorID:   uuid.New(),
		Title:      "Exam schedule",
		Content:    "Midterms start Monday",
		ViewsCount: 9,
	}
	require.NoError(t, repo.Update(context.Background(), announcement))

	stmt := capture.last(t)
	assert.Contains(t, stmt, `UPDATE "announcements"`)
	assert.Contains(t, stmt, `"title"`)
	assert.Contains(t, stmt, `"priority"`)
	assert.NotContains(t, stmt, "views_count")
	assert.NotContains(t, stmt, "is_active")
	assert.NotContains(t, stmt, "author_id")
}
