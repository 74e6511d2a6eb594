package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppsu-social/ppsu-social/internal/config"
	"github.com/ppsu-social/ppsu-social/internal/repository"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	id := uuid.New()

	cursor := EncodeCursor(createdAt, id)
	require.NotEmpty(t, cursor)

	gotTime, gotID, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, id, gotID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not base64 !!!",
		"bm90LWEtY3Vyc29y",     // "not-a-cursor"
		"MTIzNDU2Nzg5MA",       // "1234567890", no id part
		"YWJjLmRlZg",           // "abc.def", bad timestamp
		"MTIzLm5vdC1hLXV1aWQ",  // "123.not-a-uuid"
	}

	for _, cursor := range cases {
		_, _, err := DecodeCursor(cursor)
		assert.Error(t, err, "cursor %q should not decode", cursor)
	}
}

func TestClampLimit(t *testing.T) {
	svc := &FeedService{config: &config.FeedConfig{DefaultPageSize: 10, MaxPageSize: 100}}

	assert.Equal(t, 10, svc.clampLimit(0))
	assert.Equal(t, 10, svc.clampLimit(-5))
	assert.Equal(t, 25, svc.clampLimit(25))
	assert.Equal(t, 100, svc.clampLimit(100))
	assert.Equal(t, 100, svc.clampLimit(500))
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(0, 10))
	assert.Equal(t, 0, pageOffset(1, 10))
	assert.Equal(t, 10, pageOffset(2, 10))
	assert.Equal(t, 90, pageOffset(10, 10))
}

func TestBuildPagePrefersCursor(t *testing.T) {
	svc := &FeedService{config: &config.FeedConfig{DefaultPageSize: 10, MaxPageSize: 100}}

	createdAt := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.New()

	page, err := svc.buildPage(EncodeCursor(createdAt, id), 5, 20)
	require.NoError(t, err)
	require.NotNil(t, page.Before)
	assert.True(t, createdAt.Equal(page.Before.CreatedAt))
	assert.Equal(t, id, page.Before.ID)
	assert.Equal(t, 0, page.Offset)
	assert.Equal(t, 20, page.Limit)
}

func TestBuildPageFallsBackToOffset(t *testing.T) {
	svc := &FeedService{config: &config.FeedConfig{DefaultPageSize: 10, MaxPageSize: 100}}

	page, err := svc.buildPage("", 3, 20)
	require.NoError(t, err)
	assert.Nil(t, page.Before)
	assert.Equal(t, 40, page.Offset)
	assert.Equal(t, 20, page.Limit)
}

func TestBuildPageRejectsBadCursor(t *testing.T) {
	svc := &FeedService{config: &config.FeedConfig{DefaultPageSize: 10, MaxPageSize: 100}}

	_, err := svc.buildPage("???", 1, 20)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid cursor")
}

func TestFirstPageGatesFeedCache(t *testing.T) {
	svc := &FeedService{config: &config.FeedConfig{DefaultPageSize: 10, MaxPageSize: 100}}

	// Only the default first page is served from the cache.
	assert.True(t, svc.firstPage("", repository.Page{Limit: 10}))

	assert.False(t, svc.firstPage("", repository.Page{Limit: 25}))
	assert.False(t, svc.firstPage("", repository.Page{Limit: 10, Offset: 10}))
	assert.False(t, svc.firstPage(EncodeCursor(time.Now(), uuid.New()), repository.Page{Limit: 10}))
}

func TestPostType(t *testing.T) {
	assert.Equal(t, "text", postType(nil))
	assert.Equal(t, "image", postType([]MediaInput{{Type: "image"}}))
	assert.Equal(t, "video", postType([]MediaInput{{Type: "video"}}))
	assert.Equal(t, "carousel", postType([]MediaInput{{Type: "image"}, {Type: "video"}}))
}
