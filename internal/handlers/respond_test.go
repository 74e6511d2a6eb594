package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
)

func testContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestRespondErrorUsesTypedStatus(t *testing.T) {
	c, w := testContext(t, http.MethodGet, "/x", "")

	respondError(c, apperr.NotFound("Post not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Post not found", body.Message)
	assert.Empty(t, body.Errors)
}

func TestRespondErrorHidesInternalCause(t *testing.T) {
	c, w := testContext(t, http.MethodGet, "/x", "")

	respondError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestRespondErrorIncludesFieldErrors(t *testing.T) {
	c, w := testContext(t, http.MethodGet, "/x", "")

	respondError(c, apperr.Validation("Invalid input",
		apperr.FieldError{Field: "caption", Message: "is required"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "caption", body.Errors[0].Field)
	assert.Equal(t, "is required", body.Errors[0].Message)
}

func TestBindJSONReportsFieldErrors(t *testing.T) {
	type payload struct {
		Caption string `json:"caption" binding:"required,max=10"`
		Email   string `json:"email" binding:"omitempty,email"`
	}

	c, w := testContext(t, http.MethodPost, "/x", `{"caption":"","email":"nope"}`)

	var req payload
	ok := bindJSON(c, &req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid input", body.Message)

	fields := make(map[string]string, len(body.Errors))
	for _, fe := range body.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "is required", fields["caption"])
	assert.Equal(t, "must be a valid email address", fields["email"])
}

func TestBindJSONUsesJSONFieldNames(t *testing.T) {
	type payload struct {
		AvatarURL string `json:"avatarUrl" binding:"required,url"`
		CoverURL  string `json:"coverUrl" binding:"omitempty,url"`
	}

	c, w := testContext(t, http.MethodPost, "/x", `{"avatarUrl":"not a url","coverUrl":"also bad"}`)

	var req payload
	ok := bindJSON(c, &req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	fields := make([]string, 0, len(body.Errors))
	for _, fe := range body.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "avatarUrl")
	assert.Contains(t, fields, "coverUrl")
	assert.NotContains(t, fields, "avatarURL")
	assert.NotContains(t, fields, "coverURL")
}

func TestBindJSONRejectsMalformedBody(t *testing.T) {
	c, w := testContext(t, http.MethodPost, "/x", `{"caption":`)

	var req struct {
		Caption string `json:"caption"`
	}
	ok := bindJSON(c, &req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestBindJSONAcceptsValidBody(t *testing.T) {
	type payload struct {
		Caption string `json:"caption" binding:"required"`
	}

	c, w := testContext(t, http.MethodPost, "/x", `{"caption":"hi"}`)

	var req payload
	ok := bindJSON(c, &req)
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", req.Caption)
}

func TestPageParams(t *testing.T) {
	c, _ := testContext(t, http.MethodGet, "/x?page=3&limit=25", "")
	page, limit := pageParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)

	c, _ = testContext(t, http.MethodGet, "/x", "")
	page, limit = pageParams(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 0, limit)

	c, _ = testContext(t, http.MethodGet, "/x?page=-2&limit=-9", "")
	page, limit = pageParams(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 0, limit)
}

func TestOffsetParams(t *testing.T) {
	c, _ := testContext(t, http.MethodGet, "/x?page=2&limit=30", "")
	offset, limit := offsetParams(c, 20, 100)
	assert.Equal(t, 30, offset)
	assert.Equal(t, 30, limit)

	c, _ = testContext(t, http.MethodGet, "/x", "")
	offset, limit = offsetParams(c, 20, 100)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 20, limit)

	c, _ = testContext(t, http.MethodGet, "/x?limit=500", "")
	offset, limit = offsetParams(c, 20, 100)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 100, limit)
}
