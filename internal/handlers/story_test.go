package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ppsu-social/ppsu-social/internal/middleware"
)

// Story listings are never public; the route is gated like the rest of
// the story surface.
func TestUserStoriesRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	h := NewStoryHandler(nil)
	jwtCfg := &middleware.JWTConfig{Secret: "test-secret"}
	router.GET("/users/:id/stories", middleware.NewJWTAuth(jwtCfg), h.UserStories)

	req := httptest.NewRequest(http.MethodGet, "/users/"+uuid.NewString()+"/stories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication required")
}
