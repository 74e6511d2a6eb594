package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppsu-social/ppsu-social/internal/middleware"
	"github.com/ppsu-social/ppsu-social/internal/services"
)

type StoryHandler struct {
	storyService *services.StoryService
}

func NewStoryHandler(storyService *services.StoryService) *StoryHandler {
	return &StoryHandler{storyService: storyService}
}

func (h *StoryHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req services.CreateStoryRequest
	if !bindJSON(c, &req) {
		return
	}

	story, err := h.storyService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Story created successfully",
		"story":   story,
	})
}

// Feed groups the active stories of followed users by author.
func (h *StoryHandler) Feed(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pageParams(c)
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	stories, err := h.storyService.Feed(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

func (h *StoryHandler) UserStories(c *gin.Context) {
	stories, err := h.storyService.UserStories(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

func (h *StoryHandler) MarkViewed(c *gin.Context) {
	viewerID := middleware.GetUserID(c)

	if err := h.storyService.MarkViewed(c.Request.Context(), c.Param("id"), viewerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Story viewed"})
}

func (h *StoryHandler) Viewers(c *gin.Context) {
	userID := middleware.GetUserID(c)
	offset, limit := offsetParams(c, 20, 100)

	viewers, total, err := h.storyService.Viewers(c.Request.Context(), c.Param("id"), userID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"viewers":    viewers,
		"viewsCount": total,
	})
}

func (h *StoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.storyService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Story deleted successfully"})
}
