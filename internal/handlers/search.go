package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppsu-social/ppsu-social/internal/middleware"
	"github.com/ppsu-social/ppsu-social/internal/services"
)

type SearchHandler struct {
	searchService *services.SearchService
}

func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

func (h *SearchHandler) Search(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pageParams(c)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	searchType := c.DefaultQuery("type", "all")
	switch searchType {
	case "all", "users", "posts", "events", "hashtags":
	default:
		searchType = "all"
	}

	results, err := h.searchService.Search(c.Request.Context(), userID, c.Query("q"), searchType, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *SearchHandler) Trending(c *gin.Context) {
	_, limit := pageParams(c)
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	trending, err := h.searchService.Trending(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hashtags": trending})
}

func (h *SearchHandler) Recent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	recent, err := h.searchService.RecentSearches(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recent": recent})
}

func (h *SearchHandler) ClearRecent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.searchService.ClearRecentSearches(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recent searches cleared"})
}
