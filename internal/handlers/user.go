package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppsu-social/ppsu-social/internal/middleware"
	"github.com/ppsu-social/ppsu-social/internal/services"
)

type UserHandler struct {
	userService *services.UserService
	feedService *services.FeedService
}

func NewUserHandler(userService *services.UserService, feedService *services.FeedService) *UserHandler {
	return &UserHandler{
		userService: userService,
		feedService: feedService,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.Param("id")
	viewerID := middleware.GetUserID(c)

	profile, err := h.userService.GetProfile(c.Request.Context(), userID, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) Follow(c *gin.Context) {
	followerID := middleware.GetUserID(c)
	followerName := middleware.GetUserName(c)
	targetID := c.Param("id")

	if err := h.userService.Follow(c.Request.Context(), followerID, followerName, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Followed successfully"})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	followerID := middleware.GetUserID(c)
	targetID := c.Param("id")

	if err := h.userService.Unfollow(c.Request.Context(), followerID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed successfully"})
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	offset, limit := offsetParams(c, 20, 100)

	followers, err := h.userService.GetFollowers(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": followers})
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	offset, limit := offsetParams(c, 20, 100)

	following, err := h.userService.GetFollowing(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": following})
}

func (h *UserHandler) GetPosts(c *gin.Context) {
	page, limit := pageParams(c)
	viewerID := middleware.GetUserID(c)

	posts, err := h.feedService.UserPosts(c.Request.Context(), c.Param("id"), viewerID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
