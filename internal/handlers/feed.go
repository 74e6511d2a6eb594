package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppsu-social/ppsu-social/internal/middleware"
	"github.com/ppsu-social/ppsu-social/internal/services"
)

type FeedHandler struct {
	feedService    *services.FeedService
	likeService    *services.LikeService
	commentService *services.CommentService
}

func NewFeedHandler(
	feedService *services.FeedService,
	likeService *services.LikeService,
	commentService *services.CommentService,
) *FeedHandler {
	return &FeedHandler{
		feedService:    feedService,
		likeService:    likeService,
		commentService: commentService,
	}
}

func (h *FeedHandler) CreatePost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	userName := middleware.GetUserName(c)

	var req services.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.feedService.CreatePost(c.Request.Context(), userID, userName, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

func (h *FeedHandler) GetPost(c *gin.Context) {
	viewerID := middleware.GetUserID(c)

	post, err := h.feedService.GetPost(c.Request.Context(), c.Param("id"), viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *FeedHandler) DeletePost(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.feedService.DeletePost(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// PublicFeed pages all public posts. Cursor pagination when ?cursor= is
// present, page/limit otherwise.
func (h *FeedHandler) PublicFeed(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	page, limit := pageParams(c)

	feed, err := h.feedService.PublicFeed(c.Request.Context(), viewerID, c.Query("cursor"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *FeedHandler) FollowingFeed(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pageParams(c)

	feed, err := h.feedService.FollowingFeed(c.Request.Context(), userID, c.Query("cursor"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *FeedHandler) ToggleLike(c *gin.Context) {
	userID := middleware.GetUserID(c)
	userName := middleware.GetUserName(c)

	result, err := h.likeService.TogglePostLike(c.Request.Context(), userID, userName, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *FeedHandler) GetLikers(c *gin.Context) {
	offset, limit := offsetParams(c, 20, 100)

	likers, err := h.likeService.PostLikers(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"likers": likers})
}

func (h *FeedHandler) CreateComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	userName := middleware.GetUserName(c)

	var req services.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), userID, userName, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

func (h *FeedHandler) GetComments(c *gin.Context) {
	page, limit := pageParams(c)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	comments, err := h.commentService.GetByPost(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *FeedHandler) DeleteComment(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.commentService.Delete(c.Request.Context(), c.Param("commentId"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (h *FeedHandler) ToggleCommentLike(c *gin.Context) {
	userID := middleware.GetUserID(c)
	userName := middleware.GetUserName(c)

	result, err := h.likeService.ToggleCommentLike(c.Request.Context(), userID, userName, c.Param("commentId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
