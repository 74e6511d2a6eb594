package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppsu-social/ppsu-social/internal/middleware"
	"github.com/ppsu-social/ppsu-social/internal/services"
)

type AnnouncementHandler struct {
	announcementService *services.AnnouncementService
}

func NewAnnouncementHandler(announcementService *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req services.CreateAnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}

	announcement, err := h.announcementService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Announcement created successfully",
		"announcement": announcement,
	})
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	announcements, err := h.announcementService.List(c.Request.Context(),
		c.Query("category"), c.Query("audience"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}

func (h *AnnouncementHandler) Get(c *gin.Context) {
	announcement, err := h.announcementService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"announcement": announcement})
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req services.UpdateAnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}

	announcement, err := h.announcementService.Update(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Announcement updated successfully",
		"announcement": announcement,
	})
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.announcementService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted successfully"})
}

func (h *AnnouncementHandler) MarkViewed(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.announcementService.MarkViewed(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Announcement viewed"})
}
