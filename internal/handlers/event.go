package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppsu-social/ppsu-social/internal/middleware"
	"github.com/ppsu-social/ppsu-social/internal/services"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req services.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"event":   event,
	})
}

func (h *EventHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	upcoming := c.DefaultQuery("upcoming", "true") != "false"

	events, err := h.eventService.List(c.Request.Context(), c.Query("category"), upcoming, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// ByOrganizer lists events organized by the user in the path.
func (h *EventHandler) ByOrganizer(c *gin.Context) {
	page, limit := pageParams(c)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	events, err := h.eventService.ByOrganizer(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.eventService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (h *EventHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req services.UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully",
		"event":   event,
	})
}

func (h *EventHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.eventService.Cancel(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event cancelled successfully"})
}

func (h *EventHandler) ToggleRSVP(c *gin.Context) {
	userID := middleware.GetUserID(c)
	userName := middleware.GetUserName(c)

	result, err := h.eventService.ToggleRSVP(c.Request.Context(), c.Param("id"), userID, userName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *EventHandler) Attendees(c *gin.Context) {
	offset, limit := offsetParams(c, 20, 100)

	attendees, err := h.eventService.Attendees(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attendees": attendees})
}
