package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

// NotificationHandler serves the in-app notification inbox
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// enrichNotifications attaches the actor's compact profile to each record
func (h *NotificationHandler) enrichNotifications(notifications []models.Notification) []echo.Map {
	actorIDs := make([]uint, 0, len(notifications))
	seen := make(map[uint]bool, len(notifications))
	for _, n := range notifications {
		if !seen[n.ActorID] {
			seen[n.ActorID] = true
			actorIDs = append(actorIDs, n.ActorID)
		}
	}
	actors, _ := h.userRepository.GetUsersByIDs(actorIDs)
	byID := make(map[uint]models.UserCompact, len(actors))
	for i := range actors {
		byID[actors[i].ID] = actors[i].ToCompact()
	}

	enriched := make([]echo.Map, 0, len(notifications))
	for _, n := range notifications {
		enriched = append(enriched, echo.Map{
			"notification": n,
			"actor":        byID[n.ActorID],
		})
	}
	return enriched
}

// GetNotifications returns a page of the viewer's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := getUserIDFromContext(c)

	page := 1
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	notifications, total, err := h.notificationRepository.GetByRecipientID(userID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{
		"notifications": h.enrichNotifications(notifications),
		"total":         total,
		"page":          page,
		"limit":         limit,
	}})
}

// GetGroupedNotifications returns the inbox bucketed by recency
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	userID := getUserIDFromContext(c)

	today, yesterday, thisWeek, older, err := h.notificationRepository.GetGrouped(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{
		"today":     h.enrichNotifications(today),
		"yesterday": h.enrichNotifications(yesterday),
		"this_week": h.enrichNotifications(thisWeek),
		"older":     h.enrichNotifications(older),
	}})
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID := getUserIDFromContext(c)

	count, err := h.notificationRepository.GetUnreadCount(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"unread_count": count}})
}

// MarkAsRead marks one notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationRepository.MarkAsRead(uint(id)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notification marked as read"})
}

// MarkAllAsRead marks every unread notification of the viewer as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.notificationRepository.MarkAllAsRead(userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "All notifications marked as read"})
}
