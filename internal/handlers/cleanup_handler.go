package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/ephemeral"
)

// CleanupHandler exposes the expired-content sweep for the external scheduler
type CleanupHandler struct {
	manager    *ephemeral.Manager
	cronSecret string
}

// NewCleanupHandler creates a new CleanupHandler
func NewCleanupHandler(manager *ephemeral.Manager, cronSecret string) *CleanupHandler {
	return &CleanupHandler{manager: manager, cronSecret: cronSecret}
}

// RegisterCleanupRoutes registers the sweep endpoint
func (h *CleanupHandler) RegisterCleanupRoutes(g *echo.Group) {
	g.POST("/cleanup", h.Cleanup)
}

// Cleanup runs one sweep of expired stories and notes
func (h *CleanupHandler) Cleanup(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if h.cronSecret == "" || token != h.cronSecret {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid cron secret")
	}

	result, err := h.manager.Sweep(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": result})
}
