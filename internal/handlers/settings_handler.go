package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

// SettingsHandler handles notification preference HTTP requests
type SettingsHandler struct {
	preferenceRepository repositories.PreferenceRepository
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(prefRepo repositories.PreferenceRepository) *SettingsHandler {
	return &SettingsHandler{preferenceRepository: prefRepo}
}

// RegisterSettingsRoutes registers preference-related routes
func (h *SettingsHandler) RegisterSettingsRoutes(g *echo.Group) {
	g.GET("/notification-settings", h.GetSettings)
	g.PUT("/notification-settings", h.UpdateSettings)
}

// GetSettings returns the viewer's email notification toggles, creating the
// default-allow row on first read.
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	userID := getUserIDFromContext(c)

	pref, err := h.preferenceRepository.GetOrCreate(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": pref})
}

// UpdateSettings applies a partial update; unset fields keep their value
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	pref, err := h.preferenceRepository.GetOrCreate(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.EmailLikes != nil {
		pref.EmailLikes = *req.EmailLikes
	}
	if req.EmailComments != nil {
		pref.EmailComments = *req.EmailComments
	}
	if req.EmailFollows != nil {
		pref.EmailFollows = *req.EmailFollows
	}
	if req.EmailMentions != nil {
		pref.EmailMentions = *req.EmailMentions
	}

	if err := h.preferenceRepository.Update(pref); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": pref})
}
