package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

// MediaHandler registers uploaded media so stories can reference it by id.
// The binary itself is uploaded to external storage out of band.
type MediaHandler struct {
	mediaRepository repositories.MediaRepository
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(mediaRepo repositories.MediaRepository) *MediaHandler {
	return &MediaHandler{mediaRepository: mediaRepo}
}

// RegisterMediaRoutes registers media-related routes
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.POST("/media", h.CreateMedia)
}

// CreateMedia registers an uploaded media record
func (h *MediaHandler) CreateMedia(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateMediaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	media := &models.Media{
		URL:        req.URL,
		Kind:       req.Kind,
		UploaderID: userID,
	}
	if err := h.mediaRepository.CreateMedia(media); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": media})
}
