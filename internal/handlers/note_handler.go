package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/ephemeral"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

// NoteHandler handles single-slot note HTTP requests
type NoteHandler struct {
	manager        *ephemeral.Manager
	userRepository repositories.UserRepository
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(manager *ephemeral.Manager, userRepo repositories.UserRepository) *NoteHandler {
	return &NoteHandler{
		manager:        manager,
		userRepository: userRepo,
	}
}

// RegisterNoteRoutes registers note-related routes
func (h *NoteHandler) RegisterNoteRoutes(g *echo.Group) {
	g.POST("/notes", h.SetNote)
	g.DELETE("/notes", h.DeleteNote)
	g.GET("/notes", h.GetNotes)
}

// SetNote creates or replaces the viewer's note
func (h *NoteHandler) SetNote(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	note, err := h.manager.SetNote(c.Request().Context(), userID, req.Content)
	if err != nil {
		return ephemeralHTTPError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": note})
}

// DeleteNote removes the viewer's note
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.manager.DeleteNote(c.Request().Context(), userID); err != nil {
		return ephemeralHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Note deleted"})
}

// GetNotes returns the live notes visible to the viewer
func (h *NoteHandler) GetNotes(c echo.Context) error {
	userID := getUserIDFromContext(c)

	notes, err := h.manager.VisibleNotes(c.Request().Context(), userID)
	if err != nil {
		return ephemeralHTTPError(err)
	}

	ownerIDs := make([]uint, 0, len(notes))
	for _, n := range notes {
		ownerIDs = append(ownerIDs, n.UserID)
	}
	owners, _ := h.userRepository.GetUsersByIDs(ownerIDs)
	byID := make(map[uint]models.UserCompact, len(owners))
	for i := range owners {
		byID[owners[i].ID] = owners[i].ToCompact()
	}

	items := make([]echo.Map, 0, len(notes))
	for _, n := range notes {
		items = append(items, echo.Map{
			"note":  n,
			"owner": byID[n.UserID],
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items})
}
