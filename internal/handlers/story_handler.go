package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/ephemeral"
	"github.com/tahmidr/glowfeed/backend/internal/fanout"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

// StoryHandler handles story HTTP requests
type StoryHandler struct {
	manager        *ephemeral.Manager
	userRepository repositories.UserRepository
	orchestrator   *fanout.Orchestrator
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(manager *ephemeral.Manager, userRepo repositories.UserRepository, orchestrator *fanout.Orchestrator) *StoryHandler {
	return &StoryHandler{
		manager:        manager,
		userRepository: userRepo,
		orchestrator:   orchestrator,
	}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("/stories", h.CreateStory)
	g.GET("/stories", h.GetStories)
	g.DELETE("/stories/:id", h.DeleteStory)
	g.POST("/stories/:id/view", h.ViewStory)
	g.GET("/stories/:id/viewers", h.GetViewers)
}

// CreateStory publishes a story from registered media and notifies followers
func (h *StoryHandler) CreateStory(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateStoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	story, err := h.manager.CreateStory(c.Request().Context(), userID, req.MediaIDs)
	if err != nil {
		// Unresolvable media ids are a bad request here, not a missing resource.
		if errors.Is(err, ephemeral.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return ephemeralHTTPError(err)
	}

	actor, _ := h.userRepository.GetUserByID(userID)
	go func() {
		ev := fanout.Event{
			Type:       fanout.EventStory,
			ActorID:    userID,
			TargetID:   story.ID.Hex(),
			TargetType: "story",
		}
		if actor != nil {
			ev.Message = actor.Username + " posted a new story"
		}
		h.orchestrator.Dispatch(context.Background(), ev)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": story})
}

// GetStories returns the live stories visible to the viewer, grouped by owner
func (h *StoryHandler) GetStories(c echo.Context) error {
	userID := getUserIDFromContext(c)

	stories, err := h.manager.VisibleStories(c.Request().Context(), userID)
	if err != nil {
		return ephemeralHTTPError(err)
	}

	ownerIDs := make([]uint, 0, len(stories))
	seen := make(map[uint]bool, len(stories))
	for _, s := range stories {
		if !seen[s.OwnerID] {
			seen[s.OwnerID] = true
			ownerIDs = append(ownerIDs, s.OwnerID)
		}
	}
	owners, _ := h.userRepository.GetUsersByIDs(ownerIDs)
	byID := make(map[uint]models.UserCompact, len(owners))
	for i := range owners {
		byID[owners[i].ID] = owners[i].ToCompact()
	}

	items := make([]echo.Map, 0, len(stories))
	for _, s := range stories {
		items = append(items, echo.Map{
			"story": s,
			"owner": byID[s.OwnerID],
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items})
}

// DeleteStory removes an owned story before its natural expiry
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	userID := getUserIDFromContext(c)
	storyID := c.Param("id")

	if err := h.manager.DeleteStory(c.Request().Context(), userID, storyID); err != nil {
		return ephemeralHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Story deleted"})
}

// ViewStory records that the viewer saw a story; re-viewing is a no-op
func (h *StoryHandler) ViewStory(c echo.Context) error {
	userID := getUserIDFromContext(c)
	storyID := c.Param("id")

	if err := h.manager.RecordView(c.Request().Context(), userID, storyID); err != nil {
		return ephemeralHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "View recorded"})
}

// GetViewers lists who viewed a story. Owner only.
func (h *StoryHandler) GetViewers(c echo.Context) error {
	userID := getUserIDFromContext(c)
	storyID := c.Param("id")

	views, err := h.manager.Viewers(c.Request().Context(), userID, storyID)
	if err != nil {
		return ephemeralHTTPError(err)
	}

	viewerIDs := make([]uint, 0, len(views))
	for _, v := range views {
		viewerIDs = append(viewerIDs, v.ViewerID)
	}
	viewers, _ := h.userRepository.GetUsersByIDs(viewerIDs)
	byID := make(map[uint]models.UserCompact, len(viewers))
	for i := range viewers {
		byID[viewers[i].ID] = viewers[i].ToCompact()
	}

	items := make([]echo.Map, 0, len(views))
	for _, v := range views {
		items = append(items, echo.Map{
			"viewer":    byID[v.ViewerID],
			"viewed_at": v.ViewedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{
		"viewers": items,
		"total":   len(items),
	}})
}
