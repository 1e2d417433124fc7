package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/fanout"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

// FollowHandler handles follow graph HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	orchestrator     *fanout.Orchestrator
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, orchestrator *fanout.Orchestrator) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		orchestrator:     orchestrator,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.Follow)
	g.DELETE("/users/:id/follow", h.Unfollow)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// Follow creates a follow edge and notifies the followed user
func (h *FollowHandler) Follow(c echo.Context) error {
	followerID := getUserIDFromContext(c)
	followingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if uint(followingID) == followerID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	if _, err := h.userRepository.GetUserByID(uint(followingID)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	already, err := h.followRepository.IsFollowing(followerID, uint(followingID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if already {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: uint(followingID)}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	actor, _ := h.userRepository.GetUserByID(followerID)
	go func() {
		ev := fanout.Event{
			Type:          fanout.EventFollow,
			ActorID:       followerID,
			TargetOwnerID: uint(followingID),
			TargetID:      strconv.FormatUint(uint64(followerID), 10),
			TargetType:    "user",
		}
		if actor != nil {
			ev.Message = actor.Username + " started following you"
		}
		h.orchestrator.Dispatch(context.Background(), ev)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Now following user"})
}

// Unfollow removes a follow edge
func (h *FollowHandler) Unfollow(c echo.Context) error {
	followerID := getUserIDFromContext(c)
	followingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.followRepository.DeleteFollow(followerID, uint(followingID)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Follow relationship not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Unfollowed user"})
}

// GetFollowers lists a user's followers
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepository.GetFollowers(uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := make([]models.UserCompact, 0, len(users))
	for i := range users {
		results = append(results, users[i].ToCompact())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": results})
}

// GetFollowing lists who a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepository.GetFollowing(uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := make([]models.UserCompact, 0, len(users))
	for i := range users {
		results = append(results, users[i].ToCompact())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": results})
}
