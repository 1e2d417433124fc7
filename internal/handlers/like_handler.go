package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/fanout"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

// LikeHandler handles post like HTTP requests
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	orchestrator   *fanout.Orchestrator
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, orchestrator *fanout.Orchestrator) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		userRepository: userRepo,
		orchestrator:   orchestrator,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
	g.GET("/posts/:id/likes", h.GetLikeStatus)
}

// LikePost likes a post and notifies its author
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	liked, err := h.likeRepository.HasUserLikedPost(postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if liked {
		return echo.NewHTTPError(http.StatusConflict, "Post already liked")
	}

	if err := h.likeRepository.CreateLike(&models.Like{PostID: postID, UserID: userID}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.IncrementLikesCount(context.Background(), postID)

	actor, _ := h.userRepository.GetUserByID(userID)
	go func() {
		ev := fanout.Event{
			Type:          fanout.EventLike,
			ActorID:       userID,
			TargetOwnerID: post.UserID,
			TargetID:      postID,
			TargetType:    "post",
		}
		if actor != nil {
			ev.Message = actor.Username + " liked your post"
		}
		h.orchestrator.Dispatch(context.Background(), ev)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Post liked"})
}

// UnlikePost removes a post like
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	if err := h.likeRepository.DeleteLike(postID, userID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Like not found")
	}

	go h.postRepository.DecrementLikesCount(context.Background(), postID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Post unliked"})
}

// GetLikeStatus returns the like count and whether the viewer liked the post
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	count, err := h.likeRepository.GetLikesCountByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	liked, _ := h.likeRepository.HasUserLikedPost(postID, userID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{
		"likes_count": count,
		"is_liked":    liked,
	}})
}
