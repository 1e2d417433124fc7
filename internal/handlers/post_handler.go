package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/fanout"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

// PostHandler handles post CRUD HTTP requests
type PostHandler struct {
	postRepository      repositories.PostRepository
	userRepository      repositories.UserRepository
	likeRepository      repositories.LikeRepository
	savedPostRepository repositories.SavedPostRepository
	orchestrator        *fanout.Orchestrator
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, likeRepo repositories.LikeRepository, savedRepo repositories.SavedPostRepository, orchestrator *fanout.Orchestrator) *PostHandler {
	return &PostHandler{
		postRepository:      postRepo,
		userRepository:      userRepo,
		likeRepository:      likeRepo,
		savedPostRepository: savedRepo,
		orchestrator:        orchestrator,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a post and fans out mention notifications
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		UserID:    userID,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		VideoURLs: req.VideoURLs,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	actor, _ := h.userRepository.GetUserByID(userID)
	go func() {
		ev := fanout.Event{
			Type:       fanout.EventMention,
			ActorID:    userID,
			Text:       post.Content,
			TargetID:   post.ID.Hex(),
			TargetType: "post",
		}
		if actor != nil {
			ev.Message = actor.Username + " mentioned you in a post"
		}
		h.orchestrator.Dispatch(context.Background(), ev)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

// GetPost returns a single post enriched with author and viewer state
func (h *PostHandler) GetPost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	author, _ := h.userRepository.GetUserByID(post.UserID)
	isLiked, _ := h.likeRepository.HasUserLikedPost(postID, userID)
	isSaved, _ := h.savedPostRepository.IsPostSaved(userID, postID)

	data := echo.Map{
		"post":     post,
		"is_liked": isLiked,
		"is_saved": isSaved,
	}
	if author != nil {
		data["author"] = author.ToCompact()
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data})
}

// UpdatePost edits an owned post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own posts")
	}

	if req.Content != "" {
		post.Content = req.Content
	}
	if req.ImageURLs != nil {
		post.ImageURLs = req.ImageURLs
	}
	if req.VideoURLs != nil {
		post.VideoURLs = req.VideoURLs
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": post})
}

// DeletePost removes an owned post
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own posts")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Post deleted"})
}
