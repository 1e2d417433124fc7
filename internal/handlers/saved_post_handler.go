package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/pagination"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

const defaultBookmarkPageSize = 20

// SavedPostHandler handles bookmark HTTP requests
type SavedPostHandler struct {
	savedPostRepository repositories.SavedPostRepository
	postRepository      repositories.PostRepository
	userRepository      repositories.UserRepository
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(savedRepo repositories.SavedPostRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *SavedPostHandler {
	return &SavedPostHandler{
		savedPostRepository: savedRepo,
		postRepository:      postRepo,
		userRepository:      userRepo,
	}
}

// RegisterSavedPostRoutes registers bookmark-related routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:id/save", h.SavePost)
	g.DELETE("/posts/:id/save", h.UnsavePost)
	g.GET("/bookmarks", h.GetBookmarks)
}

// SavePost bookmarks a post for the viewer
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	saved, err := h.savedPostRepository.IsPostSaved(userID, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if saved {
		return echo.NewHTTPError(http.StatusConflict, "Post already saved")
	}

	if err := h.savedPostRepository.SavePost(&models.SavedPost{UserID: userID, PostID: postID}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Post saved"})
}

// UnsavePost removes a bookmark
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	if err := h.savedPostRepository.UnsavePost(userID, postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Saved post not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Post unsaved"})
}

// GetBookmarks returns one cursor page of the viewer's bookmarks, newest first
func (h *SavedPostHandler) GetBookmarks(c echo.Context) error {
	userID := getUserIDFromContext(c)

	limit := defaultBookmarkPageSize
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	var cursorID *uint
	if v := c.QueryParam("cursor"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
		}
		id := uint(n)
		cursorID = &id
	}

	rows, err := h.savedPostRepository.GetSavedPage(userID, cursorID, limit+1)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	saved, nextCursor := pagination.Forward(rows, limit, func(s models.SavedPost) string {
		return strconv.FormatUint(uint64(s.ID), 10)
	})

	postIDs := make([]string, 0, len(saved))
	for _, s := range saved {
		postIDs = append(postIDs, s.PostID)
	}
	posts, err := h.postRepository.GetPostsByIDs(c.Request().Context(), postIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	postsByID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		postsByID[p.ID.Hex()] = p
	}

	items := make([]echo.Map, 0, len(saved))
	for _, s := range saved {
		post, ok := postsByID[s.PostID]
		if !ok {
			continue // post was deleted after bookmarking
		}
		items = append(items, echo.Map{
			"bookmark_id": s.ID,
			"saved_at":    s.CreatedAt,
			"post":        post,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{
		"items":      items,
		"nextCursor": nextCursor,
	}})
}
