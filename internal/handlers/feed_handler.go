package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/pagination"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

const defaultFeedPageSize = 20

// FeedHandler serves the home timeline
type FeedHandler struct {
	postRepository      repositories.PostRepository
	followRepository    repositories.FollowRepository
	userRepository      repositories.UserRepository
	likeRepository      repositories.LikeRepository
	savedPostRepository repositories.SavedPostRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, followRepo repositories.FollowRepository, userRepo repositories.UserRepository, likeRepo repositories.LikeRepository, savedRepo repositories.SavedPostRepository) *FeedHandler {
	return &FeedHandler{
		postRepository:      postRepo,
		followRepository:    followRepo,
		userRepository:      userRepo,
		likeRepository:      likeRepo,
		savedPostRepository: savedRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns one cursor page of posts by the viewer and everyone they
// follow, newest first.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID := getUserIDFromContext(c)

	limit := defaultFeedPageSize
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	var cursor *string
	if v := c.QueryParam("cursor"); v != "" {
		cursor = &v
	}

	followingIDs, err := h.followRepository.GetFollowingIDs(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	authorIDs := append(followingIDs, userID)

	rows, err := h.postRepository.GetFeedPage(c.Request().Context(), authorIDs, cursor, limit+1)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	posts, nextCursor := pagination.Forward(rows, limit, func(p models.Post) string {
		return p.ID.Hex()
	})

	userIDs := make([]uint, 0, len(posts))
	postIDs := make([]string, 0, len(posts))
	seen := make(map[uint]bool, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID.Hex())
		if !seen[p.UserID] {
			seen[p.UserID] = true
			userIDs = append(userIDs, p.UserID)
		}
	}

	authors, _ := h.userRepository.GetUsersByIDs(userIDs)
	byID := make(map[uint]models.UserCompact, len(authors))
	for i := range authors {
		byID[authors[i].ID] = authors[i].ToCompact()
	}
	savedSet, _ := h.savedPostRepository.GetSavedPostIDs(userID, postIDs)

	items := make([]echo.Map, 0, len(posts))
	for _, p := range posts {
		liked, _ := h.likeRepository.HasUserLikedPost(p.ID.Hex(), userID)
		items = append(items, echo.Map{
			"post":     p,
			"author":   byID[p.UserID],
			"is_liked": liked,
			"is_saved": savedSet[p.ID.Hex()],
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{
		"items":      items,
		"nextCursor": nextCursor,
	}})
}
