package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/fanout"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/pagination"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

const defaultCommentPageSize = 20

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	commentRepository     repositories.CommentRepository
	commentLikeRepository repositories.CommentLikeRepository
	postRepository        repositories.PostRepository
	userRepository        repositories.UserRepository
	orchestrator          *fanout.Orchestrator
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, commentLikeRepo repositories.CommentLikeRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, orchestrator *fanout.Orchestrator) *CommentHandler {
	return &CommentHandler{
		commentRepository:     commentRepo,
		commentLikeRepository: commentLikeRepo,
		postRepository:        postRepo,
		userRepository:        userRepo,
		orchestrator:          orchestrator,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/like", h.LikeComment)
	g.DELETE("/comments/:id/like", h.UnlikeComment)
}

// CreateComment creates a comment or reply and fans out the notifications
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	var req models.CreateCommentRequest
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

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = h.commentRepository.GetCommentByID(*req.ParentID)
		if err != nil || parent.PostID != postID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment not found on this post")
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.IncrementCommentsCount(context.Background(), postID)

	actor, _ := h.userRepository.GetUserByID(userID)
	actorName := ""
	if actor != nil {
		actorName = actor.Username
	}
	commentID := strconv.FormatUint(uint64(comment.ID), 10)

	go func() {
		if parent != nil {
			h.orchestrator.Dispatch(context.Background(), fanout.Event{
				Type:          fanout.EventReply,
				ActorID:       userID,
				TargetOwnerID: parent.UserID,
				TargetID:      commentID,
				TargetType:    "comment",
				Message:       actorName + " replied to your comment",
			})
		}
		h.orchestrator.Dispatch(context.Background(), fanout.Event{
			Type:          fanout.EventComment,
			ActorID:       userID,
			TargetOwnerID: post.UserID,
			TargetID:      postID,
			TargetType:    "post",
			Message:       actorName + " commented on your post",
		})
		h.orchestrator.Dispatch(context.Background(), fanout.Event{
			Type:       fanout.EventMention,
			ActorID:    userID,
			Text:       comment.Content,
			TargetID:   commentID,
			TargetType: "comment",
			Message:    actorName + " mentioned you in a comment",
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// GetComments returns one cursor page of a post's thread, oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	limit := defaultCommentPageSize
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

	rows, err := h.commentRepository.GetThreadPage(postID, cursorID, limit+1)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comments, prevCursor := pagination.Backward(rows, limit, func(cm models.Comment) string {
		return strconv.FormatUint(uint64(cm.ID), 10)
	})

	authorIDs := make([]uint, 0, len(comments))
	seen := make(map[uint]bool, len(comments))
	for _, cm := range comments {
		if !seen[cm.UserID] {
			seen[cm.UserID] = true
			authorIDs = append(authorIDs, cm.UserID)
		}
	}
	authors, _ := h.userRepository.GetUsersByIDs(authorIDs)
	byID := make(map[uint]models.UserCompact, len(authors))
	for i := range authors {
		byID[authors[i].ID] = authors[i].ToCompact()
	}

	enriched := make([]echo.Map, 0, len(comments))
	for _, cm := range comments {
		likes, _ := h.commentLikeRepository.GetLikesCountByCommentID(cm.ID)
		liked, _ := h.commentLikeRepository.HasUserLikedComment(cm.ID, userID)
		enriched = append(enriched, echo.Map{
			"comment":     cm,
			"author":      byID[cm.UserID],
			"likes_count": likes,
			"is_liked":    liked,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{
		"items":      enriched,
		"prevCursor": prevCursor,
	}})
}

// UpdateComment edits an owned comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentRepository.GetCommentByID(uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own comments")
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": comment})
}

// DeleteComment removes an owned comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
	}

	if err := h.commentRepository.DeleteComment(uint(id)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.DecrementCommentsCount(context.Background(), comment.PostID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Comment deleted"})
}

// LikeComment likes a comment and notifies its author
func (h *CommentHandler) LikeComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	liked, err := h.commentLikeRepository.HasUserLikedComment(uint(id), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if liked {
		return echo.NewHTTPError(http.StatusConflict, "Comment already liked")
	}

	if err := h.commentLikeRepository.CreateCommentLike(&models.CommentLike{CommentID: uint(id), UserID: userID}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	actor, _ := h.userRepository.GetUserByID(userID)
	go func() {
		ev := fanout.Event{
			Type:          fanout.EventCommentLike,
			ActorID:       userID,
			TargetOwnerID: comment.UserID,
			TargetID:      strconv.FormatUint(uint64(comment.ID), 10),
			TargetType:    "comment",
		}
		if actor != nil {
			ev.Message = actor.Username + " liked your comment"
		}
		h.orchestrator.Dispatch(context.Background(), ev)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Comment liked"})
}

// UnlikeComment removes a comment like
func (h *CommentHandler) UnlikeComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	if err := h.commentLikeRepository.DeleteCommentLike(uint(id), userID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment like not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Comment unliked"})
}
