package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"github.com/lsj0613/instaclone-backend/internal/repositories"
	"github.com/lsj0613/instaclone-backend/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	ledger            *services.NotificationLedger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, ledger *services.NotificationLedger) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		ledger:            ledger,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.GET("/comments/:id/replies", h.GetReplies)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post. A parent_id makes it a
// threaded reply; the parent must belong to the same post.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(uint(postID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "Post not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to load post")
	}

	if req.ParentID != nil {
		parent, err := h.commentRepository.GetCommentByID(*req.ParentID)
		if err != nil || parent.PostID != post.ID {
			return fail(c, http.StatusBadRequest, "Parent comment not found on this post")
		}
	}

	comment := &models.Comment{
		PostID:   post.ID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create comment")
	}

	if err := h.postRepository.AdjustCommentsCount(post.ID, +1); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create comment")
	}

	// Commenting on your own post never notifies.
	if post.UserID != userID {
		if actor, err := h.userRepository.GetUserByID(userID); err == nil {
			_ = h.ledger.RecordComment(actor, post.UserID, post.ID)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// GetCommentsByPostID retrieves the top-level comments for a post
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid post ID")
	}

	limit, offset := pageParams(c)
	comments, err := h.commentRepository.GetCommentsByPostID(uint(postID), limit, offset)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load comments")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"comments": comments}})
}

// GetReplies retrieves the replies under a comment
func (h *CommentHandler) GetReplies(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid comment ID")
	}

	replies, err := h.commentRepository.GetReplies(uint(commentID))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load replies")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"replies": replies}})
}

// UpdateComment updates a comment owned by the caller
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "Comment not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to load comment")
	}
	if comment.UserID != userID {
		return fail(c, http.StatusForbidden, "You can only edit your own comments")
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update comment")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": comment})
}

// DeleteComment deletes a comment owned by the caller
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "Comment not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to load comment")
	}
	if comment.UserID != userID {
		return fail(c, http.StatusForbidden, "You can only delete your own comments")
	}

	if err := h.commentRepository.DeleteComment(comment.ID); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete comment")
	}
	if err := h.postRepository.AdjustCommentsCount(comment.PostID, -1); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete comment")
	}

	return c.NoContent(http.StatusNoContent)
}
