package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"github.com/lsj0613/instaclone-backend/internal/repositories"
	"github.com/lsj0613/instaclone-backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeService    *services.LikeToggleService
	likeRepository repositories.LikeRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeService *services.LikeToggleService, likeRepo repositories.LikeRepository) *LikeHandler {
	return &LikeHandler{
		likeService:    likeService,
		likeRepository: likeRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes/toggle", h.ToggleLike)
	g.GET("/posts/:post_id/likes", h.GetLikesForPost)
	g.GET("/posts/:post_id/likes/status", h.GetUserLikeStatusForPost)
}

// ToggleLike drives the user's like on a post or comment to the desired
// final state. The request carries the state the client wants to end up in,
// so a duplicated or retried request is harmless.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload")
	}

	result, err := h.likeService.Toggle(
		c.Request().Context(),
		userID,
		req.TargetID,
		models.TargetType(req.TargetType),
		*req.FinalIsLiked,
	)
	if err != nil {
		return h.toggleFailure(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"is_liked":    result.IsLiked,
			"likes_count": result.LikesCount,
		},
	})
}

// toggleFailure classifies a toggle error into the uniform envelope. Only
// the designed-for-display messages leak to the client; everything else is
// logged server-side and replaced with a generic retry message.
func (h *LikeHandler) toggleFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrAuthRequired):
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, models.ErrTargetNotFound):
		return fail(c, http.StatusNotFound, "Target not found")
	case errors.Is(err, models.ErrSelfAction):
		return fail(c, http.StatusForbidden, "You cannot like your own post")
	default:
		log.Printf("like toggle failed: %v", err)
		return fail(c, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}

// GetLikesForPost retrieves the likes on a post
func (h *LikeHandler) GetLikesForPost(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid post ID")
	}

	likes, err := h.likeRepository.GetLikesByTarget(uint(postID), models.TargetPost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load likes")
	}
	count, err := h.likeRepository.CountLikes(uint(postID), models.TargetPost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load likes")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"likes": likes, "likes_count": count},
	})
}

// GetUserLikeStatusForPost checks if the authenticated user has liked a post
func (h *LikeHandler) GetUserLikeStatusForPost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid post ID")
	}

	hasLiked, err := h.likeRepository.HasUserLiked(userID, uint(postID), models.TargetPost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load like status")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"post_id": uint(postID), "is_liked": hasLiked},
	})
}
