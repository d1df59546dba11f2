package handlers

import (
	"net/http"
	"strconv"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"github.com/lsj0613/instaclone-backend/internal/repositories"
	"github.com/lsj0613/instaclone-backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	ledger         *services.NotificationLedger
	userRepository repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(ledger *services.NotificationLedger, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		ledger:         ledger,
		userRepository: userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

func (h *NotificationHandler) enrichNotifications(notifications []models.Notification) []EnrichedNotification {
	enriched := make([]EnrichedNotification, len(notifications))
	userCache := make(map[uint]models.UserCompact)

	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if actor, ok := userCache[n.ActorID]; ok {
			enriched[i].Actor = actor
		} else {
			user, err := h.userRepository.GetUserByID(n.ActorID)
			if err == nil {
				compact := user.ToCompact()
				userCache[n.ActorID] = compact
				enriched[i].Actor = compact
			}
		}
	}
	return enriched
}

// GetNotifications returns notifications newest first, paginated by an
// opaque cursor (the last-seen notification ID).
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	cursor, _ := strconv.ParseUint(c.QueryParam("cursor"), 10, 32)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	notifications, nextCursor, err := h.ledger.List(currentUserID, uint(cursor), limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"items":       h.enrichNotifications(notifications),
			"next_cursor": nextCursor,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.ledger.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load unread count")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks one notification as read. Repeating the call, or calling
// it for a notification that is already read or gone, succeeds with a null
// result; read receipts are best effort.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid notification ID")
	}

	notification, err := h.ledger.MarkRead(uint(notifID), currentUserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to mark notification as read")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"notification": notification}})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.ledger.MarkAllRead(currentUserID); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to mark notifications as read")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "All notifications marked as read"})
}
