package services

import (
	"context"
	"fmt"
	"log"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"github.com/lsj0613/instaclone-backend/internal/repositories"
	"github.com/lsj0613/instaclone-backend/pkg/cache"
	"gorm.io/gorm"
)

// NotificationLedger owns every write to the notifications table. Rows are
// keyed for idempotency by (actor, recipient, type, target), which lets the
// like subsystem retract exactly the notification it created and makes
// read-acknowledgement safe to repeat.
type NotificationLedger struct {
	db *gorm.DB
}

// NewNotificationLedger creates a new NotificationLedger
func NewNotificationLedger(db *gorm.DB) *NotificationLedger {
	return &NotificationLedger{db: db}
}

// WithTx returns a ledger scoped to the given transaction. Writes performed
// through it commit or abort together with the caller's other changes.
func (l *NotificationLedger) WithTx(tx *gorm.DB) *NotificationLedger {
	return &NotificationLedger{db: tx}
}

func (l *NotificationLedger) repo() repositories.NotificationRepository {
	return repositories.NewPostgresNotificationRepository(l.db)
}

// likeNotificationType maps a like target to its notification type.
func likeNotificationType(targetType models.TargetType) string {
	if targetType == models.TargetComment {
		return models.NotificationCommentLike
	}
	return models.NotificationLike
}

// RecordLike creates the notification for a like that was just inserted.
// The caller guarantees the insert actually happened; the like row's
// uniqueness already prevents duplicate triggers, so no duplicate check is
// repeated here.
func (l *NotificationLedger) RecordLike(actor *models.User, recipientID, targetID uint, targetType models.TargetType) error {
	verb := "liked your post"
	if targetType == models.TargetComment {
		verb = "liked your comment"
	}
	n := &models.Notification{
		Type:        likeNotificationType(targetType),
		ActorID:     actor.ID,
		RecipientID: recipientID,
		TargetID:    targetID,
		TargetType:  targetType,
		Message:     fmt.Sprintf("%s %s", actor.Name, verb),
	}
	if err := l.repo().CreateNotification(n); err != nil {
		return err
	}
	l.invalidateUnread(recipientID)
	return nil
}

// RetractLike deletes the notification a like created, identified by its
// idempotency tuple. A missing row is success: it was already removed or
// never existed (self-like, prior retraction).
func (l *NotificationLedger) RetractLike(actorID, recipientID, targetID uint, targetType models.TargetType) error {
	removed, err := l.repo().DeleteByTuple(actorID, recipientID, likeNotificationType(targetType), targetID, targetType)
	if err != nil {
		return err
	}
	if removed > 0 {
		l.invalidateUnread(recipientID)
	}
	return nil
}

// RecordComment creates the notification for a new comment on a post.
func (l *NotificationLedger) RecordComment(actor *models.User, recipientID, postID uint) error {
	n := &models.Notification{
		Type:        models.NotificationComment,
		ActorID:     actor.ID,
		RecipientID: recipientID,
		TargetID:    postID,
		TargetType:  models.TargetPost,
		Message:     fmt.Sprintf("%s commented on your post", actor.Name),
	}
	if err := l.repo().CreateNotification(n); err != nil {
		return err
	}
	l.invalidateUnread(recipientID)
	return nil
}

// MarkRead flips a notification's is_read flag false->true if it belongs to
// the recipient and is still unread, returning the updated row. A nil result
// with nil error means nothing matched; read receipts are best effort and
// repeating the call is never an error.
func (l *NotificationLedger) MarkRead(notificationID, recipientID uint) (*models.Notification, error) {
	updated, err := l.repo().MarkAsRead(notificationID, recipientID)
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		return nil, nil
	}
	l.invalidateUnread(recipientID)

	var n models.Notification
	if err := l.db.First(&n, notificationID).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAllRead marks every unread notification for the recipient as read.
func (l *NotificationLedger) MarkAllRead(recipientID uint) error {
	if err := l.repo().MarkAllAsRead(recipientID); err != nil {
		return err
	}
	l.invalidateUnread(recipientID)
	return nil
}

// List returns a page of notifications newest first. The cursor is the
// last-seen notification ID; the returned cursor is 0 when the page is the
// final one.
func (l *NotificationLedger) List(recipientID, cursor uint, limit int) ([]models.Notification, uint, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	notifications, err := l.repo().GetByRecipientID(recipientID, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	var next uint
	if len(notifications) == limit {
		next = notifications[len(notifications)-1].ID
	}
	return notifications, next, nil
}

// UnreadCount returns the number of unread notifications for the recipient,
// served from the Redis cache when warm.
func (l *NotificationLedger) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := cache.CacheAside(ctx, unreadCountKey(recipientID), &count, cache.UnreadCountTTL, func() error {
		var err error
		count, err = l.repo().GetUnreadCount(recipientID)
		return err
	})
	return count, err
}

func (l *NotificationLedger) invalidateUnread(recipientID uint) {
	if err := cache.Invalidate(context.Background(), unreadCountKey(recipientID)); err != nil {
		log.Printf("failed to invalidate unread count cache for user %d: %v", recipientID, err)
	}
}

func unreadCountKey(recipientID uint) string {
	return fmt.Sprintf("notif:unread:%d", recipientID)
}
