package repositories

import (
	"github.com/lsj0613/instaclone-backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations.
// Deletion and read-acknowledgement are deliberately tolerant of missing
// rows: both report how many rows matched instead of failing.
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	DeleteByTuple(actorID, recipientID uint, notifType string, targetID uint, targetType models.TargetType) (int64, error)
	GetByRecipientID(recipientID uint, cursor uint, limit int) ([]models.Notification, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAsRead(notificationID, recipientID uint) (int64, error)
	MarkAllAsRead(recipientID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a new NotificationRepository
// backed by PostgreSQL.
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// DeleteByTuple removes the notification identified by its idempotency tuple
// and reports the number of rows removed. Zero is not an error: the
// notification may already be gone or may never have been created.
func (r *postgresNotificationRepository) DeleteByTuple(actorID, recipientID uint, notifType string, targetID uint, targetType models.TargetType) (int64, error) {
	res := r.db.Where(
		"actor_id = ? AND recipient_id = ? AND type = ? AND target_id = ? AND target_type = ?",
		actorID, recipientID, notifType, targetID, targetType,
	).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// GetByRecipientID returns notifications newest first, paginated by an
// opaque cursor equal to the last-seen notification ID. A zero cursor
// starts from the newest row.
func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, cursor uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	q := r.db.Where("recipient_id = ?", recipientID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	err := q.Order("id DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead flips is_read false->true only when the notification belongs to
// the recipient and is still unread; the returned count is 0 when nothing
// matched (already read, wrong owner, or missing).
func (r *postgresNotificationRepository) MarkAsRead(notificationID, recipientID uint) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", notificationID, recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}
