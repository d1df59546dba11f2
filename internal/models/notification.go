package models

import "time"

// Notification types.
const (
	NotificationLike        = "like"
	NotificationCommentLike = "comment_like"
	NotificationComment     = "comment"
)

// Notification represents a user-visible event created by another user's
// action. A notification is identified for idempotency purposes by the tuple
// (actor, recipient, type, target) rather than by its primary key, so the
// row created by a like can be deleted again when the like is withdrawn.
type Notification struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Type        string     `json:"type" gorm:"size:30;index"`
	ActorID     uint       `json:"actor_id" gorm:"index"`
	RecipientID uint       `json:"recipient_id" gorm:"index"`
	TargetID    uint       `json:"target_id" gorm:"index"`
	TargetType  TargetType `json:"target_type" gorm:"size:20"`
	Message     string     `json:"message"`
	IsRead      bool       `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
}
