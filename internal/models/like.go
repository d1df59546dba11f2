package models

import "time"

// TargetType identifies what kind of row a like points at.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// Valid reports whether t is one of the known target types.
func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetComment
}

// Like represents a single (user, target) "liked" fact. The existence of the
// row is the boolean: there is no status column. The composite unique index
// makes duplicate likes from the same user impossible at the schema level.
type Like struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uint       `json:"user_id" gorm:"index;uniqueIndex:idx_user_target_like"`
	TargetID   uint       `json:"target_id" gorm:"index;uniqueIndex:idx_user_target_like"`
	TargetType TargetType `json:"target_type" gorm:"size:20;uniqueIndex:idx_user_target_like"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToggleLikeRequest defines the request body for the like toggle endpoint.
// FinalIsLiked carries the client's desired final state rather than a flip
// command, so retried or duplicated requests stay idempotent.
type ToggleLikeRequest struct {
	TargetID     uint   `json:"target_id" validate:"required"`
	TargetType   string `json:"target_type" validate:"required,oneof=post comment"`
	FinalIsLiked *bool  `json:"final_is_liked" validate:"required"`
}
