package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"github.com/lsj0613/instaclone-backend/internal/repositories"
	"gorm.io/gorm"
)

// ToggleResult is the authoritative post-commit state returned to the caller.
type ToggleResult struct {
	IsLiked    bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}

// LikeToggleService makes the store consistent with a user's desired like
// state exactly once. Every toggle runs inside a single transaction covering
// the like row, the denormalized counter, and the notification, so a partial
// application (like without notification, or the reverse) cannot be observed.
//
// The operation is idempotent: repeating a call with the same desired state
// after the first application produces no further side effects. Concurrent
// toggles from different users touch distinct like rows and commute; the
// shared counter is only ever moved by database-level relative deltas.
type LikeToggleService struct {
	db     *gorm.DB
	ledger *NotificationLedger
}

// NewLikeToggleService creates a new LikeToggleService
func NewLikeToggleService(db *gorm.DB, ledger *NotificationLedger) *LikeToggleService {
	return &LikeToggleService{db: db, ledger: ledger}
}

// Toggle drives the store to finalIsLiked for (userID, targetID, targetType)
// and returns the resulting state. finalIsLiked is the desired final state,
// not a flip command: the client coalesces rapid clicks and only the
// trailing intent ever arrives here.
func (s *LikeToggleService) Toggle(ctx context.Context, userID, targetID uint, targetType models.TargetType, finalIsLiked bool) (*ToggleResult, error) {
	if userID == 0 {
		return nil, models.ErrAuthRequired
	}
	if !targetType.Valid() {
		return nil, fmt.Errorf("unknown target type %q", targetType)
	}

	var result ToggleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownerID, err := s.targetOwner(tx, targetID, targetType)
		if err != nil {
			return err
		}
		// Self-likes are rejected for posts only; liking your own comment
		// is permitted but never notifies.
		if targetType == models.TargetPost && ownerID == userID {
			return models.ErrSelfAction
		}

		likes := repositories.NewPostgresLikeRepository(tx)
		existing, err := likes.HasUserLiked(userID, targetID, targetType)
		if err != nil {
			return err
		}

		switch {
		case finalIsLiked && !existing:
			if err := likes.CreateLike(&models.Like{
				UserID:     userID,
				TargetID:   targetID,
				TargetType: targetType,
			}); err != nil {
				return err
			}
			if err := s.adjustCounter(tx, targetID, targetType, +1); err != nil {
				return err
			}
			if ownerID != userID {
				actor, err := repositories.NewPostgresUserRepository(tx).GetUserByID(userID)
				if err != nil {
					return err
				}
				if err := s.ledger.WithTx(tx).RecordLike(actor, ownerID, targetID, targetType); err != nil {
					return err
				}
			}

		case !finalIsLiked && existing:
			if err := likes.DeleteLike(userID, targetID, targetType); err != nil {
				return err
			}
			if err := s.adjustCounter(tx, targetID, targetType, -1); err != nil {
				return err
			}
			if err := s.ledger.WithTx(tx).RetractLike(userID, ownerID, targetID, targetType); err != nil {
				return err
			}

		default:
			// Desired state already holds; duplicate calls are no-ops.
		}

		// Report the count actually visible to this transaction rather than
		// the possibly-racing cached counter.
		count, err := likes.CountLikes(targetID, targetType)
		if err != nil {
			return err
		}
		result = ToggleResult{IsLiked: finalIsLiked, LikesCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// targetOwner resolves the owning user of a post or comment.
func (s *LikeToggleService) targetOwner(tx *gorm.DB, targetID uint, targetType models.TargetType) (uint, error) {
	switch targetType {
	case models.TargetPost:
		post, err := repositories.NewPostgresPostRepository(tx).GetPostByID(targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, models.ErrTargetNotFound
			}
			return 0, err
		}
		return post.UserID, nil
	case models.TargetComment:
		comment, err := repositories.NewPostgresCommentRepository(tx).GetCommentByID(targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, models.ErrTargetNotFound
			}
			return 0, err
		}
		return comment.UserID, nil
	}
	return 0, models.ErrTargetNotFound
}

// adjustCounter moves the target's denormalized likes counter by delta using
// a database-level relative update.
func (s *LikeToggleService) adjustCounter(tx *gorm.DB, targetID uint, targetType models.TargetType, delta int) error {
	if targetType == models.TargetComment {
		return repositories.NewPostgresCommentRepository(tx).AdjustLikesCount(targetID, delta)
	}
	return repositories.NewPostgresPostRepository(tx).AdjustLikesCount(targetID, delta)
}
