package repositories

import (
	"fmt"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations. A like is
// keyed by (user, target, target type); posts and comments share one table.
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(userID, targetID uint, targetType models.TargetType) error
	HasUserLiked(userID, targetID uint, targetType models.TargetType) (bool, error)
	CountLikes(targetID uint, targetType models.TargetType) (int64, error)
	GetLikesByTarget(targetID uint, targetType models.TargetType) ([]models.Like, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository. Passing a
// transaction handle scopes every operation to that transaction.
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike inserts a new like row
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

// DeleteLike removes the like row for (user, target)
func (r *PostgresLikeRepository) DeleteLike(userID, targetID uint, targetType models.TargetType) error {
	res := r.db.Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
		Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("like not found")
	}
	return nil
}

// HasUserLiked checks whether a like row exists for (user, target)
func (r *PostgresLikeRepository) HasUserLiked(userID, targetID uint, targetType models.TargetType) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
		Count(&count).Error
	return count > 0, err
}

// CountLikes returns the authoritative number of like rows for a target
func (r *PostgresLikeRepository) CountLikes(targetID uint, targetType models.TargetType) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Count(&count).Error
	return count, err
}

// GetLikesByTarget retrieves all likes for a target
func (r *PostgresLikeRepository) GetLikesByTarget(targetID uint, targetType models.TargetType) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.Where("target_id = ? AND target_type = ?", targetID, targetType).
		Order("created_at DESC").
		Find(&likes).Error
	return likes, err
}
