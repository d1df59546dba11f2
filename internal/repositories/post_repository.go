package repositories

import (
	"strings"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	GetPostsByUserID(userID uint, limit, offset int) ([]models.Post, error)
	GetRecentPosts(limit, offset int) ([]models.Post, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error
	AdjustLikesCount(id uint, delta int) error
	AdjustCommentsCount(id uint, delta int) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post
func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetPostByID retrieves a post by ID
func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostsByUserID retrieves a user's posts, newest first
func (r *PostgresPostRepository) GetPostsByUserID(userID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

// GetRecentPosts retrieves the newest posts across all users
func (r *PostgresPostRepository) GetRecentPosts(limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

// UpdatePost saves changes to an existing post
func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Save(post).Error
}

// DeletePost deletes a post by ID
func (r *PostgresPostRepository) DeletePost(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}

// AdjustLikesCount applies a relative delta to the denormalized likes
// counter. The update happens entirely in the database so concurrent
// transactions never clobber each other's increments.
func (r *PostgresPostRepository) AdjustLikesCount(id uint, delta int) error {
	return r.db.Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error
}

// AdjustCommentsCount applies a relative delta to the comments counter
func (r *PostgresPostRepository) AdjustCommentsCount(id uint, delta int) error {
	return r.db.Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("comments_count", gorm.Expr("comments_count + ?", delta)).Error
}

// JoinImageURLs flattens the request's image URL list into the stored form.
func JoinImageURLs(urls []string) string {
	return strings.Join(urls, ",")
}
