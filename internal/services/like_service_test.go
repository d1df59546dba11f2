package services

import (
	"context"
	"sync"
	"testing"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"github.com/lsj0613/instaclone-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing. The pool is
// pinned to one connection so every goroutine shares the same in-memory
// database and transactions serialize instead of deadlocking.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createPost(t *testing.T, db *gorm.DB, owner *models.User) *models.Post {
	t.Helper()
	post := &models.Post{UserID: owner.ID, Content: "a sunset"}
	require.NoError(t, db.Create(post).Error)
	return post
}

func createComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, UserID: author.ID, Content: "nice shot"}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

func newToggleService(db *gorm.DB) *LikeToggleService {
	return NewLikeToggleService(db, NewNotificationLedger(db))
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

func TestToggleLikeScenario(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)
	ctx := context.Background()

	owner := createUser(t, db, "user-a")
	liker := createUser(t, db, "user-b")
	post := createPost(t, db, owner)

	// First toggle to true: like appears, counter moves, owner is notified.
	result, err := svc.Toggle(ctx, liker.ID, post.ID, models.TargetPost, true)
	require.NoError(t, err)
	assert.True(t, result.IsLiked)
	assert.EqualValues(t, 1, result.LikesCount)
	assert.EqualValues(t, 1, countRows(t, db, &models.Notification{},
		"actor_id = ? AND recipient_id = ? AND type = ?", liker.ID, owner.ID, models.NotificationLike))

	// Duplicate toggle to true: no further side effects.
	result, err = svc.Toggle(ctx, liker.ID, post.ID, models.TargetPost, true)
	require.NoError(t, err)
	assert.True(t, result.IsLiked)
	assert.EqualValues(t, 1, result.LikesCount)
	assert.EqualValues(t, 1, countRows(t, db, &models.Like{}, "user_id = ?", liker.ID))
	assert.EqualValues(t, 1, countRows(t, db, &models.Notification{}, "recipient_id = ?", owner.ID))

	// Toggle to false: like, counter, and notification all retract together.
	result, err = svc.Toggle(ctx, liker.ID, post.ID, models.TargetPost, false)
	require.NoError(t, err)
	assert.False(t, result.IsLiked)
	assert.EqualValues(t, 0, result.LikesCount)
	assert.EqualValues(t, 0, countRows(t, db, &models.Like{}, "user_id = ?", liker.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.Notification{}, "recipient_id = ?", owner.ID))

	var fresh models.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	assert.EqualValues(t, 0, fresh.LikesCount)
}

func TestToggleIdempotency(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	liker := createUser(t, db, "liker")
	post := createPost(t, db, owner)

	for i := 0; i < 5; i++ {
		_, err := svc.Toggle(ctx, liker.ID, post.ID, models.TargetPost, true)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, countRows(t, db, &models.Like{},
		"user_id = ? AND target_id = ? AND target_type = ?", liker.ID, post.ID, models.TargetPost))

	var fresh models.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	assert.EqualValues(t, 1, fresh.LikesCount)
}

func TestToggleSymmetry(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	liker := createUser(t, db, "liker")
	post := createPost(t, db, owner)

	_, err := svc.Toggle(ctx, liker.ID, post.ID, models.TargetPost, true)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, liker.ID, post.ID, models.TargetPost, false)
	require.NoError(t, err)

	assert.EqualValues(t, 0, countRows(t, db, &models.Like{}, "target_id = ?", post.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.Notification{}, "recipient_id = ?", owner.ID))

	var fresh models.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	assert.EqualValues(t, 0, fresh.LikesCount)
}

func TestSelfLikeOnPostRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)

	owner := createUser(t, db, "owner")
	post := createPost(t, db, owner)

	_, err := svc.Toggle(context.Background(), owner.ID, post.ID, models.TargetPost, true)
	assert.ErrorIs(t, err, models.ErrSelfAction)

	assert.EqualValues(t, 0, countRows(t, db, &models.Like{}, "target_id = ?", post.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.Notification{}, "recipient_id = ?", owner.ID))
}

func TestSelfLikeOnCommentAllowedButSilent(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)

	owner := createUser(t, db, "owner")
	author := createUser(t, db, "author")
	post := createPost(t, db, owner)
	comment := createComment(t, db, post, author)

	result, err := svc.Toggle(context.Background(), author.ID, comment.ID, models.TargetComment, true)
	require.NoError(t, err)
	assert.True(t, result.IsLiked)
	assert.EqualValues(t, 1, result.LikesCount)

	// No self-notification, ever.
	assert.EqualValues(t, 0, countRows(t, db, &models.Notification{}, "recipient_id = ?", author.ID))

	var fresh models.Comment
	require.NoError(t, db.First(&fresh, comment.ID).Error)
	assert.EqualValues(t, 1, fresh.LikesCount)
}

func TestCommentLikeNotificationType(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)

	owner := createUser(t, db, "owner")
	author := createUser(t, db, "author")
	liker := createUser(t, db, "liker")
	post := createPost(t, db, owner)
	comment := createComment(t, db, post, author)

	_, err := svc.Toggle(context.Background(), liker.ID, comment.ID, models.TargetComment, true)
	require.NoError(t, err)

	assert.EqualValues(t, 1, countRows(t, db, &models.Notification{},
		"recipient_id = ? AND type = ?", author.ID, models.NotificationCommentLike))
}

func TestToggleTargetNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)

	liker := createUser(t, db, "liker")

	_, err := svc.Toggle(context.Background(), liker.ID, 9999, models.TargetPost, true)
	assert.ErrorIs(t, err, models.ErrTargetNotFound)

	_, err = svc.Toggle(context.Background(), liker.ID, 9999, models.TargetComment, true)
	assert.ErrorIs(t, err, models.ErrTargetNotFound)
}

func TestToggleAuthRequired(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)

	_, err := svc.Toggle(context.Background(), 0, 1, models.TargetPost, true)
	assert.ErrorIs(t, err, models.ErrAuthRequired)
}

func TestToggleUnlikeOfAbsentLikeIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)

	owner := createUser(t, db, "owner")
	liker := createUser(t, db, "liker")
	post := createPost(t, db, owner)

	result, err := svc.Toggle(context.Background(), liker.ID, post.ID, models.TargetPost, false)
	require.NoError(t, err)
	assert.False(t, result.IsLiked)
	assert.EqualValues(t, 0, result.LikesCount)

	var fresh models.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	assert.EqualValues(t, 0, fresh.LikesCount)
}

func TestConcurrentDistinctLikers(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)

	owner := createUser(t, db, "owner")
	post := createPost(t, db, owner)

	const n = 8
	likers := make([]*models.User, n)
	for i := range likers {
		likers[i] = createUser(t, db, "liker-"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, liker := range likers {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			_, errs[i] = svc.Toggle(context.Background(), userID, post.ID, models.TargetPost, true)
		}(i, liker.ID)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "toggle %d failed", i)
	}

	likeRepo := repositories.NewPostgresLikeRepository(db)
	count, err := likeRepo.CountLikes(post.ID, models.TargetPost)
	require.NoError(t, err)
	assert.EqualValues(t, n, count)

	var fresh models.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	assert.EqualValues(t, n, fresh.LikesCount, "denormalized counter must match the aggregate")

	assert.EqualValues(t, n, countRows(t, db, &models.Notification{}, "recipient_id = ?", owner.ID))
}
