package services

import (
	"context"
	"testing"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, db *gorm.DB, actor, recipient uint) *models.Notification {
	t.Helper()
	n := &models.Notification{
		Type:        models.NotificationLike,
		ActorID:     actor,
		RecipientID: recipient,
		TargetID:    1,
		TargetType:  models.TargetPost,
		Message:     "someone liked your post",
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestMarkReadIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewNotificationLedger(db)
	n := seedNotification(t, db, 2, 1)

	// First call flips the flag and returns the row.
	updated, err := ledger.MarkRead(n.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsRead)

	// Second call matches nothing and is still a success.
	updated, err = ledger.MarkRead(n.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, updated)

	var fresh models.Notification
	require.NoError(t, db.First(&fresh, n.ID).Error)
	assert.True(t, fresh.IsRead)
}

func TestMarkReadRequiresOwnership(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewNotificationLedger(db)
	n := seedNotification(t, db, 2, 1)

	updated, err := ledger.MarkRead(n.ID, 42)
	require.NoError(t, err)
	assert.Nil(t, updated)

	var fresh models.Notification
	require.NoError(t, db.First(&fresh, n.ID).Error)
	assert.False(t, fresh.IsRead)
}

func TestMarkReadMissingNotification(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewNotificationLedger(db)

	updated, err := ledger.MarkRead(12345, 1)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestRetractLikeToleratesMissingRow(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewNotificationLedger(db)

	// Nothing to delete is not an error.
	err := ledger.RetractLike(2, 1, 99, models.TargetPost)
	assert.NoError(t, err)
}

func TestRetractLikeDeletesByTuple(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewNotificationLedger(db)

	actor := createUser(t, db, "actor")
	recipient := createUser(t, db, "recipient")
	require.NoError(t, ledger.RecordLike(actor, recipient.ID, 7, models.TargetPost))

	// A different tuple must not be touched.
	other := seedNotification(t, db, actor.ID, recipient.ID)
	other.TargetID = 8
	require.NoError(t, db.Save(other).Error)

	require.NoError(t, ledger.RetractLike(actor.ID, recipient.ID, 7, models.TargetPost))

	var remaining []models.Notification
	require.NoError(t, db.Where("recipient_id = ?", recipient.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.EqualValues(t, 8, remaining[0].TargetID)
}

func TestListPaginatesByCursor(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewNotificationLedger(db)

	for i := 0; i < 25; i++ {
		seedNotification(t, db, 2, 1)
	}

	var seen []uint
	cursor := uint(0)
	for {
		page, next, err := ledger.List(1, cursor, 10)
		require.NoError(t, err)
		for _, n := range page {
			seen = append(seen, n.ID)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	require.Len(t, seen, 25)
	// Newest first, strictly descending, no duplicates across pages.
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i-1], seen[i])
	}
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewNotificationLedger(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seedNotification(t, db, 2, 1)
	}

	count, err := ledger.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	require.NoError(t, ledger.MarkAllRead(1))

	count, err = ledger.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestRecordCommentNotifiesPostOwner(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewNotificationLedger(db)

	actor := createUser(t, db, "commenter")
	owner := createUser(t, db, "owner")
	require.NoError(t, ledger.RecordComment(actor, owner.ID, 3))

	var n models.Notification
	require.NoError(t, db.Where("recipient_id = ?", owner.ID).First(&n).Error)
	assert.Equal(t, models.NotificationComment, n.Type)
	assert.Contains(t, n.Message, actor.Name)
	assert.False(t, n.IsRead)
}
