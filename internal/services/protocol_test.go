package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lsj0613/instaclone-backend/internal/models"
	"github.com/lsj0613/instaclone-backend/pkg/likeclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Drives the full protocol: the client coordinator debounces a burst of
// clicks into one desired-final-state request against the real service.
func TestCoordinatorCollapsesClicksAgainstService(t *testing.T) {
	db := setupTestDB(t)
	svc := newToggleService(db)

	owner := createUser(t, db, "owner")
	liker := createUser(t, db, "liker")
	post := createPost(t, db, owner)

	var requests int32
	toggle := func(ctx context.Context, finalIsLiked bool) (likeclient.State, error) {
		atomic.AddInt32(&requests, 1)
		result, err := svc.Toggle(ctx, liker.ID, post.ID, models.TargetPost, finalIsLiked)
		if err != nil {
			return likeclient.State{}, err
		}
		return likeclient.State{IsLiked: result.IsLiked, LikesCount: result.LikesCount}, nil
	}

	c := likeclient.New(likeclient.State{}, toggle, likeclient.WithDebounce(20*time.Millisecond))
	defer c.Close()

	// Three rapid clicks: like, unlike, like. Only the trailing "like" is sent.
	c.Click()
	c.Click()
	c.Click()
	time.Sleep(200 * time.Millisecond)

	assert.EqualValues(t, 1, atomic.LoadInt32(&requests))
	assert.Equal(t, likeclient.State{IsLiked: true, LikesCount: 1}, c.State())

	var likeCount int64
	require.NoError(t, db.Model(&models.Like{}).Where("target_id = ?", post.ID).Count(&likeCount).Error)
	assert.EqualValues(t, 1, likeCount)
}
