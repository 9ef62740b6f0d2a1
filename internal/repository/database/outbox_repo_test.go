package database

import (
	"context"
	"testing"
	"time"

	"Lee_Microblog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := &OutboxRepository{DB: db}
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	require.NoError(t, (&FollowRepository{DB: db}).Follow(ctx, alice.ID, bob.ID))
	createTweet(t, db, bob.ID, "hi", time.Now())

	list, err := repo.List(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.EventUserFollowed, list[0].EventType)
	assert.Equal(t, alice.ID, list[0].ActorID)
	assert.Contains(t, list[0].Payload, `"event":"user.followed"`)
	assert.Equal(t, model.EventTweetCreated, list[1].EventType)

	require.NoError(t, repo.SuccessUpdate(ctx, list[0].ID))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RetryUpdate(ctx, list[1].ID))
	}

	// 一条已投递，另一条超过重试上限
	list, err = repo.List(ctx, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, list)

	n, err := repo.PurgeSent(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), countRows(t, db, &model.OutboxEvent{}, "status = ?", model.OutboxFailed))
}

func TestAttachmentRepository_Orphans(t *testing.T) {
	db := setupTestDB(t)
	repo := &AttachmentRepository{DB: db}
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	orphan := createAttachment(t, db, alice.ID)
	bound := createAttachment(t, db, alice.ID)
	tw := model.Tweet{AuthorID: alice.ID, Content: "x"}
	require.NoError(t, (&TweetRepository{DB: db}).Create(ctx, &tw, []uint64{bound.ID}))

	list, err := repo.ListOrphans(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, orphan.ID, list[0].ID)

	list, err = repo.ListOrphans(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	ok, err := repo.DeleteOrphan(ctx, bound.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.DeleteOrphan(ctx, orphan.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindByID(ctx, orphan.ID)
	assert.Error(t, err)
}
