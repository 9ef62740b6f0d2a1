package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := &LikeRepository{DB: db}
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	now := time.Now()
	t1 := createTweet(t, db, alice.ID, "one", now)
	t2 := createTweet(t, db, alice.ID, "two", now)
	t3 := createTweet(t, db, bob.ID, "three", now)

	require.NoError(t, repo.Like(ctx, alice.ID, t1.ID))
	require.NoError(t, repo.Like(ctx, bob.ID, t1.ID))
	require.NoError(t, repo.Like(ctx, bob.ID, t2.ID))

	t.Run("DuplicateLike", func(t *testing.T) {
		err := repo.Like(ctx, bob.ID, t1.ID)
		assert.ErrorIs(t, err, pkg.ErrAlreadyLiked)
		n, err := repo.CountByTweet(ctx, t1.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("UnknownTweet", func(t *testing.T) {
		assert.ErrorIs(t, repo.Like(ctx, bob.ID, 31337), pkg.ErrTweetNotFound)
		assert.ErrorIs(t, repo.Unlike(ctx, bob.ID, 31337), pkg.ErrTweetNotFound)
	})

	t.Run("Batches", func(t *testing.T) {
		ids := []uint64{t1.ID, t2.ID, t3.ID}

		counts, err := repo.CountBatch(ctx, ids)
		require.NoError(t, err)
		assert.Equal(t, map[uint64]int64{t1.ID: 2, t2.ID: 1, t3.ID: 0}, counts)

		liked, err := repo.LikedBatch(ctx, alice.ID, ids)
		require.NoError(t, err)
		assert.Equal(t, map[uint64]bool{t1.ID: true, t2.ID: false, t3.ID: false}, liked)

		eng, err := repo.EngagementBatch(ctx, bob.ID, ids)
		require.NoError(t, err)
		assert.Equal(t, model.Engagement{Count: 2, Liked: true}, eng[t1.ID])
		assert.Equal(t, model.Engagement{Count: 1, Liked: true}, eng[t2.ID])
		assert.Equal(t, model.Engagement{}, eng[t3.ID])

		empty, err := repo.EngagementBatch(ctx, bob.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("Likers", func(t *testing.T) {
		rows, next, err := repo.ListLikers(ctx, t1.ID, 0, 1)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "bob", rows[0].User.Name)
		assert.NotZero(t, next)
	})

	t.Run("Unlike", func(t *testing.T) {
		require.NoError(t, repo.Unlike(ctx, bob.ID, t1.ID))
		err := repo.Unlike(ctx, bob.ID, t1.ID)
		assert.ErrorIs(t, err, pkg.ErrNotLiked)
		assert.ErrorIs(t, err, pkg.ErrNotFound)

		liked, err := repo.IsLiked(ctx, bob.ID, t1.ID)
		require.NoError(t, err)
		assert.False(t, liked)
	})
}

func TestLikeRepository_ConcurrentDoubleLike(t *testing.T) {
	db := setupTestDB(t)
	repo := &LikeRepository{DB: db}
	alice := createUser(t, db, "alice")
	tw := createTweet(t, db, alice.ID, "hot", time.Now())

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Like(context.Background(), alice.ID, tw.ID)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, pkg.ErrAlreadyLiked)
	}
	assert.Equal(t, 1, ok)

	n, err := repo.CountByTweet(context.Background(), tw.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
