package service

import (
	"context"
	"sync"
	"testing"

	"Lee_Microblog/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_DoubleLikeConflicts(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	tw := env.post(t, alice, "like me")

	require.NoError(t, env.likes.Like(ctx, bob, tw))
	err := env.likes.Like(ctx, bob, tw)
	assert.ErrorIs(t, err, pkg.ErrConflict)
	assert.ErrorIs(t, err, pkg.ErrAlreadyLiked)

	n, err := env.likes.LikeCountOf(ctx, tw)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	likers, _, err := env.likes.LikersOf(ctx, tw, 0, 10)
	require.NoError(t, err)
	require.Len(t, likers, 1)
	assert.Equal(t, "bob", likers[0].Name)

	require.NoError(t, env.likes.Unlike(ctx, bob, tw))
	assert.ErrorIs(t, env.likes.Unlike(ctx, bob, tw), pkg.ErrNotFound)
	assert.ErrorIs(t, env.likes.Like(ctx, bob, 0), pkg.ErrInvalidID)
}

func TestLikeService_ConcurrentDoubleLike(t *testing.T) {
	env := setupEnv(t)
	alice := env.user(t, "alice")
	tw := env.post(t, alice, "race")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = env.likes.Like(context.Background(), alice, tw)
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case pkg.KindOf(err) == pkg.KindConflict:
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)
}

func TestLikeService_BatchGuard(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := NewLikeService(env.likes.repo, 2, nil)

	_, err := svc.EngagementBatch(ctx, 1, []uint64{1, 2, 3})
	assert.ErrorIs(t, err, pkg.ErrBatchTooLarge)
	_, err = svc.LikeCountBatch(ctx, []uint64{1, 2, 3})
	assert.ErrorIs(t, err, pkg.ErrValidation)
	_, err = svc.LikedBatch(ctx, 1, []uint64{1, 2, 3})
	assert.ErrorIs(t, err, pkg.ErrBatchTooLarge)

	// 重复 id 先去重
	counts, err := svc.LikeCountBatch(ctx, []uint64{5, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int64{5: 0, 6: 0}, counts)
}
