package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFeed_EmptyForLoneViewer(t *testing.T) {
	env := setupEnv(t)
	viewer := env.user(t, "viewer")
	other := env.user(t, "other")
	env.post(t, other, "not followed")

	items, err := env.feed.GetFeed(context.Background(), viewer)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGetFeed_Scenario(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.user(t, "v")
	a := env.user(t, "a")
	b := env.user(t, "b")
	c := env.user(t, "c")

	require.NoError(t, env.follows.Follow(ctx, v, a))
	require.NoError(t, env.follows.Follow(ctx, v, b))
	env.post(t, a, "hello")
	world := env.post(t, b, "world")
	require.NoError(t, env.likes.Like(ctx, v, world))
	require.NoError(t, env.likes.Like(ctx, c, world))

	items, err := env.feed.GetFeed(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, []string{"world", "hello"}, contents(items))

	assert.Equal(t, int64(2), items[0].LikeCount)
	assert.True(t, items[0].Liked)
	assert.Equal(t, "b", items[0].Author.Name)
	assert.True(t, items[0].Author.FollowedByViewer)
	assert.Equal(t, int64(0), items[1].LikeCount)
	assert.False(t, items[1].Liked)
	assert.NotNil(t, items[1].Attachments)
}

func TestGetFeed_IncludesSelfAndRanksByLikes(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.user(t, "v")
	a := env.user(t, "a")
	x := env.user(t, "x")
	y := env.user(t, "y")
	require.NoError(t, env.follows.Follow(ctx, v, a))

	mine := env.post(t, v, "mine")
	one := env.post(t, a, "one like")
	two := env.post(t, a, "two likes")
	env.post(t, a, "zero likes")
	require.NoError(t, env.likes.Like(ctx, x, one))
	require.NoError(t, env.likes.Like(ctx, x, two))
	require.NoError(t, env.likes.Like(ctx, y, two))
	require.NoError(t, env.likes.Like(ctx, v, two))
	require.NoError(t, env.likes.Like(ctx, y, mine))
	require.NoError(t, env.likes.Like(ctx, x, mine))

	items, err := env.feed.GetFeed(ctx, v)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "two likes", items[0].Content)
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].LikeCount, items[i].LikeCount)
	}
	// 自己的推文 followed_by_viewer 为 false
	assert.Equal(t, "mine", items[1].Content)
	assert.False(t, items[1].Author.FollowedByViewer)
	assert.Equal(t, "zero likes", items[3].Content)
	for _, it := range items {
		if it.Liked {
			assert.GreaterOrEqual(t, it.LikeCount, int64(1))
		}
	}
}

func TestGetFeed_TieBreaksAreDeterministic(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.user(t, "v")
	a := env.user(t, "a")
	require.NoError(t, env.follows.Follow(ctx, v, a))

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	older := env.post(t, a, "older")
	newer := env.post(t, a, "newer")
	sameA := env.post(t, a, "same-a")
	sameB := env.post(t, a, "same-b")
	setCreatedAt(t, env.db, older, base)
	setCreatedAt(t, env.db, newer, base.Add(time.Hour))
	setCreatedAt(t, env.db, sameA, base.Add(30*time.Minute))
	setCreatedAt(t, env.db, sameB, base.Add(30*time.Minute))

	first, err := env.feed.GetFeed(ctx, v)
	require.NoError(t, err)
	// 时间相同 id 大的在前
	assert.Equal(t, []string{"newer", "same-b", "same-a", "older"}, contents(first))

	for i := 0; i < 3; i++ {
		again, err := env.feed.GetFeed(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, contents(first), contents(again))
	}
}

func TestGetFeed_UnfollowIsImmediate(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.user(t, "v")
	a := env.user(t, "a")
	b := env.user(t, "b")
	require.NoError(t, env.follows.Follow(ctx, v, a))
	require.NoError(t, env.follows.Follow(ctx, v, b))
	env.post(t, a, "from a")
	env.post(t, b, "from b")

	items, err := env.feed.GetFeed(ctx, v)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"from a", "from b"}, contents(items))

	require.NoError(t, env.follows.Unfollow(ctx, v, a))
	items, err = env.feed.GetFeed(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, []string{"from b"}, contents(items))
}

func TestGetFeed_DeletedTweetDisappears(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.user(t, "v")
	a := env.user(t, "a")
	require.NoError(t, env.follows.Follow(ctx, v, a))
	gone := env.post(t, a, "gone soon")
	env.post(t, a, "stays")
	require.NoError(t, env.likes.Like(ctx, v, gone))

	require.NoError(t, env.tweets.Delete(ctx, gone, a))

	items, err := env.feed.GetFeed(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, []string{"stays"}, contents(items))

	counts, err := env.likes.LikeCountBatch(ctx, []uint64{gone})
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts[gone])
}

type stubFollowees struct {
	ids []uint64
	err error
}

func (s stubFollowees) FolloweesOf(context.Context, uint64) ([]uint64, error) { return s.ids, s.err }

type stubCandidates struct {
	tweets    []model.Tweet
	err       error
	gotLimit  int
	gotAuthor []uint64
}

func (s *stubCandidates) ListByAuthors(_ context.Context, ids []uint64, limit int) ([]model.Tweet, error) {
	s.gotAuthor = ids
	s.gotLimit = limit
	return s.tweets, s.err
}

type stubEngagement struct {
	m     map[uint64]model.Engagement
	err   error
	calls int
}

func (s *stubEngagement) EngagementBatch(context.Context, uint64, []uint64) (map[uint64]model.Engagement, error) {
	s.calls++
	return s.m, s.err
}

func TestGetFeed_WithStubs(t *testing.T) {
	now := time.Now()
	cands := &stubCandidates{tweets: []model.Tweet{
		{ID: 1, AuthorID: 2, Content: "a", CreatedAt: now},
		{ID: 2, AuthorID: 3, Content: "b", CreatedAt: now},
	}}
	eng := &stubEngagement{m: map[uint64]model.Engagement{1: {Count: 1}}}
	svc := NewFeedService(stubFollowees{ids: []uint64{2, 3}}, cands, eng, 7, nil)

	items, err := svc.GetFeed(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 7, cands.gotLimit)
	assert.Equal(t, []uint64{2, 3, 9}, cands.gotAuthor)
	assert.Equal(t, 1, eng.calls)
	assert.Equal(t, []string{"a", "b"}, contents(items))
}

func TestGetFeed_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("store down")

	svc := NewFeedService(stubFollowees{err: boom}, &stubCandidates{}, &stubEngagement{}, 0, nil)
	_, err := svc.GetFeed(context.Background(), 1)
	assert.ErrorIs(t, err, boom)

	svc = NewFeedService(stubFollowees{}, &stubCandidates{err: boom}, &stubEngagement{}, 0, nil)
	_, err = svc.GetFeed(context.Background(), 1)
	assert.ErrorIs(t, err, boom)

	cands := &stubCandidates{tweets: []model.Tweet{{ID: 1, AuthorID: 1}}}
	svc = NewFeedService(stubFollowees{}, cands, &stubEngagement{err: boom}, 0, nil)
	_, err = svc.GetFeed(context.Background(), 1)
	assert.ErrorIs(t, err, boom)

	_, err = svc.GetFeed(context.Background(), 0)
	assert.ErrorIs(t, err, pkg.ErrInvalidID)
}

func TestGetFeed_SkipsEngagementWhenNoCandidates(t *testing.T) {
	eng := &stubEngagement{}
	svc := NewFeedService(stubFollowees{}, &stubCandidates{}, eng, 0, nil)

	items, err := svc.GetFeed(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, eng.calls)
}
