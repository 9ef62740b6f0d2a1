package service

import (
	"context"
	"fmt"

	"Lee_Microblog/internal/repository/database"

	"github.com/rs/zerolog/log"
)

type Seeder struct {
	users   *database.UserRepository
	userSvc *UserService
	tweets  *TweetService
	follows *FollowService
	likes   *LikeService
}

func NewSeeder(users *database.UserRepository, userSvc *UserService, tweets *TweetService, follows *FollowService, likes *LikeService) *Seeder {
	return &Seeder{users: users, userSvc: userSvc, tweets: tweets, follows: follows, likes: likes}
}

// Seed 用户表为空时写入演示数据，返回 name -> API key
func (s *Seeder) Seed(ctx context.Context) (map[string]string, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}

	names := []string{"alice", "bob", "charlie"}
	ids := make([]uint64, len(names))
	keys := make(map[string]string, len(names))
	for i, name := range names {
		u, key, err := s.userSvc.Register(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", name, err)
		}
		ids[i] = u.ID
		keys[name] = key
	}

	posts := []struct {
		author  int
		content string
	}{
		{0, "Hello world! This is my first tweet."},
		{0, "Beautiful day today! 🌞"},
		{1, "Working on some exciting projects!"},
		{1, "Love this new Twitter clone! Great work team."},
		{2, "Just deployed a new feature. Feeling proud!"},
	}
	tweetIDs := make([]uint64, len(posts))
	for i, p := range posts {
		tw, err := s.tweets.Create(ctx, ids[p.author], p.content, nil)
		if err != nil {
			return nil, fmt.Errorf("seed tweet: %w", err)
		}
		tweetIDs[i] = tw.ID
	}

	for _, f := range [][2]int{{0, 1}, {0, 2}, {1, 0}, {2, 0}} {
		if err := s.follows.Follow(ctx, ids[f[0]], ids[f[1]]); err != nil {
			return nil, fmt.Errorf("seed follow: %w", err)
		}
	}
	for _, l := range [][2]int{{1, 0}, {2, 0}, {0, 2}, {0, 4}} {
		if err := s.likes.Like(ctx, ids[l[0]], tweetIDs[l[1]]); err != nil {
			return nil, fmt.Errorf("seed like: %w", err)
		}
	}

	log.Info().Int("users", len(names)).Int("tweets", len(posts)).Msg("sample data created")
	return keys, nil
}
