package service

import (
	"context"

	"Lee_Microblog/internal/metrics"
	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/repository/database"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type FollowService struct {
	repo    *database.FollowRepository
	users   *database.UserRepository
	metrics *metrics.Metrics
}

func NewFollowService(repo *database.FollowRepository, users *database.UserRepository, m *metrics.Metrics) *FollowService {
	return &FollowService{repo: repo, users: users, metrics: m}
}

// Follow 关注用户
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uint64) error {
	if followerID == 0 || followeeID == 0 {
		return pkg.ErrInvalidID
	}
	if followerID == followeeID {
		return pkg.ErrSelfFollow
	}
	err := s.repo.Follow(ctx, followerID, followeeID)
	s.metrics.FollowOp("follow", err)
	if err == nil {
		log.Debug().Uint64("follower", followerID).Uint64("followee", followeeID).Msg("followed")
	}
	return err
}

// Unfollow 取消关注
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint64) error {
	if followerID == 0 || followeeID == 0 {
		return pkg.ErrInvalidID
	}
	if followerID == followeeID {
		return pkg.ErrNotFollowing
	}
	err := s.repo.Unfollow(ctx, followerID, followeeID)
	s.metrics.FollowOp("unfollow", err)
	return err
}

// FolloweesOf 每次都查库，关注/取关对下一次请求立即可见
func (s *FollowService) FolloweesOf(ctx context.Context, userID uint64) ([]uint64, error) {
	return s.repo.FolloweeIDs(ctx, userID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	if followerID == 0 || followeeID == 0 {
		return false, pkg.ErrInvalidID
	}
	return s.repo.IsFollowing(ctx, followerID, followeeID)
}

func (s *FollowService) ListFollowings(ctx context.Context, userID, cursor uint64, limit int) ([]model.UserRef, uint64, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	rows, next, err := s.repo.ListFollowings(ctx, userID, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	return lo.Map(rows, func(f model.Follow, _ int) model.UserRef { return f.Followee.Ref() }), next, nil
}

func (s *FollowService) ListFollowers(ctx context.Context, userID, cursor uint64, limit int) ([]model.UserRef, uint64, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	rows, next, err := s.repo.ListFollowers(ctx, userID, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	return lo.Map(rows, func(f model.Follow, _ int) model.UserRef { return f.Follower.Ref() }), next, nil
}

// ListUsers 全部用户分页
func (s *FollowService) ListUsers(ctx context.Context, cursor uint64, limit int) ([]model.UserRef, uint64, error) {
	rows, next, err := s.users.List(ctx, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	return lo.Map(rows, func(u model.User, _ int) model.UserRef { return u.Ref() }), next, nil
}
