package service

import (
	"context"

	"Lee_Microblog/internal/metrics"
	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/repository/database"

	"github.com/samber/lo"
)

type LikeService struct {
	repo     *database.LikeRepository
	maxBatch int
	metrics  *metrics.Metrics
}

// NewLikeService maxBatch 是批量接口一次最多接受的 id 数，一般等于 feed 窗口
func NewLikeService(repo *database.LikeRepository, maxBatch int, m *metrics.Metrics) *LikeService {
	return &LikeService{repo: repo, maxBatch: maxBatch, metrics: m}
}

func (s *LikeService) Like(ctx context.Context, userID, tweetID uint64) error {
	if userID == 0 || tweetID == 0 {
		return pkg.ErrInvalidID
	}
	err := s.repo.Like(ctx, userID, tweetID)
	s.metrics.LikeOp("like", err)
	return err
}

func (s *LikeService) Unlike(ctx context.Context, userID, tweetID uint64) error {
	if userID == 0 || tweetID == 0 {
		return pkg.ErrInvalidID
	}
	err := s.repo.Unlike(ctx, userID, tweetID)
	s.metrics.LikeOp("unlike", err)
	return err
}

func (s *LikeService) LikeCountOf(ctx context.Context, tweetID uint64) (int64, error) {
	return s.repo.CountByTweet(ctx, tweetID)
}

func (s *LikeService) LikersOf(ctx context.Context, tweetID, cursor uint64, limit int) ([]model.UserRef, uint64, error) {
	rows, next, err := s.repo.ListLikers(ctx, tweetID, cursor, limit)
	if err != nil {
		return nil, 0, err
	}
	return lo.Map(rows, func(l model.Like, _ int) model.UserRef { return l.User.Ref() }), next, nil
}

func (s *LikeService) checkBatch(tweetIDs []uint64) ([]uint64, error) {
	ids := lo.Uniq(tweetIDs)
	if len(ids) > s.maxBatch {
		return nil, pkg.ErrBatchTooLarge
	}
	return ids, nil
}

func (s *LikeService) LikeCountBatch(ctx context.Context, tweetIDs []uint64) (map[uint64]int64, error) {
	ids, err := s.checkBatch(tweetIDs)
	if err != nil {
		return nil, err
	}
	return s.repo.CountBatch(ctx, ids)
}

func (s *LikeService) LikedBatch(ctx context.Context, userID uint64, tweetIDs []uint64) (map[uint64]bool, error) {
	ids, err := s.checkBatch(tweetIDs)
	if err != nil {
		return nil, err
	}
	return s.repo.LikedBatch(ctx, userID, ids)
}

// EngagementBatch 点赞数和 viewer 点赞状态一次取出
func (s *LikeService) EngagementBatch(ctx context.Context, viewerID uint64, tweetIDs []uint64) (map[uint64]model.Engagement, error) {
	ids, err := s.checkBatch(tweetIDs)
	if err != nil {
		return nil, err
	}
	return s.repo.EngagementBatch(ctx, viewerID, ids)
}
