package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"Lee_Microblog/internal/metrics"
	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const DefaultFeedWindow = 100

type FolloweeSource interface {
	FolloweesOf(ctx context.Context, userID uint64) ([]uint64, error)
}

type CandidateSource interface {
	ListByAuthors(ctx context.Context, authorIDs []uint64, limit int) ([]model.Tweet, error)
}

type EngagementSource interface {
	EngagementBatch(ctx context.Context, viewerID uint64, tweetIDs []uint64) (map[uint64]model.Engagement, error)
}

type FeedAuthor struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	FollowedByViewer bool   `json:"followed_by_viewer"`
}

type FeedAttachment struct {
	ID       uint64 `json:"id"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

type FeedItem struct {
	ID          uint64           `json:"id"`
	Content     string           `json:"content"`
	Author      FeedAuthor       `json:"author"`
	LikeCount   int64            `json:"like_count"`
	Liked       bool             `json:"liked"`
	Attachments []FeedAttachment `json:"attachments"`
	CreatedAt   time.Time        `json:"created_at"`
}

// FeedService 组装 viewer 的 feed：关注的人 + 自己的最新推文，按点赞数排序
type FeedService struct {
	followees  FolloweeSource
	candidates CandidateSource
	engagement EngagementSource
	window     int
	metrics    *metrics.Metrics
}

func NewFeedService(followees FolloweeSource, candidates CandidateSource, engagement EngagementSource, window int, m *metrics.Metrics) *FeedService {
	if window <= 0 {
		window = DefaultFeedWindow
	}
	return &FeedService{
		followees:  followees,
		candidates: candidates,
		engagement: engagement,
		window:     window,
		metrics:    m,
	}
}

// GetFeed 只读；任何一步存储出错都直接返回，不在内部重试
func (s *FeedService) GetFeed(ctx context.Context, viewerID uint64) ([]FeedItem, error) {
	if viewerID == 0 {
		return nil, pkg.ErrInvalidID
	}
	start := time.Now()

	followees, err := s.followees.FolloweesOf(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("feed followees: %w", err)
	}
	followed := lo.SliceToMap(followees, func(id uint64) (uint64, bool) { return id, true })
	authors := append(lo.Filter(followees, func(id uint64, _ int) bool { return id != viewerID }), viewerID)

	tweets, err := s.candidates.ListByAuthors(ctx, authors, s.window)
	if err != nil {
		return nil, fmt.Errorf("feed candidates: %w", err)
	}
	items := make([]FeedItem, 0, len(tweets))
	if len(tweets) == 0 {
		s.observe(viewerID, start, items)
		return items, nil
	}

	ids := lo.Map(tweets, func(t model.Tweet, _ int) uint64 { return t.ID })
	engagement, err := s.engagement.EngagementBatch(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("feed engagement: %w", err)
	}

	for _, t := range tweets {
		items = append(items, NewFeedItem(t, engagement[t.ID], followed[t.AuthorID]))
	}
	Rank(items)

	s.observe(viewerID, start, items)
	return items, nil
}

// NewFeedItem 推文 + 互动数据 -> 展示结构
func NewFeedItem(t model.Tweet, e model.Engagement, followedByViewer bool) FeedItem {
	return FeedItem{
		ID:      t.ID,
		Content: t.Content,
		Author: FeedAuthor{
			ID:               t.AuthorID,
			Name:             t.Author.Name,
			FollowedByViewer: followedByViewer,
		},
		LikeCount: e.Count,
		Liked:     e.Liked,
		Attachments: lo.Map(t.Attachments, func(a model.Attachment, _ int) FeedAttachment {
			return FeedAttachment{ID: a.ID, URL: a.URL, MimeType: a.MimeType, Size: a.Size}
		}),
		CreatedAt: t.CreatedAt,
	}
}

// Rank 点赞数降序，其次时间降序，最后 id 降序；全序，结果可复现
func Rank(items []FeedItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.LikeCount != b.LikeCount {
			return a.LikeCount > b.LikeCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func (s *FeedService) observe(viewerID uint64, start time.Time, items []FeedItem) {
	elapsed := time.Since(start)
	s.metrics.ObserveFeed(elapsed, len(items))
	log.Debug().Uint64("viewer", viewerID).Int("items", len(items)).Dur("took", elapsed).Msg("feed assembled")
}
