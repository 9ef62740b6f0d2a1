package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"Lee_Microblog/internal/metrics"
	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/repository/database"
	"Lee_Microblog/internal/storage"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type TweetService struct {
	repo           *database.TweetRepository
	blobs          storage.BlobStore
	maxAttachments int
	metrics        *metrics.Metrics
}

func NewTweetService(repo *database.TweetRepository, blobs storage.BlobStore, maxAttachments int, m *metrics.Metrics) *TweetService {
	return &TweetService{repo: repo, blobs: blobs, maxAttachments: maxAttachments, metrics: m}
}

// NormalizeContent 去掉首尾空白后校验长度（按字符数）
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", pkg.ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > model.TweetMaxRunes {
		return "", pkg.ErrContentTooLong
	}
	return content, nil
}

// Create 发推文，附件 id 去重后保持原顺序
func (s *TweetService) Create(ctx context.Context, authorID uint64, content string, attachmentIDs []uint64) (*model.Tweet, error) {
	if authorID == 0 {
		return nil, pkg.ErrInvalidID
	}
	content, err := NormalizeContent(content)
	if err != nil {
		return nil, err
	}
	attachmentIDs = lo.Uniq(attachmentIDs)
	if len(attachmentIDs) > s.maxAttachments {
		return nil, pkg.ErrTooManyAttachments
	}

	tweet := &model.Tweet{AuthorID: authorID, Content: content}
	if err = s.repo.Create(ctx, tweet, attachmentIDs); err != nil {
		return nil, err
	}
	s.metrics.TweetOp("create")
	log.Debug().Uint64("tweet", tweet.ID).Uint64("author", authorID).Int("attachments", len(attachmentIDs)).Msg("tweet created")
	return tweet, nil
}

// Delete 删除推文；存储文件在事务提交后尽力清理
func (s *TweetService) Delete(ctx context.Context, tweetID, requesterID uint64) error {
	if tweetID == 0 || requesterID == 0 {
		return pkg.ErrInvalidID
	}
	removed, err := s.repo.Delete(ctx, tweetID, requesterID)
	if err != nil {
		return err
	}
	s.metrics.TweetOp("delete")
	for _, a := range removed {
		if err := s.blobs.Delete(ctx, a.StorageKey); err != nil {
			log.Warn().Err(err).Uint64("tweet", tweetID).Str("key", a.StorageKey).Msg("remove media blob failed")
		}
	}
	return nil
}

func (s *TweetService) GetByID(ctx context.Context, tweetID uint64) (*model.Tweet, error) {
	if tweetID == 0 {
		return nil, pkg.ErrInvalidID
	}
	return s.repo.FindByID(ctx, tweetID)
}

func (s *TweetService) ListByAuthors(ctx context.Context, authorIDs []uint64, limit int) ([]model.Tweet, error) {
	return s.repo.ListByAuthors(ctx, authorIDs, limit)
}

func (s *TweetService) ListByAuthor(ctx context.Context, authorID, cursor uint64, limit int) ([]model.Tweet, uint64, error) {
	if authorID == 0 {
		return nil, 0, pkg.ErrInvalidID
	}
	return s.repo.ListByAuthor(ctx, authorID, cursor, limit)
}
