package database

import (
	"context"
	"errors"
	"fmt"

	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository struct {
	DB *gorm.DB
}

// lockTweet 共享锁住推文行，和删除推文的排他锁互斥
func lockTweet(tx *gorm.DB, tweetID uint64) error {
	var t model.Tweet
	if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Select("id").
		Where("id = ?", tweetID).
		Take(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.ErrTweetNotFound
		}
		return err
	}
	return nil
}

// Like 唯一(user_id, tweet_id)，重复点赞返回 ErrAlreadyLiked
func (r *LikeRepository) Like(ctx context.Context, userID, tweetID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTweet(tx, tweetID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&model.Like{UserID: userID, TweetID: tweetID}).Error; err != nil {
			switch {
			case errors.Is(err, gorm.ErrDuplicatedKey):
				return pkg.ErrAlreadyLiked
			case errors.Is(err, gorm.ErrForeignKeyViolated):
				return pkg.ErrTweetNotFound
			}
			return fmt.Errorf("create like: %w", err)
		}
		return insertOutbox(tx, model.EventTweetLiked, userID, tweetID, nil)
	})
}

func (r *LikeRepository) Unlike(ctx context.Context, userID, tweetID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTweet(tx, tweetID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND tweet_id = ?", userID, tweetID).Delete(&model.Like{})
		if res.Error != nil {
			return fmt.Errorf("delete like: %w", res.Error)
		}
		// 未删除任何行
		if res.RowsAffected == 0 {
			return pkg.ErrNotLiked
		}
		return insertOutbox(tx, model.EventTweetUnliked, userID, tweetID, nil)
	})
}

func (r *LikeRepository) IsLiked(ctx context.Context, userID, tweetID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ? AND tweet_id = ?", userID, tweetID).
		Count(&count).Error
	return count > 0, err
}

func (r *LikeRepository) CountByTweet(ctx context.Context, tweetID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Like{}).
		Where("tweet_id = ?", tweetID).
		Count(&count).Error
	return count, err
}

// ListLikers 点赞用户列表，最新点赞在前
func (r *LikeRepository) ListLikers(ctx context.Context, tweetID, cursor uint64, limit int) ([]model.Like, uint64, error) {
	limit = normalizeLimit(limit)
	q := r.DB.WithContext(ctx).Preload("User").Where("tweet_id = ?", tweetID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var rows []model.Like
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list likers of %d: %w", tweetID, err)
	}
	n, next := nextCursor(len(rows), limit, func(i int) uint64 { return rows[i].ID })
	return rows[:n], next, nil
}

type likeAgg struct {
	TweetID uint64
	Cnt     int64
	Mine    int64
}

// CountBatch 一条 GROUP BY 统计多条推文的点赞数，没有点赞的 id 也返回 0
func (r *LikeRepository) CountBatch(ctx context.Context, tweetIDs []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(tweetIDs))
	for _, id := range tweetIDs {
		out[id] = 0
	}
	if len(tweetIDs) == 0 {
		return out, nil
	}
	var rows []likeAgg
	if err := r.DB.WithContext(ctx).Model(&model.Like{}).
		Select("tweet_id, COUNT(*) AS cnt").
		Where("tweet_id IN ?", tweetIDs).
		Group("tweet_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	for _, row := range rows {
		out[row.TweetID] = row.Cnt
	}
	return out, nil
}

// LikedBatch 用户对多条推文是否点过赞
func (r *LikeRepository) LikedBatch(ctx context.Context, userID uint64, tweetIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool, len(tweetIDs))
	for _, id := range tweetIDs {
		out[id] = false
	}
	if len(tweetIDs) == 0 {
		return out, nil
	}
	var liked []uint64
	if err := r.DB.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND tweet_id IN ?", userID, tweetIDs).
		Pluck("tweet_id", &liked).Error; err != nil {
		return nil, fmt.Errorf("liked batch: %w", err)
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// EngagementBatch 点赞数和 viewer 点赞状态在同一条查询里算出，两者不会互相矛盾
func (r *LikeRepository) EngagementBatch(ctx context.Context, viewerID uint64, tweetIDs []uint64) (map[uint64]model.Engagement, error) {
	out := make(map[uint64]model.Engagement, len(tweetIDs))
	for _, id := range tweetIDs {
		out[id] = model.Engagement{}
	}
	if len(tweetIDs) == 0 {
		return out, nil
	}
	var rows []likeAgg
	if err := r.DB.WithContext(ctx).Model(&model.Like{}).
		Select("tweet_id, COUNT(*) AS cnt, SUM(CASE WHEN user_id = ? THEN 1 ELSE 0 END) AS mine", viewerID).
		Where("tweet_id IN ?", tweetIDs).
		Group("tweet_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("engagement batch: %w", err)
	}
	for _, row := range rows {
		out[row.TweetID] = model.Engagement{Count: row.Cnt, Liked: row.Mine > 0}
	}
	return out, nil
}
