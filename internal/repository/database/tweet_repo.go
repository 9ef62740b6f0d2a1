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

type TweetRepository struct {
	DB *gorm.DB
}

func orderedAttachments(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// Create 写推文并按顺序绑定附件，附件校验失败整体回滚
func (r *TweetRepository) Create(ctx context.Context, tweet *model.Tweet, attachmentIDs []uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(tweet).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return pkg.ErrUserNotFound
			}
			return fmt.Errorf("create tweet: %w", err)
		}

		if len(attachmentIDs) > 0 {
			var atts []model.Attachment
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id IN ?", attachmentIDs).
				Find(&atts).Error; err != nil {
				return err
			}
			byID := make(map[uint64]model.Attachment, len(atts))
			for _, a := range atts {
				byID[a.ID] = a
			}
			for _, id := range attachmentIDs {
				a, ok := byID[id]
				switch {
				case !ok:
					return pkg.ErrAttachmentNotFound
				case a.UploaderID != tweet.AuthorID:
					return pkg.ErrAttachmentOwner
				case a.TweetID != nil:
					return pkg.ErrAttachmentBound
				}
			}
			// 条件更新：并发绑定同一附件时只有一方 RowsAffected==1
			for pos, id := range attachmentIDs {
				res := tx.Model(&model.Attachment{}).
					Where("id = ? AND tweet_id IS NULL", id).
					Updates(map[string]any{"tweet_id": tweet.ID, "position": pos})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected != 1 {
					return pkg.ErrAttachmentBound
				}
			}
			if err := orderedAttachments(tx).Where("tweet_id = ?", tweet.ID).Find(&tweet.Attachments).Error; err != nil {
				return err
			}
		}
		return insertOutbox(tx, model.EventTweetCreated, tweet.AuthorID, tweet.ID, map[string]any{
			"attachments": attachmentIDs,
		})
	})
}

func (r *TweetRepository) FindByID(ctx context.Context, id uint64) (*model.Tweet, error) {
	var tweet model.Tweet
	if err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Attachments", orderedAttachments).
		First(&tweet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrTweetNotFound
		}
		return nil, fmt.Errorf("find tweet %d: %w", id, err)
	}
	return &tweet, nil
}

// ListByAuthors 一组作者最新的 limit 条推文，(created_at DESC, id DESC)
// 作者和附件各用一条 IN 查询预加载
func (r *TweetRepository) ListByAuthors(ctx context.Context, authorIDs []uint64, limit int) ([]model.Tweet, error) {
	list := make([]model.Tweet, 0)
	if len(authorIDs) == 0 || limit <= 0 {
		return list, nil
	}
	if err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Attachments", orderedAttachments).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list tweets by authors: %w", err)
	}
	return list, nil
}

// ListByAuthor 个人主页时间线，按 id 游标分页
func (r *TweetRepository) ListByAuthor(ctx context.Context, authorID, cursor uint64, limit int) ([]model.Tweet, uint64, error) {
	limit = normalizeLimit(limit)
	q := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Attachments", orderedAttachments).
		Where("author_id = ?", authorID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var rows []model.Tweet
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list tweets of %d: %w", authorID, err)
	}
	n, next := nextCursor(len(rows), limit, func(i int) uint64 { return rows[i].ID })
	return rows[:n], next, nil
}

// Delete 作者删除推文：同一事务内删除点赞、附件记录、推文本身并写 outbox。
// 返回被删除的附件，调用方在提交后清理存储文件
func (r *TweetRepository) Delete(ctx context.Context, tweetID, requesterID uint64) ([]model.Attachment, error) {
	var removed []model.Attachment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tweet model.Tweet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tweet, tweetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkg.ErrTweetNotFound
			}
			return err
		}
		if tweet.AuthorID != requesterID {
			return pkg.ErrNotTweetAuthor
		}

		if err := tx.Where("tweet_id = ?", tweetID).Find(&removed).Error; err != nil {
			return err
		}
		if err := tx.Where("tweet_id = ?", tweetID).Delete(&model.Like{}).Error; err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if err := tx.Where("tweet_id = ?", tweetID).Delete(&model.Attachment{}).Error; err != nil {
			return fmt.Errorf("delete attachments: %w", err)
		}
		if err := tx.Delete(&model.Tweet{}, tweetID).Error; err != nil {
			return fmt.Errorf("delete tweet: %w", err)
		}
		return insertOutbox(tx, model.EventTweetDeleted, requesterID, tweetID, nil)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
