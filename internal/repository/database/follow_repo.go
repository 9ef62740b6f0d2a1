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

type FollowRepository struct {
	DB *gorm.DB
}

// Follow 建立关注关系。重复关注由唯一索引拦截，返回 ErrAlreadyFollowing
func (r *FollowRepository) Follow(ctx context.Context, followerID, followeeID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 被关注者必须存在，锁住该行防止并发删除
		var followee model.User
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id").
			Where("id=?", followeeID).
			Take(&followee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkg.ErrUserNotFound
			}
			return err
		}

		rel := model.Follow{FollowerID: followerID, FolloweeID: followeeID}
		if err := tx.Omit(clause.Associations).Create(&rel).Error; err != nil {
			switch {
			case errors.Is(err, gorm.ErrDuplicatedKey):
				return pkg.ErrAlreadyFollowing
			case errors.Is(err, gorm.ErrForeignKeyViolated):
				return pkg.ErrUserNotFound
			}
			return fmt.Errorf("create follow: %w", err)
		}
		return insertOutbox(tx, model.EventUserFollowed, followerID, followeeID, nil)
	})
}

// Unfollow 取消关注，关系不存在时返回 ErrNotFollowing
func (r *FollowRepository) Unfollow(ctx context.Context, followerID, followeeID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id=? AND followee_id=?", followerID, followeeID).Delete(&model.Follow{})
		if res.Error != nil {
			return fmt.Errorf("delete follow: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return pkg.ErrNotFollowing
		}
		return insertOutbox(tx, model.EventUserUnfollowed, followerID, followeeID, nil)
	})
}

// IsFollowing 判断是否关注
func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id=? AND followee_id=?", followerID, followeeID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// FolloweeIDs 关注的人的 id，升序
func (r *FollowRepository) FolloweeIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	if err := r.DB.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id=?", userID).
		Order("followee_id ASC").
		Pluck("followee_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("followees of %d: %w", userID, err)
	}
	return ids, nil
}

// ListFollowings 获取关注列表，最新关注在前
func (r *FollowRepository) ListFollowings(ctx context.Context, userID uint64, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return r.list(ctx, "follower_id", "Followee", userID, cursor, limit)
}

// ListFollowers 获取粉丝列表
func (r *FollowRepository) ListFollowers(ctx context.Context, userID uint64, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return r.list(ctx, "followee_id", "Follower", userID, cursor, limit)
}

func (r *FollowRepository) list(ctx context.Context, column, preload string, userID, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	limit = normalizeLimit(limit)
	q := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Preload(preload).
		Where(column+"=?", userID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var rows []model.Follow
	// 这里limit+1是为了更好的继续分页
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	n, next := nextCursor(len(rows), limit, func(i int) uint64 { return rows[i].ID })
	return rows[:n], next, nil
}

func (r *FollowRepository) CountFollowings(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).Where("follower_id=?", userID).Count(&n).Error
	return n, err
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).Where("followee_id=?", userID).Count(&n).Error
	return n, err
}
