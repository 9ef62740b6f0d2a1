package database

import (
	"context"
	"errors"
	"fmt"

	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkg.ErrNameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

// FindByAPIKeyDigest 按 API key 摘要查用户
func (r *UserRepository) FindByAPIKeyDigest(ctx context.Context, digest string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("api_key_digest = ?", digest).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrInvalidCredential
		}
		return nil, fmt.Errorf("find user by key: %w", err)
	}
	return &user, nil
}

// List 全部用户分页，按 id 升序
func (r *UserRepository) List(ctx context.Context, cursor uint64, limit int) ([]model.User, uint64, error) {
	limit = normalizeLimit(limit)
	q := r.DB.WithContext(ctx).Model(&model.User{})
	if cursor > 0 {
		q = q.Where("id > ?", cursor)
	}
	var rows []model.User
	if err := q.Order("id ASC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	n, next := nextCursor(len(rows), limit, func(i int) uint64 { return rows[i].ID })
	return rows[:n], next, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
