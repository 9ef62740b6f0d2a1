package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"

	"gorm.io/gorm"
)

type AttachmentRepository struct {
	DB *gorm.DB
}

func (r *AttachmentRepository) Create(ctx context.Context, att *model.Attachment) error {
	if err := r.DB.WithContext(ctx).Create(att).Error; err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

func (r *AttachmentRepository) FindByID(ctx context.Context, id uint64) (*model.Attachment, error) {
	var att model.Attachment
	if err := r.DB.WithContext(ctx).First(&att, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &att, nil
}

// ListOrphans 上传后一直没绑定推文的附件
func (r *AttachmentRepository) ListOrphans(ctx context.Context, before time.Time, limit int) ([]model.Attachment, error) {
	var list []model.Attachment
	if err := r.DB.WithContext(ctx).
		Where("tweet_id IS NULL AND created_at < ?", before).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteOrphan 仍未绑定时才删除，返回是否删除成功
func (r *AttachmentRepository) DeleteOrphan(ctx context.Context, id uint64) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND tweet_id IS NULL", id).
		Delete(&model.Attachment{})
	return res.RowsAffected == 1, res.Error
}
