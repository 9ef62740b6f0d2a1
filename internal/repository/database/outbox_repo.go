package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Lee_Microblog/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// insertOutbox 在业务事务内写入事件
func insertOutbox(tx *gorm.DB, event string, actor, subject uint64, extra map[string]any) error {
	body := map[string]any{
		"event":      event,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"actor":      actor,
		"subject":    subject,
	}
	for k, v := range extra {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	ob := &model.OutboxEvent{
		EventType: event,
		ActorID:   actor,
		SubjectID: subject,
		Payload:   string(payload),
		Status:    model.OutboxPending,
	}
	if err = tx.Create(ob).Error; err != nil {
		return fmt.Errorf("write outbox %s: %w", event, err)
	}
	return nil
}

// List 待投递或投递失败且未超过重试上限的事件，按 id 顺序
func (r *OutboxRepository) List(ctx context.Context, batchSize, maxRetry int) ([]model.OutboxEvent, error) {
	var list []model.OutboxEvent
	if err := r.DB.WithContext(ctx).
		Where("status IN ? AND retry < ?", []int8{model.OutboxPending, model.OutboxFailed}, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate 投递失败，标记并累加重试次数
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id=?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate 投递成功
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id=?", id).
		Update("status", model.OutboxSent).Error
}

// PurgeSent 清理 before 之前已投递的事件
func (r *OutboxRepository) PurgeSent(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.OutboxSent, before).
		Delete(&model.OutboxEvent{})
	return res.RowsAffected, res.Error
}
