package service

import (
	"context"
	"time"

	"Lee_Microblog/internal/metrics"
	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/repository/database"

	"github.com/rs/zerolog/log"
)

// Publisher 事件投递目标，生产环境是 kafka
type Publisher interface {
	Send(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// OutboxRelayer outbox表相关服务
type OutboxRelayer struct {
	repo      *database.OutboxRepository
	publisher Publisher
	batchSize int
	maxRetry  int
	metrics   *metrics.Metrics
}

func NewOutboxRelayer(repo *database.OutboxRepository, publisher Publisher, batchSize, maxRetry int, m *metrics.Metrics) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 200
	}
	if maxRetry <= 0 {
		maxRetry = 10
	}
	return &OutboxRelayer{repo: repo, publisher: publisher, batchSize: batchSize, maxRetry: maxRetry, metrics: m}
}

// DrainOnce 读一批待投递事件交给 publisher，按 id 顺序；单条失败不影响后续
func (r *OutboxRelayer) DrainOnce(ctx context.Context) (sent, failed int, err error) {
	rows, err := r.repo.List(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		return 0, 0, err
	}
	for i := range rows {
		ob := rows[i]
		if err = r.send(ctx, &ob); err != nil {
			failed++
			r.metrics.Relayed(err)
			log.Warn().Err(err).Uint64("event", ob.ID).Str("type", ob.EventType).Int("retry", ob.Retry+1).Msg("outbox relay failed")
			if uerr := r.repo.RetryUpdate(ctx, ob.ID); uerr != nil {
				return sent, failed, uerr
			}
			continue
		}
		sent++
		r.metrics.Relayed(nil)
		if err = r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			return sent, failed, err
		}
	}
	return sent, failed, nil
}

// send 以 subject id 作为分区 key，同一推文/用户的事件保持顺序
func (r *OutboxRelayer) send(ctx context.Context, ob *model.OutboxEvent) error {
	return r.publisher.Send(ctx, pkg.MakeKeyFromID(ob.SubjectID), []byte(ob.Payload), map[string]string{
		"event_type": ob.EventType,
		"event_id":   pkg.MakeKeyFromID(ob.ID),
	})
}

// Purge 清理保留期之外已投递的事件
func (r *OutboxRelayer) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return r.repo.PurgeSent(ctx, time.Now().Add(-retention))
}
