package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Locker 多实例部署时的任务互斥锁，单实例可以不传
type Locker interface {
	Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, token string) error
}

type Func func(ctx context.Context) error

type Scheduler struct {
	quartz *cron.Cron
	lock   Locker
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(lock Locker) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	quartz := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	return &Scheduler{quartz: quartz, lock: lock, ctx: ctx, cancel: cancel}
}

// Add 注册任务；ttl 是单次执行的上限，也是锁的过期时间
func (s *Scheduler) Add(spec, name string, ttl time.Duration, fn Func) error {
	_, err := s.quartz.AddFunc(spec, func() {
		s.run(name, ttl, fn)
	})
	return err
}

func (s *Scheduler) run(name string, ttl time.Duration, fn Func) {
	ctx, cancel := context.WithTimeout(s.ctx, ttl)
	defer cancel()

	if s.lock != nil {
		token := uuid.NewString()
		got, err := s.lock.Acquire(ctx, name, token, ttl)
		if err != nil {
			log.Warn().Err(err).Str("job", name).Msg("acquire job lock failed")
			return
		}
		if !got {
			return
		}
		defer func() {
			if err := s.lock.Release(context.Background(), name, token); err != nil {
				log.Warn().Err(err).Str("job", name).Msg("release job lock failed")
			}
		}()
	}

	start := time.Now()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Str("job", name).Msg("job failed")
		return
	}
	log.Trace().Str("job", name).Dur("took", time.Since(start)).Msg("job done")
}

func (s *Scheduler) Start() { s.quartz.Start() }

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.quartz.Stop().Done()
}
