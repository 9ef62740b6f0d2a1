package main

import (
	"context"
	"fmt"
	"time"

	"Lee_Microblog/internal/config"
	"Lee_Microblog/internal/handler"
	"Lee_Microblog/internal/jobs"
	"Lee_Microblog/internal/metrics"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/repository/database"
	redisrepo "Lee_Microblog/internal/repository/redis"
	"Lee_Microblog/internal/router"
	"Lee_Microblog/internal/service"
	"Lee_Microblog/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"gorm.io/gorm"
)

func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

func ProvideDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLife,
		Debug:           cfg.App.LogLevel == "trace",
	})
	if err != nil {
		return nil, err
	}
	// 自动建表
	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ProvideRedis 未配置地址时返回 nil
func ProvideRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled() {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
}

func ProvideCredentialCache(cfg *config.Config, rdb *redis.Client) service.CredentialCache {
	if rdb == nil {
		return nil
	}
	return redisrepo.NewCredentialCache(rdb, cfg.Redis.CredentialTTL)
}

func ProvideLocker(rdb *redis.Client) jobs.Locker {
	if rdb == nil {
		return nil
	}
	return &redisrepo.DistLock{RDB: rdb}
}

// ProvideKafka 未配置 broker 时返回 nil，outbox 只落库
func ProvideKafka(cfg *config.Config) *pkg.KafkaProducer {
	if !cfg.Kafka.Enabled() {
		return nil
	}
	return pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
}

func ProvideLocalStore(cfg *config.Config) (*storage.LocalStore, error) {
	return storage.NewLocalStore(cfg.Media.Dir, cfg.Media.BaseURL)
}

func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func ProvideTokenIssuer(cfg *config.Config) *pkg.TokenIssuer {
	return pkg.NewTokenIssuer(pkg.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
}

// Repositories 所有仓储共用一个连接池
type Repositories struct {
	dig.Out

	Users       *database.UserRepository
	Follows     *database.FollowRepository
	Tweets      *database.TweetRepository
	Likes       *database.LikeRepository
	Attachments *database.AttachmentRepository
	Outbox      *database.OutboxRepository
}

func ProvideRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:       &database.UserRepository{DB: db},
		Follows:     &database.FollowRepository{DB: db},
		Tweets:      &database.TweetRepository{DB: db},
		Likes:       &database.LikeRepository{DB: db},
		Attachments: &database.AttachmentRepository{DB: db},
		Outbox:      &database.OutboxRepository{DB: db},
	}
}

func ProvideUserService(repo *database.UserRepository, follows *database.FollowRepository, cache service.CredentialCache, tokens *pkg.TokenIssuer) *service.UserService {
	return service.NewUserService(repo, follows, cache, tokens)
}

func ProvideFollowService(repo *database.FollowRepository, users *database.UserRepository, m *metrics.Metrics) *service.FollowService {
	return service.NewFollowService(repo, users, m)
}

func ProvideTweetService(cfg *config.Config, repo *database.TweetRepository, blobs *storage.LocalStore, m *metrics.Metrics) *service.TweetService {
	return service.NewTweetService(repo, blobs, cfg.Tweets.MaxAttachments, m)
}

func ProvideLikeService(cfg *config.Config, repo *database.LikeRepository, m *metrics.Metrics) *service.LikeService {
	return service.NewLikeService(repo, cfg.Feed.Window, m)
}

func ProvideFeedService(cfg *config.Config, follows *service.FollowService, tweets *service.TweetService, likes *service.LikeService, m *metrics.Metrics) *service.FeedService {
	return service.NewFeedService(follows, tweets, likes, cfg.Feed.Window, m)
}

func ProvideMediaService(cfg *config.Config, repo *database.AttachmentRepository, blobs *storage.LocalStore, m *metrics.Metrics) *service.MediaService {
	return service.NewMediaService(repo, blobs, cfg.Media.MaxBytes, cfg.Media.AllowedTypes, m)
}

func ProvideRouter(cfg *config.Config, users *service.UserService, follows *service.FollowService, tweets *service.TweetService,
	likes *service.LikeService, feed *service.FeedService, media *service.MediaService, blobs *storage.LocalStore,
	m *metrics.Metrics, reg *prometheus.Registry) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return router.InitRouter(router.Deps{
		Auth:         users,
		Metrics:      m,
		Gatherer:     reg,
		User:         handler.NewUserHandler(users, follows),
		Follow:       handler.NewFollowHandler(follows),
		Tweet:        handler.NewTweetHandler(tweets, likes, follows, feed),
		Like:         handler.NewLikeHandler(likes),
		Media:        handler.NewMediaHandler(media),
		MediaDir:     blobs.Dir,
		MediaBaseURL: cfg.Media.BaseURL,
	})
}

// ProvideScheduler 注册定时任务：outbox 投递只在启用 kafka 时注册
func ProvideScheduler(cfg *config.Config, lock jobs.Locker, outbox *database.OutboxRepository, producer *pkg.KafkaProducer,
	media *service.MediaService, m *metrics.Metrics) (*jobs.Scheduler, error) {
	s := jobs.NewScheduler(lock)

	var publisher service.Publisher
	if producer != nil {
		publisher = producer
	}
	relayer := service.NewOutboxRelayer(outbox, publisher, cfg.Jobs.OutboxBatch, cfg.Jobs.OutboxMaxRetry, m)
	if publisher != nil {
		if err := s.Add(cfg.Jobs.OutboxSpec, "outbox-relay", 30*time.Second, func(ctx context.Context) error {
			_, _, err := relayer.DrainOnce(ctx)
			return err
		}); err != nil {
			return nil, fmt.Errorf("schedule outbox relay: %w", err)
		}
	}
	if err := s.Add(cfg.Jobs.CleanupSpec, "outbox-purge", 5*time.Minute, func(ctx context.Context) error {
		_, err := relayer.Purge(ctx, cfg.Jobs.OutboxRetention)
		return err
	}); err != nil {
		return nil, fmt.Errorf("schedule outbox purge: %w", err)
	}
	if err := s.Add(cfg.Jobs.CleanupSpec, "media-orphans", 5*time.Minute, func(ctx context.Context) error {
		_, err := media.PurgeOrphans(ctx, cfg.Media.OrphanTTL)
		return err
	}); err != nil {
		return nil, fmt.Errorf("schedule media cleanup: %w", err)
	}
	return s, nil
}

func ProvideSeeder(users *database.UserRepository, userSvc *service.UserService, tweets *service.TweetService,
	follows *service.FollowService, likes *service.LikeService) *service.Seeder {
	return service.NewSeeder(users, userSvc, tweets, follows, likes)
}

func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		ProvideConfig,
		ProvideDatabase,
		ProvideRedis,
		ProvideCredentialCache,
		ProvideLocker,
		ProvideKafka,
		ProvideLocalStore,
		ProvideRegistry,
		ProvideMetrics,
		ProvideTokenIssuer,
		ProvideRepositories,
		ProvideUserService,
		ProvideFollowService,
		ProvideTweetService,
		ProvideLikeService,
		ProvideFeedService,
		ProvideMediaService,
		ProvideRouter,
		ProvideScheduler,
		ProvideSeeder,
		NewApplication,
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, fmt.Errorf("provide %T: %w", p, err)
		}
	}
	return container, nil
}
