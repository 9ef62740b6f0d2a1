package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "MICROBLOG"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Tweets   TweetsConfig   `mapstructure:"tweets"`
	Media    MediaConfig    `mapstructure:"media"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

type AppConfig struct {
	Env             string        `mapstructure:"env" validate:"oneof=development production test"`
	Listen          string        `mapstructure:"listen" validate:"required"`
	Seed            bool          `mapstructure:"seed"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

func (a AppConfig) IsProduction() bool { return a.Env == "production" }

type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver" validate:"oneof=mysql postgres sqlite"`
	DSN          string        `mapstructure:"dsn" validate:"required"`
	MaxOpenConns int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLife  time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig Addr 为空时不启用凭证缓存和任务锁
type RedisConfig struct {
	Addr          string        `mapstructure:"addr"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db" validate:"gte=0"`
	CredentialTTL time.Duration `mapstructure:"credential_ttl" validate:"gt=0"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// KafkaConfig Brokers 为空时 outbox 事件只落库不投递
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic" validate:"required"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type JWTConfig struct {
	AccessSecret  string        `mapstructure:"access_secret" validate:"required"`
	RefreshSecret string        `mapstructure:"refresh_secret" validate:"required,nefield=AccessSecret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl" validate:"gt=0"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl" validate:"gtfield=AccessTTL"`
}

type FeedConfig struct {
	Window int `mapstructure:"window" validate:"gte=1,lte=1000"`
}

type TweetsConfig struct {
	MaxAttachments int `mapstructure:"max_attachments" validate:"gte=0,lte=16"`
}

type MediaConfig struct {
	Dir          string        `mapstructure:"dir" validate:"required"`
	BaseURL      string        `mapstructure:"base_url" validate:"required"`
	MaxBytes     int64         `mapstructure:"max_bytes" validate:"gt=0"`
	AllowedTypes []string      `mapstructure:"allowed_types" validate:"min=1,dive,required"`
	OrphanTTL    time.Duration `mapstructure:"orphan_ttl" validate:"gt=0"`
}

type JobsConfig struct {
	OutboxSpec      string        `mapstructure:"outbox_spec" validate:"required"`
	OutboxBatch     int           `mapstructure:"outbox_batch" validate:"gte=1"`
	OutboxMaxRetry  int           `mapstructure:"outbox_max_retry" validate:"gte=1"`
	OutboxRetention time.Duration `mapstructure:"outbox_retention" validate:"gt=0"`
	CleanupSpec     string        `mapstructure:"cleanup_spec" validate:"required"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.listen", ":8080")
	v.SetDefault("app.seed", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "microblog.db?_foreign_keys=on")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.credential_ttl", 10*time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "microblog.events")

	v.SetDefault("jwt.access_secret", "dev-access-secret")
	v.SetDefault("jwt.refresh_secret", "dev-refresh-secret")
	v.SetDefault("jwt.access_ttl", 30*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 24*time.Hour)

	v.SetDefault("feed.window", 100)
	v.SetDefault("tweets.max_attachments", 4)

	v.SetDefault("media.dir", "uploads")
	v.SetDefault("media.base_url", "/uploads")
	v.SetDefault("media.max_bytes", 16<<20)
	v.SetDefault("media.allowed_types", []string{"image/png", "image/jpeg", "image/gif", "image/webp"})
	v.SetDefault("media.orphan_ttl", 24*time.Hour)

	v.SetDefault("jobs.outbox_spec", "@every 1s")
	v.SetDefault("jobs.outbox_batch", 200)
	v.SetDefault("jobs.outbox_max_retry", 10)
	v.SetDefault("jobs.outbox_retention", 7*24*time.Hour)
	v.SetDefault("jobs.cleanup_spec", "@every 60m")
}

// Load 读取配置：.env -> settings.toml -> MICROBLOG_* 环境变量，后者覆盖前者
func Load(paths ...string) (*Config, error) {
	// .env 可选
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("settings")
	v.SetConfigType("toml")
	if len(paths) == 0 {
		paths = []string{".", ".."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if c.App.IsProduction() && c.JWT.AccessSecret == "dev-access-secret" {
		return errors.New("invalid settings: jwt.access_secret must be set in production")
	}
	return nil
}
