package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 100, cfg.Feed.Window)
	assert.Equal(t, 4, cfg.Tweets.MaxAttachments)
	assert.Equal(t, int64(16<<20), cfg.Media.MaxBytes)
	assert.Equal(t, 24*time.Hour, cfg.Media.OrphanTTL)
	assert.ElementsMatch(t, []string{"image/png", "image/jpeg", "image/gif", "image/webp"}, cfg.Media.AllowedTypes)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	settings := `
[feed]
window = 50

[database]
driver = "postgres"
dsn = "host=db user=app"

[kafka]
brokers = ["k1:9092"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(settings), 0o644))
	t.Setenv("MICROBLOG_FEED_WINDOW", "25")
	t.Setenv("MICROBLOG_REDIS_ADDR", "127.0.0.1:6379")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Feed.Window)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoadRejectsBadDriver(t *testing.T) {
	t.Setenv("MICROBLOG_DATABASE_DRIVER", "oracle")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestProductionNeedsSecret(t *testing.T) {
	t.Setenv("MICROBLOG_APP_ENV", "production")
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "jwt.access_secret")
}
