package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/repository/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryBlobs 内存版 BlobStore，记录写入次数
type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	failPut error
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{objects: map[string][]byte{}}
}

func (m *memoryBlobs) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failPut != nil {
		return m.failPut
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryBlobs) URL(key string) string { return "/uploads/" + key }

func (m *memoryBlobs) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type testEnv struct {
	db      *gorm.DB
	blobs   *memoryBlobs
	users   *UserService
	follows *FollowService
	tweets  *TweetService
	likes   *LikeService
	feed    *FeedService
	media   *MediaService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	userRepo := &database.UserRepository{DB: db}
	followRepo := &database.FollowRepository{DB: db}
	blobs := newMemoryBlobs()
	tokens := pkg.NewTokenIssuer(pkg.TokenConfig{AccessSecret: "a", RefreshSecret: "r"})

	env := &testEnv{db: db, blobs: blobs}
	env.users = NewUserService(userRepo, followRepo, nil, tokens)
	env.follows = NewFollowService(followRepo, userRepo, nil)
	env.tweets = NewTweetService(&database.TweetRepository{DB: db}, blobs, 4, nil)
	env.likes = NewLikeService(&database.LikeRepository{DB: db}, DefaultFeedWindow, nil)
	env.feed = NewFeedService(env.follows, env.tweets, env.likes, DefaultFeedWindow, nil)
	env.media = NewMediaService(&database.AttachmentRepository{DB: db}, blobs, 1024, nil, nil)
	return env
}

func (e *testEnv) user(t *testing.T, name string) uint64 {
	t.Helper()
	u, _, err := e.users.Register(context.Background(), name)
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) post(t *testing.T, author uint64, content string) uint64 {
	t.Helper()
	tw, err := e.tweets.Create(context.Background(), author, content, nil)
	require.NoError(t, err)
	return tw.ID
}

func contents(items []FeedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Content)
	}
	return out
}

func setCreatedAt(t *testing.T, db *gorm.DB, tweetID uint64, at any) {
	t.Helper()
	require.NoError(t, db.Model(&model.Tweet{}).Where("id = ?", tweetID).UpdateColumn("created_at", at).Error)
}
