package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"Lee_Microblog/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := Open(Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		_ = Close(db)
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) model.User {
	t.Helper()
	u := model.User{Name: name, APIKeyDigest: "digest-" + name}
	require.NoError(t, (&UserRepository{DB: db}).Create(context.Background(), &u))
	return u
}

func createTweet(t *testing.T, db *gorm.DB, authorID uint64, content string, at time.Time) model.Tweet {
	t.Helper()
	tw := model.Tweet{AuthorID: authorID, Content: content, CreatedAt: at}
	require.NoError(t, (&TweetRepository{DB: db}).Create(context.Background(), &tw, nil))
	return tw
}

func createAttachment(t *testing.T, db *gorm.DB, uploaderID uint64) model.Attachment {
	t.Helper()
	key := fmt.Sprintf("%d-%d.png", uploaderID, time.Now().UnixNano())
	a := model.Attachment{
		UploaderID: uploaderID,
		StorageKey: key,
		URL:        "/uploads/" + key,
		MimeType:   "image/png",
		Size:       10,
	}
	require.NoError(t, (&AttachmentRepository{DB: db}).Create(context.Background(), &a))
	return a
}

func countRows(t *testing.T, db *gorm.DB, m any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Where(where, args...).Count(&n).Error)
	return n
}
