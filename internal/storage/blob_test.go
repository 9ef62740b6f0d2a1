package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc.png", []byte("png")))
	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "/uploads/abc.png", store.URL("abc.png"))

	require.NoError(t, store.Delete(ctx, "abc.png"))
	require.NoError(t, store.Delete(ctx, "abc.png"))
	_, err = os.Stat(filepath.Join(dir, "abc.png"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, key := range []string{"", "../x.png", "a/b.png", ".hidden"} {
		assert.ErrorIs(t, store.Put(context.Background(), key, []byte("x")), ErrInvalidKey, key)
	}
}
