package database

import (
	"context"
	"fmt"
	"testing"

	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := &UserRepository{DB: db}
	ctx := context.Background()

	alice := createUser(t, db, "alice")

	t.Run("DuplicateName", func(t *testing.T) {
		err := repo.Create(ctx, &model.User{Name: "alice", APIKeyDigest: "other"})
		assert.ErrorIs(t, err, pkg.ErrNameTaken)
	})

	t.Run("FindByDigest", func(t *testing.T) {
		u, err := repo.FindByAPIKeyDigest(ctx, "digest-alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, u.ID)

		_, err = repo.FindByAPIKeyDigest(ctx, "nope")
		assert.ErrorIs(t, err, pkg.ErrInvalidCredential)
		assert.ErrorIs(t, err, pkg.ErrNotFound)
	})

	t.Run("FindByID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, pkg.ErrUserNotFound)
	})
}

func TestUserRepository_ListPaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := &UserRepository{DB: db}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createUser(t, db, fmt.Sprintf("user%d", i))
	}

	page, next, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "user0", page[0].Name)
	assert.NotZero(t, next)

	var names []string
	for _, u := range page {
		names = append(names, u.Name)
	}
	for next != 0 {
		page, next, err = repo.List(ctx, next, 2)
		require.NoError(t, err)
		for _, u := range page {
			names = append(names, u.Name)
		}
	}
	assert.Equal(t, []string{"user0", "user1", "user2", "user3", "user4"}, names)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
