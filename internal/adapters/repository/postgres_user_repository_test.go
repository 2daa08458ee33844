package repository

import (
	"context"
	"testing"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUserRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanup(t, db)
	defer cleanup(t, db)

	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	user, err := domain.NewUser(uuid.NewString(), "integration@keystroke.dev", "integration")
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("Password123!"))

	t.Run("Success: Create and fetch", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, user))

		byEmail, err := repo.GetByEmail(ctx, "Integration@keystroke.dev")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, "integration", byEmail.Username)

		byID, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)
	})

	t.Run("Fail: Duplicate email", func(t *testing.T) {
		dup, _ := domain.NewUser(uuid.NewString(), "integration@keystroke.dev", "someone")
		dup.PasswordHash = "hash"

		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrEmailAlreadyExists)
	})

	t.Run("Fail: Duplicate username", func(t *testing.T) {
		dup, _ := domain.NewUser(uuid.NewString(), "other@keystroke.dev", "integration")
		dup.PasswordHash = "hash"

		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrUsernameAlreadyExists)
	})

	t.Run("Fail: Unknown user", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, uuid.NewString()), domain.ErrUserNotFound)
	})

	t.Run("Success: Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, user.ID))
		_, err := repo.GetByEmail(ctx, user.Email)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
