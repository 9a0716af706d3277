package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
)

func TestBootstrapService(t *testing.T) {
	ctx := context.Background()

	t.Run("no email configured is a no-op", func(t *testing.T) {
		env := newTestEnv(t)
		b := &BootstrapService{Store: env.store, Hasher: env.hasher}
		created, err := b.Run(ctx)
		require.NoError(t, err)
		require.False(t, created)
	})

	t.Run("creates admin once", func(t *testing.T) {
		env := newTestEnv(t)
		b := &BootstrapService{
			Store: env.store, Hasher: env.hasher,
			Email: "Admin@Example.com", Password: "bootstrap-pass",
		}

		created, err := b.Run(ctx)
		require.NoError(t, err)
		require.True(t, created)

		created, err = b.Run(ctx)
		require.NoError(t, err)
		require.False(t, created)

		res, err := env.auth.Login(ctx, "admin@example.com", "bootstrap-pass")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, res.User.Role)
		require.Equal(t, "Administrator", res.User.Name)
	})

	t.Run("skips non-empty directory", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "ada@example.com", "")

		b := &BootstrapService{
			Store: env.store, Hasher: env.hasher,
			Email: "admin@example.com", Password: "bootstrap-pass",
		}
		created, err := b.Run(ctx)
		require.NoError(t, err)
		require.False(t, created)
	})

	t.Run("password required unless generation allowed", func(t *testing.T) {
		env := newTestEnv(t)
		b := &BootstrapService{Store: env.store, Hasher: env.hasher, Email: "admin@example.com"}

		_, err := b.Run(ctx)
		require.ErrorIs(t, err, ErrBootstrapPasswordRequired)

		b.AllowGenerated = true
		created, err := b.Run(ctx)
		require.NoError(t, err)
		require.True(t, created)
	})
}
