package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/pkg/cryptox"
)

func TestEnsureSuperAdmin_SeedsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	log := testLogger()

	require.NoError(t, EnsureSuperAdmin(ctx, env.store, "root@example.com", "root1234", log))

	sa, err := env.store.Staff().GetSuperAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", sa.Email)
	assert.Equal(t, domain.RoleSuperAdmin, sa.Role)
	assert.True(t, cryptox.IsHashed(sa.PasswordHash))
	assert.True(t, cryptox.VerifyPassword("root1234", sa.PasswordHash))

	// A rotated env password does not overwrite the existing row.
	require.NoError(t, EnsureSuperAdmin(ctx, env.store, "root@example.com", "different", log))

	again, err := env.store.Staff().GetSuperAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, sa.ID, again.ID)
	assert.True(t, cryptox.VerifyPassword("root1234", again.PasswordHash))
}

func TestEnsureSuperAdmin_SkipsWithoutCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, EnsureSuperAdmin(ctx, env.store, "", "", testLogger()))

	_, err := env.store.Staff().GetSuperAdmin(ctx)
	assert.Error(t, err)
}
