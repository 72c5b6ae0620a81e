package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTenantUser(role domain.Role, email string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2b$10$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
		Role:         role,
		Status:       domain.StatusActive,
	}
}

func TestTenantUsers_RoleTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := newTenantUser(domain.RoleOwner, "owner@example.com")
	require.NoError(t, s.TenantUsers().Create(ctx, owner))

	manager := newTenantUser(domain.RoleManager, "manager@example.com")
	manager.OwnerID = owner.ID
	require.NoError(t, s.TenantUsers().Create(ctx, manager))

	// Same email in a different role table is a different account.
	dup := newTenantUser(domain.RoleOperator, "owner@example.com")
	dup.OwnerID = owner.ID
	require.NoError(t, s.TenantUsers().Create(ctx, dup))

	got, err := s.TenantUsers().GetByEmail(ctx, domain.RoleOwner, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)
	assert.Equal(t, domain.RoleOwner, got.Role)

	got, err = s.TenantUsers().GetByEmail(ctx, domain.RoleManager, "manager@example.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)

	// Lookups never cross tables.
	_, err = s.TenantUsers().GetByEmail(ctx, domain.RoleManager, "owner@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTenantUsers_EmailCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTenantUser(domain.RoleOwner, "rajesh@sharma.com")
	require.NoError(t, s.TenantUsers().Create(ctx, u))

	got, err := s.TenantUsers().GetByEmail(ctx, domain.RoleOwner, "Rajesh@Sharma.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	dup := newTenantUser(domain.RoleOwner, "RAJESH@sharma.com")
	assert.ErrorIs(t, s.TenantUsers().Create(ctx, dup), store.ErrAlreadyExists)
}

func TestTenantUsers_UpdatePasswordHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTenantUser(domain.RoleOperator, "op@example.com")
	u.PasswordHash = "plaintext123"
	require.NoError(t, s.TenantUsers().Create(ctx, u))

	require.NoError(t, s.TenantUsers().UpdatePasswordHash(ctx, domain.RoleOperator, u.ID, "$2b$10$newhash"))

	got, err := s.TenantUsers().GetByID(ctx, domain.RoleOperator, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2b$10$newhash", got.PasswordHash)

	assert.ErrorIs(t,
		s.TenantUsers().UpdatePasswordHash(ctx, domain.RoleOperator, "missing", "x"),
		store.ErrNotFound)
}

func TestChallenges_ConsumeSingleUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	ch := domain.Challenge{
		Email:     "admin@example.com",
		Role:      domain.RoleAdmin,
		Code:      "123456",
		ExpiresAt: now.Add(10 * time.Minute),
		CreatedAt: now,
	}
	require.NoError(t, s.Challenges().Upsert(ctx, ch))

	got, err := s.Challenges().Consume(ctx, domain.RoleAdmin, "123456", now)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", got.Email)

	// Second redemption of the same code fails.
	_, err = s.Challenges().Consume(ctx, domain.RoleAdmin, "123456", now)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestChallenges_ConsumeExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	ch := domain.Challenge{
		Email:     "admin@example.com",
		Role:      domain.RoleAdmin,
		Code:      "654321",
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-11 * time.Minute),
	}
	require.NoError(t, s.Challenges().Upsert(ctx, ch))

	_, err := s.Challenges().Consume(ctx, domain.RoleAdmin, "654321", now)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// And the row is still there for the sweeper to reap.
	n, err := s.Challenges().DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestChallenges_UpsertReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := domain.Challenge{
		Email: "admin@example.com", Role: domain.RoleAdmin,
		Code: "111111", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now,
	}
	require.NoError(t, s.Challenges().Upsert(ctx, first))

	second := first
	second.Code = "222222"
	require.NoError(t, s.Challenges().Upsert(ctx, second))

	// Only the newest code works.
	_, err := s.Challenges().Consume(ctx, domain.RoleAdmin, "111111", now)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Challenges().Consume(ctx, domain.RoleAdmin, "222222", now)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", got.Email)
}

func newStaff(t *testing.T, s *Store, role domain.Role, email string) domain.StaffUser {
	t.Helper()
	u := domain.StaffUser{
		ID:           idx.New().String(),
		Name:         "Staff",
		Email:        email,
		PasswordHash: "$2b$10$hash",
		Role:         role,
		Status:       domain.StatusActive,
	}
	require.NoError(t, s.Staff().Create(context.Background(), u))
	return u
}

func TestStaff_TOTPPromotion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newStaff(t, s, domain.RoleAdmin, "admin@example.com")

	// Enabling with nothing staged fails.
	assert.ErrorIs(t, s.Staff().EnableTOTP(ctx, u.ID), store.ErrNotFound)

	require.NoError(t, s.Staff().SetPendingTOTPSecret(ctx, u.ID, "SECRET1"))

	got, err := s.Staff().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.TOTPEnabled)
	require.NotNil(t, got.PendingTOTPSecret)
	assert.Equal(t, "SECRET1", *got.PendingTOTPSecret)
	assert.Nil(t, got.TOTPSecret)

	require.NoError(t, s.Staff().EnableTOTP(ctx, u.ID))

	got, err = s.Staff().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.TOTPEnabled)
	require.NotNil(t, got.TOTPSecret)
	assert.Equal(t, "SECRET1", *got.TOTPSecret)
	assert.Nil(t, got.PendingTOTPSecret)

	// Enable is not repeatable without a new pending secret.
	assert.ErrorIs(t, s.Staff().EnableTOTP(ctx, u.ID), store.ErrNotFound)

	require.NoError(t, s.Staff().DisableTOTP(ctx, u.ID))
	got, err = s.Staff().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.TOTPEnabled)
	assert.Nil(t, got.TOTPSecret)
}

func TestStaff_SuperAdminProtected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sa := newStaff(t, s, domain.RoleSuperAdmin, "root@example.com")
	admin := newStaff(t, s, domain.RoleAdmin, "admin@example.com")

	got, err := s.Staff().GetSuperAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, sa.ID, got.ID)

	// Superadmin is excluded from listings and cannot be deleted.
	list, err := s.Staff().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, admin.ID, list[0].ID)

	assert.ErrorIs(t, s.Staff().Delete(ctx, sa.ID), store.ErrNotFound)
	require.NoError(t, s.Staff().Delete(ctx, admin.ID))
}

func TestBackupCodes_BurnOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newStaff(t, s, domain.RoleAdmin, "admin@example.com")
	require.NoError(t, s.BackupCodes().Create(ctx, u.ID, "hash-1"))
	require.NoError(t, s.BackupCodes().Create(ctx, u.ID, "hash-2"))

	n, err := s.BackupCodes().Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	burned, err := s.BackupCodes().Burn(ctx, u.ID, "hash-1")
	require.NoError(t, err)
	assert.True(t, burned)

	burned, err = s.BackupCodes().Burn(ctx, u.ID, "hash-1")
	require.NoError(t, err)
	assert.False(t, burned)

	require.NoError(t, s.BackupCodes().DeleteAll(ctx, u.ID))
	n, err = s.BackupCodes().Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newStaff(t, s, domain.RoleAdmin, "admin@example.com")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().Create(ctx, u.ID, "hash-1"); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	n, err := s.BackupCodes().Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPumps_OwnerLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := newTenantUser(domain.RoleOwner, "owner@example.com")
	require.NoError(t, s.TenantUsers().Create(ctx, owner))
	require.NoError(t, s.Pumps().Create(ctx, domain.Pump{ID: "pump-1", OwnerID: owner.ID, Name: "Pump 1"}))

	got, err := s.Pumps().GetOwnerID(ctx, "pump-1")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got)

	_, err = s.Pumps().GetOwnerID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
