package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fuelos-in/auth/internal/auth/audit"
	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/notify"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/internal/auth/store/drivers/sqlite"
	"github.com/fuelos-in/auth/pkg/cryptox"
	"github.com/fuelos-in/auth/pkg/idx"
	"github.com/fuelos-in/auth/pkg/jwtx"
)

const testIssuer = "FuelOS"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	store      store.Store
	sessions   *SessionService
	login      *LoginService
	challenges *ChallengeService
	mfa        *MFAService
	passwords  *PasswordService
	staff      *StaffService
	tenantJWT  *jwtx.HS256
	staffJWT   *jwtx.HS256
	dispatcher *audit.Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	log := testLogger()

	tenantJWT, err := jwtx.NewHS256("tenant-test-secret", testIssuer)
	require.NoError(t, err)
	staffJWT, err := jwtx.NewHS256("staff-test-secret", testIssuer)
	require.NoError(t, err)

	dispatcher := audit.NewDispatcher(st.Audit(), log)
	t.Cleanup(dispatcher.Close)

	sessions := NewSessionService(st, tenantJWT, staffJWT, testIssuer, log)
	notifier := &notify.LogNotifier{Log: log}

	return &testEnv{
		store:      st,
		sessions:   sessions,
		login:      NewLoginService(st, sessions, dispatcher, log),
		challenges: NewChallengeService(st, sessions, notifier, dispatcher, log, 10*time.Minute),
		mfa:        NewMFAService(st, dispatcher, testIssuer, log),
		passwords:  NewPasswordService(st, dispatcher, log),
		staff:      NewStaffService(st, dispatcher, log),
		tenantJWT:  tenantJWT,
		staffJWT:   staffJWT,
		dispatcher: dispatcher,
	}
}

func (e *testEnv) seedTenantUser(t *testing.T, role domain.Role, email, password string, hashed bool) domain.User {
	t.Helper()

	stored := password
	if hashed {
		var err error
		stored, err = cryptox.HashPassword(password)
		require.NoError(t, err)
	}
	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: stored,
		Role:         role,
		Status:       domain.StatusActive,
	}
	require.NoError(t, e.store.TenantUsers().Create(context.Background(), u))
	return u
}

func (e *testEnv) seedStaffUser(t *testing.T, role domain.Role, email, password string) domain.StaffUser {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	u := domain.StaffUser{
		ID:           idx.New().String(),
		Name:         "Staff User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
	}
	require.NoError(t, e.store.Staff().Create(context.Background(), u))
	return u
}
