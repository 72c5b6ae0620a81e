package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fuelos-in/auth/internal/auth/audit"
	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/cryptox"
)

// LoginResult is a freshly issued tenant session.
type LoginResult struct {
	Token    string
	TenantID string
	User     domain.User
}

// LoginService authenticates tenant-bound users (owners, managers,
// operators) against their role's credential table.
type LoginService struct {
	store    store.Store
	sessions *SessionService
	audit    *audit.Dispatcher
	log      *slog.Logger
}

func NewLoginService(st store.Store, sessions *SessionService, aud *audit.Dispatcher, log *slog.Logger) *LoginService {
	return &LoginService{store: st, sessions: sessions, audit: aud, log: log}
}

// Login verifies credentials for one tenant role and issues a session.
// Unknown email and wrong password are indistinguishable to the caller.
// The suspension check runs only after the password verifies, so probing
// for suspended accounts costs a valid password.
func (s *LoginService) Login(ctx context.Context, role domain.Role, email, password, sourceIP string) (LoginResult, error) {
	if !role.TenantScoped() {
		return LoginResult{}, ErrUnknownRole
	}
	email = normalizeEmail(email)

	u, err := s.store.TenantUsers().GetByEmail(ctx, role, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.audit.Record(role, email, "login_failed", sourceIP)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		s.audit.Record(role, email, "login_failed", sourceIP)
		return LoginResult{}, ErrInvalidCredentials
	}

	// Legacy rows still hold the password in the clear. Re-hash on the
	// first successful login; a failed write-back must not fail the login.
	if !cryptox.IsHashed(u.PasswordHash) {
		s.migratePassword(ctx, &u, password)
	}

	if u.Status != domain.StatusActive {
		s.audit.Record(role, email, "login_suspended", sourceIP)
		return LoginResult{}, ErrAccountSuspended
	}

	token, tenantID, err := s.sessions.IssueTenant(ctx, u)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.store.TenantUsers().TouchLogin(ctx, role, u.ID); err != nil {
		s.log.Warn("failed to record last login", "user_id", u.ID, "error", err)
	}
	s.audit.Record(role, email, "login_success", sourceIP)

	return LoginResult{Token: token, TenantID: tenantID, User: u}, nil
}

func (s *LoginService) migratePassword(ctx context.Context, u *domain.User, password string) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		s.log.Error("password migration hash failed", "user_id", u.ID, "error", err)
		return
	}
	if err := s.store.TenantUsers().UpdatePasswordHash(ctx, u.Role, u.ID, hash); err != nil {
		s.log.Error("password migration write failed", "user_id", u.ID, "error", err)
		return
	}
	u.PasswordHash = hash
	s.log.Info("migrated legacy password to bcrypt", "user_id", u.ID, "role", u.Role)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
