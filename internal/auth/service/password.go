package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fuelos-in/auth/internal/auth/audit"
	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/cryptox"
)

// MinPasswordLength applies to new passwords only. Existing credentials
// predate the rule and still verify.
const MinPasswordLength = 8

var ErrPasswordTooShort = errors.New("service: password too short")

// PasswordService changes passwords for any role. New passwords are
// always stored hashed, regardless of how the old one was stored.
type PasswordService struct {
	store store.Store
	audit *audit.Dispatcher
	log   *slog.Logger
}

func NewPasswordService(st store.Store, aud *audit.Dispatcher, log *slog.Logger) *PasswordService {
	return &PasswordService{store: st, audit: aud, log: log}
}

// Change verifies the current password and replaces it. The current
// password must match even when it is a legacy plaintext value.
func (s *PasswordService) Change(ctx context.Context, role domain.Role, userID, current, next string) error {
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	newHash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	if role.TenantScoped() {
		u, err := s.store.TenantUsers().GetByID(ctx, role, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !cryptox.VerifyPassword(current, u.PasswordHash) {
			return ErrInvalidCredentials
		}
		if err := s.store.TenantUsers().UpdatePasswordHash(ctx, role, userID, newHash); err != nil {
			return err
		}
		s.audit.Record(role, u.Email, "password_changed", "")
		return nil
	}

	if !role.Staff() {
		return ErrUnknownRole
	}

	u, err := s.store.Staff().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !cryptox.VerifyPassword(current, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := s.store.Staff().UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return err
	}
	s.audit.Record(role, u.Email, "password_changed", "")
	return nil
}
