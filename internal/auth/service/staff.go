package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fuelos-in/auth/internal/auth/audit"
	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/cryptox"
	"github.com/fuelos-in/auth/pkg/idx"
)

// StaffService manages company staff accounts. Only the manageable
// roles (admin, monitor, caller) can be created or removed; the
// superadmin is seeded from the environment and untouchable here.
type StaffService struct {
	store store.Store
	audit *audit.Dispatcher
	log   *slog.Logger
}

func NewStaffService(st store.Store, aud *audit.Dispatcher, log *slog.Logger) *StaffService {
	return &StaffService{store: st, audit: aud, log: log}
}

// Create adds a staff account with a hashed password.
func (s *StaffService) Create(ctx context.Context, role domain.Role, name, email, password string) (domain.StaffUser, error) {
	if !role.Manageable() {
		return domain.StaffUser{}, ErrRoleNotManageable
	}
	if len(password) < MinPasswordLength {
		return domain.StaffUser{}, ErrPasswordTooShort
	}
	email = normalizeEmail(email)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.StaffUser{}, err
	}

	u := domain.StaffUser{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
	}
	if err := s.store.Staff().Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.StaffUser{}, ErrEmailTaken
		}
		return domain.StaffUser{}, err
	}

	s.audit.Record(role, email, "staff_created", "")
	return u, nil
}

// Delete removes a staff account along with its backup codes and any
// pending login challenge.
func (s *StaffService) Delete(ctx context.Context, id string) error {
	u, err := s.store.Staff().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !u.Role.Manageable() {
		return ErrRoleNotManageable
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAll(ctx, id); err != nil {
			return err
		}
		if err := tx.Challenges().Delete(ctx, u.Email, u.Role); err != nil {
			return err
		}
		return tx.Staff().Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.audit.Record(u.Role, u.Email, "staff_deleted", "")
	return nil
}

// List returns all manageable staff accounts.
func (s *StaffService) List(ctx context.Context) ([]domain.StaffUser, error) {
	return s.store.Staff().List(ctx)
}

// ResetPassword sets a staff account's password without knowing the old
// one. Superadmin recovery path; the superadmin's own row is excluded.
func (s *StaffService) ResetPassword(ctx context.Context, id, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	u, err := s.store.Staff().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !u.Role.Manageable() {
		return ErrRoleNotManageable
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.Staff().UpdatePasswordHash(ctx, id, hash); err != nil {
		return err
	}

	s.audit.Record(u.Role, u.Email, "staff_password_reset", "")
	return nil
}
