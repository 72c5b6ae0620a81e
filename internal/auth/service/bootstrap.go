package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/cryptox"
	"github.com/fuelos-in/auth/pkg/idx"
)

// EnsureSuperAdmin seeds the singleton superadmin account from the
// configured credentials. Safe to run on every boot: if the row exists
// nothing changes, even when the configured password has since rotated.
func EnsureSuperAdmin(ctx context.Context, st store.Store, email, password string, log *slog.Logger) error {
	if email == "" || password == "" {
		log.Warn("superadmin seed skipped, credentials not configured")
		return nil
	}

	_, err := st.Staff().GetSuperAdmin(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("superadmin lookup: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	u := domain.StaffUser{
		ID:           idx.New().String(),
		Name:         "Super Admin",
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		Status:       domain.StatusActive,
	}
	if err := st.Staff().Create(ctx, u); err != nil {
		// A concurrent boot may have seeded it first.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("superadmin seed: %w", err)
	}

	log.Info("seeded superadmin account", "email", u.Email)
	return nil
}
