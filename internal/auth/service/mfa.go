package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"log/slog"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/fuelos-in/auth/internal/auth/audit"
	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/cryptox"
)

const (
	backupCodeCount = 10
	qrSizePx        = 200
)

// MFAStatus describes a staff user's authenticator state.
type MFAStatus struct {
	Enabled         bool
	PendingSetup    bool
	BackupCodesLeft int
}

// MFAService manages authenticator enrollment for staff accounts.
// Enrollment is two-step: Setup stages a secret without touching the
// active one, and Enable promotes it only after the user proves they
// hold it by presenting a valid code.
type MFAService struct {
	store  store.Store
	audit  *audit.Dispatcher
	issuer string
	log    *slog.Logger
}

func NewMFAService(st store.Store, aud *audit.Dispatcher, issuer string, log *slog.Logger) *MFAService {
	return &MFAService{store: st, audit: aud, issuer: issuer, log: log}
}

// Setup generates a fresh TOTP secret and stages it as pending. Any
// earlier pending secret is replaced; an already-active secret keeps
// working until Enable promotes the new one.
func (s *MFAService) Setup(ctx context.Context, userID string) (domain.TOTPEnrollment, error) {
	u, err := s.store.Staff().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TOTPEnrollment{}, ErrNotFound
		}
		return domain.TOTPEnrollment{}, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: u.Email,
	})
	if err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("generate totp key: %w", err)
	}

	if err := s.store.Staff().SetPendingTOTPSecret(ctx, u.ID, key.Secret()); err != nil {
		return domain.TOTPEnrollment{}, err
	}

	qr, err := renderQRDataURI(key)
	if err != nil {
		// A missing QR image is cosmetic; the otpauth URL and manual
		// secret still let the user enroll.
		s.log.Warn("failed to render enrollment qr", "user_id", u.ID, "error", err)
	}

	return domain.TOTPEnrollment{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QR:         qr,
	}, nil
}

// Enable promotes the pending secret after the user presents a code
// generated from it, then rotates the backup code set. The returned
// plaintext codes are shown exactly once; only fingerprints are stored.
func (s *MFAService) Enable(ctx context.Context, userID, code string) ([]string, error) {
	u, err := s.store.Staff().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if u.PendingTOTPSecret == nil {
		return nil, ErrTOTPNotPending
	}
	if !totp.Validate(code, *u.PendingTOTPSecret) {
		return nil, ErrInvalidAuthenticatorCode
	}

	codes := make([]string, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		codes = append(codes, cryptox.GenerateBackupCode())
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Staff().EnableTOTP(ctx, u.ID); err != nil {
			return err
		}
		if err := tx.BackupCodes().DeleteAll(ctx, u.ID); err != nil {
			return err
		}
		for _, c := range codes {
			if err := tx.BackupCodes().Create(ctx, u.ID, cryptox.FingerprintCode(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The pending secret vanished between the check and the
			// promotion, likely a concurrent enable or disable.
			return nil, ErrTOTPNotPending
		}
		return nil, err
	}

	s.audit.Record(u.Role, u.Email, "totp_enabled", "")
	return codes, nil
}

// Disable turns the authenticator off. It is gated on the account
// password rather than a TOTP code, so a user who lost their device can
// still recover. All backup codes are wiped.
func (s *MFAService) Disable(ctx context.Context, userID, password string) error {
	u, err := s.store.Staff().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !u.TOTPEnabled {
		return ErrTOTPNotEnabled
	}

	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		return ErrInvalidCredentials
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Staff().DisableTOTP(ctx, u.ID); err != nil {
			return err
		}
		return tx.BackupCodes().DeleteAll(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(u.Role, u.Email, "totp_disabled", "")
	return nil
}

// Status reports the authenticator state for a staff user.
func (s *MFAService) Status(ctx context.Context, userID string) (MFAStatus, error) {
	u, err := s.store.Staff().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return MFAStatus{}, ErrNotFound
		}
		return MFAStatus{}, err
	}

	left, err := s.store.BackupCodes().Count(ctx, u.ID)
	if err != nil {
		return MFAStatus{}, err
	}

	return MFAStatus{
		Enabled:         u.TOTPEnabled,
		PendingSetup:    u.PendingTOTPSecret != nil,
		BackupCodesLeft: left,
	}, nil
}

// renderQRDataURI encodes the enrollment key as an inline PNG data URI
// suitable for an <img> tag.
func renderQRDataURI(key *otp.Key) (string, error) {
	img, err := key.Image(qrSizePx, qrSizePx)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
