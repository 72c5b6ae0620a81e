package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/fuelos-in/auth/internal/auth/audit"
	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/notify"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/cryptox"
)

// DefaultChallengeTTL is how long an issued numeric login code stays
// valid.
const DefaultChallengeTTL = 10 * time.Minute

// VerifyResult is a freshly issued staff session.
type VerifyResult struct {
	Token string
	User  domain.StaffUser
}

// ChallengeService runs the two-step staff login: a password check that
// issues a short-lived second factor, then a verification step that
// redeems it for a session. Users with an authenticator app enrolled
// skip the emailed code and present a TOTP code instead.
type ChallengeService struct {
	store    store.Store
	sessions *SessionService
	notifier notify.Notifier
	audit    *audit.Dispatcher
	log      *slog.Logger
	ttl      time.Duration
}

func NewChallengeService(
	st store.Store,
	sessions *SessionService,
	notifier notify.Notifier,
	aud *audit.Dispatcher,
	log *slog.Logger,
	ttl time.Duration,
) *ChallengeService {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	return &ChallengeService{
		store:    st,
		sessions: sessions,
		notifier: notifier,
		audit:    aud,
		log:      log,
		ttl:      ttl,
	}
}

// Begin checks staff credentials and starts the second step. For
// authenticator-enrolled users no code is issued; the caller is told to
// collect a TOTP code. Everyone else gets a fresh numeric code that
// replaces any earlier pending one for the same account.
func (s *ChallengeService) Begin(ctx context.Context, role domain.Role, email, password, sourceIP string) (domain.ChallengeResult, error) {
	if !role.Staff() {
		return domain.ChallengeResult{}, ErrUnknownRole
	}
	email = normalizeEmail(email)

	u, err := s.lookupStaff(ctx, role, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.audit.Record(role, email, "admin_login_failed", sourceIP)
			return domain.ChallengeResult{}, ErrInvalidCredentials
		}
		return domain.ChallengeResult{}, err
	}

	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		s.audit.Record(role, u.Email, "admin_login_failed", sourceIP)
		return domain.ChallengeResult{}, ErrInvalidCredentials
	}

	if !cryptox.IsHashed(u.PasswordHash) {
		s.migrateStaffPassword(ctx, &u, password)
	}

	if u.Status != domain.StatusActive {
		s.audit.Record(role, u.Email, "admin_login_suspended", sourceIP)
		return domain.ChallengeResult{}, ErrAccountSuspended
	}

	if u.TOTPEnabled {
		s.audit.Record(role, u.Email, "admin_login_totp_required", sourceIP)
		return domain.ChallengeResult{TwoFA: true}, nil
	}

	code, err := cryptox.GenerateOTP()
	if err != nil {
		return domain.ChallengeResult{}, err
	}
	now := time.Now().UTC()
	ch := domain.Challenge{
		Email:     u.Email,
		Role:      u.Role,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.Challenges().Upsert(ctx, ch); err != nil {
		return domain.ChallengeResult{}, err
	}

	if err := s.notifier.SendChallenge(ctx, u.Email, code, ch.ExpiresAt); err != nil {
		s.log.Error("failed to deliver login code", "email", u.Email, "error", err)
	}
	s.audit.Record(role, u.Email, "admin_login_challenge_issued", sourceIP)

	return domain.ChallengeResult{Code: code, ExpiresAt: ch.ExpiresAt}, nil
}

// Verify redeems the second factor for a staff session. Authenticator
// users present a TOTP code, falling back to one of their single-use
// backup codes; everyone else presents the emailed numeric code, which
// is consumed on first use.
func (s *ChallengeService) Verify(ctx context.Context, role domain.Role, email, code, sourceIP string) (VerifyResult, error) {
	if !role.Staff() {
		return VerifyResult{}, ErrUnknownRole
	}
	email = normalizeEmail(email)

	u, err := s.resolveForVerify(ctx, role, email, code, sourceIP)
	if err != nil {
		return VerifyResult{}, err
	}

	if u.Status != domain.StatusActive {
		s.audit.Record(role, u.Email, "admin_verify_suspended", sourceIP)
		return VerifyResult{}, ErrAccountSuspended
	}

	token, err := s.sessions.IssueStaff(ctx, u)
	if err != nil {
		return VerifyResult{}, err
	}

	if err := s.store.Staff().TouchLogin(ctx, u.ID); err != nil {
		s.log.Warn("failed to record last login", "user_id", u.ID, "error", err)
	}
	s.audit.Record(role, u.Email, "admin_verify_success", sourceIP)

	return VerifyResult{Token: token, User: u}, nil
}

// resolveForVerify finds the staff user behind a verification attempt
// and checks their second factor.
func (s *ChallengeService) resolveForVerify(ctx context.Context, role domain.Role, email, code, sourceIP string) (domain.StaffUser, error) {
	// With an email on the request we can tell authenticator users from
	// numeric-code users up front.
	if email != "" || role == domain.RoleSuperAdmin {
		u, err := s.lookupStaff(ctx, role, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.audit.Record(role, email, "admin_verify_failed", sourceIP)
				return domain.StaffUser{}, ErrInvalidChallenge
			}
			return domain.StaffUser{}, err
		}

		if u.TOTPEnabled {
			if err := s.checkAuthenticator(ctx, u, code); err != nil {
				s.audit.Record(role, u.Email, "admin_verify_totp_failed", sourceIP)
				return domain.StaffUser{}, err
			}
			return u, nil
		}

		// Only this account's own pending challenge counts, and a failed
		// attempt must leave it intact for the rightful owner.
		ch, err := s.store.Challenges().Get(ctx, u.Email, role)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.audit.Record(role, u.Email, "admin_verify_failed", sourceIP)
				return domain.StaffUser{}, ErrInvalidChallenge
			}
			return domain.StaffUser{}, err
		}
		if ch.Code != code || ch.Expired(time.Now().UTC()) {
			s.audit.Record(role, u.Email, "admin_verify_failed", sourceIP)
			return domain.StaffUser{}, ErrInvalidChallenge
		}
		if err := s.store.Challenges().Delete(ctx, u.Email, role); err != nil {
			return domain.StaffUser{}, err
		}
		return u, nil
	}

	// Without an email the pending challenge itself identifies the user.
	ch, err := s.store.Challenges().Consume(ctx, role, code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.audit.Record(role, "", "admin_verify_failed", sourceIP)
			return domain.StaffUser{}, ErrInvalidChallenge
		}
		return domain.StaffUser{}, err
	}

	u, err := s.store.Staff().GetByEmail(ctx, role, ch.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.StaffUser{}, ErrInvalidChallenge
		}
		return domain.StaffUser{}, err
	}
	return u, nil
}

// checkAuthenticator validates a TOTP code against the active secret,
// falling back to burning a single-use backup code.
func (s *ChallengeService) checkAuthenticator(ctx context.Context, u domain.StaffUser, code string) error {
	if u.TOTPSecret != nil && totp.Validate(code, *u.TOTPSecret) {
		return nil
	}

	burned, err := s.store.BackupCodes().Burn(ctx, u.ID, cryptox.FingerprintCode(code))
	if err != nil {
		return err
	}
	if !burned {
		return ErrInvalidAuthenticatorCode
	}
	s.log.Info("backup code used", "user_id", u.ID)
	return nil
}

// lookupStaff resolves a staff account. The superadmin is a singleton
// seeded from the environment, so it may be addressed without an email.
func (s *ChallengeService) lookupStaff(ctx context.Context, role domain.Role, email string) (domain.StaffUser, error) {
	if role == domain.RoleSuperAdmin && email == "" {
		return s.store.Staff().GetSuperAdmin(ctx)
	}
	return s.store.Staff().GetByEmail(ctx, role, email)
}

func (s *ChallengeService) migrateStaffPassword(ctx context.Context, u *domain.StaffUser, password string) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		s.log.Error("password migration hash failed", "user_id", u.ID, "error", err)
		return
	}
	if err := s.store.Staff().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		s.log.Error("password migration write failed", "user_id", u.ID, "error", err)
		return
	}
	u.PasswordHash = hash
	s.log.Info("migrated legacy password to bcrypt", "user_id", u.ID, "role", u.Role)
}
