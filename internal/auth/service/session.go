package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/jwtx"
)

// SessionService mints role-scoped session tokens. Tenant-bound roles and
// company staff sign with separate secrets.
type SessionService struct {
	store        store.Store
	tenantSigner jwtx.Signer
	staffSigner  jwtx.Signer
	issuer       string
	log          *slog.Logger
}

func NewSessionService(st store.Store, tenantSigner, staffSigner jwtx.Signer, issuer string, log *slog.Logger) *SessionService {
	return &SessionService{
		store:        st,
		tenantSigner: tenantSigner,
		staffSigner:  staffSigner,
		issuer:       issuer,
		log:          log,
	}
}

// IssueTenant mints a session token for an owner, manager or operator.
// It also resolves the user's tenant: owners are their own tenant,
// managers and operators carry an owner reference, and rows that predate
// the owner reference fall back to resolving the tenant through their
// assigned pump. A user with no resolvable tenant still gets a token,
// with an empty tenant claim.
func (s *SessionService) IssueTenant(ctx context.Context, u domain.User) (token, tenantID string, err error) {
	tenantID = s.resolveTenant(ctx, u)

	claims := jwtx.NewClaims(
		u.ID, u.Email, u.Role.String(), tenantID, u.Name,
		s.issuer, u.Role.TokenTTL(), time.Now().UTC(),
	)
	token, err = s.tenantSigner.Sign(claims)
	if err != nil {
		return "", "", err
	}
	return token, tenantID, nil
}

// IssueStaff mints a short-lived session token for a company staff user.
// Staff tokens carry no tenant claim.
func (s *SessionService) IssueStaff(_ context.Context, u domain.StaffUser) (string, error) {
	claims := jwtx.NewClaims(
		u.ID, u.Email, u.Role.String(), "", u.Name,
		s.issuer, u.Role.TokenTTL(), time.Now().UTC(),
	)
	return s.staffSigner.Sign(claims)
}

func (s *SessionService) resolveTenant(ctx context.Context, u domain.User) string {
	if id := u.TenantID(); id != "" {
		return id
	}
	if u.PumpID == "" {
		s.log.Warn("user has no tenant reference", "user_id", u.ID, "role", u.Role)
		return ""
	}

	ownerID, err := s.store.Pumps().GetOwnerID(ctx, u.PumpID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error("pump lookup failed during tenant resolution",
				"user_id", u.ID, "pump_id", u.PumpID, "error", err)
		} else {
			s.log.Warn("pump has no owner, issuing token without tenant",
				"user_id", u.ID, "pump_id", u.PumpID)
		}
		return ""
	}
	return ownerID
}
