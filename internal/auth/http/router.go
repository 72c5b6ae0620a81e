// Package http exposes the authentication service over a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/service"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/httpx"
	"github.com/fuelos-in/auth/pkg/jwtx"
)

// Router wires the auth endpoints onto a mux.
type Router struct {
	Log *slog.Logger

	Login      *service.LoginService
	Challenges *service.ChallengeService
	MFA        *service.MFAService
	Passwords  *service.PasswordService
	StaffMgmt  *service.StaffService

	Store store.Store

	// TenantVerifier validates owner/manager/operator tokens,
	// StaffVerifier validates company staff tokens. Endpoints shared by
	// both accept either.
	TenantVerifier jwtx.Verifier
	StaffVerifier  jwtx.Verifier

	// ExposeChallengeCode echoes the issued numeric code in the
	// admin-login response. Development convenience only; production
	// delivers the code out of band.
	ExposeChallengeCode bool
}

// ApplyRoutes mounts all endpoints. Credential endpoints are rate
// limited by IP, authenticated mutations by user.
func (rt *Router) ApplyRoutes(mux *http.ServeMux) {
	anyAuthn := httpx.AuthnMiddleware(jwtx.Multi(rt.TenantVerifier, rt.StaffVerifier))
	staffAuthn := httpx.AuthnMiddleware(rt.StaffVerifier)

	staffRoles := []string{
		domain.RoleAdmin.String(),
		domain.RoleSuperAdmin.String(),
		domain.RoleMonitor.String(),
		domain.RoleCaller.String(),
	}

	mux.Handle("POST /v1/auth/login", httpx.Chain(
		http.HandlerFunc(rt.handleLogin),
		httpx.RateLimitByIP(httpx.StrictLimit),
	))
	mux.Handle("POST /v1/auth/admin-login", httpx.Chain(
		http.HandlerFunc(rt.handleAdminLogin),
		httpx.RateLimitByIP(httpx.StrictLimit),
	))
	mux.Handle("POST /v1/auth/admin-verify", httpx.Chain(
		http.HandlerFunc(rt.handleAdminVerify),
		httpx.RateLimitByIP(httpx.StrictLimit),
	))

	mux.Handle("GET /v1/auth/me", httpx.Chain(
		http.HandlerFunc(rt.handleMe),
		anyAuthn,
		httpx.RateLimitByUser(httpx.LenientLimit),
	))
	mux.Handle("PATCH /v1/auth/password", httpx.Chain(
		http.HandlerFunc(rt.handleChangePassword),
		anyAuthn,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))

	mux.Handle("GET /v1/auth/2fa/status", httpx.Chain(
		http.HandlerFunc(rt.handleTwoFAStatus),
		staffAuthn,
		httpx.RequireAnyRole(staffRoles...),
		httpx.RateLimitByUser(httpx.LenientLimit),
	))
	mux.Handle("POST /v1/auth/2fa/setup", httpx.Chain(
		http.HandlerFunc(rt.handleTwoFASetup),
		staffAuthn,
		httpx.RequireAnyRole(staffRoles...),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	mux.Handle("POST /v1/auth/2fa/enable", httpx.Chain(
		http.HandlerFunc(rt.handleTwoFAEnable),
		staffAuthn,
		httpx.RequireAnyRole(staffRoles...),
		httpx.RateLimitByUser(httpx.StrictLimit),
	))
	mux.Handle("POST /v1/auth/2fa/disable", httpx.Chain(
		http.HandlerFunc(rt.handleTwoFADisable),
		staffAuthn,
		httpx.RequireAnyRole(staffRoles...),
		httpx.RateLimitByUser(httpx.StrictLimit),
	))

	superadminOnly := httpx.RequireAnyRole(domain.RoleSuperAdmin.String())
	mux.Handle("GET /v1/auth/company-users", httpx.Chain(
		http.HandlerFunc(rt.handleListStaff),
		staffAuthn,
		httpx.RequireAnyRole(domain.RoleAdmin.String(), domain.RoleSuperAdmin.String()),
		httpx.RateLimitByUser(httpx.LenientLimit),
	))
	mux.Handle("POST /v1/auth/company-users", httpx.Chain(
		http.HandlerFunc(rt.handleCreateStaff),
		staffAuthn, superadminOnly,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	mux.Handle("DELETE /v1/auth/company-users/{id}", httpx.Chain(
		http.HandlerFunc(rt.handleDeleteStaff),
		staffAuthn, superadminOnly,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	mux.Handle("PATCH /v1/auth/company-users/{id}/password", httpx.Chain(
		http.HandlerFunc(rt.handleResetStaffPassword),
		staffAuthn, superadminOnly,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))

	mux.HandleFunc("GET /livez", rt.handleLivez)
	mux.HandleFunc("GET /readyz", rt.handleReadyz)
}

// decode reads a JSON body, rejecting unknown garbage early.
func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service sentinels onto the public error
// taxonomy. Unexpected errors surface as a storage problem so internal
// detail never leaks to clients.
func (rt *Router) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, service.ErrAccountSuspended):
		httpx.WriteError(w, http.StatusForbidden, "account_suspended")
	case errors.Is(err, service.ErrInvalidChallenge):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_or_expired_challenge")
	case errors.Is(err, service.ErrInvalidAuthenticatorCode):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_authenticator_code")
	case errors.Is(err, service.ErrPasswordTooShort):
		httpx.WriteError(w, http.StatusBadRequest, "password_too_short")
	case errors.Is(err, service.ErrUnknownRole), errors.Is(err, service.ErrRoleNotManageable):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "email_taken")
	case errors.Is(err, service.ErrTOTPNotPending):
		httpx.WriteError(w, http.StatusBadRequest, "no_pending_enrollment")
	case errors.Is(err, service.ErrTOTPNotEnabled):
		httpx.WriteError(w, http.StatusBadRequest, "authenticator_not_enabled")
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found")
	default:
		rt.Log.Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "store_unavailable")
	}
}
