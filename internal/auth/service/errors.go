package service

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so callers cannot distinguish which one failed.
	ErrInvalidCredentials = errors.New("service: invalid credentials")

	// ErrAccountSuspended is returned after the password check succeeds
	// for an account whose status is not active.
	ErrAccountSuspended = errors.New("service: account suspended")

	// ErrInvalidChallenge covers wrong, expired and already-consumed
	// numeric codes alike.
	ErrInvalidChallenge = errors.New("service: invalid or expired challenge")

	// ErrInvalidAuthenticatorCode covers a failed TOTP check and a failed
	// backup code fallback alike.
	ErrInvalidAuthenticatorCode = errors.New("service: invalid authenticator code")

	// ErrTOTPNotPending is returned when enable is attempted with no
	// enrollment in progress.
	ErrTOTPNotPending = errors.New("service: no pending authenticator enrollment")

	// ErrTOTPNotEnabled is returned when a TOTP operation requires an
	// active enrollment and there is none.
	ErrTOTPNotEnabled = errors.New("service: authenticator not enabled")

	ErrUnknownRole = errors.New("service: unknown role")
	ErrEmailTaken  = errors.New("service: email already registered")
	ErrNotFound    = errors.New("service: not found")

	// ErrRoleNotManageable guards staff management against creating or
	// deleting roles outside admin/monitor/caller.
	ErrRoleNotManageable = errors.New("service: role is not manageable")
)
