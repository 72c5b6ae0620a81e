package domain

import "time"

// StaffUser is a company-staff principal (admin, superadmin, monitor or
// caller). Exactly one superadmin exists, seeded at startup.
type StaffUser struct {
	ID           string
	Name         string
	Email        string // globally unique across staff
	PasswordHash string
	Role         Role
	Status       Status

	// TOTP state. The pending secret is written during enrollment setup
	// and only promoted to the active slot once a code is confirmed, so
	// a half-finished enrollment never affects login.
	TOTPEnabled       bool
	TOTPSecret        *string
	PendingTOTPSecret *string

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
