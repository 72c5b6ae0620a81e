package domain

import "time"

// Status is the lifecycle state of an account. Rows are never
// hard-deleted; status flips instead.
type Status string

const (
	StatusActive    Status = "Active"
	StatusSuspended Status = "Suspended"
	StatusDeleted   Status = "Deleted"
)

// User is a tenant-scoped principal (owner, manager or operator).
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt encoded, or legacy plaintext pending migration
	Phone        string
	Role         Role
	OwnerID      string // owning tenant; empty for owners (self) and for legacy rows missing the reference
	PumpID       string // assigned pump; used as the tenant-resolution fallback
	Status       Status
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TenantID resolves the owning tenant directly where possible. Owners
// own themselves; managers/operators use the stored reference. Empty
// means the caller must fall back to the pump record.
func (u User) TenantID() string {
	if u.Role == RoleOwner {
		return u.ID
	}
	return u.OwnerID
}
