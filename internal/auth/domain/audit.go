package domain

import "time"

// AuditEntry records a security-relevant event. Emission is
// fire-and-forget; a failed write never fails the operation it records.
type AuditEntry struct {
	ID        string
	Role      Role
	Email     string
	Action    string // e.g. "Login"
	SourceIP  string
	CreatedAt time.Time
}

// Pump is the minimal slice of the pump record the session issuer needs
// to resolve a tenant when a manager/operator row is missing its direct
// owner reference.
type Pump struct {
	ID      string
	OwnerID string
	Name    string
}
