package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the closed set of principal roles. Tenant-scoped roles live in
// per-role tables and sign with the tenant secret; company-staff roles
// share the company_users table and sign with the staff secret.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"

	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
	RoleMonitor    Role = "monitor"
	RoleCaller     Role = "caller"
)

// ErrUnknownRole reports a role string outside the closed set.
var ErrUnknownRole = errors.New("domain: unknown role")

// roleInfo is the single table driving all per-role behavior, replacing
// scattered role-string branching.
type roleInfo struct {
	table        string        // storage class
	tokenTTL     time.Duration // session token lifetime
	tenantScoped bool
	manageable   bool // creatable/deletable via staff management
}

const (
	tenantTokenTTL = 7 * 24 * time.Hour
	staffTokenTTL  = 12 * time.Hour
)

var roleTable = map[Role]roleInfo{
	RoleOwner:    {table: "owners", tokenTTL: tenantTokenTTL, tenantScoped: true},
	RoleManager:  {table: "managers", tokenTTL: tenantTokenTTL, tenantScoped: true},
	RoleOperator: {table: "operators", tokenTTL: tenantTokenTTL, tenantScoped: true},

	RoleAdmin:      {table: "company_users", tokenTTL: staffTokenTTL, manageable: true},
	RoleSuperAdmin: {table: "company_users", tokenTTL: staffTokenTTL},
	RoleMonitor:    {table: "company_users", tokenTTL: staffTokenTTL, manageable: true},
	RoleCaller:     {table: "company_users", tokenTTL: staffTokenTTL, manageable: true},
}

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleTable[r]; !ok {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Valid reports whether the role is in the closed set.
func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

// TenantScoped reports whether the role belongs to a tenant account
// (owner/manager/operator) rather than company staff.
func (r Role) TenantScoped() bool {
	return roleTable[r].tenantScoped
}

// Staff reports whether the role is a company-staff role.
func (r Role) Staff() bool {
	return r.Valid() && !roleTable[r].tenantScoped
}

// Manageable reports whether staff management may create or delete users
// with this role. The superadmin row is seeded at startup and is never
// managed through the API.
func (r Role) Manageable() bool {
	return roleTable[r].manageable
}

// TokenTTL returns the session token lifetime for the role.
func (r Role) TokenTTL() time.Duration {
	return roleTable[r].tokenTTL
}

// Table returns the storage table backing the role.
func (r Role) Table() string {
	return roleTable[r].table
}

func (r Role) String() string { return string(r) }
