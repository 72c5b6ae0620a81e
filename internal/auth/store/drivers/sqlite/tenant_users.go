package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
)

type tenantUsersRepo struct {
	db dbtx
}

// tenantColumns yields a uniform column list across the three tenant
// tables. Owners have no owner_id/pump_id columns (an owner is its own
// tenant), so those select as empty strings. Table names come from the
// closed role table, never from input.
func tenantColumns(role domain.Role) string {
	if role == domain.RoleOwner {
		return `id, name, email, password_hash, phone, '' AS owner_id, '' AS pump_id, status, last_login, created_at, updated_at`
	}
	return `id, name, email, password_hash, phone, COALESCE(owner_id, ''), COALESCE(pump_id, ''), status, last_login, created_at, updated_at`
}

func scanTenantUser(row *sql.Row, role domain.Role) (domain.User, error) {
	var (
		u         domain.User
		lastLogin sql.NullTime
		status    string
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone,
		&u.OwnerID, &u.PumpID, &status, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = role
	u.Status = domain.Status(status)
	u.LastLogin = mapNullTimePtr(lastLogin)
	return u, nil
}

func (r *tenantUsersRepo) GetByEmail(ctx context.Context, role domain.Role, email string) (domain.User, error) {
	if !role.TenantScoped() {
		return domain.User{}, store.ErrNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = ?`, tenantColumns(role), role.Table())
	return scanTenantUser(r.db.QueryRowContext(ctx, query, email), role)
}

func (r *tenantUsersRepo) GetByID(ctx context.Context, role domain.Role, id string) (domain.User, error) {
	if !role.TenantScoped() {
		return domain.User{}, store.ErrNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, tenantColumns(role), role.Table())
	return scanTenantUser(r.db.QueryRowContext(ctx, query, id), role)
}

func (r *tenantUsersRepo) Create(ctx context.Context, u domain.User) error {
	if !u.Role.TenantScoped() {
		return fmt.Errorf("sqlite: role %q is not tenant-scoped", u.Role)
	}

	now := time.Now().UTC()
	status := u.Status
	if status == "" {
		status = domain.StatusActive
	}

	if u.Role == domain.RoleOwner {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO owners (id, name, email, password_hash, phone, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, string(status), now, now,
		)
		return mapConflict(err)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (id, name, email, password_hash, phone, owner_id, pump_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, u.Role.Table())
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Phone,
		nullIfEmpty(u.OwnerID), nullIfEmpty(u.PumpID), string(status), now, now,
	)
	return mapConflict(err)
}

func (r *tenantUsersRepo) UpdatePasswordHash(ctx context.Context, role domain.Role, id, newHash string) error {
	if !role.TenantScoped() {
		return store.ErrNotFound
	}
	query := fmt.Sprintf(`UPDATE %s SET password_hash = ?, updated_at = ? WHERE id = ?`, role.Table())
	res, err := r.db.ExecContext(ctx, query, newHash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *tenantUsersRepo) TouchLogin(ctx context.Context, role domain.Role, id string) error {
	if !role.TenantScoped() {
		return store.ErrNotFound
	}
	query := fmt.Sprintf(`UPDATE %s SET last_login = ? WHERE id = ?`, role.Table())
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ store.TenantUsers = (*tenantUsersRepo)(nil)

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
