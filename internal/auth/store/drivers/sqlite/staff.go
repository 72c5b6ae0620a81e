package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
)

type staffRepo struct {
	db dbtx
}

const staffColumns = `id, name, email, password_hash, role, status, totp_enabled, totp_secret, pending_totp_secret, last_login, created_at, updated_at`

func scanStaffRow(scan func(dest ...any) error) (domain.StaffUser, error) {
	var (
		u         domain.StaffUser
		role      string
		status    string
		secret    sql.NullString
		pending   sql.NullString
		lastLogin sql.NullTime
	)
	err := scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &status,
		&u.TOTPEnabled, &secret, &pending, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.StaffUser{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.Status = domain.Status(status)
	u.TOTPSecret = mapNullStringPtr(secret)
	u.PendingTOTPSecret = mapNullStringPtr(pending)
	u.LastLogin = mapNullTimePtr(lastLogin)
	return u, nil
}

func (r *staffRepo) GetByEmail(ctx context.Context, role domain.Role, email string) (domain.StaffUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM company_users WHERE role = ? AND email = ?`,
		string(role), email,
	)
	return scanStaffRow(row.Scan)
}

func (r *staffRepo) GetByID(ctx context.Context, id string) (domain.StaffUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM company_users WHERE id = ?`, id,
	)
	return scanStaffRow(row.Scan)
}

func (r *staffRepo) GetSuperAdmin(ctx context.Context) (domain.StaffUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM company_users WHERE role = 'superadmin' LIMIT 1`,
	)
	return scanStaffRow(row.Scan)
}

func (r *staffRepo) Create(ctx context.Context, u domain.StaffUser) error {
	now := time.Now().UTC()
	status := u.Status
	if status == "" {
		status = domain.StatusActive
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO company_users (id, name, email, password_hash, role, status, totp_enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), string(status), now, now,
	)
	return mapConflict(err)
}

func (r *staffRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM company_users WHERE id = ? AND role != 'superadmin'`, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *staffRepo) List(ctx context.Context) ([]domain.StaffUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+staffColumns+` FROM company_users WHERE role != 'superadmin' ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StaffUser
	for rows.Next() {
		u, err := scanStaffRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *staffRepo) UpdatePasswordHash(ctx context.Context, id, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE company_users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *staffRepo) TouchLogin(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE company_users SET last_login = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *staffRepo) SetPendingTOTPSecret(ctx context.Context, id, secret string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE company_users SET pending_totp_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// EnableTOTP promotes the pending secret to active in a single statement,
// so a concurrent second enable sees no pending secret and fails.
func (r *staffRepo) EnableTOTP(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE company_users
		 SET totp_enabled = 1, totp_secret = pending_totp_secret, pending_totp_secret = NULL, updated_at = ?
		 WHERE id = ? AND pending_totp_secret IS NOT NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *staffRepo) DisableTOTP(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE company_users
		 SET totp_enabled = 0, totp_secret = NULL, pending_totp_secret = NULL, updated_at = ?
		 WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

var _ store.Staff = (*staffRepo)(nil)
