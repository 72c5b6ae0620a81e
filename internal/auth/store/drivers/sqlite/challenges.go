package sqlite

import (
	"context"
	"time"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
)

type challengesRepo struct {
	db dbtx
}

// Upsert replaces any previous challenge for the same (email, role) so
// only the most recently issued code is valid.
func (r *challengesRepo) Upsert(ctx context.Context, c domain.Challenge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_challenges (email, role, code, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (email, role) DO UPDATE SET
		   code = excluded.code,
		   expires_at = excluded.expires_at,
		   created_at = excluded.created_at`,
		c.Email, string(c.Role), c.Code, c.ExpiresAt, c.CreatedAt,
	)
	return err
}

func (r *challengesRepo) Get(ctx context.Context, email string, role domain.Role) (domain.Challenge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT email, role, code, expires_at, created_at
		 FROM pending_challenges WHERE email = ? AND role = ?`,
		email, string(role),
	)
	var (
		c       domain.Challenge
		roleStr string
	)
	if err := row.Scan(&c.Email, &roleStr, &c.Code, &c.ExpiresAt, &c.CreatedAt); err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}
	c.Role = domain.Role(roleStr)
	return c, nil
}

// Consume atomically deletes and returns the non-expired challenge
// matching (role, code). The DELETE ... RETURNING form guarantees a
// given code verifies at most once even under concurrent attempts.
func (r *challengesRepo) Consume(ctx context.Context, role domain.Role, code string, now time.Time) (domain.Challenge, error) {
	row := r.db.QueryRowContext(ctx,
		`DELETE FROM pending_challenges
		 WHERE role = ? AND code = ? AND expires_at > ?
		 RETURNING email, role, code, expires_at, created_at`,
		string(role), code, now.UTC(),
	)
	var (
		c       domain.Challenge
		roleStr string
	)
	if err := row.Scan(&c.Email, &roleStr, &c.Code, &c.ExpiresAt, &c.CreatedAt); err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}
	c.Role = domain.Role(roleStr)
	return c, nil
}

func (r *challengesRepo) Delete(ctx context.Context, email string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_challenges WHERE email = ? AND role = ?`,
		email, string(role),
	)
	return err
}

func (r *challengesRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_challenges WHERE expires_at <= ?`, now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ store.Challenges = (*challengesRepo)(nil)
