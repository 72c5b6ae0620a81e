package sqlite

import (
	"context"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
)

type auditRepo struct {
	db dbtx
}

func (r *auditRepo) Insert(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, role, email, action, source_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Role), e.Email, e.Action, e.SourceIP, e.CreatedAt,
	)
	return err
}

var _ store.Audit = (*auditRepo)(nil)
