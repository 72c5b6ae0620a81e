package sqlite

import (
	"context"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
)

type pumpsRepo struct {
	db dbtx
}

func (r *pumpsRepo) GetOwnerID(ctx context.Context, pumpID string) (string, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM pumps WHERE id = ?`, pumpID,
	)
	var ownerID string
	if err := row.Scan(&ownerID); err != nil {
		return "", mapNotFound(err)
	}
	return ownerID, nil
}

func (r *pumpsRepo) Create(ctx context.Context, p domain.Pump) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pumps (id, owner_id, name) VALUES (?, ?, ?)`,
		p.ID, p.OwnerID, p.Name,
	)
	return mapConflict(err)
}

var _ store.Pumps = (*pumpsRepo)(nil)
