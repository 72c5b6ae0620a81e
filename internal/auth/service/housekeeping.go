package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fuelos-in/auth/internal/auth/store"
)

// DefaultSweepInterval is how often expired challenges are purged.
const DefaultSweepInterval = 5 * time.Minute

// Housekeeper periodically removes expired login challenges so the
// pending table stays small and expired codes cannot linger.
type Housekeeper struct {
	store    store.Store
	log      *slog.Logger
	interval time.Duration
}

func NewHousekeeper(st store.Store, log *slog.Logger, interval time.Duration) *Housekeeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Housekeeper{store: st, log: log, interval: interval}
}

// Run sweeps on a ticker until the context is cancelled.
func (h *Housekeeper) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweep(ctx)
		}
	}
}

func (h *Housekeeper) sweep(ctx context.Context) {
	n, err := h.store.Challenges().DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		h.log.Error("challenge sweep failed", "error", err)
		return
	}
	if n > 0 {
		h.log.Debug("swept expired challenges", "count", n)
	}
}
