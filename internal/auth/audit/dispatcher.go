// Package audit records authentication events asynchronously so that a
// slow or failing audit write never blocks a login.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/idx"
)

const (
	queueSize    = 256
	writeTimeout = 5 * time.Second
)

// Dispatcher buffers audit entries and writes them from a background
// goroutine. Record never blocks; if the queue is full the entry is
// dropped with a warning.
type Dispatcher struct {
	repo store.Audit
	log  *slog.Logger

	queue chan domain.AuditEntry
	done  chan struct{}
	once  sync.Once
}

func NewDispatcher(repo store.Audit, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		repo:  repo,
		log:   log,
		queue: make(chan domain.AuditEntry, queueSize),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Record enqueues an audit entry. Fire and forget.
func (d *Dispatcher) Record(role domain.Role, email, action, sourceIP string) {
	e := domain.AuditEntry{
		ID:        idx.New().String(),
		Role:      role,
		Email:     email,
		Action:    action,
		SourceIP:  sourceIP,
		CreatedAt: time.Now().UTC(),
	}
	select {
	case d.queue <- e:
	default:
		d.log.Warn("audit queue full, dropping entry", "action", action, "email", email)
	}
}

func (d *Dispatcher) run() {
	for e := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := d.repo.Insert(ctx, e); err != nil {
			d.log.Error("audit write failed", "action", e.Action, "error", err)
		}
		cancel()
	}
	close(d.done)
}

// Close drains the queue and stops the background writer.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
		<-d.done
	})
}
