package service

import (
	"context"
	"log"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/store"
)

// AttemptPruner periodically expires unauthorized attempts that have sat
// pending longer than a configurable retention.  Expiry is a terminal
// state: an operator clicking a stale link gets "already processed", and
// the pending set stays bounded.
//
// A retention of 0 disables pruning entirely, which preserves the
// original behavior of attempts pending forever.
type AttemptPruner struct {
	store     store.AttemptStore
	retention time.Duration
	interval  time.Duration
	logger    *log.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// PrunerConfig holds the parameters for NewAttemptPruner.
type PrunerConfig struct {
	// RetentionHours is how long an attempt may stay pending.
	// 0 means never expire (pruner will not start).
	RetentionHours int

	// IntervalMinutes is how often the pruner runs.  Defaults to 60.
	IntervalMinutes int
}

// NewAttemptPruner creates a pruner but does not start it.
// Call Start to begin the background loop.
func NewAttemptPruner(s store.AttemptStore, cfg PrunerConfig, logger *log.Logger) *AttemptPruner {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	return &AttemptPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionHours) * time.Hour,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins the background loop.  It runs an immediate pass on
// startup, then repeats on the configured interval.  The loop exits when
// ctx is cancelled or Stop is called.
func (p *AttemptPruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		p.logger.Printf("attempt pruner disabled (retention=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Printf("attempt pruner started (retention=%dh, interval=%dm)",
		int(p.retention.Hours()), int(p.interval.Minutes()))
}

// Stop signals the pruner to exit and waits for it to finish.
func (p *AttemptPruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *AttemptPruner) loop(ctx context.Context) {
	defer close(p.done)

	// Expire any backlog that accumulated while the server was down.
	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *AttemptPruner) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-p.retention)
	expired, err := p.store.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		p.logger.Printf("attempt prune error: %v", err)
		return
	}
	if expired > 0 {
		p.logger.Printf("attempt prune: expired %d pending attempts older than %s",
			expired, cutoff.Format(time.RFC3339))
	}
}
