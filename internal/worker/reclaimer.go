package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/common/metrics"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

type ReclaimerConfig struct {
	// StaleAfter is how long an event may sit in processing since its claim
	// was last renewed before it is assumed abandoned. The worker renews a
	// claim as it starts each event, so this only has to outlast one event.
	StaleAfter time.Duration
	Interval   time.Duration
}

// Reclaimer periodically returns stale processing events to received.
// This handles the crash recovery scenario where a worker dies after
// claiming a batch but before finishing it.
type Reclaimer struct {
	events store.MessageEventStore
	cfg    ReclaimerConfig
	now    func() time.Time
	logger *slog.Logger

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewReclaimer(events store.MessageEventStore, cfg ReclaimerConfig, logger *slog.Logger) *Reclaimer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 10 * time.Minute
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Reclaimer{
		events:    events,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run starts the reclaimer loop. Blocks until Stop() is called or ctx ends.
func (r *Reclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "cs.worker.reclaimer"})

	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"stale_after", r.cfg.StaleAfter)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			r.logger.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			if _, err := r.ReclaimOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "reclaim cycle error", "error", err)
			}
		}
	}
}

// Stop signals the reclaimer to stop gracefully.
func (r *Reclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// ReclaimOnce releases every event claimed before now - StaleAfter.
func (r *Reclaimer) ReclaimOnce(ctx context.Context) (int64, error) {
	n, err := r.events.ReleaseStale(ctx, r.now().Add(-r.cfg.StaleAfter))
	if err != nil {
		return 0, fmt.Errorf("releasing stale claims: %w", err)
	}
	if n > 0 {
		metrics.StaleClaimsReleased.Add(float64(n))
		r.logger.WarnContext(ctx, "released stale claims", "count", n)
	}
	return n, nil
}
