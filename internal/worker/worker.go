package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/common/metrics"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

type Config struct {
	BatchSize         int
	PollInterval      time.Duration
	DebugRoomPrefixes []string
}

// Worker claims received events and hands each to an EventHandler, then runs
// the SLA monitor. Several workers may run against the same database; the
// claim statement guarantees each event goes to exactly one of them.
type Worker struct {
	events    store.MessageEventStore
	handler   EventHandler
	sla       SLAScanner
	waker     Waker
	cfg       Config
	logger    *slog.Logger
	lastCycle atomic.Int64

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New builds a Worker. sla and waker may be nil; without a waker the loop
// sleeps for PollInterval between passes.
func New(events store.MessageEventStore, handler EventHandler, sla SLAScanner, waker Waker, cfg Config, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &Worker{
		events:    events,
		handler:   handler,
		sla:       sla,
		waker:     waker,
		cfg:       cfg,
		logger:    logger,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "cs.worker"})
	w.logger.InfoContext(ctx, "worker started",
		"batch_size", w.cfg.BatchSize,
		"poll_interval", w.cfg.PollInterval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			w.logger.InfoContext(ctx, "worker stopping")
			return nil
		default:
		}

		claimed, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "worker cycle error", "error", err)
		}
		if claimed >= w.cfg.BatchSize {
			continue
		}
		w.wait(ctx)
	}
}

// Stop signals Run to return after the current pass and waits for it.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

// LastCycle is when the most recent pass finished, zero before the first.
func (w *Worker) LastCycle() time.Time {
	ns := w.lastCycle.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// RunOnce claims and processes one batch, then runs the SLA monitor. It
// returns the number of events claimed.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	defer w.lastCycle.Store(time.Now().UnixNano())

	events, err := w.events.Claim(ctx, w.cfg.BatchSize)
	if err != nil {
		w.scanSLA(ctx)
		return 0, fmt.Errorf("claiming events: %w", err)
	}
	metrics.ClaimBatchSize.Observe(float64(len(events)))

	slices.SortStableFunc(events, func(a, b model.MessageEvent) int {
		return a.ReceivedAt.Compare(b.ReceivedAt)
	})

	for _, e := range events {
		w.handle(ctx, e)
	}

	w.scanSLA(ctx)
	return len(events), nil
}

func (w *Worker) handle(ctx context.Context, e model.MessageEvent) {
	eventID := e.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		EventID:  &eventID,
		ChatRoom: &e.ChatRoom,
	})

	// A batch can outlive the reclaimer's stale window, so each event's
	// claim is renewed right before it is worked on.
	claimedAt, err := w.events.TouchClaim(ctx, e.ID, e.Claim())
	if err != nil {
		w.logClaimErr(ctx, "failed to renew event claim", err)
		return
	}
	e.ClaimedAt = &claimedAt

	if w.isDebugRoom(e.ChatRoom) {
		if err := w.events.MarkSkipped(ctx, e.ID, claimedAt); err != nil {
			w.logClaimErr(ctx, "failed to mark debug event skipped", err)
			return
		}
		metrics.EventsProcessed.WithLabelValues(string(model.IngestStatusSkipped)).Inc()
		w.logger.DebugContext(ctx, "debug room event skipped")
		return
	}

	if err := w.processSafe(ctx, e); err != nil {
		if errors.Is(err, store.ErrClaimLost) {
			w.logClaimErr(ctx, "event processing rolled back", err)
			return
		}
		w.logger.ErrorContext(ctx, "event processing failed", "error", err)
		if markErr := w.events.MarkError(ctx, e.ID, claimedAt, err.Error()); markErr != nil {
			w.logClaimErr(ctx, "failed to mark event errored", markErr)
			return
		}
		metrics.EventsProcessed.WithLabelValues(string(model.IngestStatusError)).Inc()
		return
	}
	metrics.EventsProcessed.WithLabelValues(string(model.IngestStatusProcessed)).Inc()
}

// logClaimErr logs a lost claim as a warning, since another worker now owns
// the event, and anything else as an error.
func (w *Worker) logClaimErr(ctx context.Context, msg string, err error) {
	if errors.Is(err, store.ErrClaimLost) {
		w.logger.WarnContext(ctx, msg+": claim taken over by another worker")
		return
	}
	w.logger.ErrorContext(ctx, msg, "error", err)
}

func (w *Worker) processSafe(ctx context.Context, e model.MessageEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.ErrorContext(ctx, "panic recovered in event processing", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.handler.Process(ctx, e)
}

func (w *Worker) scanSLA(ctx context.Context) {
	if w.sla == nil || ctx.Err() != nil {
		return
	}
	w.sla.Scan(ctx)
}

func (w *Worker) isDebugRoom(room string) bool {
	for _, prefix := range w.cfg.DebugRoomPrefixes {
		if prefix != "" && strings.HasPrefix(room, prefix) {
			return true
		}
	}
	return false
}

// wait returns after PollInterval, on a wake-up, or when the worker is stopped.
func (w *Worker) wait(ctx context.Context) {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	if w.waker != nil {
		w.waker.Wait(waitCtx, w.cfg.PollInterval)
		return
	}

	timer := time.NewTimer(w.cfg.PollInterval)
	defer timer.Stop()
	select {
	case <-waitCtx.Done():
	case <-timer.C:
	}
}
