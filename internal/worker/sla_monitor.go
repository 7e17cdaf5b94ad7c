package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wjlee930501/motion-ai-cs/common/id"
	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/internal/alert"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

type SLAConfig struct {
	Threshold time.Duration
	ScanLimit int
}

type SLAScanResult struct {
	Candidates int
	Alerted    int
	Failed     int
	// Skipped counts tickets answered or locked by another worker since the scan.
	Skipped int
}

// SLAMonitor alerts on tickets that have waited past the response threshold.
// A ticket is marked breached only after the alert was delivered, so a failed
// delivery is retried on the next pass.
type SLAMonitor struct {
	tickets  store.TicketStore
	txRunner service.TxRunner
	alerts   alert.Dispatcher
	cfg      SLAConfig
	now      func() time.Time
	logger   *slog.Logger
}

func NewSLAMonitor(tickets store.TicketStore, txRunner service.TxRunner, alerts alert.Dispatcher, cfg SLAConfig, logger *slog.Logger) *SLAMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 20 * time.Minute
	}
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = 100
	}
	return &SLAMonitor{
		tickets:  tickets,
		txRunner: txRunner,
		alerts:   alerts,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

func (m *SLAMonitor) Scan(ctx context.Context) SLAScanResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "cs.worker.sla_monitor"})

	var result SLAScanResult
	cutoff := m.now().Add(-m.cfg.Threshold)

	ids, err := m.tickets.ListSLACandidateIDs(ctx, cutoff, m.cfg.ScanLimit)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to list SLA candidates", "error", err)
		return result
	}
	result.Candidates = len(ids)

	for _, ticketID := range ids {
		if ctx.Err() != nil {
			break
		}
		alerted, err := m.checkTicket(ctx, ticketID, cutoff)
		switch {
		case errors.Is(err, store.ErrNotFound):
			result.Skipped++
		case err != nil:
			result.Failed++
			m.logger.ErrorContext(ctx, "SLA check failed", "ticket_id", ticketID, "error", err)
		case alerted:
			result.Alerted++
		default:
			result.Failed++
		}
	}

	if result.Candidates > 0 {
		m.logger.InfoContext(ctx, "SLA scan complete",
			"candidates", result.Candidates,
			"alerted", result.Alerted,
			"failed", result.Failed,
			"skipped", result.Skipped)
	}
	return result
}

// checkTicket re-locks the ticket with the breach predicate, alerts, logs the
// attempt and marks the breach, all in one transaction. Nothing is logged
// when no request went out.
func (m *SLAMonitor) checkTicket(ctx context.Context, ticketID int64, cutoff time.Time) (bool, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{TicketID: &ticketID})
	delivered := false

	err := m.txRunner.WithTx(ctx, func(sp service.StoreProvider) error {
		t, err := sp.Tickets().LockSLACandidate(ctx, ticketID, cutoff)
		if err != nil {
			return err
		}

		var text string
		latest, err := sp.MessageEvents().LatestCustomerForTicket(ctx, ticketID)
		switch {
		case err == nil:
			text = latest.Text
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("loading latest customer message: %w", err)
		}

		now := m.now()
		elapsed := 0
		if t.FirstInboundAt != nil {
			elapsed = int(now.Sub(*t.FirstInboundAt).Minutes())
		}

		d := m.send(ctx, alert.SLABreach{
			TicketID:       t.ID,
			ClinicKey:      t.ClinicKey,
			CustomerText:   text,
			ElapsedMinutes: elapsed,
		})

		if !d.Attempted() {
			m.logger.DebugContext(ctx, "SLA alert not sent; ticket stays eligible", "error", d.Err)
			return nil
		}

		entry := d.LogEntry(t.ID, model.AlertKindSLABreach)
		entry.ID = id.New()
		entry.SentAt = now
		if err := sp.AlertLogs().Create(ctx, entry); err != nil {
			return fmt.Errorf("logging SLA alert: %w", err)
		}

		if !d.Delivered {
			m.logger.WarnContext(ctx, "SLA alert not delivered; ticket stays eligible",
				"elapsed_minutes", elapsed, "error", d.Err)
			return nil
		}

		if err := sp.Tickets().MarkSLABreached(ctx, t.ID, now); err != nil {
			return fmt.Errorf("marking SLA breached: %w", err)
		}
		delivered = true
		m.logger.InfoContext(ctx, "SLA breach alerted", "elapsed_minutes", elapsed)
		return nil
	})
	if err != nil {
		return false, err
	}
	return delivered, nil
}

func (m *SLAMonitor) send(ctx context.Context, a alert.SLABreach) alert.Delivery {
	if m.alerts == nil {
		return alert.Delivery{Err: alert.ErrNotConfigured}
	}
	return m.alerts.SendSLABreach(ctx, a)
}
