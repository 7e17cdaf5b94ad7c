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
	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
	"github.com/wjlee930501/motion-ai-cs/internal/ticket"
)

const (
	linkTypeMessage = "message"
	snippetRunes    = 200
	contextRunes    = 100
)

type ProcessorConfig struct {
	// ContextTurns is how many earlier messages in the room the classifier sees.
	ContextTurns int
}

// EventProcessor classifies one event and folds it into its conversation's
// ticket. Classification runs before the write transaction so no lock is held
// during model calls.
type EventProcessor struct {
	events     store.MessageEventStore
	profiles   ProfileSource
	alertLogs  store.AlertLogStore
	classifier Classifier
	txRunner   service.TxRunner
	alerts     alert.Dispatcher
	cfg        ProcessorConfig
	now        func() time.Time
	logger     *slog.Logger
}

func NewEventProcessor(
	events store.MessageEventStore,
	profiles ProfileSource,
	alertLogs store.AlertLogStore,
	classifier Classifier,
	txRunner service.TxRunner,
	alerts alert.Dispatcher,
	cfg ProcessorConfig,
	logger *slog.Logger,
) *EventProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ContextTurns < 0 {
		cfg.ContextTurns = 0
	}
	return &EventProcessor{
		events:     events,
		profiles:   profiles,
		alertLogs:  alertLogs,
		classifier: classifier,
		txRunner:   txRunner,
		alerts:     alerts,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger,
	}
}

// urgentNotice is sent after commit when a customer opens a high priority ticket.
type urgentNotice struct {
	ticketID int64
	alert    alert.UrgentTicket
}

func (p *EventProcessor) Process(ctx context.Context, e model.MessageEvent) error {
	sc := logger.StartSpan(ctx, "worker.process_event")
	defer sc.End()
	ctx = sc.Context()

	var (
		outcome *classify.Outcome
		notice  *urgentNotice
	)
	if e.IsCustomer() {
		o := p.classifier.Classify(ctx, p.classifyInput(ctx, e))
		outcome = &o
	}

	err := p.txRunner.WithTx(ctx, func(sp service.StoreProvider) error {
		if err := sp.Tickets().LockConversation(ctx, e.ChatRoom); err != nil {
			return fmt.Errorf("locking conversation: %w", err)
		}

		// Marked first so a lost claim aborts before any ticket writes.
		if err := sp.MessageEvents().MarkProcessed(ctx, e.ID, e.Claim()); err != nil {
			return fmt.Errorf("marking event processed: %w", err)
		}

		var err error
		if outcome != nil {
			notice, err = p.applyCustomer(ctx, sp, e, outcome.Result)
		} else {
			err = p.applyStaff(ctx, sp, e)
		}
		return err
	})
	if err != nil {
		sc.RecordError(err)
		return err
	}

	if outcome != nil {
		p.logger.InfoContext(ctx, "customer event processed",
			"tier", outcome.Tier,
			"llm_calls", outcome.LLMCalls,
			"intent", outcome.Result.Intent,
			"needs_reply", outcome.Result.NeedsReply)
	}

	if notice != nil {
		p.sendUrgent(ctx, *notice)
	}
	return nil
}

func (p *EventProcessor) classifyInput(ctx context.Context, e model.MessageEvent) classify.Input {
	in := classify.Input{
		ChatRoom:   e.ChatRoom,
		SenderType: e.SenderType,
		Text:       e.Text,
	}

	if p.cfg.ContextTurns > 0 {
		prior, err := p.events.ListRecentInRoom(ctx, e.ChatRoom, e.ReceivedAt, p.cfg.ContextTurns)
		if err != nil {
			p.logger.WarnContext(ctx, "failed to load conversation context", "error", err)
		}
		for _, m := range prior {
			in.Context = append(in.Context, model.ConversationTurn{
				SenderType: m.SenderType,
				Text:       logger.Truncate(m.Text, contextRunes),
				ReceivedAt: m.ReceivedAt,
			})
		}
	}

	if p.profiles != nil {
		profile, err := p.profiles.Get(ctx, e.ChatRoom)
		switch {
		case err == nil:
			in.Profile = profile
		case !errors.Is(err, store.ErrNotFound):
			p.logger.WarnContext(ctx, "failed to load conversation profile", "error", err)
		}
	}
	return in
}

func (p *EventProcessor) applyCustomer(ctx context.Context, sp service.StoreProvider, e model.MessageEvent, c model.Classification) (*urgentNotice, error) {
	annotation := &model.Annotation{
		ID:             id.New(),
		TargetType:     model.AnnotationTargetEvent,
		TargetID:       e.ID,
		Classification: c,
	}
	if err := sp.Annotations().Create(ctx, annotation); err != nil {
		return nil, fmt.Errorf("storing annotation: %w", err)
	}

	msg := ticket.CustomerMessage{
		SenderName:     e.SenderName,
		ReceivedAt:     e.ReceivedAt,
		Classification: c,
	}

	t, err := sp.Tickets().LatestByClinic(ctx, e.ChatRoom)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("finding ticket: %w", err)
	}

	var notice *urgentNotice
	if t == nil {
		t = ticket.NewCustomerTicket(id.New(), e.ChatRoom, msg)
		if err := sp.Tickets().Create(ctx, t); err != nil {
			return nil, fmt.Errorf("creating ticket: %w", err)
		}
		if t.Priority.IsElevated() {
			notice = &urgentNotice{
				ticketID: t.ID,
				alert: alert.UrgentTicket{
					TicketID:     t.ID,
					ClinicKey:    t.ClinicKey,
					CustomerText: e.Text,
					Urgency:      c.Urgency,
				},
			}
		}
		p.logger.InfoContext(ctx, "ticket opened", "ticket_id", t.ID, "priority", t.Priority)
	} else {
		ticket.ApplyCustomer(t, msg)
		if err := sp.Tickets().Update(ctx, t); err != nil {
			return nil, fmt.Errorf("updating ticket: %w", err)
		}
	}

	if err := sp.Tickets().LinkEvent(ctx, t.ID, e.ID, linkTypeMessage); err != nil {
		return nil, fmt.Errorf("linking event: %w", err)
	}
	return notice, nil
}

func (p *EventProcessor) applyStaff(ctx context.Context, sp service.StoreProvider, e model.MessageEvent) error {
	msg := ticket.StaffMessage{SenderName: e.SenderName, ReceivedAt: e.ReceivedAt}

	t, err := sp.Tickets().LatestByClinic(ctx, e.ChatRoom)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("finding ticket: %w", err)
	}

	if t == nil {
		t = ticket.NewStaffTicket(id.New(), e.ChatRoom, msg)
		if err := sp.Tickets().Create(ctx, t); err != nil {
			return fmt.Errorf("creating ticket: %w", err)
		}
	} else {
		if ticket.ApplyStaff(t, msg) {
			p.logger.InfoContext(ctx, "first response recorded",
				"ticket_id", t.ID, "first_response_sec", *t.FirstResponseSec)
		}
		if err := sp.Tickets().Update(ctx, t); err != nil {
			return fmt.Errorf("updating ticket: %w", err)
		}
	}

	if err := sp.Tickets().LinkEvent(ctx, t.ID, e.ID, linkTypeMessage); err != nil {
		return fmt.Errorf("linking event: %w", err)
	}
	return p.logStaffResponse(ctx, sp, t.ID, e)
}

func (p *EventProcessor) logStaffResponse(ctx context.Context, sp service.StoreProvider, ticketID int64, e model.MessageEvent) error {
	prev, err := sp.MessageEvents().PreviousCustomerForTicket(ctx, ticketID, e.ReceivedAt)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("finding previous customer message: %w", err)
	}

	count, err := sp.StaffResponses().CountByTicket(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("counting staff responses: %w", err)
	}

	r := &model.StaffResponse{
		ID:                  id.New(),
		TicketID:            ticketID,
		EventID:             e.ID,
		StaffMember:         e.StaffMember,
		ResponsePosition:    count + 1,
		ResponseTextSnippet: snippet(e.Text),
	}
	if prev != nil {
		r.ResponseDelaySec = ticket.ResponseDelay(&prev.ReceivedAt, e.ReceivedAt)
		r.CustomerTextSnippet = snippet(prev.Text)
	}

	if err := sp.StaffResponses().Create(ctx, r); err != nil {
		return fmt.Errorf("storing staff response: %w", err)
	}
	return nil
}

// sendUrgent runs after commit. Delivery failures are only logged; the
// ticket is already stored.
func (p *EventProcessor) sendUrgent(ctx context.Context, n urgentNotice) {
	if p.alerts == nil {
		return
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{TicketID: &n.ticketID})

	d := p.alerts.SendUrgentTicket(ctx, n.alert)
	if !d.Delivered {
		p.logger.WarnContext(ctx, "urgent ticket alert not delivered", "error", d.Err)
	}

	if p.alertLogs == nil || !d.Attempted() {
		return
	}
	entry := d.LogEntry(n.ticketID, model.AlertKindUrgentTicket)
	entry.ID = id.New()
	entry.SentAt = p.now()
	if err := p.alertLogs.Create(ctx, entry); err != nil {
		p.logger.ErrorContext(ctx, "failed to log urgent ticket alert", "error", err)
	}
}

func snippet(s string) *string {
	if s == "" {
		return nil
	}
	out := logger.Truncate(s, snippetRunes)
	return &out
}
