package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

// summaryEventLimit bounds how much history is loaded; the summarizer keeps
// only the most recent part of it.
const summaryEventLimit = 200

// TicketSummarizer is satisfied by classify.Summarizer.
type TicketSummarizer interface {
	Summarize(ctx context.Context, clinicKey string, events []model.MessageEvent) classify.TicketSummary
}

type TicketSummaryResult struct {
	Ticket  *model.Ticket
	Summary classify.TicketSummary
}

type TicketSummaryService interface {
	Summarize(ctx context.Context, ticketID int64) (*TicketSummaryResult, error)
}

type ticketSummaryService struct {
	tickets    store.TicketStore
	events     store.MessageEventStore
	summarizer TicketSummarizer
	logger     *slog.Logger
}

func NewTicketSummaryService(tickets store.TicketStore, events store.MessageEventStore, summarizer TicketSummarizer, logger *slog.Logger) TicketSummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ticketSummaryService{
		tickets:    tickets,
		events:     events,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Summarize regenerates the ticket summary and stores it. A failed model
// call still stores the fallback text so operators see why.
func (s *ticketSummaryService) Summarize(ctx context.Context, ticketID int64) (*TicketSummaryResult, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("getting ticket: %w", err)
	}

	events, err := s.events.ListByTicket(ctx, ticketID, summaryEventLimit)
	if err != nil {
		return nil, fmt.Errorf("listing ticket events: %w", err)
	}

	summary := s.summarizer.Summarize(ctx, t.ClinicKey, events)
	if err := s.tickets.UpdateSummary(ctx, ticketID, summary.Summary, summary.NextAction); err != nil {
		return nil, fmt.Errorf("storing ticket summary: %w", err)
	}
	t.SummaryLatest = &summary.Summary
	t.NextAction = &summary.NextAction

	s.logger.InfoContext(ctx, "ticket summarized", "ticket_id", ticketID, "model", summary.Model, "events", len(events))
	return &TicketSummaryResult{Ticket: t, Summary: summary}, nil
}
