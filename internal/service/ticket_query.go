package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

const (
	defaultTicketPageSize = 50
	maxTicketPageSize     = 200
	ticketEventLimit      = 500
	ticketAlertLimit      = 100
)

var ErrTicketNotFound = errors.New("ticket not found")

// TicketQueryService backs the read-only dashboard endpoints.
type TicketQueryService interface {
	List(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error)
	Get(ctx context.Context, id int64) (*model.Ticket, error)
	Events(ctx context.Context, ticketID int64) ([]model.MessageEvent, error)
	Alerts(ctx context.Context, ticketID int64) ([]model.AlertLog, error)
	Annotation(ctx context.Context, eventID int64) (*model.Annotation, error)
}

type ticketQueryService struct {
	tickets     store.TicketStore
	events      store.MessageEventStore
	alerts      store.AlertLogStore
	annotations store.AnnotationStore
}

func NewTicketQueryService(tickets store.TicketStore, events store.MessageEventStore, alerts store.AlertLogStore, annotations store.AnnotationStore) TicketQueryService {
	return &ticketQueryService{
		tickets:     tickets,
		events:      events,
		alerts:      alerts,
		annotations: annotations,
	}
}

func (s *ticketQueryService) List(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultTicketPageSize
	case filter.Limit > maxTicketPageSize:
		filter.Limit = maxTicketPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	return tickets, nil
}

func (s *ticketQueryService) Get(ctx context.Context, id int64) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("getting ticket: %w", err)
	}
	return t, nil
}

func (s *ticketQueryService) Events(ctx context.Context, ticketID int64) ([]model.MessageEvent, error) {
	if _, err := s.Get(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.events.ListByTicket(ctx, ticketID, ticketEventLimit)
}

func (s *ticketQueryService) Alerts(ctx context.Context, ticketID int64) ([]model.AlertLog, error) {
	if _, err := s.Get(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.alerts.ListByTicket(ctx, ticketID, ticketAlertLimit)
}

func (s *ticketQueryService) Annotation(ctx context.Context, eventID int64) (*model.Annotation, error) {
	a, err := s.annotations.GetByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("getting annotation: %w", err)
	}
	return a, nil
}
