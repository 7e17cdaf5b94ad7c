package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wjlee930501/motion-ai-cs/core/db/sqlc"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type ticketStore struct {
	queries *sqlc.Queries
}

func newTicketStore(queries *sqlc.Queries) TicketStore {
	return &ticketStore{queries: queries}
}

func (s *ticketStore) GetByID(ctx context.Context, id int64) (*model.Ticket, error) {
	row, err := s.queries.GetTicket(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toTicketModel(row), nil
}

func (s *ticketStore) LatestByClinic(ctx context.Context, clinicKey string) (*model.Ticket, error) {
	row, err := s.queries.GetLatestTicketByClinic(ctx, clinicKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toTicketModel(row), nil
}

func (s *ticketStore) Create(ctx context.Context, t *model.Ticket) error {
	row, err := s.queries.CreateTicket(ctx, sqlc.CreateTicketParams{
		TicketID:          t.ID,
		ClinicKey:         t.ClinicKey,
		Status:            string(t.Status),
		Priority:          string(t.Priority),
		TopicPrimary:      t.TopicPrimary,
		SummaryLatest:     t.SummaryLatest,
		Intent:            t.Intent,
		FirstInboundAt:    timeToPgTimestamptz(t.FirstInboundAt),
		FirstResponseSec:  intToInt32Ptr(t.FirstResponseSec),
		LastInboundAt:     timeToPgTimestamptz(t.LastInboundAt),
		LastOutboundAt:    timeToPgTimestamptz(t.LastOutboundAt),
		LastMessageSender: t.LastMessageSender,
		NeedsReply:        t.NeedsReply,
		SlaBreached:       t.SLABreached,
	})
	if err != nil {
		return err
	}
	*t = *toTicketModel(row)
	return nil
}

func (s *ticketStore) Update(ctx context.Context, t *model.Ticket) error {
	row, err := s.queries.UpdateTicket(ctx, sqlc.UpdateTicketParams{
		TicketID:          t.ID,
		Priority:          string(t.Priority),
		TopicPrimary:      t.TopicPrimary,
		SummaryLatest:     t.SummaryLatest,
		Intent:            t.Intent,
		FirstInboundAt:    timeToPgTimestamptz(t.FirstInboundAt),
		FirstResponseSec:  intToInt32Ptr(t.FirstResponseSec),
		LastInboundAt:     timeToPgTimestamptz(t.LastInboundAt),
		LastOutboundAt:    timeToPgTimestamptz(t.LastOutboundAt),
		LastMessageSender: t.LastMessageSender,
		NeedsReply:        t.NeedsReply,
		SlaBreached:       t.SLABreached,
		SlaAlertedAt:      timeToPgTimestamptz(t.SLAAlertedAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	*t = *toTicketModel(row)
	return nil
}

func (s *ticketStore) UpdateSummary(ctx context.Context, id int64, summary, nextAction string) error {
	return s.queries.UpdateTicketSummary(ctx, sqlc.UpdateTicketSummaryParams{
		TicketID:      id,
		SummaryLatest: stringPtr(summary),
		NextAction:    stringPtr(nextAction),
	})
}

func (s *ticketStore) LinkEvent(ctx context.Context, ticketID, eventID int64, linkType string) error {
	return s.queries.LinkTicketEvent(ctx, sqlc.LinkTicketEventParams{
		TicketID: ticketID,
		EventID:  eventID,
		LinkType: linkType,
	})
}

func (s *ticketStore) List(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error) {
	var status *string
	if filter.Status != nil {
		v := string(*filter.Status)
		status = &v
	}
	rows, err := s.queries.ListTickets(ctx, sqlc.ListTicketsParams{
		NeedsReply:  filter.NeedsReply,
		SlaBreached: filter.SLABreached,
		Status:      status,
		Limit:       int32(filter.Limit),
		Offset:      int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}
	result := make([]model.Ticket, 0, len(rows))
	for _, row := range rows {
		result = append(result, *toTicketModel(row))
	}
	return result, nil
}

func (s *ticketStore) LockConversation(ctx context.Context, chatRoom string) error {
	return s.queries.LockConversation(ctx, chatRoom)
}

func (s *ticketStore) ListSLACandidateIDs(ctx context.Context, inboundBefore time.Time, limit int) ([]int64, error) {
	return s.queries.ListSLACandidateTicketIDs(ctx, sqlc.ListSLACandidateTicketIDsParams{
		FirstInboundAt: timestamptz(inboundBefore),
		Limit:          int32(limit),
	})
}

func (s *ticketStore) LockSLACandidate(ctx context.Context, id int64, inboundBefore time.Time) (*model.Ticket, error) {
	row, err := s.queries.LockSLACandidateTicket(ctx, sqlc.LockSLACandidateTicketParams{
		TicketID:       id,
		FirstInboundAt: timestamptz(inboundBefore),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toTicketModel(row), nil
}

func (s *ticketStore) MarkSLABreached(ctx context.Context, id int64, alertedAt time.Time) error {
	return s.queries.MarkTicketSLABreached(ctx, sqlc.MarkTicketSLABreachedParams{
		TicketID:     id,
		SlaAlertedAt: timestamptz(alertedAt),
	})
}

func toTicketModel(row sqlc.Ticket) *model.Ticket {
	return &model.Ticket{
		ID:                row.TicketID,
		ClinicKey:         row.ClinicKey,
		Status:            model.TicketStatus(row.Status),
		Priority:          model.Priority(row.Priority),
		TopicPrimary:      row.TopicPrimary,
		SummaryLatest:     row.SummaryLatest,
		NextAction:        row.NextAction,
		Intent:            row.Intent,
		FirstInboundAt:    pgTimestamptzToTime(row.FirstInboundAt),
		FirstResponseSec:  int32PtrToInt(row.FirstResponseSec),
		LastInboundAt:     pgTimestamptzToTime(row.LastInboundAt),
		LastOutboundAt:    pgTimestamptzToTime(row.LastOutboundAt),
		LastMessageSender: row.LastMessageSender,
		NeedsReply:        row.NeedsReply,
		SLABreached:       row.SlaBreached,
		SLAAlertedAt:      pgTimestamptzToTime(row.SlaAlertedAt),
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}
