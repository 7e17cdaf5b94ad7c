package store

import (
	"context"

	"github.com/wjlee930501/motion-ai-cs/core/db/sqlc"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type staffResponseStore struct {
	queries *sqlc.Queries
}

func newStaffResponseStore(queries *sqlc.Queries) StaffResponseStore {
	return &staffResponseStore{queries: queries}
}

func (s *staffResponseStore) CountByTicket(ctx context.Context, ticketID int64) (int, error) {
	n, err := s.queries.CountStaffResponses(ctx, ticketID)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *staffResponseStore) Create(ctx context.Context, r *model.StaffResponse) error {
	row, err := s.queries.CreateStaffResponse(ctx, sqlc.CreateStaffResponseParams{
		ResponseID:          r.ID,
		TicketID:            r.TicketID,
		EventID:             r.EventID,
		StaffMember:         r.StaffMember,
		ResponseDelaySec:    intToInt32Ptr(r.ResponseDelaySec),
		ResponsePosition:    int32(r.ResponsePosition),
		CustomerTextSnippet: r.CustomerTextSnippet,
		ResponseTextSnippet: r.ResponseTextSnippet,
	})
	if err != nil {
		return err
	}
	r.CreatedAt = row.CreatedAt.Time
	return nil
}
