package store

import (
	"context"

	"github.com/wjlee930501/motion-ai-cs/core/db/sqlc"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type alertLogStore struct {
	queries *sqlc.Queries
}

func newAlertLogStore(queries *sqlc.Queries) AlertLogStore {
	return &alertLogStore{queries: queries}
}

func (s *alertLogStore) Create(ctx context.Context, a *model.AlertLog) error {
	row, err := s.queries.CreateAlertLog(ctx, sqlc.CreateAlertLogParams{
		AlertID:        a.ID,
		TicketID:       a.TicketID,
		AlertKind:      string(a.Kind),
		Channel:        a.Channel,
		Delivered:      a.Delivered,
		ResponseStatus: intToInt32Ptr(a.ResponseStatus),
		ErrorMessage:   a.ErrorMessage,
		SentAt:         timestamptz(a.SentAt),
	})
	if err != nil {
		return err
	}
	*a = toAlertLogModel(row)
	return nil
}

func (s *alertLogStore) ListByTicket(ctx context.Context, ticketID int64, limit int) ([]model.AlertLog, error) {
	rows, err := s.queries.ListAlertLogsByTicket(ctx, sqlc.ListAlertLogsByTicketParams{
		TicketID: ticketID,
		Limit:    int32(limit),
	})
	if err != nil {
		return nil, err
	}
	result := make([]model.AlertLog, 0, len(rows))
	for _, row := range rows {
		result = append(result, toAlertLogModel(row))
	}
	return result, nil
}

func toAlertLogModel(row sqlc.SlaAlertLog) model.AlertLog {
	return model.AlertLog{
		ID:             row.AlertID,
		TicketID:       row.TicketID,
		Kind:           model.AlertKind(row.AlertKind),
		Channel:        row.Channel,
		Delivered:      row.Delivered,
		ResponseStatus: int32PtrToInt(row.ResponseStatus),
		ErrorMessage:   row.ErrorMessage,
		SentAt:         row.SentAt.Time,
	}
}
