package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wjlee930501/motion-ai-cs/core/db/sqlc"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type messageEventStore struct {
	queries *sqlc.Queries
}

func newMessageEventStore(queries *sqlc.Queries) MessageEventStore {
	return &messageEventStore{queries: queries}
}

func (s *messageEventStore) Insert(ctx context.Context, e *model.MessageEvent) (bool, error) {
	row, err := s.queries.InsertMessageEvent(ctx, sqlc.InsertMessageEventParams{
		EventID:      e.ID,
		DeviceID:     e.DeviceID,
		ChatRoom:     e.ChatRoom,
		SenderName:   e.SenderName,
		SenderType:   string(e.SenderType),
		StaffMember:  e.StaffMember,
		Direction:    string(e.Direction),
		TextRaw:      e.Text,
		TextHash:     e.TextHash,
		BucketTs:     timestamptz(e.BucketTS),
		ReceivedAt:   timestamptz(e.ReceivedAt),
		MetadataJson: []byte(e.Metadata),
	})
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row for a duplicate.
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	*e = *toMessageEventModel(row)
	return true, nil
}

func (s *messageEventStore) GetByID(ctx context.Context, id int64) (*model.MessageEvent, error) {
	row, err := s.queries.GetMessageEvent(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toMessageEventModel(row), nil
}

func (s *messageEventStore) GetByDedupKey(ctx context.Context, textHash string, bucket time.Time) (*model.MessageEvent, error) {
	row, err := s.queries.GetMessageEventByDedupKey(ctx, sqlc.GetMessageEventByDedupKeyParams{
		TextHash: textHash,
		BucketTs: timestamptz(bucket),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toMessageEventModel(row), nil
}

func (s *messageEventStore) Claim(ctx context.Context, limit int) ([]model.MessageEvent, error) {
	rows, err := s.queries.ClaimMessageEvents(ctx, int32(limit))
	if err != nil {
		return nil, err
	}
	// UPDATE ... RETURNING does not preserve the subquery order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ReceivedAt.Time.Before(rows[j].ReceivedAt.Time)
	})
	return toMessageEventModels(rows), nil
}

func (s *messageEventStore) TouchClaim(ctx context.Context, id int64, claimedAt time.Time) (time.Time, error) {
	ts, err := s.queries.TouchMessageEventClaim(ctx, sqlc.TouchMessageEventClaimParams{
		EventID:   id,
		ClaimedAt: timestamptz(claimedAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrClaimLost
		}
		return time.Time{}, err
	}
	return ts.Time, nil
}

func (s *messageEventStore) MarkProcessed(ctx context.Context, id int64, claimedAt time.Time) error {
	return claimResult(s.queries.MarkMessageEventProcessed(ctx, sqlc.MarkMessageEventProcessedParams{
		EventID:   id,
		ClaimedAt: timestamptz(claimedAt),
	}))
}

func (s *messageEventStore) MarkSkipped(ctx context.Context, id int64, claimedAt time.Time) error {
	return claimResult(s.queries.MarkMessageEventSkipped(ctx, sqlc.MarkMessageEventSkippedParams{
		EventID:   id,
		ClaimedAt: timestamptz(claimedAt),
	}))
}

func (s *messageEventStore) MarkError(ctx context.Context, id int64, claimedAt time.Time, errMsg string) error {
	return claimResult(s.queries.MarkMessageEventError(ctx, sqlc.MarkMessageEventErrorParams{
		EventID:         id,
		ClaimedAt:       timestamptz(claimedAt),
		ProcessingError: &errMsg,
	}))
}

func claimResult(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClaimLost
	}
	return nil
}

func (s *messageEventStore) ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	return s.queries.ReleaseStaleMessageEvents(ctx, timestamptz(claimedBefore))
}

func (s *messageEventStore) ListRecentInRoom(ctx context.Context, chatRoom string, before time.Time, limit int) ([]model.MessageEvent, error) {
	rows, err := s.queries.ListRecentRoomMessages(ctx, sqlc.ListRecentRoomMessagesParams{
		ChatRoom:   chatRoom,
		ReceivedAt: timestamptz(before),
		Limit:      int32(limit),
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(rows)
	return toMessageEventModels(rows), nil
}

func (s *messageEventStore) ListByTicket(ctx context.Context, ticketID int64, limit int) ([]model.MessageEvent, error) {
	rows, err := s.queries.ListMessageEventsByTicket(ctx, sqlc.ListMessageEventsByTicketParams{
		TicketID: ticketID,
		Limit:    int32(limit),
	})
	if err != nil {
		return nil, err
	}
	// Newest rows were selected; hand them back oldest first.
	slices.Reverse(rows)
	return toMessageEventModels(rows), nil
}

func (s *messageEventStore) LatestCustomerForTicket(ctx context.Context, ticketID int64) (*model.MessageEvent, error) {
	row, err := s.queries.GetLatestCustomerEventForTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toMessageEventModel(row), nil
}

func (s *messageEventStore) PreviousCustomerForTicket(ctx context.Context, ticketID int64, before time.Time) (*model.MessageEvent, error) {
	row, err := s.queries.GetPreviousCustomerEventForTicket(ctx, sqlc.GetPreviousCustomerEventForTicketParams{
		TicketID:   ticketID,
		ReceivedAt: timestamptz(before),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toMessageEventModel(row), nil
}

func toMessageEventModels(rows []sqlc.MessageEvent) []model.MessageEvent {
	result := make([]model.MessageEvent, 0, len(rows))
	for _, row := range rows {
		result = append(result, *toMessageEventModel(row))
	}
	return result
}

func toMessageEventModel(row sqlc.MessageEvent) *model.MessageEvent {
	return &model.MessageEvent{
		ID:              row.EventID,
		DeviceID:        row.DeviceID,
		ChatRoom:        row.ChatRoom,
		SenderName:      row.SenderName,
		SenderType:      model.SenderType(row.SenderType),
		StaffMember:     row.StaffMember,
		Direction:       model.Direction(row.Direction),
		Text:            row.TextRaw,
		TextHash:        row.TextHash,
		BucketTS:        row.BucketTs.Time,
		ReceivedAt:      row.ReceivedAt.Time,
		Metadata:        json.RawMessage(row.MetadataJson),
		Status:          model.IngestStatus(row.IngestStatus),
		ProcessingError: row.ProcessingError,
		ClaimedAt:       pgTimestamptzToTime(row.ClaimedAt),
		ProcessedAt:     pgTimestamptzToTime(row.ProcessedAt),
		CreatedAt:       row.CreatedAt.Time,
	}
}
