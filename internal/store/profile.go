package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wjlee930501/motion-ai-cs/core/db/sqlc"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type profileStore struct {
	queries *sqlc.Queries
}

func newProfileStore(queries *sqlc.Queries) ProfileStore {
	return &profileStore{queries: queries}
}

func (s *profileStore) Get(ctx context.Context, clinicKey string) (*model.ConversationProfile, error) {
	row, err := s.queries.GetConversationProfile(ctx, clinicKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &model.ConversationProfile{
		ClinicKey:          row.ClinicKey,
		Label:              model.ProfileLabel(row.ProfileLabel),
		SentimentAvg:       row.SentimentAvg,
		ComplaintRatio:     row.ComplaintRatio,
		UrgencyAvg:         row.UrgencyAvg,
		EscalationTendency: row.EscalationTendency,
		TotalInteractions:  int(row.TotalInteractions),
		TotalTickets:       int(row.TotalTickets),
		LastAnalyzedAt:     row.LastAnalyzedAt.Time,
	}, nil
}

func (s *profileStore) Upsert(ctx context.Context, p *model.ConversationProfile) error {
	return s.queries.UpsertConversationProfile(ctx, sqlc.UpsertConversationProfileParams{
		ClinicKey:          p.ClinicKey,
		ProfileLabel:       string(p.Label),
		SentimentAvg:       p.SentimentAvg,
		ComplaintRatio:     p.ComplaintRatio,
		UrgencyAvg:         p.UrgencyAvg,
		EscalationTendency: p.EscalationTendency,
		TotalInteractions:  int32(p.TotalInteractions),
		TotalTickets:       int32(p.TotalTickets),
		LastAnalyzedAt:     timestamptz(p.LastAnalyzedAt),
	})
}

func (s *profileStore) ListAggregates(ctx context.Context, since time.Time) ([]model.ProfileAggregate, error) {
	rows, err := s.queries.ListProfileAggregates(ctx, timestamptz(since))
	if err != nil {
		return nil, err
	}
	result := make([]model.ProfileAggregate, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.ProfileAggregate{
			ClinicKey:       row.ClinicKey,
			Total:           int(row.Total),
			PositiveCount:   int(row.PositiveCount),
			NegativeCount:   int(row.NegativeCount),
			AngryCount:      int(row.AngryCount),
			MediumCount:     int(row.MediumCount),
			HighCount:       int(row.HighCount),
			CriticalCount:   int(row.CriticalCount),
			ComplaintCount:  int(row.ComplaintCount),
			EscalationCount: int(row.EscalationCount),
			TicketCount:     int(row.TicketCount),
		})
	}
	return result, nil
}
