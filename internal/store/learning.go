package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wjlee930501/motion-ai-cs/core/db/sqlc"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type learningStore struct {
	queries *sqlc.Queries
}

func newLearningStore(queries *sqlc.Queries) LearningStore {
	return &learningStore{queries: queries}
}

// skipPatternData is the pattern_data shape the learning subsystem writes for skip_llm rows.
type skipPatternData struct {
	Pattern      string  `json:"pattern"`
	Intent       string  `json:"intent"`
	Description  string  `json:"description"`
	Confidence   float64 `json:"confidence"`
	ExampleCount int     `json:"example_count"`
}

// ListApprovedSkipPatterns returns approved skip patterns. Rows whose
// pattern_data cannot be decoded are logged and left out.
func (s *learningStore) ListApprovedSkipPatterns(ctx context.Context) ([]model.LearnedPattern, error) {
	rows, err := s.queries.ListApprovedSkipPatterns(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]model.LearnedPattern, 0, len(rows))
	for _, row := range rows {
		var data skipPatternData
		if err := json.Unmarshal(row.PatternData, &data); err != nil || data.Pattern == "" {
			slog.WarnContext(ctx, "ignoring malformed learned pattern", "pattern_id", row.PatternID, "error", err)
			continue
		}
		result = append(result, model.LearnedPattern{
			ID:          row.PatternID,
			Pattern:     data.Pattern,
			Intent:      data.Intent,
			Description: data.Description,
			Confidence:  data.Confidence,
		})
	}
	return result, nil
}

// LatestUnderstanding returns "" when nothing has been learned yet.
func (s *learningStore) LatestUnderstanding(ctx context.Context) (string, error) {
	row, err := s.queries.GetLatestUnderstanding(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return row.UnderstandingText, nil
}

func (s *learningStore) ListCorrections(ctx context.Context, since time.Time, limit int) ([]model.CorrectionPattern, error) {
	rows, err := s.queries.ListCorrectionPatterns(ctx, sqlc.ListCorrectionPatternsParams{
		CorrectedAt: timestamptz(since),
		Limit:       int32(limit),
	})
	if err != nil {
		return nil, err
	}
	result := make([]model.CorrectionPattern, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.CorrectionPattern{
			FromIntent: derefString(row.OriginalIntent),
			ToIntent:   derefString(row.CorrectedIntent),
			Count:      int(row.CorrectionCount),
		})
	}
	return result, nil
}
