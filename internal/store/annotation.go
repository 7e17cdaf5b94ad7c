package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/wjlee930501/motion-ai-cs/core/db/sqlc"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type annotationStore struct {
	queries *sqlc.Queries
}

func newAnnotationStore(queries *sqlc.Queries) AnnotationStore {
	return &annotationStore{queries: queries}
}

// Create writes the annotation, replacing an earlier one for the same target
// (an event released by the reclaimer is classified again).
func (s *annotationStore) Create(ctx context.Context, a *model.Annotation) error {
	var raw []byte
	if len(a.RawResponse) > 0 && json.Valid(a.RawResponse) {
		raw = []byte(a.RawResponse)
	}
	row, err := s.queries.CreateAnnotation(ctx, sqlc.CreateAnnotationParams{
		AnnotationID: a.ID,
		TargetType:   a.TargetType,
		TargetID:     a.TargetID,
		Model:        a.Model,
		Topic:        stringPtr(a.Topic),
		Urgency:      stringPtr(string(a.Urgency)),
		Sentiment:    stringPtr(string(a.Sentiment)),
		Intent:       stringPtr(a.Intent),
		NeedsReply:   a.NeedsReply,
		Summary:      stringPtr(a.Summary),
		Confidence:   a.Confidence,
		RawResponse:  raw,
		ErrorMessage: stringPtr(a.Error),
	})
	if err != nil {
		return err
	}
	*a = *toAnnotationModel(row)
	return nil
}

func (s *annotationStore) GetByEvent(ctx context.Context, eventID int64) (*model.Annotation, error) {
	row, err := s.queries.GetAnnotationByTarget(ctx, sqlc.GetAnnotationByTargetParams{
		TargetType: model.AnnotationTargetEvent,
		TargetID:   eventID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toAnnotationModel(row), nil
}

func toAnnotationModel(row sqlc.LlmAnnotation) *model.Annotation {
	return &model.Annotation{
		ID:         row.AnnotationID,
		TargetType: row.TargetType,
		TargetID:   row.TargetID,
		Classification: model.Classification{
			Topic:       derefString(row.Topic),
			Urgency:     model.Urgency(derefString(row.Urgency)),
			Sentiment:   model.Sentiment(derefString(row.Sentiment)),
			Intent:      derefString(row.Intent),
			NeedsReply:  row.NeedsReply,
			Summary:     derefString(row.Summary),
			Confidence:  row.Confidence,
			Model:       row.Model,
			RawResponse: json.RawMessage(row.RawResponse),
			Error:       derefString(row.ErrorMessage),
		},
		CreatedAt: row.CreatedAt.Time,
	}
}
