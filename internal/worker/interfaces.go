package worker

import (
	"context"
	"time"

	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

// Classifier abstracts the classification pipeline for testability.
type Classifier interface {
	Classify(ctx context.Context, in classify.Input) classify.Outcome
}

// EventHandler processes one claimed event. A returned error marks the event
// as errored; the rest of the batch is unaffected.
type EventHandler interface {
	Process(ctx context.Context, e model.MessageEvent) error
}

// Waker blocks until new work may be available or timeout passes. It reports
// whether it was woken early.
type Waker interface {
	Wait(ctx context.Context, timeout time.Duration) bool
}

// ProfileSource provides the conversation profile hint. ErrNotFound is not an error.
type ProfileSource interface {
	Get(ctx context.Context, clinicKey string) (*model.ConversationProfile, error)
}

// SLAScanner runs one SLA monitor pass.
type SLAScanner interface {
	Scan(ctx context.Context) SLAScanResult
}
