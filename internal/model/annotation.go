package model

import (
	"encoding/json"
	"time"
)

type (
	Urgency   string
	Sentiment string
)

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentAngry    Sentiment = "angry"
)

const AnnotationTargetEvent = "event"

// Model markers recorded on classifications that did not come from an LLM.
const (
	ModelSkip  = "skip"
	ModelError = "error"
)

// Classification is the classifier's verdict on one customer message.
type Classification struct {
	Topic       string          `json:"topic"`
	Urgency     Urgency         `json:"urgency"`
	Sentiment   Sentiment       `json:"sentiment"`
	Intent      string          `json:"intent"`
	NeedsReply  bool            `json:"needs_reply"`
	Summary     string          `json:"summary"`
	Confidence  float64         `json:"confidence"`
	Model       string          `json:"model"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Annotation is a stored classification attached to a message event.
type Annotation struct {
	ID         int64  `json:"annotation_id,string"`
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id,string"`
	Classification
	CreatedAt time.Time `json:"created_at"`
}
