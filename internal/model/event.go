package model

import (
	"encoding/json"
	"time"
)

type (
	SenderType   string
	Direction    string
	IngestStatus string
)

const (
	SenderTypeStaff    SenderType = "staff"
	SenderTypeCustomer SenderType = "customer"
)

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

const (
	IngestStatusReceived   IngestStatus = "received"
	IngestStatusProcessing IngestStatus = "processing"
	IngestStatusProcessed  IngestStatus = "processed"
	IngestStatusError      IngestStatus = "error"
	IngestStatusSkipped    IngestStatus = "skipped"
)

// MessageEvent is one chat message as observed by a bridge device.
// Rows are written once at ingest; only the processing columns change after.
type MessageEvent struct {
	ID              int64           `json:"event_id,string"`
	DeviceID        string          `json:"device_id"`
	ChatRoom        string          `json:"chat_room"`
	SenderName      string          `json:"sender_name"`
	SenderType      SenderType      `json:"sender_type"`
	StaffMember     *string         `json:"staff_member,omitempty"`
	Direction       Direction       `json:"direction"`
	Text            string          `json:"text_raw"`
	TextHash        string          `json:"text_hash"`
	BucketTS        time.Time       `json:"bucket_ts"`
	ReceivedAt      time.Time       `json:"received_at"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	Status          IngestStatus    `json:"ingest_status"`
	ProcessingError *string         `json:"processing_error,omitempty"`
	ClaimedAt       *time.Time      `json:"claimed_at,omitempty"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (e MessageEvent) IsCustomer() bool {
	return e.SenderType == SenderTypeCustomer
}

// Claim is the claimed_at value a worker holds the event under, zero when
// the event is not claimed.
func (e MessageEvent) Claim() time.Time {
	if e.ClaimedAt == nil {
		return time.Time{}
	}
	return *e.ClaimedAt
}

// ConversationTurn is a prior message shown to the classifier as context.
type ConversationTurn struct {
	SenderType SenderType
	Text       string
	ReceivedAt time.Time
}
