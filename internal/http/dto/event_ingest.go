package dto

import "encoding/json"

type IngestEventRequest struct {
	DeviceID       string          `json:"device_id" binding:"required,notblank"`
	Package        *string         `json:"package,omitempty"`
	ChatRoom       string          `json:"chat_room" binding:"required,notblank"`
	SenderName     string          `json:"sender_name" binding:"required,notblank"`
	Text           string          `json:"text" binding:"required,notblank"`
	ReceivedAt     string          `json:"received_at" binding:"required"`
	NotificationID *string         `json:"notification_id,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

type IngestEventResponse struct {
	OK      bool  `json:"ok"`
	EventID int64 `json:"event_id,string"`
	Deduped bool  `json:"deduped"`
}

type HeartbeatRequest struct {
	DeviceID string `json:"device_id" binding:"required,notblank"`
	// TS is optional; the server time is used when absent.
	TS string `json:"ts,omitempty"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
