package model

import "time"

type AlertKind string

const (
	AlertKindSLABreach    AlertKind = "sla_breach"
	AlertKindUrgentTicket AlertKind = "urgent_ticket"
)

const AlertChannelSlack = "slack"

// AlertLog records one delivery attempt, successful or not.
type AlertLog struct {
	ID             int64     `json:"alert_id,string"`
	TicketID       int64     `json:"ticket_id,string"`
	Kind           AlertKind `json:"alert_kind"`
	Channel        string    `json:"channel"`
	Delivered      bool      `json:"delivered"`
	ResponseStatus *int      `json:"response_status,omitempty"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
	SentAt         time.Time `json:"sent_at"`
}
