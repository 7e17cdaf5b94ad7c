package model

import "time"

type (
	TicketStatus string
	Priority     string
)

// Lifecycle stages are a business classification managed by operators.
// The pipeline never moves a ticket between them.
const (
	TicketStatusOnboarding TicketStatus = "onboarding"
	TicketStatusStable     TicketStatus = "stable"
	TicketStatusChurnRisk  TicketStatus = "churn_risk"
	TicketStatusImportant  TicketStatus = "important"
)

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities low < normal < high < urgent. Unknown values rank as normal.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	default:
		return 1
	}
}

// IsElevated reports whether a new ticket at this priority warrants an urgent alert.
func (p Priority) IsElevated() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

func IsValidTicketStatus(s string) bool {
	switch TicketStatus(s) {
	case TicketStatusOnboarding, TicketStatusStable, TicketStatusChurnRisk, TicketStatusImportant:
		return true
	}
	return false
}

// Ticket is the per-conversation support aggregate.
type Ticket struct {
	ID                int64        `json:"ticket_id,string"`
	ClinicKey         string       `json:"clinic_key"`
	Status            TicketStatus `json:"status"`
	Priority          Priority     `json:"priority"`
	TopicPrimary      *string      `json:"topic_primary,omitempty"`
	SummaryLatest     *string      `json:"summary_latest,omitempty"`
	NextAction        *string      `json:"next_action,omitempty"`
	Intent            *string      `json:"intent,omitempty"`
	FirstInboundAt    *time.Time   `json:"first_inbound_at,omitempty"`
	FirstResponseSec  *int         `json:"first_response_sec,omitempty"`
	LastInboundAt     *time.Time   `json:"last_inbound_at,omitempty"`
	LastOutboundAt    *time.Time   `json:"last_outbound_at,omitempty"`
	LastMessageSender *string      `json:"last_message_sender,omitempty"`
	NeedsReply        bool         `json:"needs_reply"`
	SLABreached       bool         `json:"sla_breached"`
	SLAAlertedAt      *time.Time   `json:"sla_alerted_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// TicketFilter narrows dashboard ticket listings. Nil fields are not filtered.
type TicketFilter struct {
	NeedsReply  *bool
	SLABreached *bool
	Status      *TicketStatus
	Limit       int
	Offset      int
}
