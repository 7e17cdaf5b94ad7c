package model

import "time"

type ProfileLabel string

const (
	ProfileLabelDemanding ProfileLabel = "demanding"
	ProfileLabelFriendly  ProfileLabel = "friendly"
	ProfileLabelNeutral   ProfileLabel = "neutral"
)

// ConversationProfile summarizes how a counterpart has behaved over the
// recent window. The classifier uses it as a prompt hint.
type ConversationProfile struct {
	ClinicKey          string       `json:"clinic_key"`
	Label              ProfileLabel `json:"profile_label"`
	SentimentAvg       float64      `json:"sentiment_avg"`
	ComplaintRatio     float64      `json:"complaint_ratio"`
	UrgencyAvg         float64      `json:"urgency_avg"`
	EscalationTendency float64      `json:"escalation_tendency"`
	TotalInteractions  int          `json:"total_interactions"`
	TotalTickets       int          `json:"total_tickets"`
	LastAnalyzedAt     time.Time    `json:"last_analyzed_at"`
}

// ProfileAggregate holds raw annotation counts for one conversation.
type ProfileAggregate struct {
	ClinicKey       string
	Total           int
	PositiveCount   int
	NegativeCount   int
	AngryCount      int
	MediumCount     int
	HighCount       int
	CriticalCount   int
	ComplaintCount  int
	EscalationCount int
	TicketCount     int
}
