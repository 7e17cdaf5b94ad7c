package dto

import "github.com/wjlee930501/motion-ai-cs/internal/model"

type ListTicketsQuery struct {
	NeedsReply  *bool   `form:"needs_reply"`
	SLABreached *bool   `form:"sla_breached"`
	Status      *string `form:"status" binding:"omitempty,oneof=onboarding stable churn_risk important"`

	// Limit and Offset are clamped by the query service.
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func (q ListTicketsQuery) Filter() model.TicketFilter {
	f := model.TicketFilter{
		NeedsReply:  q.NeedsReply,
		SLABreached: q.SLABreached,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	if q.Status != nil {
		s := model.TicketStatus(*q.Status)
		f.Status = &s
	}
	return f
}

type TicketListResponse struct {
	OK      bool           `json:"ok"`
	Tickets []model.Ticket `json:"tickets"`
}

type TicketResponse struct {
	OK     bool          `json:"ok"`
	Ticket *model.Ticket `json:"ticket"`
}

type TicketEventsResponse struct {
	OK     bool                 `json:"ok"`
	Events []model.MessageEvent `json:"events"`
}

type TicketAlertsResponse struct {
	OK     bool             `json:"ok"`
	Alerts []model.AlertLog `json:"alerts"`
}

type AnnotationResponse struct {
	OK         bool              `json:"ok"`
	Annotation *model.Annotation `json:"annotation"`
}

type TicketSummaryResponse struct {
	OK             bool          `json:"ok"`
	Ticket         *model.Ticket `json:"ticket"`
	Summary        string        `json:"summary"`
	NextAction     string        `json:"next_action"`
	OverallUrgency model.Urgency `json:"overall_urgency"`
	Model          string        `json:"model"`
}

type DeviceListResponse struct {
	OK      bool                    `json:"ok"`
	Devices []model.DeviceHeartbeat `json:"devices"`
}
