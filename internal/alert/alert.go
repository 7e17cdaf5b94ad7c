// Package alert delivers operator alerts to a chat webhook.
package alert

import (
	"context"
	"errors"
	"strings"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

var (
	ErrNotConfigured = errors.New("alert webhook URL not configured")
	ErrBreakerOpen   = errors.New("alert webhook circuit breaker open")
)

// SLABreach is a ticket that has waited past the response threshold.
type SLABreach struct {
	TicketID       int64
	ClinicKey      string
	CustomerText   string
	ElapsedMinutes int
}

// UrgentTicket is a new ticket opened at high or urgent priority.
type UrgentTicket struct {
	TicketID     int64
	ClinicKey    string
	CustomerText string
	Urgency      model.Urgency
}

// Delivery is the outcome of one attempt. Delivered is true only for a 2xx
// response. StatusCode is nil when no response was received.
type Delivery struct {
	Delivered  bool
	StatusCode *int
	Err        error
}

// Attempted reports whether a request went out. An unconfigured webhook or
// an open breaker sends nothing, and such deliveries are not logged.
func (d Delivery) Attempted() bool {
	return !errors.Is(d.Err, ErrNotConfigured) && !errors.Is(d.Err, ErrBreakerOpen)
}

// ErrorMessage returns the failure text for the alert log, nil on success.
func (d Delivery) ErrorMessage() *string {
	if d.Err == nil {
		return nil
	}
	msg := d.Err.Error()
	return &msg
}

// LogEntry converts the delivery into an alert log row.
func (d Delivery) LogEntry(ticketID int64, kind model.AlertKind) *model.AlertLog {
	return &model.AlertLog{
		TicketID:       ticketID,
		Kind:           kind,
		Channel:        model.AlertChannelSlack,
		Delivered:      d.Delivered,
		ResponseStatus: d.StatusCode,
		ErrorMessage:   d.ErrorMessage(),
	}
}

// Dispatcher sends alerts. Implementations never panic and always report
// the attempt through Delivery, including configuration errors.
type Dispatcher interface {
	SendSLABreach(ctx context.Context, a SLABreach) Delivery
	SendUrgentTicket(ctx context.Context, a UrgentTicket) Delivery
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
