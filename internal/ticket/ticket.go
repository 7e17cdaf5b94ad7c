// Package ticket holds the per-conversation ticket transitions. Functions
// here are pure: callers load the ticket, apply a message, and persist it
// inside the conversation's lock.
package ticket

import (
	"time"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

// CustomerMessage is what the state machine needs from a classified
// customer event.
type CustomerMessage struct {
	SenderName     string
	ReceivedAt     time.Time
	Classification model.Classification
}

// StaffMessage is what the state machine needs from a staff event.
type StaffMessage struct {
	SenderName string
	ReceivedAt time.Time
}

// PriorityFromUrgency maps a classification urgency to a ticket priority.
func PriorityFromUrgency(u model.Urgency) model.Priority {
	switch u {
	case model.UrgencyCritical:
		return model.PriorityUrgent
	case model.UrgencyHigh:
		return model.PriorityHigh
	case model.UrgencyLow:
		return model.PriorityLow
	default:
		return model.PriorityNormal
	}
}

// Upgrade returns the higher of current and next.
func Upgrade(current, next model.Priority) model.Priority {
	if next.Rank() > current.Rank() {
		return next
	}
	return current
}

// NewCustomerTicket opens a ticket for a conversation whose first message
// came from the customer.
func NewCustomerTicket(id int64, clinicKey string, msg CustomerMessage) *model.Ticket {
	c := msg.Classification
	at := msg.ReceivedAt
	return &model.Ticket{
		ID:                id,
		ClinicKey:         clinicKey,
		Status:            model.TicketStatusOnboarding,
		Priority:          PriorityFromUrgency(c.Urgency),
		TopicPrimary:      nonEmpty(c.Topic),
		SummaryLatest:     nonEmpty(c.Summary),
		Intent:            nonEmpty(c.Intent),
		FirstInboundAt:    &at,
		LastInboundAt:     &at,
		LastMessageSender: nonEmpty(msg.SenderName),
		NeedsReply:        c.NeedsReply,
	}
}

// ApplyCustomer folds a customer message into an existing ticket.
//
// needs_reply always reflects the latest customer message. A message that
// needs a reply after staff already answered restarts the SLA window, as
// does one that follows a message which needed none.
func ApplyCustomer(t *model.Ticket, msg CustomerMessage) {
	c := msg.Classification
	at := msg.ReceivedAt
	wasAwaiting := t.NeedsReply && t.FirstInboundAt != nil

	t.LastInboundAt = &at
	t.LastMessageSender = nonEmpty(msg.SenderName)
	t.NeedsReply = c.NeedsReply

	switch {
	case !c.NeedsReply:
		t.SLABreached = false
	case t.FirstResponseSec != nil, !wasAwaiting:
		openWindow(t, at)
	}

	t.Priority = Upgrade(t.Priority, PriorityFromUrgency(c.Urgency))

	if c.Summary != "" {
		t.SummaryLatest = &c.Summary
	}
	if c.Topic != "" {
		t.TopicPrimary = &c.Topic
	}
	if c.Intent != "" {
		t.Intent = &c.Intent
	}
}

// openWindow starts a new SLA window at at. The breach flag and alert time
// describe a single window, so both start over with it.
func openWindow(t *model.Ticket, at time.Time) {
	t.FirstInboundAt = &at
	t.FirstResponseSec = nil
	t.SLABreached = false
	t.SLAAlertedAt = nil
}

// NewStaffTicket opens a ticket for a conversation staff started. There is
// nothing to answer, so no SLA window is open.
func NewStaffTicket(id int64, clinicKey string, msg StaffMessage) *model.Ticket {
	t := &model.Ticket{
		ID:        id,
		ClinicKey: clinicKey,
		Status:    model.TicketStatusOnboarding,
		Priority:  model.PriorityNormal,
	}
	ApplyStaff(t, msg)
	return t
}

// ApplyStaff folds a staff message into a ticket. It reports whether this
// message recorded the ticket's first response time.
func ApplyStaff(t *model.Ticket, msg StaffMessage) bool {
	at := msg.ReceivedAt
	first := false
	if t.FirstResponseSec == nil && t.FirstInboundAt != nil {
		sec := int(at.Sub(*t.FirstInboundAt).Seconds())
		if sec < 0 {
			sec = 0
		}
		t.FirstResponseSec = &sec
		first = true
	}

	t.LastOutboundAt = &at
	t.LastMessageSender = nonEmpty(msg.SenderName)
	t.NeedsReply = false
	t.SLABreached = false
	return first
}

// ResponseDelay is the gap between the customer message a staff reply
// answers and the reply itself, nil when there was no prior customer message.
func ResponseDelay(customerAt *time.Time, staffAt time.Time) *int {
	if customerAt == nil {
		return nil
	}
	sec := int(staffAt.Sub(*customerAt).Seconds())
	if sec < 0 {
		sec = 0
	}
	return &sec
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
