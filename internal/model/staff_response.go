package model

import "time"

// StaffResponse is an analytics record of one staff reply. ResponseDelaySec is
// measured against the customer message immediately before the reply and is
// independent of the ticket's SLA timer.
type StaffResponse struct {
	ID                  int64
	TicketID            int64
	EventID             int64
	StaffMember         *string
	ResponseDelaySec    *int
	ResponsePosition    int
	CustomerTextSnippet *string
	ResponseTextSnippet *string
	CreatedAt           time.Time
}
