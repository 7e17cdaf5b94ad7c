package store

import (
	"context"
	"errors"
	"time"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrClaimLost is returned when an event is no longer held under the claim
// the caller presented, because it was released and claimed again.
var ErrClaimLost = errors.New("claim lost")

// MessageEventStore defines the contract for chat event data access
type MessageEventStore interface {
	// Insert stores e unless an event with the same (text_hash, bucket_ts)
	// exists. created is false when the unique key rejected the row.
	Insert(ctx context.Context, e *model.MessageEvent) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*model.MessageEvent, error)
	GetByDedupKey(ctx context.Context, textHash string, bucket time.Time) (*model.MessageEvent, error)

	// Claim moves up to limit received events to processing in one
	// autocommitted statement. Rows locked by another worker are skipped.
	Claim(ctx context.Context, limit int) ([]model.MessageEvent, error)
	// TouchClaim refreshes claimed_at and returns the new value, which
	// replaces claimedAt as the caller's claim.
	TouchClaim(ctx context.Context, id int64, claimedAt time.Time) (time.Time, error)

	// The Mark methods only move an event still in processing under
	// claimedAt. Otherwise they change nothing and return ErrClaimLost.
	MarkProcessed(ctx context.Context, id int64, claimedAt time.Time) error
	MarkSkipped(ctx context.Context, id int64, claimedAt time.Time) error
	MarkError(ctx context.Context, id int64, claimedAt time.Time, errMsg string) error
	ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error)

	// ListRecentInRoom returns up to limit processed events received before
	// the given time, oldest first.
	ListRecentInRoom(ctx context.Context, chatRoom string, before time.Time, limit int) ([]model.MessageEvent, error)
	// ListByTicket returns the ticket's most recent limit events, oldest first.
	ListByTicket(ctx context.Context, ticketID int64, limit int) ([]model.MessageEvent, error)
	LatestCustomerForTicket(ctx context.Context, ticketID int64) (*model.MessageEvent, error)
	PreviousCustomerForTicket(ctx context.Context, ticketID int64, before time.Time) (*model.MessageEvent, error)
}

// TicketStore defines the contract for ticket data access
type TicketStore interface {
	GetByID(ctx context.Context, id int64) (*model.Ticket, error)
	LatestByClinic(ctx context.Context, clinicKey string) (*model.Ticket, error)
	Create(ctx context.Context, t *model.Ticket) error
	Update(ctx context.Context, t *model.Ticket) error
	UpdateSummary(ctx context.Context, id int64, summary, nextAction string) error
	LinkEvent(ctx context.Context, ticketID, eventID int64, linkType string) error
	List(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error)

	// LockConversation takes a transaction-scoped advisory lock on chatRoom.
	// Only meaningful inside a transaction.
	LockConversation(ctx context.Context, chatRoom string) error

	ListSLACandidateIDs(ctx context.Context, inboundBefore time.Time, limit int) ([]int64, error)
	// LockSLACandidate re-checks the breach predicate and row-locks the ticket,
	// returning ErrNotFound if it no longer qualifies or another worker holds it.
	LockSLACandidate(ctx context.Context, id int64, inboundBefore time.Time) (*model.Ticket, error)
	MarkSLABreached(ctx context.Context, id int64, alertedAt time.Time) error
}

// AnnotationStore defines the contract for classification results
type AnnotationStore interface {
	Create(ctx context.Context, a *model.Annotation) error
	GetByEvent(ctx context.Context, eventID int64) (*model.Annotation, error)
}

// AlertLogStore defines the contract for alert attempt logs
type AlertLogStore interface {
	Create(ctx context.Context, a *model.AlertLog) error
	ListByTicket(ctx context.Context, ticketID int64, limit int) ([]model.AlertLog, error)
}

// HeartbeatStore defines the contract for bridge device liveness
type HeartbeatStore interface {
	Upsert(ctx context.Context, deviceID string, seenAt time.Time) (*model.DeviceHeartbeat, error)
	List(ctx context.Context) ([]model.DeviceHeartbeat, error)
}

// StaffResponseStore defines the contract for staff reply analytics
type StaffResponseStore interface {
	CountByTicket(ctx context.Context, ticketID int64) (int, error)
	Create(ctx context.Context, r *model.StaffResponse) error
}

// ProfileStore defines the contract for conversation profiles
type ProfileStore interface {
	Get(ctx context.Context, clinicKey string) (*model.ConversationProfile, error)
	Upsert(ctx context.Context, p *model.ConversationProfile) error
	ListAggregates(ctx context.Context, since time.Time) ([]model.ProfileAggregate, error)
}

// LearningStore reads what the learning subsystem has produced
type LearningStore interface {
	ListApprovedSkipPatterns(ctx context.Context) ([]model.LearnedPattern, error)
	LatestUnderstanding(ctx context.Context) (string, error)
	ListCorrections(ctx context.Context, since time.Time, limit int) ([]model.CorrectionPattern, error)
}
