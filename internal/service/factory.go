package service

import (
	"log/slog"
	"time"

	"github.com/wjlee930501/motion-ai-cs/internal/queue"
	"github.com/wjlee930501/motion-ai-cs/internal/sender"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

// Deps are the collaborators shared by the services.
type Deps struct {
	Producer      queue.Producer
	Senders       *sender.Classifier
	Ingest        EventIngestConfig
	Summarizer    TicketSummarizer
	ProfileWindow time.Duration
	Logger        *slog.Logger
}

type Services struct {
	stores *store.Stores
	deps   Deps
}

func NewServices(stores *store.Stores, deps Deps) *Services {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Services{stores: stores, deps: deps}
}

func (s *Services) EventIngest() EventIngestService {
	return NewEventIngestService(s.stores.MessageEvents(), s.deps.Senders, s.deps.Producer, s.deps.Ingest, s.deps.Logger)
}

func (s *Services) Heartbeats() HeartbeatService {
	return NewHeartbeatService(s.stores.Heartbeats(), s.deps.Logger)
}

func (s *Services) TicketQueries() TicketQueryService {
	return NewTicketQueryService(s.stores.Tickets(), s.stores.MessageEvents(), s.stores.AlertLogs(), s.stores.Annotations())
}

// TicketSummaries is nil when no summarizer model is configured.
func (s *Services) TicketSummaries() TicketSummaryService {
	if s.deps.Summarizer == nil {
		return nil
	}
	return NewTicketSummaryService(s.stores.Tickets(), s.stores.MessageEvents(), s.deps.Summarizer, s.deps.Logger)
}

func (s *Services) Profiles() ProfileService {
	return NewProfileService(s.stores.Profiles(), s.deps.ProfileWindow, s.deps.Logger)
}
