package store

import (
	"github.com/wjlee930501/motion-ai-cs/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) MessageEvents() MessageEventStore {
	return newMessageEventStore(s.queries)
}

func (s *Stores) Tickets() TicketStore {
	return newTicketStore(s.queries)
}

func (s *Stores) Annotations() AnnotationStore {
	return newAnnotationStore(s.queries)
}

func (s *Stores) AlertLogs() AlertLogStore {
	return newAlertLogStore(s.queries)
}

func (s *Stores) Heartbeats() HeartbeatStore {
	return newHeartbeatStore(s.queries)
}

func (s *Stores) StaffResponses() StaffResponseStore {
	return newStaffResponseStore(s.queries)
}

func (s *Stores) Profiles() ProfileStore {
	return newProfileStore(s.queries)
}

func (s *Stores) Learnings() LearningStore {
	return newLearningStore(s.queries)
}
