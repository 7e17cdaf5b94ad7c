package handler_test

import (
	"context"
	"sync"
	"time"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
)

type mockEventIngestService struct {
	ingestFn   func(ctx context.Context, params service.EventIngestParams) (*service.EventIngestResult, error)
	lastParams *service.EventIngestParams
}

func (m *mockEventIngestService) Ingest(ctx context.Context, params service.EventIngestParams) (*service.EventIngestResult, error) {
	m.lastParams = &params
	if m.ingestFn != nil {
		return m.ingestFn(ctx, params)
	}
	return &service.EventIngestResult{EventID: 1}, nil
}

type mockHeartbeatService struct {
	recordFn   func(ctx context.Context, params service.HeartbeatParams) (*model.DeviceHeartbeat, error)
	listFn     func(ctx context.Context) ([]model.DeviceHeartbeat, error)
	lastParams *service.HeartbeatParams
}

func (m *mockHeartbeatService) Record(ctx context.Context, params service.HeartbeatParams) (*model.DeviceHeartbeat, error) {
	m.lastParams = &params
	if m.recordFn != nil {
		return m.recordFn(ctx, params)
	}
	return &model.DeviceHeartbeat{DeviceID: params.DeviceID, LastSeenAt: params.SeenAt}, nil
}

func (m *mockHeartbeatService) List(ctx context.Context) ([]model.DeviceHeartbeat, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockTicketQueryService struct {
	listFn       func(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error)
	getFn        func(ctx context.Context, id int64) (*model.Ticket, error)
	eventsFn     func(ctx context.Context, ticketID int64) ([]model.MessageEvent, error)
	alertsFn     func(ctx context.Context, ticketID int64) ([]model.AlertLog, error)
	annotationFn func(ctx context.Context, eventID int64) (*model.Annotation, error)
	lastFilter   *model.TicketFilter
}

func (m *mockTicketQueryService) List(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error) {
	m.lastFilter = &filter
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockTicketQueryService) Get(ctx context.Context, id int64) (*model.Ticket, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Ticket{ID: id}, nil
}

func (m *mockTicketQueryService) Events(ctx context.Context, ticketID int64) ([]model.MessageEvent, error) {
	if m.eventsFn != nil {
		return m.eventsFn(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockTicketQueryService) Alerts(ctx context.Context, ticketID int64) ([]model.AlertLog, error) {
	if m.alertsFn != nil {
		return m.alertsFn(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockTicketQueryService) Annotation(ctx context.Context, eventID int64) (*model.Annotation, error) {
	if m.annotationFn != nil {
		return m.annotationFn(ctx, eventID)
	}
	return nil, nil
}

type mockTicketSummaryService struct {
	summarizeFn func(ctx context.Context, ticketID int64) (*service.TicketSummaryResult, error)
}

func (m *mockTicketSummaryService) Summarize(ctx context.Context, ticketID int64) (*service.TicketSummaryResult, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, ticketID)
	}
	return nil, nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeCycles struct {
	last time.Time
}

func (f fakeCycles) LastCycle() time.Time { return f.last }

type fakeTrigger struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTrigger) TriggerProfiles() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

type fakeCaches struct {
	reloads int
	errs    map[string]string
}

func (f *fakeCaches) Reload() { f.reloads++ }

func (f *fakeCaches) CacheErrors() map[string]string { return f.errs }
