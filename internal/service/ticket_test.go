package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

var _ = Describe("TicketQueryService", func() {
	var (
		ctx     context.Context
		tickets *mockTicketStore
		events  *mockMessageEventStore
		svc     service.TicketQueryService
	)

	BeforeEach(func() {
		ctx = context.Background()
		tickets = &mockTicketStore{}
		events = &mockMessageEventStore{}
		svc = service.NewTicketQueryService(tickets, events, nil, nil)
	})

	DescribeTable("clamps the page size",
		func(requested, want int) {
			_, err := svc.List(ctx, model.TicketFilter{Limit: requested, Offset: -5})

			Expect(err).NotTo(HaveOccurred())
			Expect(tickets.lastFilter.Limit).To(Equal(want))
			Expect(tickets.lastFilter.Offset).To(BeZero())
		},
		Entry("default", 0, 50),
		Entry("within range", 20, 20),
		Entry("above max", 1000, 200),
	)

	It("maps a missing ticket to ErrTicketNotFound", func() {
		_, err := svc.Get(ctx, 42)
		Expect(err).To(MatchError(service.ErrTicketNotFound))

		_, err = svc.Events(ctx, 42)
		Expect(err).To(MatchError(service.ErrTicketNotFound))
	})

	It("lists the ticket's events", func() {
		tickets.getByIDFn = func(_ context.Context, id int64) (*model.Ticket, error) {
			return &model.Ticket{ID: id}, nil
		}
		var gotLimit int
		events.listByTicketFn = func(_ context.Context, _ int64, limit int) ([]model.MessageEvent, error) {
			gotLimit = limit
			return []model.MessageEvent{{ID: 1}, {ID: 2}}, nil
		}

		list, err := svc.Events(ctx, 42)

		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
		Expect(gotLimit).To(Equal(500))
	})
})

var _ = Describe("TicketSummaryService", func() {
	var (
		ctx        context.Context
		tickets    *mockTicketStore
		events     *mockMessageEventStore
		summarizer *mockSummarizer
		svc        service.TicketSummaryService
	)

	BeforeEach(func() {
		ctx = context.Background()
		tickets = &mockTicketStore{
			getByIDFn: func(_ context.Context, id int64) (*model.Ticket, error) {
				return &model.Ticket{ID: id, ClinicKey: "서울정형외과"}, nil
			},
		}
		events = &mockMessageEventStore{
			listByTicketFn: func(context.Context, int64, int) ([]model.MessageEvent, error) {
				return []model.MessageEvent{{ID: 1, Text: "문자가 안 나가요"}}, nil
			},
		}
		summarizer = &mockSummarizer{result: classify.TicketSummary{
			Summary:        "• 문자 발송 오류",
			NextAction:     "발송 로그 확인",
			OverallUrgency: model.UrgencyHigh,
			Model:          "gpt-4o-mini",
		}}
		svc = service.NewTicketSummaryService(tickets, events, summarizer, nil)
	})

	It("stores the generated summary on the ticket", func() {
		var stored []string
		tickets.updateSummaryFn = func(_ context.Context, id int64, summary, next string) error {
			stored = []string{summary, next}
			return nil
		}

		res, err := svc.Summarize(ctx, 7)

		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(Equal([]string{"• 문자 발송 오류", "발송 로그 확인"}))
		Expect(*res.Ticket.SummaryLatest).To(Equal("• 문자 발송 오류"))
		Expect(*res.Ticket.NextAction).To(Equal("발송 로그 확인"))
		Expect(summarizer.gotClinic).To(Equal("서울정형외과"))
		Expect(summarizer.gotEvents).To(HaveLen(1))
	})

	It("returns ErrTicketNotFound for an unknown ticket", func() {
		tickets.getByIDFn = func(context.Context, int64) (*model.Ticket, error) { return nil, store.ErrNotFound }

		_, err := svc.Summarize(ctx, 7)
		Expect(err).To(MatchError(service.ErrTicketNotFound))
	})

	It("returns storage errors", func() {
		tickets.updateSummaryFn = func(context.Context, int64, string, string) error { return errors.New("read only") }

		_, err := svc.Summarize(ctx, 7)
		Expect(err).To(MatchError(ContainSubstring("read only")))
	})
})
