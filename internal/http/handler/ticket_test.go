package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/http/handler"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

var _ = Describe("TicketHandler", func() {
	var (
		router    *gin.Engine
		queries   *mockTicketQueryService
		summaries *mockTicketSummaryService
	)

	setup := func(withSummaries bool) {
		router = gin.New()
		var h *handler.TicketHandler
		if withSummaries {
			h = handler.NewTicketHandler(queries, summaries)
		} else {
			h = handler.NewTicketHandler(queries, nil)
		}
		router.GET("/tickets", h.List)
		router.GET("/tickets/:id", h.Get)
		router.GET("/tickets/:id/events", h.Events)
		router.GET("/tickets/:id/alerts", h.Alerts)
		router.POST("/tickets/:id/summarize", h.Summarize)
		router.GET("/events/:id/annotation", h.Annotation)
	}

	BeforeEach(func() {
		queries = &mockTicketQueryService{}
		summaries = &mockTicketSummaryService{}
		setup(true)
	})

	Describe("List", func() {
		It("maps query parameters onto the filter", func() {
			queries.listFn = func(_ context.Context, _ model.TicketFilter) ([]model.Ticket, error) {
				return []model.Ticket{{ID: 7, ClinicKey: "서울밝은안과", NeedsReply: true}}, nil
			}

			w := get(router, "/tickets?needs_reply=true&status=churn_risk&limit=20&offset=40")

			Expect(w.Code).To(Equal(http.StatusOK))
			f := queries.lastFilter
			Expect(f).NotTo(BeNil())
			Expect(f.NeedsReply).NotTo(BeNil())
			Expect(*f.NeedsReply).To(BeTrue())
			Expect(f.SLABreached).To(BeNil())
			Expect(*f.Status).To(Equal(model.TicketStatusChurnRisk))
			Expect(f.Limit).To(Equal(20))
			Expect(f.Offset).To(Equal(40))

			tickets := decodeBody(w)["tickets"].([]any)
			Expect(tickets).To(HaveLen(1))
			Expect(tickets[0].(map[string]any)["ticket_id"]).To(Equal("7"))
		})

		It("returns an empty array rather than null", func() {
			w := get(router, "/tickets")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"tickets":[]`))
		})

		It("rejects an unknown status", func() {
			w := get(router, "/tickets?status=closed")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(queries.lastFilter).To(BeNil())
		})

		It("returns 500 when the query fails", func() {
			queries.listFn = func(context.Context, model.TicketFilter) ([]model.Ticket, error) {
				return nil, errors.New("boom")
			}

			Expect(get(router, "/tickets").Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("Get", func() {
		It("returns the ticket", func() {
			w := get(router, "/tickets/12")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decodeBody(w)["ticket"].(map[string]any)["ticket_id"]).To(Equal("12"))
		})

		It("returns 404 for an unknown ticket", func() {
			queries.getFn = func(context.Context, int64) (*model.Ticket, error) {
				return nil, service.ErrTicketNotFound
			}

			w := get(router, "/tickets/12")

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(errorCode(w)).To(Equal("NOT_FOUND"))
		})

		DescribeTable("rejects malformed ids",
			func(path string) {
				Expect(get(router, path).Code).To(Equal(http.StatusBadRequest))
			},
			Entry("not a number", "/tickets/abc"),
			Entry("zero", "/tickets/0"),
			Entry("negative", "/tickets/-3"),
		)
	})

	Describe("Events", func() {
		It("returns 404 before listing when the ticket does not exist", func() {
			listed := false
			queries.getFn = func(context.Context, int64) (*model.Ticket, error) {
				return nil, service.ErrTicketNotFound
			}
			queries.eventsFn = func(context.Context, int64) ([]model.MessageEvent, error) {
				listed = true
				return nil, nil
			}

			w := get(router, "/tickets/5/events")

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(listed).To(BeFalse())
		})

		It("returns the linked events", func() {
			queries.eventsFn = func(_ context.Context, ticketID int64) ([]model.MessageEvent, error) {
				Expect(ticketID).To(Equal(int64(5)))
				return []model.MessageEvent{{ID: 1, Text: "안녕하세요"}, {ID: 2, Text: "네 확인했습니다"}}, nil
			}

			w := get(router, "/tickets/5/events")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decodeBody(w)["events"]).To(HaveLen(2))
		})
	})

	It("lists alerts for a ticket", func() {
		queries.alertsFn = func(context.Context, int64) ([]model.AlertLog, error) {
			return []model.AlertLog{{ID: 3, TicketID: 5, Kind: model.AlertKindSLABreach}}, nil
		}

		w := get(router, "/tickets/5/alerts")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decodeBody(w)["alerts"]).To(HaveLen(1))
	})

	It("returns 404 for an event without an annotation", func() {
		queries.annotationFn = func(context.Context, int64) (*model.Annotation, error) {
			return nil, store.ErrNotFound
		}

		w := get(router, "/events/9/annotation")

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	Describe("Summarize", func() {
		It("returns the generated summary", func() {
			summaries.summarizeFn = func(_ context.Context, ticketID int64) (*service.TicketSummaryResult, error) {
				return &service.TicketSummaryResult{
					Ticket: &model.Ticket{ID: ticketID},
					Summary: classify.TicketSummary{
						Summary:        "- 예약 변경 요청",
						NextAction:     "예약 시간 확인 후 회신",
						OverallUrgency: model.UrgencyHigh,
						Model:          "escalated",
					},
				}, nil
			}

			w := postJSON(router, "/tickets/8/summarize", `{}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decodeBody(w)
			Expect(resp["summary"]).To(Equal("- 예약 변경 요청"))
			Expect(resp["overall_urgency"]).To(Equal("high"))
		})

		It("returns 404 for an unknown ticket", func() {
			summaries.summarizeFn = func(context.Context, int64) (*service.TicketSummaryResult, error) {
				return nil, service.ErrTicketNotFound
			}

			Expect(postJSON(router, "/tickets/8/summarize", `{}`).Code).To(Equal(http.StatusNotFound))
		})

		It("returns 503 when no summarizer is configured", func() {
			setup(false)

			w := postJSON(router, "/tickets/8/summarize", `{}`)

			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(errorCode(w)).To(Equal("SERVICE_UNAVAILABLE"))
		})
	})
})
