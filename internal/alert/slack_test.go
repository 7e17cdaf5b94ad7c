package alert_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/alert"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

var _ = Describe("SlackWebhook", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		status   atomic.Int32
		hits     atomic.Int32
		lastBody atomic.Value
	)

	BeforeEach(func() {
		ctx = context.Background()
		status.Store(http.StatusOK)
		hits.Store(0)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			body, _ := io.ReadAll(r.Body)
			lastBody.Store(string(body))
			code := int(status.Load())
			w.WriteHeader(code)
			if code != http.StatusOK {
				_, _ = w.Write([]byte("invalid_payload"))
				return
			}
			_, _ = w.Write([]byte("ok"))
		}))
		DeferCleanup(server.Close)
	})

	newWebhook := func(url string) *alert.SlackWebhook {
		return alert.NewSlackWebhook(alert.Config{
			WebhookURL:   url,
			DashboardURL: "https://cs.example.com/",
			Timeout:      time.Second,
			MaxFailures:  2,
			OpenTimeout:  time.Minute,
		}, nil)
	}

	It("delivers an SLA breach with a dashboard deep link", func() {
		d := newWebhook(server.URL).SendSLABreach(ctx, alert.SLABreach{
			TicketID:       42,
			ClinicKey:      "강남연세의원",
			CustomerText:   strings.Repeat("가", 150),
			ElapsedMinutes: 23,
		})

		Expect(d.Delivered).To(BeTrue())
		Expect(d.Err).NotTo(HaveOccurred())
		Expect(*d.StatusCode).To(Equal(http.StatusOK))

		body := lastBody.Load().(string)
		Expect(body).To(ContainSubstring("https://cs.example.com/tickets/42"))
		Expect(body).To(ContainSubstring("23분 경과"))
		Expect(body).To(ContainSubstring("강남연세의원"))
		Expect(body).To(ContainSubstring(strings.Repeat("가", 100)))
		Expect(body).NotTo(ContainSubstring(strings.Repeat("가", 101)))

		var msg map[string]any
		Expect(json.Unmarshal([]byte(body), &msg)).To(Succeed())
		Expect(msg["blocks"]).To(HaveLen(4))
	})

	It("marks critical urgent tickets red", func() {
		d := newWebhook(server.URL).SendUrgentTicket(ctx, alert.UrgentTicket{
			TicketID:     7,
			ClinicKey:    "강남연세의원",
			CustomerText: "전체 발송이 안 됩니다",
			Urgency:      model.UrgencyCritical,
		})

		Expect(d.Delivered).To(BeTrue())
		body := lastBody.Load().(string)
		Expect(body).To(ContainSubstring("🔴 긴급 문의 접수"))
		Expect(body).To(ContainSubstring("CRITICAL"))
	})

	It("reports non-2xx responses as undelivered with the status", func() {
		status.Store(http.StatusInternalServerError)

		d := newWebhook(server.URL).SendSLABreach(ctx, alert.SLABreach{TicketID: 1, ClinicKey: "room"})

		Expect(d.Delivered).To(BeFalse())
		Expect(d.StatusCode).NotTo(BeNil())
		Expect(*d.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(d.Err).To(MatchError(ContainSubstring("invalid_payload")))

		Expect(d.Attempted()).To(BeTrue())

		entry := d.LogEntry(1, model.AlertKindSLABreach)
		Expect(entry.Delivered).To(BeFalse())
		Expect(*entry.ResponseStatus).To(Equal(http.StatusInternalServerError))
		Expect(*entry.ErrorMessage).To(ContainSubstring("500"))
	})

	It("fails without a webhook URL", func() {
		d := newWebhook("").SendSLABreach(ctx, alert.SLABreach{TicketID: 1})

		Expect(d.Delivered).To(BeFalse())
		Expect(d.StatusCode).To(BeNil())
		Expect(d.Err).To(MatchError(alert.ErrNotConfigured))
		Expect(d.Attempted()).To(BeFalse())
		Expect(hits.Load()).To(BeZero())
	})

	It("stops calling a failing webhook once the breaker opens", func() {
		status.Store(http.StatusBadGateway)
		w := newWebhook(server.URL)

		w.SendSLABreach(ctx, alert.SLABreach{TicketID: 1})
		w.SendSLABreach(ctx, alert.SLABreach{TicketID: 1})
		d := w.SendSLABreach(ctx, alert.SLABreach{TicketID: 1})

		Expect(hits.Load()).To(Equal(int32(2)))
		Expect(d.Delivered).To(BeFalse())
		Expect(d.Err).To(MatchError(alert.ErrBreakerOpen))
		Expect(d.Attempted()).To(BeFalse())
	})

	It("reports transport errors without a status", func() {
		server.Close()

		d := newWebhook(server.URL).SendSLABreach(ctx, alert.SLABreach{TicketID: 1})
		Expect(d.Delivered).To(BeFalse())
		Expect(d.StatusCode).To(BeNil())
		Expect(d.Err).To(HaveOccurred())
	})
})
