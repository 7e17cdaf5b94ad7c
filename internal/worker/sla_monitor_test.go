package worker_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/alert"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
	"github.com/wjlee930501/motion-ai-cs/internal/worker"
)

var _ = Describe("SLAMonitor", func() {
	var (
		ctx    context.Context
		db     *memDB
		alerts *fakeDispatcher
	)

	waitingTicket := func(id int64, waited time.Duration) *model.Ticket {
		inbound := time.Now().Add(-waited)
		t := &model.Ticket{
			ID:             id,
			ClinicKey:      "서울정형외과",
			Status:         model.TicketStatusOnboarding,
			Priority:       model.PriorityNormal,
			FirstInboundAt: &inbound,
			NeedsReply:     true,
		}
		db.tickets[id] = t
		return t
	}

	linkCustomerText := func(ticketID int64, text string) {
		e := model.MessageEvent{
			ID:         ticketID * 100,
			ChatRoom:   "서울정형외과",
			SenderType: model.SenderTypeCustomer,
			Text:       text,
			ReceivedAt: time.Now().Add(-30 * time.Minute),
		}
		db.events[e.ID] = &e
		db.links[ticketID] = append(db.links[ticketID], e.ID)
	}

	newMonitor := func() *worker.SLAMonitor {
		return worker.NewSLAMonitor((*memTickets)(db), db, alerts, worker.SLAConfig{Threshold: 20 * time.Minute}, nil)
	}

	BeforeEach(func() {
		ctx = context.Background()
		db = newMemDB()
		alerts = &fakeDispatcher{delivered: true}
	})

	It("alerts and marks a ticket past the threshold", func() {
		waitingTicket(1, 25*time.Minute)
		linkCustomerText(1, "문자가 안 나가요")

		res := newMonitor().Scan(ctx)

		Expect(res).To(Equal(worker.SLAScanResult{Candidates: 1, Alerted: 1}))
		Expect(alerts.breaches).To(HaveLen(1))
		Expect(alerts.breaches[0].CustomerText).To(Equal("문자가 안 나가요"))
		Expect(alerts.breaches[0].ElapsedMinutes).To(Equal(25))
		Expect(db.breached).To(HaveKey(int64(1)))
		Expect(db.alertLogs).To(HaveLen(1))
		Expect(db.alertLogs[0].Kind).To(Equal(model.AlertKindSLABreach))
		Expect(db.alertLogs[0].Delivered).To(BeTrue())
	})

	It("does not mark a breach when delivery fails, and retries next pass", func() {
		alerts.delivered = false
		waitingTicket(1, 25*time.Minute)
		monitor := newMonitor()

		first := monitor.Scan(ctx)

		Expect(first.Failed).To(Equal(1))
		Expect(db.breached).To(BeEmpty())
		Expect(db.tickets[1].SLABreached).To(BeFalse())
		Expect(db.alertLogs).To(HaveLen(1))
		Expect(db.alertLogs[0].Delivered).To(BeFalse())
		Expect(*db.alertLogs[0].ResponseStatus).To(Equal(500))
		Expect(*db.alertLogs[0].ErrorMessage).To(ContainSubstring("500"))

		alerts.delivered = true
		second := monitor.Scan(ctx)

		Expect(second.Alerted).To(Equal(1))
		Expect(db.breached).To(HaveKey(int64(1)))
		Expect(alerts.breaches).To(HaveLen(2))
	})

	It("alerts a breached ticket only once", func() {
		waitingTicket(1, 25*time.Minute)
		monitor := newMonitor()

		monitor.Scan(ctx)
		res := monitor.Scan(ctx)

		Expect(res.Candidates).To(BeZero())
		Expect(alerts.breaches).To(HaveLen(1))
	})

	It("ignores tickets inside the threshold, answered, or not needing a reply", func() {
		waitingTicket(1, 5*time.Minute)
		answered := waitingTicket(2, time.Hour)
		sec := 60
		answered.FirstResponseSec = &sec
		waitingTicket(3, time.Hour).NeedsReply = false

		res := newMonitor().Scan(ctx)

		Expect(res.Candidates).To(BeZero())
		Expect(alerts.breaches).To(BeEmpty())
	})

	It("skips a ticket another worker holds", func() {
		waitingTicket(1, 25*time.Minute)
		db.lockSLAFn = func(int64) (*model.Ticket, error) { return nil, store.ErrNotFound }

		res := newMonitor().Scan(ctx)

		Expect(res).To(Equal(worker.SLAScanResult{Candidates: 1, Skipped: 1}))
		Expect(alerts.breaches).To(BeEmpty())
		Expect(db.alertLogs).To(BeEmpty())
	})

	It("counts a missing dispatcher as failed without logging an attempt", func() {
		waitingTicket(1, 25*time.Minute)
		monitor := worker.NewSLAMonitor((*memTickets)(db), db, nil, worker.SLAConfig{}, nil)

		res := monitor.Scan(ctx)
		res = monitor.Scan(ctx)

		Expect(res.Failed).To(Equal(1))
		Expect(db.breached).To(BeEmpty())
		Expect(db.alertLogs).To(BeEmpty())
	})

	It("does not log alerts held back by an open breaker", func() {
		alerts.unsent = alert.ErrBreakerOpen
		waitingTicket(1, 25*time.Minute)
		waitingTicket(2, 30*time.Minute)
		monitor := newMonitor()

		res := monitor.Scan(ctx)

		Expect(res.Failed).To(Equal(2))
		Expect(db.alertLogs).To(BeEmpty())
		Expect(db.breached).To(BeEmpty())

		alerts.unsent = nil
		res = monitor.Scan(ctx)

		Expect(res.Alerted).To(Equal(2))
		Expect(db.alertLogs).To(HaveLen(2))
	})
})

var _ = Describe("Reclaimer", func() {
	It("releases claims older than the stale threshold", func() {
		events := &releaseRecorder{memEvents: (*memEvents)(newMemDB()), released: 3}
		r := worker.NewReclaimer(events, worker.ReclaimerConfig{StaleAfter: 10 * time.Minute}, nil)

		before := time.Now()
		n, err := r.ReclaimOnce(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(3)))
		Expect(events.cutoff).To(BeTemporally("~", before.Add(-10*time.Minute), time.Second))
	})
})

type releaseRecorder struct {
	*memEvents
	released int64
	cutoff   time.Time
}

func (r *releaseRecorder) ReleaseStale(_ context.Context, claimedBefore time.Time) (int64, error) {
	r.cutoff = claimedBefore
	return r.released, nil
}
