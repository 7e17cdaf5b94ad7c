package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/alert"
	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
	"github.com/wjlee930501/motion-ai-cs/internal/worker"
)

var _ = Describe("EventProcessor", func() {
	const room = "서울정형외과"

	var (
		ctx        context.Context
		db         *memDB
		classifier *fakeClassifier
		alerts     *fakeDispatcher
		proc       *worker.EventProcessor
		base       time.Time
		nextID     int64
	)

	classification := func(urgency model.Urgency, needsReply bool) model.Classification {
		return model.Classification{
			Topic:      "문자 발송",
			Urgency:    urgency,
			Sentiment:  model.SentimentNeutral,
			Intent:     "inquiry_status",
			NeedsReply: needsReply,
			Summary:    "문자 발송 문의",
			Confidence: 0.9,
			Model:      "haiku",
		}
	}

	customer := func(text string, at time.Duration) model.MessageEvent {
		nextID++
		e := model.MessageEvent{
			ID:         nextID,
			ChatRoom:   room,
			SenderName: "김원장",
			SenderType: model.SenderTypeCustomer,
			Direction:  model.DirectionInbound,
			Text:       text,
			ReceivedAt: base.Add(at),
		}
		db.addEvent(e)
		return e
	}

	staff := func(text string, at time.Duration) model.MessageEvent {
		nextID++
		member := "이우진"
		e := model.MessageEvent{
			ID:          nextID,
			ChatRoom:    room,
			SenderName:  "모션랩스_이우진",
			SenderType:  model.SenderTypeStaff,
			StaffMember: &member,
			Direction:   model.DirectionOutbound,
			Text:        text,
			ReceivedAt:  base.Add(at),
		}
		db.addEvent(e)
		return e
	}

	BeforeEach(func() {
		ctx = context.Background()
		db = newMemDB()
		base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		nextID = 0
		classifier = &fakeClassifier{result: func(classify.Input) model.Classification {
			return classification(model.UrgencyMedium, true)
		}}
		alerts = &fakeDispatcher{delivered: true}
		proc = worker.NewEventProcessor((*memEvents)(db), nil, (*memAlertLogs)(db), classifier, db, alerts,
			worker.ProcessorConfig{ContextTurns: 5}, nil)
	})

	It("opens a ticket for a first customer message", func() {
		e := customer("문자가 안 나가요", 0)

		Expect(proc.Process(ctx, e)).To(Succeed())

		t := db.ticketFor(room)
		Expect(t).NotTo(BeNil())
		Expect(t.Status).To(Equal(model.TicketStatusOnboarding))
		Expect(t.Priority).To(Equal(model.PriorityNormal))
		Expect(t.NeedsReply).To(BeTrue())
		Expect(*t.FirstInboundAt).To(Equal(e.ReceivedAt))
		Expect(db.links[t.ID]).To(ConsistOf(e.ID))
		Expect(db.annotations).To(HaveLen(1))
		Expect(db.annotations[0].TargetID).To(Equal(e.ID))
		Expect(db.processed).To(ConsistOf(e.ID))
		Expect(db.locked).To(ConsistOf(room))
		Expect(alerts.urgent).To(BeEmpty())
	})

	It("sends and logs an urgent alert for a new high priority ticket", func() {
		classifier.result = func(classify.Input) model.Classification {
			return classification(model.UrgencyCritical, true)
		}
		e := customer("시스템 먹통입니다 급해요", 0)

		Expect(proc.Process(ctx, e)).To(Succeed())

		t := db.ticketFor(room)
		Expect(t.Priority).To(Equal(model.PriorityUrgent))
		Expect(alerts.urgent).To(HaveLen(1))
		Expect(alerts.urgent[0].TicketID).To(Equal(t.ID))
		Expect(alerts.urgent[0].Urgency).To(Equal(model.UrgencyCritical))
		Expect(db.alertLogs).To(HaveLen(1))
		Expect(db.alertLogs[0].Kind).To(Equal(model.AlertKindUrgentTicket))
		Expect(db.alertLogs[0].Delivered).To(BeTrue())
		Expect(db.alertLogs[0].SentAt).NotTo(BeZero())
	})

	It("does not log an urgent alert the webhook never sent", func() {
		classifier.result = func(classify.Input) model.Classification {
			return classification(model.UrgencyCritical, true)
		}
		alerts.unsent = alert.ErrNotConfigured

		Expect(proc.Process(ctx, customer("급해요", 0))).To(Succeed())

		Expect(alerts.urgent).To(HaveLen(1))
		Expect(db.alertLogs).To(BeEmpty())
	})

	It("does not alert when an existing ticket becomes urgent", func() {
		Expect(proc.Process(ctx, customer("문의드립니다", 0))).To(Succeed())
		classifier.result = func(classify.Input) model.Classification {
			return classification(model.UrgencyCritical, true)
		}

		Expect(proc.Process(ctx, customer("아직도 안 돼요 급해요", time.Minute))).To(Succeed())

		Expect(db.ticketFor(room).Priority).To(Equal(model.PriorityUrgent))
		Expect(alerts.urgent).To(BeEmpty())
	})

	It("never downgrades priority", func() {
		classifier.result = func(classify.Input) model.Classification {
			return classification(model.UrgencyHigh, true)
		}
		Expect(proc.Process(ctx, customer("오류가 나요", 0))).To(Succeed())

		classifier.result = func(classify.Input) model.Classification {
			return classification(model.UrgencyLow, false)
		}
		Expect(proc.Process(ctx, customer("감사합니다", time.Minute))).To(Succeed())

		t := db.ticketFor(room)
		Expect(t.Priority).To(Equal(model.PriorityHigh))
		Expect(t.NeedsReply).To(BeFalse())
	})

	It("records the first response and a staff response log row", func() {
		Expect(proc.Process(ctx, customer("문자가 안 나가요", 0))).To(Succeed())

		Expect(proc.Process(ctx, staff("확인해보겠습니다", 3*time.Minute))).To(Succeed())
		Expect(proc.Process(ctx, staff("해결되었습니다", 10*time.Minute))).To(Succeed())

		t := db.ticketFor(room)
		Expect(*t.FirstResponseSec).To(Equal(180))
		Expect(t.NeedsReply).To(BeFalse())
		Expect(*t.LastOutboundAt).To(Equal(base.Add(10 * time.Minute)))

		Expect(db.responses).To(HaveLen(2))
		Expect(db.responses[0].ResponsePosition).To(Equal(1))
		Expect(*db.responses[0].ResponseDelaySec).To(Equal(180))
		Expect(*db.responses[0].CustomerTextSnippet).To(Equal("문자가 안 나가요"))
		Expect(*db.responses[0].StaffMember).To(Equal("이우진"))
		Expect(db.responses[1].ResponsePosition).To(Equal(2))
		Expect(*db.responses[1].ResponseDelaySec).To(Equal(600))
		Expect(classifier.Calls()).To(Equal(1))
	})

	It("opens a staff ticket with no SLA window", func() {
		Expect(proc.Process(ctx, staff("안녕하세요 모션랩스입니다", 0))).To(Succeed())

		t := db.ticketFor(room)
		Expect(t.NeedsReply).To(BeFalse())
		Expect(t.Priority).To(Equal(model.PriorityNormal))
		Expect(t.FirstInboundAt).To(BeNil())
		Expect(t.FirstResponseSec).To(BeNil())
		Expect(db.responses).To(HaveLen(1))
		Expect(db.responses[0].ResponseDelaySec).To(BeNil())
	})

	It("resets the SLA window when the customer asks again after a reply", func() {
		Expect(proc.Process(ctx, customer("문의1", 0))).To(Succeed())
		alertedAt := base.Add(21 * time.Minute)
		breached := db.ticketFor(room)
		breached.SLABreached = true
		breached.SLAAlertedAt = &alertedAt
		Expect(proc.Process(ctx, staff("답변", 25*time.Minute))).To(Succeed())

		again := customer("문의2", 40*time.Minute)
		Expect(proc.Process(ctx, again)).To(Succeed())

		t := db.ticketFor(room)
		Expect(t.NeedsReply).To(BeTrue())
		Expect(t.FirstResponseSec).To(BeNil())
		Expect(*t.FirstInboundAt).To(Equal(again.ReceivedAt))
		Expect(t.SLABreached).To(BeFalse())
		Expect(t.SLAAlertedAt).To(BeNil())
	})

	It("returns the error and skips the alert when the transaction fails", func() {
		classifier.result = func(classify.Input) model.Classification {
			return classification(model.UrgencyCritical, true)
		}
		db.txErr = errors.New("could not serialize access")

		err := proc.Process(ctx, customer("급해요", 0))

		Expect(err).To(MatchError(ContainSubstring("could not serialize access")))
		Expect(alerts.urgent).To(BeEmpty())
		Expect(db.processed).To(BeEmpty())
	})

	It("does not mark processed when the ticket update fails", func() {
		Expect(proc.Process(ctx, customer("문의1", 0))).To(Succeed())
		db.ticketUpdateFn = func(*model.Ticket) error { return errors.New("constraint violation") }

		second := customer("문의2", time.Minute)
		err := proc.Process(ctx, second)

		Expect(err).To(MatchError(ContainSubstring("updating ticket")))
		Expect(db.processed).NotTo(ContainElement(second.ID))
	})

	It("writes nothing when another worker has taken the event's claim", func() {
		classifier.result = func(classify.Input) model.Classification {
			return classification(model.UrgencyCritical, true)
		}
		e := customer("급해요", 0)
		db.lost[e.ID] = true

		err := proc.Process(ctx, e)

		Expect(err).To(MatchError(store.ErrClaimLost))
		Expect(db.ticketFor(room)).To(BeNil())
		Expect(db.annotations).To(BeEmpty())
		Expect(db.processed).To(BeEmpty())
		Expect(alerts.urgent).To(BeEmpty())
	})

	It("gives the classifier the conversation and its profile", func() {
		profiles := profileSourceFunc(func(_ context.Context, key string) (*model.ConversationProfile, error) {
			return &model.ConversationProfile{ClinicKey: key, Label: model.ProfileLabelDemanding}, nil
		})
		proc = worker.NewEventProcessor((*memEvents)(db), profiles, nil, classifier, db, nil,
			worker.ProcessorConfig{ContextTurns: 5}, nil)

		Expect(proc.Process(ctx, customer("문의드립니다", 0))).To(Succeed())

		Expect(classifier.inputs).To(HaveLen(1))
		in := classifier.inputs[0]
		Expect(in.ChatRoom).To(Equal(room))
		Expect(in.SenderType).To(Equal(model.SenderTypeCustomer))
		Expect(in.Profile).NotTo(BeNil())
		Expect(in.Profile.Label).To(Equal(model.ProfileLabelDemanding))
	})
})

type profileSourceFunc func(ctx context.Context, clinicKey string) (*model.ConversationProfile, error)

func (f profileSourceFunc) Get(ctx context.Context, clinicKey string) (*model.ConversationProfile, error) {
	return f(ctx, clinicKey)
}
