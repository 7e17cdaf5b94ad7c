package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/queue"
	"github.com/wjlee930501/motion-ai-cs/internal/sender"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

// uniqueEventStore mimics the (text_hash, bucket_ts) unique constraint.
func uniqueEventStore() *mockMessageEventStore {
	var mu sync.Mutex
	rows := map[string]*model.MessageEvent{}
	key := func(hash string, bucket time.Time) string {
		return hash + "|" + bucket.UTC().Format(time.RFC3339Nano)
	}
	m := &mockMessageEventStore{}
	m.insertFn = func(_ context.Context, e *model.MessageEvent) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		k := key(e.TextHash, e.BucketTS)
		if _, ok := rows[k]; ok {
			return false, nil
		}
		cp := *e
		rows[k] = &cp
		return true, nil
	}
	m.getByDedupKeyFn = func(_ context.Context, hash string, bucket time.Time) (*model.MessageEvent, error) {
		mu.Lock()
		defer mu.Unlock()
		if e, ok := rows[key(hash, bucket)]; ok {
			return e, nil
		}
		return nil, store.ErrNotFound
	}
	return m
}

var _ = Describe("EventIngestService", func() {
	var (
		ctx      context.Context
		events   *mockMessageEventStore
		producer *mockProducer
		svc      service.EventIngestService
		now      time.Time
	)

	build := func() {
		svc = service.NewEventIngestService(events,
			sender.New(sender.Rules{StaffPrefix: "모션랩스_", KnownStaff: []string{"한기훈"}}),
			producer,
			service.EventIngestConfig{Now: func() time.Time { return now }},
			nil)
	}

	params := func(text string, at time.Time) service.EventIngestParams {
		return service.EventIngestParams{
			DeviceID:   "tablet-1",
			ChatRoom:   "서울정형외과",
			SenderName: "김원장",
			Text:       text,
			ReceivedAt: at,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		events = uniqueEventStore()
		producer = &mockProducer{}
		build()
	})

	Describe("Ingest", func() {
		It("stores a customer message and nudges workers", func() {
			res, err := svc.Ingest(ctx, params("예약 문자가 안 나가요", now))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Deduped).To(BeFalse())
			Expect(res.EventID).NotTo(BeZero())

			stored := events.lastInserted
			Expect(stored.SenderType).To(Equal(model.SenderTypeCustomer))
			Expect(stored.Direction).To(Equal(model.DirectionInbound))
			Expect(stored.StaffMember).To(BeNil())
			Expect(stored.Status).To(Equal(model.IngestStatusReceived))
			Expect(stored.BucketTS).To(Equal(service.BucketFor(now)))

			Expect(producer.nudges).To(HaveLen(1))
			Expect(producer.nudges[0].EventID).To(Equal(res.EventID))
			Expect(producer.nudges[0].ChatRoom).To(Equal("서울정형외과"))
		})

		It("derives staff member and direction from a prefixed name", func() {
			p := params("확인해보겠습니다", now)
			p.SenderName = "[모션랩스_이우진]"

			_, err := svc.Ingest(ctx, p)

			Expect(err).NotTo(HaveOccurred())
			stored := events.lastInserted
			Expect(stored.SenderType).To(Equal(model.SenderTypeStaff))
			Expect(stored.Direction).To(Equal(model.DirectionOutbound))
			Expect(stored.StaffMember).NotTo(BeNil())
			Expect(*stored.StaffMember).To(Equal("이우진"))
		})

		It("returns the original id for a duplicate in the same bucket", func() {
			first, err := svc.Ingest(ctx, params("안녕하세요", now.Add(1*time.Second)))
			Expect(err).NotTo(HaveOccurred())

			second, err := svc.Ingest(ctx, params("안녕하세요", now.Add(8*time.Second)))
			Expect(err).NotTo(HaveOccurred())

			Expect(second.Deduped).To(BeTrue())
			Expect(second.EventID).To(Equal(first.EventID))
			Expect(producer.nudges).To(HaveLen(1))
		})

		It("treats a duplicate across a bucket boundary as a new event", func() {
			first, err := svc.Ingest(ctx, params("안녕하세요", now.Add(9999*time.Millisecond)))
			Expect(err).NotTo(HaveOccurred())

			second, err := svc.Ingest(ctx, params("안녕하세요", now.Add(10*time.Second)))
			Expect(err).NotTo(HaveOccurred())

			Expect(second.Deduped).To(BeFalse())
			Expect(second.EventID).NotTo(Equal(first.EventID))
		})

		It("dedupes composed and decomposed Hangul alike", func() {
			composed := "한글"
			decomposed := "\u1112\u1161\u11ab\u1100\u1173\u11af"

			first, err := svc.Ingest(ctx, params(composed, now))
			Expect(err).NotTo(HaveOccurred())
			second, err := svc.Ingest(ctx, params(decomposed, now))
			Expect(err).NotTo(HaveOccurred())

			Expect(second.Deduped).To(BeTrue())
			Expect(second.EventID).To(Equal(first.EventID))
		})

		It("reports a phantom duplicate with a zero id", func() {
			events.insertFn = func(context.Context, *model.MessageEvent) (bool, error) { return false, nil }
			events.getByDedupKeyFn = nil

			res, err := svc.Ingest(ctx, params("안녕하세요", now))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Deduped).To(BeTrue())
			Expect(res.EventID).To(BeZero())
			Expect(events.getByDedupCalls).To(Equal(3))
		})

		It("does not fail when the nudge cannot be sent", func() {
			producer.nudgeFn = func(context.Context, queue.Nudge) error { return errors.New("redis down") }

			res, err := svc.Ingest(ctx, params("문의드립니다", now))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.EventID).NotTo(BeZero())
		})

		It("works without a producer", func() {
			svc = service.NewEventIngestService(events, nil, nil,
				service.EventIngestConfig{Now: func() time.Time { return now }}, nil)

			res, err := svc.Ingest(ctx, params("문의드립니다", now))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.EventID).NotTo(BeZero())
		})

		It("returns store errors", func() {
			events.insertFn = func(context.Context, *model.MessageEvent) (bool, error) {
				return false, errors.New("connection reset")
			}

			_, err := svc.Ingest(ctx, params("문의드립니다", now))

			Expect(err).To(MatchError(ContainSubstring("connection reset")))
		})

		It("merges package and notification id into metadata", func() {
			p := params("문의드립니다", now)
			pkg := "com.kakao.talk"
			nid := "n-42"
			p.Package = &pkg
			p.NotificationID = &nid
			p.Metadata = json.RawMessage(`{"title":"서울정형외과"}`)

			_, err := svc.Ingest(ctx, p)
			Expect(err).NotTo(HaveOccurred())

			var meta map[string]string
			Expect(json.Unmarshal(events.lastInserted.Metadata, &meta)).To(Succeed())
			Expect(meta).To(Equal(map[string]string{
				"title":           "서울정형외과",
				"package":         "com.kakao.talk",
				"notification_id": "n-42",
			}))
		})
	})

	Describe("validation", func() {
		It("names every missing field", func() {
			_, err := svc.Ingest(ctx, service.EventIngestParams{Text: "hi", ReceivedAt: now})

			Expect(err).To(MatchError(service.ErrInvalidEvent))
			Expect(err.Error()).To(ContainSubstring("device_id, chat_room, sender_name"))
			Expect(events.insertCalls).To(BeZero())
		})

		It("rejects whitespace-only text", func() {
			_, err := svc.Ingest(ctx, params("   ", now))
			Expect(err).To(MatchError(service.ErrInvalidEvent))
		})

		It("rejects received_at too far in the future", func() {
			_, err := svc.Ingest(ctx, params("문의", now.Add(6*time.Minute)))
			Expect(err).To(MatchError(service.ErrReceivedAtOutOfRange))
		})

		It("rejects received_at older than a week", func() {
			_, err := svc.Ingest(ctx, params("문의", now.Add(-8*24*time.Hour)))
			Expect(err).To(MatchError(service.ErrReceivedAtOutOfRange))
		})

		It("rejects NUL bytes the database cannot store", func() {
			_, err := svc.Ingest(ctx, params("문의\x00드립니다", now))
			Expect(err).To(MatchError(service.ErrInvalidEvent))
			Expect(err.Error()).To(ContainSubstring("NUL byte in text"))

			p := params("문의", now)
			p.Metadata = json.RawMessage(`{"title":"a\u0000b"}`)
			_, err = svc.Ingest(ctx, p)
			Expect(err).To(MatchError(service.ErrInvalidEvent))

			pkg := "com.kakao\x00.talk"
			p = params("문의", now)
			p.Package = &pkg
			_, err = svc.Ingest(ctx, p)
			Expect(err).To(MatchError(service.ErrInvalidEvent))

			Expect(events.insertCalls).To(BeZero())
		})

		It("rejects metadata that is not an object", func() {
			p := params("문의", now)
			p.Metadata = json.RawMessage(`[1,2]`)

			_, err := svc.Ingest(ctx, p)
			Expect(err).To(MatchError(service.ErrInvalidEvent))
		})
	})
})

var _ = Describe("Fingerprint", func() {
	It("ignores surrounding whitespace in names but not in text", func() {
		Expect(service.Fingerprint(" 방 ", "김원장 ", "안녕")).To(Equal(service.Fingerprint("방", "김원장", "안녕")))
		Expect(service.Fingerprint("방", "김원장", "안녕 ")).NotTo(Equal(service.Fingerprint("방", "김원장", "안녕")))
	})

	It("separates rooms", func() {
		Expect(service.Fingerprint("A", "김원장", "안녕")).NotTo(Equal(service.Fingerprint("B", "김원장", "안녕")))
	})
})

var _ = Describe("BucketFor", func() {
	It("truncates to ten seconds in UTC", func() {
		kst := time.FixedZone("KST", 9*60*60)
		at := time.Date(2025, 3, 10, 18, 0, 19, 999_000_000, kst)

		Expect(service.BucketFor(at)).To(Equal(time.Date(2025, 3, 10, 9, 0, 10, 0, time.UTC)))
	})
})
