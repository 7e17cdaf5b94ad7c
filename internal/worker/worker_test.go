package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
	"github.com/wjlee930501/motion-ai-cs/internal/worker"
)

var _ = Describe("Worker", func() {
	var (
		ctx  context.Context
		db   *memDB
		sla  *countingScanner
		base time.Time
	)

	event := func(id int64, room string, offset time.Duration) model.MessageEvent {
		return model.MessageEvent{
			ID:         id,
			ChatRoom:   room,
			SenderName: "김원장",
			SenderType: model.SenderTypeCustomer,
			Text:       "문의드립니다",
			ReceivedAt: base.Add(offset),
			Status:     model.IngestStatusProcessing,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		db = newMemDB()
		sla = &countingScanner{}
		base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	})

	Describe("RunOnce", func() {
		It("isolates a failing event from the rest of the batch", func() {
			db.addEvent(event(1, "A", 0))
			db.addEvent(event(2, "B", time.Second))
			db.addEvent(event(3, "C", 2*time.Second))

			var handled []int64
			handler := handlerFunc(func(_ context.Context, e model.MessageEvent) error {
				handled = append(handled, e.ID)
				if e.ID == 2 {
					return errors.New("ticket update failed")
				}
				return nil
			})
			w := worker.New((*memEvents)(db), handler, sla, nil, worker.Config{BatchSize: 10}, nil)

			n, err := w.RunOnce(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(3))
			Expect(handled).To(Equal([]int64{1, 2, 3}))
			Expect(db.errored).To(HaveKeyWithValue(int64(2), "ticket update failed"))
			Expect(db.errored).To(HaveLen(1))
		})

		It("recovers a panic and marks only that event errored", func() {
			db.addEvent(event(1, "A", 0))
			db.addEvent(event(2, "B", time.Second))

			var handled []int64
			handler := handlerFunc(func(_ context.Context, e model.MessageEvent) error {
				if e.ID == 1 {
					panic("nil classification")
				}
				handled = append(handled, e.ID)
				return nil
			})
			w := worker.New((*memEvents)(db), handler, sla, nil, worker.Config{}, nil)

			_, err := w.RunOnce(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(handled).To(Equal([]int64{2}))
			Expect(db.errored[1]).To(ContainSubstring("panic: nil classification"))
		})

		It("processes a batch in receipt order", func() {
			db.addEvent(event(1, "A", 5*time.Second))
			db.addEvent(event(2, "A", 0))
			db.addEvent(event(3, "A", 2*time.Second))

			var handled []int64
			handler := handlerFunc(func(_ context.Context, e model.MessageEvent) error {
				handled = append(handled, e.ID)
				return nil
			})
			w := worker.New((*memEvents)(db), handler, nil, nil, worker.Config{}, nil)

			_, err := w.RunOnce(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(handled).To(Equal([]int64{2, 3, 1}))
		})

		It("skips debug rooms without processing them", func() {
			db.addEvent(event(1, "[TEST] 서울정형외과", 0))
			db.addEvent(event(2, "__test_room", time.Second))
			db.addEvent(event(3, "서울정형외과", 2*time.Second))

			var handled []int64
			handler := handlerFunc(func(_ context.Context, e model.MessageEvent) error {
				handled = append(handled, e.ID)
				return nil
			})
			w := worker.New((*memEvents)(db), handler, sla, nil, worker.Config{
				DebugRoomPrefixes: []string{"[TEST]", "__test"},
			}, nil)

			_, err := w.RunOnce(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(handled).To(Equal([]int64{3}))
			Expect(db.skipped).To(ConsistOf(int64(1), int64(2)))
		})

		It("runs the SLA monitor after every pass, even an empty one", func() {
			w := worker.New((*memEvents)(db), handlerFunc(func(context.Context, model.MessageEvent) error { return nil }),
				sla, nil, worker.Config{}, nil)

			_, err := w.RunOnce(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = w.RunOnce(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(sla.scans).To(Equal(2))
			Expect(w.LastCycle()).NotTo(BeZero())
		})

		It("renews each claim before handing the event over", func() {
			claimedAt := base.Add(-time.Minute)
			e1 := event(1, "A", 0)
			e1.ClaimedAt = &claimedAt
			db.addEvent(e1)
			db.addEvent(event(2, "B", time.Second))

			var seen []time.Time
			handler := handlerFunc(func(_ context.Context, e model.MessageEvent) error {
				seen = append(seen, e.Claim())
				return nil
			})
			w := worker.New((*memEvents)(db), handler, nil, nil, worker.Config{}, nil)

			_, err := w.RunOnce(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(db.touched).To(Equal([]int64{1, 2}))
			Expect(seen).To(HaveLen(2))
			Expect(seen[0]).To(Equal(claimedAt.Add(time.Second)))
		})

		It("leaves an event alone once another worker has taken its claim", func() {
			db.addEvent(event(1, "A", 0))
			db.addEvent(event(2, "[TEST] room", time.Second))
			db.addEvent(event(3, "C", 2*time.Second))
			db.lost[1] = true
			db.lost[2] = true

			var handled []int64
			handler := handlerFunc(func(_ context.Context, e model.MessageEvent) error {
				handled = append(handled, e.ID)
				return nil
			})
			w := worker.New((*memEvents)(db), handler, nil, nil, worker.Config{
				DebugRoomPrefixes: []string{"[TEST]"},
			}, nil)

			_, err := w.RunOnce(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(handled).To(Equal([]int64{3}))
			Expect(db.skipped).To(BeEmpty())
			Expect(db.errored).To(BeEmpty())
		})

		It("does not mark an event errored when its claim is lost mid-processing", func() {
			db.addEvent(event(1, "A", 0))

			handler := handlerFunc(func(context.Context, model.MessageEvent) error {
				return fmt.Errorf("marking event processed: %w", store.ErrClaimLost)
			})
			w := worker.New((*memEvents)(db), handler, nil, nil, worker.Config{}, nil)

			_, err := w.RunOnce(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(db.errored).To(BeEmpty())
		})

		It("claims at most the batch size", func() {
			for i := int64(1); i <= 5; i++ {
				db.addEvent(event(i, "A", time.Duration(i)*time.Second))
			}
			w := worker.New((*memEvents)(db), handlerFunc(func(context.Context, model.MessageEvent) error { return nil }),
				nil, nil, worker.Config{BatchSize: 2}, nil)

			n, err := w.RunOnce(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})
	})

	Describe("Run and Stop", func() {
		It("drains the queue and stops promptly", func() {
			for i := int64(1); i <= 5; i++ {
				db.addEvent(event(i, "A", time.Duration(i)*time.Second))
			}

			var mu sync.Mutex
			handled := 0
			handler := handlerFunc(func(context.Context, model.MessageEvent) error {
				mu.Lock()
				handled++
				mu.Unlock()
				return nil
			})
			w := worker.New((*memEvents)(db), handler, nil, nil, worker.Config{
				BatchSize:    2,
				PollInterval: time.Hour,
			}, nil)

			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			Eventually(func() int {
				mu.Lock()
				defer mu.Unlock()
				return handled
			}).Should(Equal(5))

			w.Stop()
			Eventually(done).Should(Receive(BeNil()))
		})

		It("returns the context error when cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			w := worker.New((*memEvents)(db), handlerFunc(func(context.Context, model.MessageEvent) error { return nil }),
				nil, nil, worker.Config{PollInterval: 10 * time.Millisecond}, nil)

			done := make(chan error, 1)
			go func() { done <- w.Run(cctx) }()
			cancel()

			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})
	})
})
