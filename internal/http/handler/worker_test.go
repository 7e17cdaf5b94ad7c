package handler_test

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/http/handler"
)

var _ = Describe("WorkerHandler", func() {
	var (
		trigger *fakeTrigger
		caches  *fakeCaches
	)

	newRouter := func(last time.Time) *gin.Engine {
		router := gin.New()
		h := handler.NewWorkerHandler(fakeCycles{last: last}, trigger, caches, time.Minute)
		router.GET("/health", h.Health)
		router.POST("/learning/run", h.RunLearning)
		return router
	}

	BeforeEach(func() {
		trigger = &fakeTrigger{}
		caches = &fakeCaches{}
	})

	It("reports starting before the first cycle", func() {
		w := get(newRouter(time.Time{}), "/health")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decodeBody(w)["status"]).To(Equal("starting"))
	})

	It("is healthy after a recent cycle", func() {
		w := get(newRouter(time.Now().Add(-5*time.Second)), "/health")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decodeBody(w)["status"]).To(Equal("healthy"))
	})

	It("returns 503 when the loop has stalled", func() {
		w := get(newRouter(time.Now().Add(-time.Hour)), "/health")

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(decodeBody(w)["status"]).To(Equal("stalled"))
	})

	It("reports classifier caches that failed to refresh", func() {
		caches.errs = map[string]string{"classifier_guidance": "listing corrections: db down"}

		w := get(newRouter(time.Now().Add(-5*time.Second)), "/health")

		Expect(w.Code).To(Equal(http.StatusOK))
		body := decodeBody(w)
		Expect(body["status"]).To(Equal("degraded"))
		Expect(body["cache_errors"]).To(HaveKeyWithValue("classifier_guidance", ContainSubstring("db down")))
	})

	It("reloads learned rules, starts a profile run and returns 202", func() {
		w := postJSON(newRouter(time.Now()), "/learning/run", `{}`)

		Expect(w.Code).To(Equal(http.StatusAccepted))
		Expect(trigger.calls).To(Equal(1))
		Expect(caches.reloads).To(Equal(1))
	})
})

var _ = Describe("EventStreamHandler", func() {
	It("returns 503 without a redis client", func() {
		router := gin.New()
		router.GET("/stream", handler.NewEventStreamHandler(nil, "cs_events").Stream)

		w := get(router, "/stream")

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
