package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/http/middleware"
)

func serve(mw gin.HandlerFunc, headers map[string]string) *httptest.ResponseRecorder {
	return serveAt("/ok", mw, headers)
}

func serveAt(path string, mw gin.HandlerFunc, headers map[string]string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery(), mw)
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/panic", func(*gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func pass(c *gin.Context) { c.Next() }

var _ = Describe("DeviceKey", func() {
	It("accepts the configured key", func() {
		w := serve(middleware.DeviceKey("secret"), map[string]string{middleware.DeviceKeyHeader: "secret"})
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("rejects a wrong key with the error envelope", func() {
		w := serve(middleware.DeviceKey("secret"), map[string]string{middleware.DeviceKeyHeader: "guess"})
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Body.String()).To(ContainSubstring(`"code":"UNAUTHORIZED"`))
		Expect(w.Body.String()).To(ContainSubstring(`"ok":false`))
	})

	It("rejects a missing key", func() {
		w := serve(middleware.DeviceKey("secret"), nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("lets everything through when no key is configured", func() {
		w := serve(middleware.DeviceKey(""), nil)
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})

var _ = Describe("AdminKey", func() {
	It("accepts the configured key", func() {
		w := serve(middleware.AdminKey("admin"), map[string]string{middleware.AdminKeyHeader: "admin"})
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("rejects a wrong key", func() {
		w := serve(middleware.AdminKey("admin"), map[string]string{middleware.AdminKeyHeader: "nope"})
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("fails closed when no key is configured", func() {
		w := serve(middleware.AdminKey(""), map[string]string{middleware.AdminKeyHeader: ""})
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})

var _ = Describe("RequestID", func() {
	It("echoes a client supplied id", func() {
		w := serve(pass, map[string]string{middleware.RequestIDHeader: "abc-123"})
		Expect(w.Header().Get(middleware.RequestIDHeader)).To(Equal("abc-123"))
	})

	It("generates an id when none is sent", func() {
		w := serve(pass, nil)
		Expect(w.Header().Get(middleware.RequestIDHeader)).To(HaveLen(36))
	})
})

var _ = Describe("Recovery", func() {
	It("turns a panic into a 500", func() {
		w := serveAt("/panic", pass, nil)
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring("INTERNAL_ERROR"))
	})
})
