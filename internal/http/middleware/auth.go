package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wjlee930501/motion-ai-cs/internal/http/dto"
)

const (
	DeviceKeyHeader = "X-Device-Key"
	AdminKeyHeader  = "X-Admin-Key"
)

// DeviceKey authenticates the bridge devices. With no key configured every
// request passes; config refuses to start that way in production.
func DeviceKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if !keyMatches(c.GetHeader(DeviceKeyHeader), key) {
			slog.WarnContext(c.Request.Context(), "rejected device request", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError(dto.CodeUnauthorized, "Invalid device key"))
			return
		}
		c.Next()
	}
}

// AdminKey guards dashboard and operator endpoints. Unlike DeviceKey it fails
// closed when no key is configured.
func AdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewError(dto.CodeUnavailable, "admin API key not configured"))
			return
		}
		if !keyMatches(c.GetHeader(AdminKeyHeader), key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError(dto.CodeUnauthorized, "Invalid admin key"))
			return
		}
		c.Next()
	}
}

func keyMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
