package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"osf/internal/apperr"
	"osf/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const RequestIDKey = "request_id"

// RequestLogger tags each request with an id and logs it once finished.
// Server errors attached with c.Error are logged with the request.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		started := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(started).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
		if auth := GetAuth(c); auth.LoggedIn() {
			entry = entry.WithField("user_id", auth.UserID())
		}
		switch {
		case c.Writer.Status() >= 500:
			if err := c.Errors.Last(); err != nil {
				entry = entry.WithError(err.Err)
			}
			entry.Error("request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// APIVersion answers 410 Gone for requests pinned to a version outside
// [minVersion, maxVersion]. Requests without a version pass.
func APIVersion(minVersion, maxVersion string) gin.HandlerFunc {
	return func(c *gin.Context) {
		version := c.GetHeader("X-API-Version")
		if version == "" {
			version = c.Query("version")
		}
		if version != "" && utils.IsDeprecated(version, minVersion, maxVersion) {
			AbortWithError(c, apperr.Gone("This API version is no longer supported.", map[string]any{
				"version":     version,
				"min_version": minVersion,
				"max_version": maxVersion,
			}))
			return
		}
		c.Next()
	}
}
