package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suPer8Hu/ai-companion/internal/auth"
	"github.com/suPer8Hu/ai-companion/internal/common"
)

const (
	RequestIDKey    = "request_id"
	SessionIDKey    = "session_id"
	RequestIDHeader = "X-Request-ID"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(RequestIDKey)),
					zap.ByteString("stack", debug.Stack()),
				)
				common.Fail(c, http.StatusInternalServerError, common.CodeInternal, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// BearerSession stores the session id of a valid bearer token. A token that
// does not verify is ignored; handlers that need an account answer 401.
func BearerSession(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid, ok := bearerSession(c.GetHeader("Authorization"), secret); ok {
			c.Set(SessionIDKey, sid)
		}
		c.Next()
	}
}

func bearerSession(header, secret string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	claims, err := auth.ParseJWT(strings.TrimSpace(token), secret)
	if err != nil {
		return "", false
	}
	return claims.SessionID, true
}

// SessionID picks explicit when set, then the bearer token's session,
// then fallback.
func SessionID(c *gin.Context, explicit, fallback string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if sid := c.GetString(SessionIDKey); sid != "" {
		return sid
	}
	return fallback
}
