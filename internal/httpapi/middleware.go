package httpapi

import (
	"time"

	"github.com/MrEthical07/sharedauth"
	"github.com/MrEthical07/sharedauth/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// RequestIDHeader is read from inbound requests and echoed back.
	RequestIDHeader = "X-Request-ID"

	sessionKey   = "sharedauth.session"
	requestIDKey = "sharedauth.request_id"
)

// RequestID reuses an inbound X-Request-ID when it parses as a UUID and
// mints a new one otherwise.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one line per request after the handler returns.
func AccessLog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetString(requestIDKey)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// Sessions resolves the session for every request and carries the client
// address, user agent and request id into the request context.
func Sessions(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = sharedauth.WithClientIP(ctx, c.ClientIP())
		ctx = sharedauth.WithUserAgent(ctx, c.Request.UserAgent())
		if id := c.GetString(requestIDKey); id != "" {
			ctx = sharedauth.WithRequestID(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Set(sessionKey, manager.Resolve(ctx, c.Request))
		c.Next()
	}
}

// SessionFrom returns the handle installed by [Sessions].
func SessionFrom(c *gin.Context) *session.Handle {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	h, _ := v.(*session.Handle)
	return h
}
