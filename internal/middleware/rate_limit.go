package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimitMiddleware limits each client IP to perMinute requests per minute.
// The server applies one instance globally and a stricter one to auth routes.
func NewRateLimitMiddleware(perMinute int) gin.HandlerFunc {
	return NewRateLimitMiddlewareWithPeriod(int64(perMinute), time.Minute)
}

// NewRateLimitMiddlewareWithPeriod limits each client IP to limit requests per period
func NewRateLimitMiddlewareWithPeriod(limit int64, period time.Duration) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}

	instance := limiter.New(memory.NewStore(), rate)
	return mgin.NewMiddleware(instance)
}

// RequestID echoes X-Request-ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("RequestID", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
