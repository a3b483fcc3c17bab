package middleware

import (
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/CivicGate/civigate/internal/pkg/logger"
	"github.com/CivicGate/civigate/internal/pkg/metrics"
	"github.com/CivicGate/civigate/internal/service"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware throttles citizen writes per actor. Must run
// after CitizenAuth. A limiter transport failure fails open: blocking
// all intake because Redis hiccuped would be worse than admitting a few
// extra reports.
func RateLimitMiddleware(limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		citizenVal, exists := c.Get(ContextCitizenKey)
		if !exists {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "missing citizen context", nil))
			c.Abort()
			return
		}
		citizenID := citizenVal.(string)

		allowed, err := limiter.Allow(c.Request.Context(), citizenID)
		if err != nil {
			logger.Warn("rate limiter unavailable, admitting request", "error", err)
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimitBlocked.Inc()
			c.Error(apperrors.New(apperrors.ErrRateLimited, "rate limit exceeded", nil))
			c.Abort()
			return
		}

		c.Next()
	}
}
