package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/quickutil/pdfpress/common/ratelimit"
)

// ClientRateLimitMiddleware checks per-client upload rate limits, keyed by
// the caller's IP address. On limiter errors the request is allowed (fail
// open for availability).
func ClientRateLimitMiddleware(rateLimiter *ratelimit.RateLimiter, limit int64, window time.Duration) echo.MiddlewareFunc {
	windowSec := int(window / time.Second)
	if windowSec < 1 {
		windowSec = 1
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			result, err := rateLimiter.CheckClientLimit(c.Request().Context(), c.RealIP(), limit, windowSec)
			if err != nil {
				return next(c)
			}

			if !result.Allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":   "rate_limit_exceeded",
					"message": "Too many uploads. Please wait before trying again.",
					"details": map[string]interface{}{
						"limit":               result.Limit,
						"window_seconds":      windowSec,
						"current_count":       result.CurrentCount,
						"retry_after_seconds": result.RetryAfterSeconds,
					},
				})
			}

			return next(c)
		}
	}
}
