package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/api/metrics"
	"github.com/natours/tour-booking-api/internal/infrastructure/db/redis"
	"github.com/natours/tour-booking-api/pkg/logger"
)

// RateLimit rejects callers that exhaust their per-window budget with a
// 429. The limiter is fail-open: if Redis is unreachable the request goes
// through, logged at warn.
func RateLimit(limiter *redis.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := c.RealIP()

			ok, err := limiter.Allow(c.Request().Context(), caller)
			if err != nil {
				logger.Get().Warn().Err(err).Str("caller", caller).Msg("rate limiter unavailable, letting request through")
				return next(c)
			}
			if !ok {
				metrics.RateLimitedTotal.Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests from this IP, please try again in an hour")
			}
			return next(c)
		}
	}
}
