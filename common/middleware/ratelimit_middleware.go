package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/leaguehq/frontoffice/common/ratelimit"
)

// SubmissionRateLimit throttles claim submissions: a per-client check keyed
// on the caller's IP plus a service-wide ceiling. Limiter errors fail open;
// a Redis blip must not block claim traffic near a deadline.
func SubmissionRateLimit(limiter *ratelimit.Limiter, limits ratelimit.SubmissionLimits) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			result, err := limiter.CheckClientLimit(ctx, c.RealIP(), limits.PerClient, limits.WindowSeconds)
			if err == nil && !result.Allowed {
				return tooManyRequests(c, "submission_rate_limit_exceeded", result)
			}

			result, err = limiter.CheckGlobalLimit(ctx, limits.Global, limits.WindowSeconds)
			if err == nil && !result.Allowed {
				return tooManyRequests(c, "global_rate_limit_exceeded", result)
			}

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, code string, result *ratelimit.Result) error {
	return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
		"error": code,
		"details": map[string]interface{}{
			"limit":               result.Limit,
			"current_count":       result.CurrentCount,
			"retry_after_seconds": result.RetryAfterSeconds,
		},
	})
}
