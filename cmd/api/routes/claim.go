package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/leaguehq/frontoffice/cmd/api/container"
	"github.com/leaguehq/frontoffice/cmd/api/handlers"
	"github.com/leaguehq/frontoffice/common/middleware"
	"github.com/leaguehq/frontoffice/common/ratelimit"
)

// RegisterClaimRoutes registers all claim-related routes
func RegisterClaimRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewClaimHandler(c.ClaimService)

	var submitMiddleware []echo.MiddlewareFunc
	if c.RateLimiter != nil {
		submitMiddleware = append(submitMiddleware,
			middleware.SubmissionRateLimit(c.RateLimiter, ratelimit.DefaultSubmissionLimits()))
	}

	claims := e.Group("/api/v1/claims")
	{
		claims.POST("", h.Submit, submitMiddleware...) // POST /api/v1/claims
		claims.GET("", h.List)                         // GET /api/v1/claims?league_id=1&team_id=10
		claims.GET("/:id", h.Get)                      // GET /api/v1/claims/:id
		claims.DELETE("/:id", h.Cancel)                // DELETE /api/v1/claims/:id
	}
}
