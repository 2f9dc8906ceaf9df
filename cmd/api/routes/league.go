package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/leaguehq/frontoffice/cmd/api/container"
	"github.com/leaguehq/frontoffice/cmd/api/handlers"
)

// RegisterLeagueRoutes registers league-scoped routes
func RegisterLeagueRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewLeagueHandler(c.ResolveService, c.OptimizerService, c.ClaimService)

	leagues := e.Group("/api/v1/leagues")
	{
		leagues.POST("/:id/resolve", h.Resolve)          // POST /api/v1/leagues/1/resolve
		leagues.POST("/:id/optimize", h.Optimize)        // POST /api/v1/leagues/1/optimize
		leagues.GET("/:id/transactions", h.Transactions) // GET  /api/v1/leagues/1/transactions
	}
}
