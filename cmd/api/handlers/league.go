package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/leaguehq/frontoffice/cmd/api/service"
	"github.com/leaguehq/frontoffice/common/optimize"
)

// LeagueHandler handles league-scoped operations: batch triggers, lineup
// optimization and the transaction ledger
type LeagueHandler struct {
	resolver  *service.ResolveService
	optimizer *service.OptimizerService
	claims    *service.ClaimService
}

// NewLeagueHandler creates a new league handler
func NewLeagueHandler(resolver *service.ResolveService, optimizer *service.OptimizerService, claims *service.ClaimService) *LeagueHandler {
	return &LeagueHandler{
		resolver:  resolver,
		optimizer: optimizer,
		claims:    claims,
	}
}

type resolveRequest struct {
	ClaimType string `json:"claim_type"`
	AsOf      string `json:"as_of,omitempty"` // RFC 3339; defaults to now
	DryRun    bool   `json:"dry_run"`
}

// Resolve runs one claim batch for the league
// POST /api/v1/leagues/:id/resolve
func (h *LeagueHandler) Resolve(c echo.Context) error {
	leagueID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid league id"))
	}

	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}

	var asOf time.Time
	if req.AsOf != "" {
		asOf, err = time.Parse(time.RFC3339, req.AsOf)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("as_of must be RFC 3339"))
		}
	}

	run, err := h.resolver.Trigger(c.Request().Context(), leagueID, req.ClaimType, asOf, req.DryRun)
	if err != nil {
		if errors.Is(err, service.ErrInvalidClaim) {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		// The run record, when present, carries the failure detail.
		if run != nil {
			return c.JSON(http.StatusUnprocessableEntity, run)
		}
		return c.JSON(http.StatusInternalServerError, errorBody("batch resolution failed"))
	}

	return c.JSON(http.StatusOK, run)
}

// Optimize solves the optimal acquisition lineup for a budget
// POST /api/v1/leagues/:id/optimize
func (h *LeagueHandler) Optimize(c echo.Context) error {
	leagueID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid league id"))
	}

	var req service.OptimizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}
	req.LeagueID = leagueID

	result, err := h.optimizer.Optimize(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidClaim) {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		// No feasible lineup is "no recommendation", not a failure.
		if errors.Is(err, optimize.ErrInfeasible) {
			return c.JSON(http.StatusOK, optimize.Result{Selected: []optimize.Player{}})
		}
		return c.JSON(http.StatusInternalServerError, errorBody("optimization failed"))
	}

	return c.JSON(http.StatusOK, result)
}

// Transactions lists a team's settled ledger entries, newest first
// GET /api/v1/leagues/:id/transactions?team_id=&limit=
func (h *LeagueHandler) Transactions(c echo.Context) error {
	leagueID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid league id"))
	}
	teamID, err := strconv.ParseInt(c.QueryParam("team_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("team_id is required"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	txs, err := h.claims.History(c.Request().Context(), leagueID, teamID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("failed to list transactions"))
	}

	return c.JSON(http.StatusOK, txs)
}
