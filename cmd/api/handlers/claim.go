package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/leaguehq/frontoffice/cmd/api/service"
	"github.com/leaguehq/frontoffice/common/repository"
)

// ClaimHandler handles claim submission, cancellation and listing
type ClaimHandler struct {
	claims *service.ClaimService
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(claims *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

// Submit records a new pending claim
// POST /api/v1/claims
func (h *ClaimHandler) Submit(c echo.Context) error {
	var req service.SubmitClaimRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}

	bid, err := h.claims.Submit(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidClaim) {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, errorBody("failed to submit claim"))
	}

	return c.JSON(http.StatusCreated, bid)
}

// Cancel withdraws a pending claim
// DELETE /api/v1/claims/:id
func (h *ClaimHandler) Cancel(c echo.Context) error {
	bidID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid bid id"))
	}

	if err := h.claims.Cancel(c.Request().Context(), bidID); err != nil {
		if errors.Is(err, repository.ErrBidUnavailable) {
			return c.JSON(http.StatusConflict, errorBody("bid already processed or cancelled"))
		}
		return c.JSON(http.StatusInternalServerError, errorBody("failed to cancel claim"))
	}

	return c.NoContent(http.StatusNoContent)
}

// Get retrieves one claim
// GET /api/v1/claims/:id
func (h *ClaimHandler) Get(c echo.Context) error {
	bidID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid bid id"))
	}

	bid, err := h.claims.Get(c.Request().Context(), bidID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, errorBody("claim not found"))
		}
		return c.JSON(http.StatusInternalServerError, errorBody("failed to load claim"))
	}

	return c.JSON(http.StatusOK, bid)
}

// List retrieves a team's claims, newest first
// GET /api/v1/claims?league_id=1&team_id=10&limit=50
func (h *ClaimHandler) List(c echo.Context) error {
	leagueID, err := strconv.ParseInt(c.QueryParam("league_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("league_id is required"))
	}
	teamID, err := strconv.ParseInt(c.QueryParam("team_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("team_id is required"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	bids, err := h.claims.List(c.Request().Context(), leagueID, teamID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("failed to list claims"))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"claims": bids,
		"count":  len(bids),
	})
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
