package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leaguehq/frontoffice/common/cache"
	"github.com/leaguehq/frontoffice/common/logger"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/leaguehq/frontoffice/common/optimize"
	"github.com/leaguehq/frontoffice/common/repository"
)

// optimizeCacheTTL bounds how long a solved lineup is served from cache.
// Projections refresh on a slower cadence than owners hit the endpoint.
const optimizeCacheTTL = 10 * time.Minute

// OptimizeRequest is the payload for the lineup optimization endpoint.
// CapBudget and PositionConstraints are optional; when omitted the budget
// defaults to the headroom share of the league cap and the constraints come
// from the league's lineup configuration.
type OptimizeRequest struct {
	LeagueID            int64                 `json:"league_id"`
	TeamID              int64                 `json:"team_id"`
	Players             []optimize.Player     `json:"players"`
	CapBudget           int64                 `json:"cap_budget,omitempty"`
	PositionConstraints []optimize.Constraint `json:"position_constraints,omitempty"`
}

// OptimizerService solves acquisition lineups for teams. The solver is exact
// and pure; this layer fills in league defaults and caches solved inputs.
type OptimizerService struct {
	leagues        *repository.LeagueRepository
	rosters        *repository.RosterRepository
	cache          cache.Cache
	budgetHeadroom float64
	log            *logger.Logger
}

// OptimizerServiceOpts carries the dependencies of an OptimizerService
type OptimizerServiceOpts struct {
	Leagues        *repository.LeagueRepository
	Rosters        *repository.RosterRepository
	Cache          cache.Cache
	BudgetHeadroom float64
	Logger         *logger.Logger
}

// NewOptimizerService creates a new optimizer service
func NewOptimizerService(opts OptimizerServiceOpts) *OptimizerService {
	return &OptimizerService{
		leagues:        opts.Leagues,
		rosters:        opts.Rosters,
		cache:          opts.Cache,
		budgetHeadroom: opts.BudgetHeadroom,
		log:            opts.Logger,
	}
}

// Optimize returns the optimal acquisition set for the request. Infeasible
// inputs surface optimize.ErrInfeasible for the handler to map to a 422.
func (s *OptimizerService) Optimize(ctx context.Context, req *OptimizeRequest) (*optimize.Result, error) {
	league, err := s.leagues.GetByID(ctx, req.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("%w: league not found", ErrInvalidClaim)
	}

	var snapshot *models.RosterSnapshot
	if req.TeamID != 0 {
		snapshot, err = s.rosters.Snapshot(ctx, req.LeagueID, req.TeamID)
		if err != nil {
			return nil, fmt.Errorf("failed to read roster: %w", err)
		}
	}

	pool, err := s.fillPool(ctx, req.Players, snapshot)
	if err != nil {
		return nil, err
	}

	input := optimize.Input{
		Pool:        pool,
		Budget:      req.CapBudget,
		Constraints: req.PositionConstraints,
	}

	if input.Budget <= 0 {
		// Leave headroom under the cap so the optimized spend does not
		// consume every remaining dollar of in-season flexibility.
		committed := int64(0)
		if snapshot != nil {
			committed = snapshot.SalaryCommitted()
		}
		input.Budget = int64(float64(league.SalaryCap)*s.budgetHeadroom) - committed
	}

	if len(input.Constraints) == 0 {
		for _, slot := range league.LineupSlots {
			input.Constraints = append(input.Constraints, optimize.Constraint{
				Name:      slot.Name,
				Positions: slot.Positions,
				Min:       slot.Min,
				Max:       slot.Max,
			})
		}
	}

	key, err := cacheKey(input)
	if err == nil && s.cache != nil {
		if data, hit, cerr := s.cache.Get(ctx, key); cerr == nil && hit {
			var cached optimize.Result
			if jerr := json.Unmarshal(data, &cached); jerr == nil {
				return &cached, nil
			}
		}
	}

	started := time.Now()
	result, err := optimize.Lineup(input)
	if err != nil {
		return nil, err
	}

	s.log.WithLeagueID(req.LeagueID).Info("lineup optimized",
		"pool", len(input.Pool),
		"budget", input.Budget,
		"objective", result.ObjectiveValue,
		"elapsed", time.Since(started))

	if s.cache != nil && key != "" {
		if data, jerr := json.Marshal(result); jerr == nil {
			if cerr := s.cache.Set(ctx, key, data, optimizeCacheTTL); cerr != nil {
				s.log.Warn("failed to cache lineup result", "error", cerr)
			}
		}
	}

	return result, nil
}

// fillPool completes pool entries sent as bare ids from the players table
// and flags players already active on the requesting team's roster, who are
// forced into the lineup at no acquisition cost.
func (s *OptimizerService) fillPool(ctx context.Context, pool []optimize.Player, snapshot *models.RosterSnapshot) ([]optimize.Player, error) {
	out := append([]optimize.Player(nil), pool...)

	var missing []string
	for i := range out {
		if out[i].Position == "" {
			missing = append(missing, out[i].ID)
		}
	}
	if len(missing) > 0 {
		players, err := s.leagues.GetPlayers(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load players: %w", err)
		}
		for i := range out {
			if out[i].Position != "" {
				continue
			}
			p, ok := players[out[i].ID]
			if !ok {
				return nil, fmt.Errorf("%w: unknown player %s", ErrInvalidClaim, out[i].ID)
			}
			out[i].Position = p.Position
			out[i].ProjectedPoints = p.ProjectedPoints
		}
	}

	if snapshot != nil {
		for i := range out {
			if snapshot.HasActive(out[i].ID) {
				out[i].Active = true
			}
		}
	}

	return out, nil
}

func cacheKey(input optimize.Input) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("optimize:%x", sha256.Sum256(data)), nil
}
