package service

import (
	"context"
	"fmt"
	"time"

	"github.com/leaguehq/frontoffice/common/engine"
	"github.com/leaguehq/frontoffice/common/logger"
	"github.com/leaguehq/frontoffice/common/models"
)

// ResolveService triggers claim batch resolution on demand. The scheduled
// resolver runs the same engine; this path exists for commissioners and for
// dry-run previews.
type ResolveService struct {
	engine *engine.Engine
	log    *logger.Logger
}

// ResolveServiceOpts carries the dependencies of a ResolveService
type ResolveServiceOpts struct {
	Engine *engine.Engine
	Logger *logger.Logger
}

// NewResolveService creates a new resolve service
func NewResolveService(opts ResolveServiceOpts) *ResolveService {
	return &ResolveService{
		engine: opts.Engine,
		log:    opts.Logger,
	}
}

// Trigger runs one claim batch for a league. A zero asOf defaults to now,
// so the batch covers everything pending at trigger time.
func (s *ResolveService) Trigger(ctx context.Context, leagueID int64, claimType string, asOf time.Time, dryRun bool) (*models.BatchRun, error) {
	parsed, err := models.ParseClaimType(claimType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	s.log.WithLeagueID(leagueID).Info("manual batch trigger",
		"claim_type", parsed,
		"as_of", asOf,
		"dry_run", dryRun)

	return s.engine.ProcessBatch(ctx, leagueID, parsed, asOf, dryRun)
}
