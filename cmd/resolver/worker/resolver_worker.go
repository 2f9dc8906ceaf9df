package worker

import (
	"context"
	"time"

	"github.com/leaguehq/frontoffice/common/engine"
	"github.com/leaguehq/frontoffice/common/logger"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/leaguehq/frontoffice/common/repository"
)

// claimTypes is the processing order of one resolver tick. Waivers clear
// first so the nightly waiver cycle never waits behind the slower RFA
// protocol.
var claimTypes = []models.ClaimType{
	models.ClaimWaiver,
	models.ClaimRFA,
	models.ClaimTransition,
}

// ResolverWorker runs claim batches on a fixed interval. One instance per
// deployment is expected; overlapping instances are tolerated because the
// engine is idempotent, they just do redundant work.
type ResolverWorker struct {
	engine   *engine.Engine
	leagues  *repository.LeagueRepository
	interval time.Duration
	dryRun   bool
	log      *logger.Logger
}

// Opts carries the dependencies of a ResolverWorker
type Opts struct {
	Engine   *engine.Engine
	Leagues  *repository.LeagueRepository
	Interval time.Duration
	DryRun   bool
	Logger   *logger.Logger
}

// NewResolverWorker creates a new resolver worker
func NewResolverWorker(opts Opts) *ResolverWorker {
	return &ResolverWorker{
		engine:   opts.Engine,
		leagues:  opts.Leagues,
		interval: opts.Interval,
		dryRun:   opts.DryRun,
		log:      opts.Logger,
	}
}

// Start runs the resolution loop until the context is cancelled. The first
// tick fires immediately so restarts do not delay a due batch.
func (w *ResolverWorker) Start(ctx context.Context) error {
	w.log.Info("starting resolver worker",
		"interval", w.interval,
		"dry_run", w.dryRun)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("resolver worker stopping")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce resolves every league that has pending bids, one claim type at a
// time. A failing league is logged and skipped; the rest of the tick runs.
// All leagues in the tick share one cutoff so a bid submitted mid-tick never
// lands in some leagues' batch and not others'.
func (w *ResolverWorker) runOnce(ctx context.Context) {
	asOf := time.Now().UTC()

	for _, claimType := range claimTypes {
		leagueIDs, err := w.leagues.ListLeagueIDsWithPending(ctx, claimType)
		if err != nil {
			w.log.Error("failed to list leagues with pending bids",
				"claim_type", claimType, "error", err)
			continue
		}

		for _, leagueID := range leagueIDs {
			if ctx.Err() != nil {
				return
			}

			run, err := w.engine.ProcessBatch(ctx, leagueID, claimType, asOf, w.dryRun)
			if err != nil {
				w.log.WithLeagueID(leagueID).Error("batch resolution failed",
					"claim_type", claimType, "error", err)
				continue
			}

			if run.Committed > 0 || run.Rejected > 0 {
				w.log.WithLeagueID(leagueID).Info("batch finished",
					"claim_type", claimType,
					"committed", run.Committed,
					"rejected", run.Rejected,
					"deferred", run.Deferred)
			}
		}
	}
}
