// Package engine runs claim batches end to end: it snapshots league state,
// selects winners, settles each winning bid in its own transaction, and
// records the run. The pure decision logic lives in the resolve package;
// this package owns sequencing, persistence, and failure isolation.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leaguehq/frontoffice/common/logger"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/leaguehq/frontoffice/common/resolve"
	"github.com/leaguehq/frontoffice/common/rules"
)

// ReasonIneligible marks bids excluded by the league's claim rule.
const ReasonIneligible = "ineligible under league rules"

// Engine resolves claim batches for leagues. One Engine serves every league;
// all per-league state is read fresh inside ProcessBatch.
type Engine struct {
	leagues   LeagueStore
	bids      BidStore
	rosters   RosterStore
	ledger    LedgerStore
	waivers   WaiverStore
	runs      BatchRunStore
	settler   *Settler
	evaluator *rules.Evaluator
	rules     resolve.Rules
	log       *logger.Logger
}

// Opts carries the dependencies of an Engine
type Opts struct {
	Leagues   LeagueStore
	Bids      BidStore
	Rosters   RosterStore
	Ledger    LedgerStore
	Waivers   WaiverStore
	Runs      BatchRunStore
	Committer AwardCommitter
	Notifier  Notifier
	Rules     resolve.Rules
	Logger    *logger.Logger
}

// New creates a new resolution engine
func New(opts Opts) *Engine {
	return &Engine{
		leagues:   opts.Leagues,
		bids:      opts.Bids,
		rosters:   opts.Rosters,
		ledger:    opts.Ledger,
		waivers:   opts.Waivers,
		runs:      opts.Runs,
		evaluator: rules.NewEvaluator(),
		rules:     opts.Rules,
		log:       opts.Logger,
		settler: NewSettler(SettlerOpts{
			Bids:      opts.Bids,
			Rosters:   opts.Rosters,
			Committer: opts.Committer,
			Notifier:  opts.Notifier,
			Logger:    opts.Logger,
		}),
	}
}

// ProcessBatch resolves one claim batch for a league. Bids submitted after
// asOf sit out the pass; a zero asOf means no cutoff. The pass is safe to
// repeat: players already awarded this period are filtered out up front and
// the award uniqueness constraint backstops overlapping runs. With dryRun
// set, decisions are logged and counted but nothing is written.
func (e *Engine) ProcessBatch(ctx context.Context, leagueID int64, claimType models.ClaimType, asOf time.Time, dryRun bool) (*models.BatchRun, error) {
	log := e.log.WithLeagueID(leagueID).WithFields(map[string]any{
		"claim_type": claimType,
		"dry_run":    dryRun,
	})

	league, err := e.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load league: %w", err)
	}

	run := &models.BatchRun{
		BatchID:   uuid.New(),
		LeagueID:  leagueID,
		ClaimType: claimType,
		DryRun:    dryRun,
		Status:    models.BatchRunning,
		StartedAt: time.Now().UTC(),
	}
	if !dryRun {
		if err := e.runs.Create(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record batch run: %w", err)
		}
	}

	input, late, err := e.loadInput(ctx, league, claimType, asOf)
	if err != nil {
		return run, e.fail(ctx, run, err)
	}
	run.Deferred += late

	if len(input.Bids) == 0 {
		run.Status = models.BatchCompleted
		if !dryRun {
			if err := e.runs.Finish(ctx, run); err != nil {
				return run, err
			}
		}
		return run, nil
	}

	result, err := resolve.SelectBatch(*input, e.rules)
	if err != nil {
		// A malformed league rule aborts the whole pass; admitting bids
		// a broken rule meant to exclude is worse than resolving late.
		return run, e.fail(ctx, run, err)
	}

	run.Deferred += len(result.Deferred)

	if err := e.applyFailed(ctx, run, claimType, result.Failed, dryRun, log); err != nil {
		return run, e.fail(ctx, run, err)
	}

	for _, sel := range result.Selections {
		if dryRun {
			log.Info("would settle winning bid",
				"player_id", sel.PlayerID,
				"team_id", sel.Winner.Bid.ClaimantTeamID,
				"effective_amount", sel.Winner.EffectiveAmount,
				"price", sel.Winner.Bid.BidAmount,
				"losers", len(sel.Losers))
			run.Committed++
			continue
		}

		outcome, err := e.settler.Settle(ctx, league, sel.Winner)
		if err != nil {
			return run, e.fail(ctx, run, err)
		}

		switch outcome {
		case SettleCommitted:
			run.Committed++
			if err := e.finalizeLosers(ctx, sel); err != nil {
				return run, e.fail(ctx, run, err)
			}
		case SettleRejected:
			// The player stays unawarded this pass; losing bids stay
			// pending and contest the player again next pass.
			run.Rejected++
			run.Deferred += len(sel.Losers)
		case SettleSkipped:
			run.Deferred += len(sel.Losers)
		}
	}

	run.Status = models.BatchCompleted
	if !dryRun {
		if err := e.runs.Finish(ctx, run); err != nil {
			return run, err
		}
	}

	log.Info("batch resolved",
		"committed", run.Committed,
		"rejected", run.Rejected,
		"deferred", run.Deferred)

	return run, nil
}

// loadInput gathers the read-only snapshot a selection pass works over. The
// second return value counts bids deferred by the asOf cutoff; they stay
// pending untouched.
func (e *Engine) loadInput(ctx context.Context, league *models.League, claimType models.ClaimType, asOf time.Time) (*resolve.Input, int, error) {
	bids, err := e.bids.ListPending(ctx, league.LeagueID, claimType)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending bids: %w", err)
	}

	late := 0
	if !asOf.IsZero() {
		kept := bids[:0]
		for _, bid := range bids {
			if bid.SubmittedAt.After(asOf) {
				late++
				continue
			}
			kept = append(kept, bid)
		}
		bids = kept
	}

	input := &resolve.Input{
		ClaimType: claimType,
		Bids:      bids,
	}
	if len(bids) == 0 {
		return input, late, nil
	}

	input.AwardedPlayers, err = e.ledger.AwardedPlayers(ctx, league.LeagueID, league.CurrentPeriod)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list awarded players: %w", err)
	}

	seen := make(map[int64]bool, len(bids))
	teamIDs := make([]int64, 0, len(bids))
	for i := range bids {
		if teamID := bids[i].ClaimantTeamID; !seen[teamID] {
			seen[teamID] = true
			teamIDs = append(teamIDs, teamID)
		}
	}
	input.Rosters, err = e.rosters.Snapshots(ctx, league.LeagueID, teamIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read claimant rosters: %w", err)
	}

	if claimType == models.ClaimWaiver {
		input.Priorities, err = e.waivers.Priorities(ctx, league.LeagueID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read waiver priorities: %w", err)
		}
	}

	if league.ClaimRule != nil && *league.ClaimRule != "" {
		rule := *league.ClaimRule
		input.Eligible = func(bid *models.Bid) (bool, string, error) {
			ok, err := e.evaluator.Check(rule, bid, league)
			if err != nil {
				return false, "", err
			}
			return ok, ReasonIneligible, nil
		}
	}

	return input, late, nil
}

// applyFailed persists selection-time exclusions. Waiver bids stay pending,
// since the condition (a release player traded away and back, say) can clear
// before the next pass. RFA and transition bids finalize immediately so the
// one-at-a-time protocol is not wedged behind a dead bid.
func (e *Engine) applyFailed(ctx context.Context, run *models.BatchRun, claimType models.ClaimType, failed []resolve.FailedBid, dryRun bool, log *logger.Logger) error {
	for _, f := range failed {
		if claimType == models.ClaimWaiver {
			run.Deferred++
			continue
		}

		if dryRun {
			log.Info("would exclude bid",
				"bid_id", f.Bid.BidID,
				"player_id", f.Bid.SubjectPlayerID,
				"reason", f.Reason)
			run.Rejected++
			continue
		}

		if err := e.bids.MarkProcessed(ctx, f.Bid.BidID, models.OutcomeFailedSel, f.Reason); err != nil {
			return fmt.Errorf("failed to mark excluded bid: %w", err)
		}
		run.Rejected++

		e.settler.notify(ctx, models.Notification{
			TeamID: f.Bid.ClaimantTeamID,
			Message: fmt.Sprintf("Your claim for player %s was not processed: %s",
				f.Bid.SubjectPlayerID, f.Reason),
		})
	}
	return nil
}

// finalizeLosers marks the beaten bids of a committed contest. Losers are
// only touched after the winner's transaction lands, so a rejected winner
// leaves them free to win on a later pass.
func (e *Engine) finalizeLosers(ctx context.Context, sel resolve.Selection) error {
	for _, loser := range sel.Losers {
		if err := e.bids.MarkProcessed(ctx, loser.Bid.BidID, models.OutcomeFailedSel, ReasonLostToHigherBid); err != nil {
			return fmt.Errorf("failed to mark losing bid: %w", err)
		}
		e.settler.notify(ctx, models.Notification{
			TeamID: loser.Bid.ClaimantTeamID,
			Message: fmt.Sprintf("Your claim for player %s lost to a higher bid",
				sel.PlayerID),
		})
	}
	return nil
}

func (e *Engine) fail(ctx context.Context, run *models.BatchRun, cause error) error {
	run.Status = models.BatchFailed
	msg := cause.Error()
	run.Error = &msg

	if !run.DryRun {
		if err := e.runs.Finish(ctx, run); err != nil {
			e.log.Error("failed to record failed batch run", "batch_id", run.BatchID, "error", err)
		}
	}

	return cause
}
