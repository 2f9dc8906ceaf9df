package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/leaguehq/frontoffice/common/logger"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/leaguehq/frontoffice/common/repository"
	"github.com/leaguehq/frontoffice/common/resolve"
)

// Settlement rejection reasons persisted on the bid and surfaced to owners.
const (
	ReasonPlayerUnavailable = "player no longer available"
	ReasonInsufficientCap   = "insufficient cap space"
	ReasonRosterFull        = "roster is full"
	ReasonLostToHigherBid   = "lost to higher bid"
)

// SettleOutcome is the result of settling one winning bid.
type SettleOutcome int

const (
	// SettleCommitted means the award transaction landed.
	SettleCommitted SettleOutcome = iota
	// SettleRejected means validation failed and the bid was finalized as
	// rejected; the player stays unawarded this pass.
	SettleRejected
	// SettleSkipped means the bid was cancelled or already processed.
	SettleSkipped
)

// Settler validates and commits winning bids one at a time. Selection state
// is treated as provisional: every check runs again here against a fresh
// roster read, inside the window just before the commit transaction.
type Settler struct {
	bids      BidStore
	rosters   RosterStore
	committer AwardCommitter
	notifier  Notifier
	log       *logger.Logger
}

// SettlerOpts carries the dependencies of a Settler
type SettlerOpts struct {
	Bids      BidStore
	Rosters   RosterStore
	Committer AwardCommitter
	Notifier  Notifier
	Logger    *logger.Logger
}

// NewSettler creates a new settler
func NewSettler(opts SettlerOpts) *Settler {
	return &Settler{
		bids:      opts.Bids,
		rosters:   opts.Rosters,
		committer: opts.Committer,
		notifier:  opts.Notifier,
		log:       opts.Logger,
	}
}

// Settle re-validates the winning bid and, if it still holds up, commits the
// award atomically. A validation failure finalizes the bid as rejected and
// returns SettleRejected; only infrastructure errors propagate, so one bad
// bid never aborts the rest of the batch.
func (s *Settler) Settle(ctx context.Context, league *models.League, winner resolve.EffectiveBid) (SettleOutcome, error) {
	bid := winner.Bid
	log := s.log.WithLeagueID(bid.LeagueID).WithBidID(bid.BidID.String())

	// Cancellation wins any race with resolution as long as the commit
	// transaction has not started.
	cancelled, err := s.bids.IsCancelled(ctx, bid.BidID)
	if err != nil {
		return SettleSkipped, fmt.Errorf("failed to re-check cancellation: %w", err)
	}
	if cancelled {
		log.Info("winning bid cancelled before settlement, skipping")
		return SettleSkipped, nil
	}

	snapshot, err := s.rosters.Snapshot(ctx, bid.LeagueID, bid.ClaimantTeamID)
	if err != nil {
		return SettleSkipped, fmt.Errorf("failed to read roster: %w", err)
	}

	if reason := s.validate(ctx, league, bid, snapshot); reason != "" {
		return s.reject(ctx, bid, reason)
	}

	delta, err := rosterDelta(snapshot, bid, bid.BidAmount)
	if err != nil {
		return SettleSkipped, fmt.Errorf("failed to compute roster delta: %w", err)
	}

	award := &repository.Award{
		Bid:    bid,
		Price:  bid.BidAmount,
		Period: league.CurrentPeriod,

		RosterDelta:  delta,
		RotateWaiver: bid.ClaimType == models.ClaimWaiver,
	}

	if err := s.committer.CommitAward(ctx, award); err != nil {
		// A concurrent run beat us to the award, or the owner cancelled
		// inside the validation window. Either way the bid is rejected
		// and the batch moves on.
		if errors.Is(err, repository.ErrAlreadyAwarded) {
			return s.reject(ctx, bid, ReasonPlayerUnavailable)
		}
		if errors.Is(err, repository.ErrBidUnavailable) {
			log.Info("bid withdrawn during settlement, skipping")
			return SettleSkipped, nil
		}
		return SettleSkipped, fmt.Errorf("failed to commit award: %w", err)
	}

	log.Info("award committed",
		"player_id", bid.SubjectPlayerID,
		"team_id", bid.ClaimantTeamID,
		"price", bid.BidAmount)

	s.notify(ctx, models.Notification{
		TeamID: bid.ClaimantTeamID,
		Message: fmt.Sprintf("Your claim for player %s was awarded at $%d",
			bid.SubjectPlayerID, bid.BidAmount),
	})

	return SettleCommitted, nil
}

// validate returns the rejection reason, or "" when the bid can settle.
// Checks run in taxonomy order so replays produce the same reason.
func (s *Settler) validate(ctx context.Context, league *models.League, bid *models.Bid, snapshot *models.RosterSnapshot) string {
	var releasedSalary int64
	for _, playerID := range bid.ReleasePlayerIDs {
		if !snapshot.Has(playerID) {
			return resolve.ReasonReleaseUnavailable
		}
		for _, slot := range snapshot.Slots {
			if slot.PlayerID == playerID {
				releasedSalary += slot.Salary
			}
		}
	}

	// An incumbent re-signing its own tagged player already carries the slot
	// and the salary; the award replaces both rather than adding to them.
	var retainedSalary int64
	retained := false
	for _, slot := range snapshot.Slots {
		if slot.PlayerID == bid.SubjectPlayerID {
			retained = true
			retainedSalary = slot.Salary
		}
	}

	if league.RosterLimit > 0 {
		projected := snapshot.Size() - len(bid.ReleasePlayerIDs) + 1
		if retained {
			projected--
		}
		if projected > league.RosterLimit {
			return ReasonRosterFull
		}
	}

	if reason := s.checkAvailable(ctx, bid); reason != "" {
		return reason
	}

	if league.SalaryCap > 0 {
		projected := snapshot.SalaryCommitted() - releasedSalary - retainedSalary + bid.BidAmount
		if projected > league.SalaryCap {
			return ReasonInsufficientCap
		}
	}

	return ""
}

// checkAvailable verifies the subject player can still change hands. Waiver
// claims require a free agent. A tagged RFA or transition player sits on the
// incumbent's roster until the tag resolves, so those claims accept either a
// free agent or a player held exactly by the bid's incumbent.
func (s *Settler) checkAvailable(ctx context.Context, bid *models.Bid) string {
	if bid.ClaimType == models.ClaimWaiver {
		free, err := s.rosters.IsFreeAgent(ctx, bid.LeagueID, bid.SubjectPlayerID)
		if err != nil || !free {
			// A read error is treated as unavailable; the bid fails safe
			// and the owner can resubmit.
			return ReasonPlayerUnavailable
		}
		return ""
	}

	holder, err := s.rosters.HoldingTeam(ctx, bid.LeagueID, bid.SubjectPlayerID)
	if err != nil {
		return ReasonPlayerUnavailable
	}
	if holder != nil && (bid.IncumbentTeamID == nil || *holder != *bid.IncumbentTeamID) {
		return ReasonPlayerUnavailable
	}
	return ""
}

func (s *Settler) reject(ctx context.Context, bid *models.Bid, reason string) (SettleOutcome, error) {
	if err := s.bids.MarkProcessed(ctx, bid.BidID, models.OutcomeRejected, reason); err != nil {
		return SettleRejected, fmt.Errorf("failed to mark bid rejected: %w", err)
	}

	s.log.WithLeagueID(bid.LeagueID).WithBidID(bid.BidID.String()).
		Info("bid rejected at settlement", "reason", reason)

	s.notify(ctx, models.Notification{
		TeamID: bid.ClaimantTeamID,
		Message: fmt.Sprintf("Your claim for player %s was rejected: %s",
			bid.SubjectPlayerID, reason),
	})

	return SettleRejected, nil
}

// notify is best-effort; a dispatcher outage never blocks settlement
func (s *Settler) notify(ctx context.Context, note models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.log.Warn("failed to deliver notification", "team_id", note.TeamID, "error", err)
	}
}

// rosterDelta builds the merge patch recorded on the award ledger row: the
// claimant's roster before settlement patched into the roster after the
// declared releases and the awarded player are applied.
func rosterDelta(snapshot *models.RosterSnapshot, bid *models.Bid, price int64) (json.RawMessage, error) {
	released := make(map[string]bool, len(bid.ReleasePlayerIDs))
	for _, playerID := range bid.ReleasePlayerIDs {
		released[playerID] = true
	}

	after := models.RosterSnapshot{
		TeamID:   snapshot.TeamID,
		LeagueID: snapshot.LeagueID,
	}
	for _, slot := range snapshot.Slots {
		// An incumbent retaining its tagged player replaces the slot at the
		// settled price rather than gaining a duplicate.
		if !released[slot.PlayerID] && slot.PlayerID != bid.SubjectPlayerID {
			after.Slots = append(after.Slots, slot)
		}
	}
	after.Slots = append(after.Slots, models.RosterSlot{
		LeagueID: bid.LeagueID,
		TeamID:   bid.ClaimantTeamID,
		PlayerID: bid.SubjectPlayerID,
		Slot:     models.SlotActive,
		Salary:   price,
	})

	before, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	target, err := json.Marshal(&after)
	if err != nil {
		return nil, err
	}

	return jsonpatch.CreateMergePatch(before, target)
}
