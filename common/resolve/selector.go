package resolve

import (
	"sort"

	"github.com/leaguehq/frontoffice/common/models"
)

// ReasonReleaseUnavailable marks bids whose declared release players left the
// claimant's roster between submission and selection.
const ReasonReleaseUnavailable = "release players unavailable"

// EligibilityFunc gates a bid before ranking. A false result excludes the bid
// with the returned reason; an error aborts selection (malformed league rule).
type EligibilityFunc func(bid *models.Bid) (bool, string, error)

// Input is the snapshot a selection pass works over. Selection is read-only:
// nothing here is mutated, and settlement re-validates everything later.
type Input struct {
	ClaimType models.ClaimType
	Bids      []models.Bid

	// Players already holding a successful award for the current period.
	// Re-runs of a crashed batch rely on this filter for idempotency.
	AwardedPlayers map[string]bool

	// Claimant rosters at selection time, keyed by team id.
	Rosters map[int64]*models.RosterSnapshot

	// Waiver priorities keyed by team id; ignored for RFA and transition.
	Priorities map[int64]int

	// Optional league eligibility rule; nil allows everything.
	Eligible EligibilityFunc
}

// Selection is one player's resolved contest: the winning bid plus the bids
// it beat. Losers are only marked unsuccessful after the winner commits.
type Selection struct {
	PlayerID string
	Winner   EffectiveBid
	Losers   []EffectiveBid
}

// FailedBid is a bid excluded before ranking, with the reason to persist.
type FailedBid struct {
	Bid    *models.Bid
	Reason string
}

// Result partitions the batch. Deferred bids stay pending untouched and are
// reconsidered on the next pass.
type Result struct {
	Selections []Selection
	Deferred   []models.Bid
	Failed     []FailedBid
}

// SelectBatch picks the subset of pending bids to process in this pass.
//
// Waiver batches resolve every eligible player independently. RFA and
// transition batches follow a one-at-a-time claim protocol: only the player
// carrying the overall highest effective bid processes per pass, ties broken
// by ascending player id, never by submission time.
func SelectBatch(in Input, rules Rules) (*Result, error) {
	result := &Result{}

	byPlayer := make(map[string][]EffectiveBid)

	for i := range in.Bids {
		bid := &in.Bids[i]

		// Cancelled and processed bids are terminal; a player already
		// awarded this period must not be awarded twice.
		if bid.IsCancelled() || bid.IsProcessed() {
			continue
		}
		if in.AwardedPlayers[bid.SubjectPlayerID] {
			result.Deferred = append(result.Deferred, *bid)
			continue
		}

		if in.Eligible != nil {
			ok, reason, err := in.Eligible(bid)
			if err != nil {
				return nil, err
			}
			if !ok {
				result.Failed = append(result.Failed, FailedBid{Bid: bid, Reason: reason})
				continue
			}
		}

		// A bid whose declared drops are gone fails alone; the same
		// team's bids on other players are unaffected.
		if !releasesAvailable(bid, in.Rosters[bid.ClaimantTeamID]) {
			result.Failed = append(result.Failed, FailedBid{Bid: bid, Reason: ReasonReleaseUnavailable})
			continue
		}

		eb := EffectiveBid{
			Bid:             bid,
			EffectiveAmount: rules.EffectiveAmount(bid),
			WaiverPriority:  noPriority,
		}
		if in.ClaimType == models.ClaimWaiver {
			if p, ok := in.Priorities[bid.ClaimantTeamID]; ok {
				eb.WaiverPriority = p
			}
		}

		byPlayer[bid.SubjectPlayerID] = append(byPlayer[bid.SubjectPlayerID], eb)
	}

	players := make([]string, 0, len(byPlayer))
	for playerID := range byPlayer {
		players = append(players, playerID)
	}
	sort.Strings(players)

	selections := make([]Selection, 0, len(players))
	for _, playerID := range players {
		ranked := Rank(byPlayer[playerID])
		selections = append(selections, Selection{
			PlayerID: playerID,
			Winner:   ranked[0],
			Losers:   ranked[1:],
		})
	}

	switch in.ClaimType {
	case models.ClaimWaiver:
		result.Selections = selections
	case models.ClaimRFA, models.ClaimTransition:
		picked := pickHighestContest(selections)
		for _, sel := range selections {
			if picked != nil && sel.PlayerID == picked.PlayerID {
				result.Selections = []Selection{sel}
				continue
			}
			result.Deferred = append(result.Deferred, deferredBids(sel)...)
		}
	}

	return result, nil
}

// pickHighestContest returns the selection whose winning bid carries the
// overall maximum effective amount; ties at the league max go to the
// lexically smallest player id, keeping replays reproducible.
func pickHighestContest(selections []Selection) *Selection {
	var best *Selection
	for i := range selections {
		sel := &selections[i]
		if best == nil ||
			sel.Winner.EffectiveAmount > best.Winner.EffectiveAmount ||
			(sel.Winner.EffectiveAmount == best.Winner.EffectiveAmount && sel.PlayerID < best.PlayerID) {
			best = sel
		}
	}
	return best
}

func releasesAvailable(bid *models.Bid, roster *models.RosterSnapshot) bool {
	if len(bid.ReleasePlayerIDs) == 0 {
		return true
	}
	if roster == nil {
		return false
	}
	for _, playerID := range bid.ReleasePlayerIDs {
		if !roster.Has(playerID) {
			return false
		}
	}
	return true
}

func deferredBids(sel Selection) []models.Bid {
	bids := make([]models.Bid, 0, len(sel.Losers)+1)
	bids = append(bids, *sel.Winner.Bid)
	for _, loser := range sel.Losers {
		bids = append(bids, *loser.Bid)
	}
	return bids
}
