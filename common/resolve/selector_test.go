package resolve

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingBid(claimType models.ClaimType, team int64, player string, amount int64) models.Bid {
	return models.Bid{
		BidID:           uuid.New(),
		LeagueID:        1,
		ClaimType:       claimType,
		ClaimantTeamID:  team,
		SubjectPlayerID: player,
		BidAmount:       amount,
		SubmittedAt:     time.Now(),
		Outcome:         models.OutcomePending,
	}
}

func rosterWith(team int64, players ...string) *models.RosterSnapshot {
	snap := &models.RosterSnapshot{TeamID: team, LeagueID: 1}
	for _, p := range players {
		snap.Slots = append(snap.Slots, models.RosterSlot{
			LeagueID: 1, TeamID: team, PlayerID: p, Slot: models.SlotActive,
		})
	}
	return snap
}

func TestSelectBatch_WaiverResolvesAllPlayers(t *testing.T) {
	in := Input{
		ClaimType: models.ClaimWaiver,
		Bids: []models.Bid{
			pendingBid(models.ClaimWaiver, 1, "p100", 10),
			pendingBid(models.ClaimWaiver, 2, "p100", 15),
			pendingBid(models.ClaimWaiver, 3, "p200", 5),
		},
		Priorities: map[int64]int{1: 1, 2: 2, 3: 3},
	}

	result, err := SelectBatch(in, DefaultRules())
	require.NoError(t, err)
	require.Len(t, result.Selections, 2)

	// Deterministic order by player id
	assert.Equal(t, "p100", result.Selections[0].PlayerID)
	assert.Equal(t, int64(2), result.Selections[0].Winner.Bid.ClaimantTeamID)
	assert.Len(t, result.Selections[0].Losers, 1)

	assert.Equal(t, "p200", result.Selections[1].PlayerID)
	assert.Equal(t, int64(3), result.Selections[1].Winner.Bid.ClaimantTeamID)
}

func TestSelectBatch_WaiverTieGoesToPriority(t *testing.T) {
	in := Input{
		ClaimType: models.ClaimWaiver,
		Bids: []models.Bid{
			pendingBid(models.ClaimWaiver, 1, "p100", 10),
			pendingBid(models.ClaimWaiver, 2, "p100", 10),
		},
		Priorities: map[int64]int{1: 4, 2: 2},
	}

	result, err := SelectBatch(in, DefaultRules())
	require.NoError(t, err)
	require.Len(t, result.Selections, 1)
	assert.Equal(t, int64(2), result.Selections[0].Winner.Bid.ClaimantTeamID)
}

// Scenario: RFA claims pending on two players with equal max effective bids.
// Only the lexically smaller player id processes this pass; the other
// player's bids stay pending for the next pass.
func TestSelectBatch_RFAOnePlayerPerPass(t *testing.T) {
	in := Input{
		ClaimType: models.ClaimRFA,
		Bids: []models.Bid{
			pendingBid(models.ClaimRFA, 1, "p200", 20),
			pendingBid(models.ClaimRFA, 2, "p100", 20),
			pendingBid(models.ClaimRFA, 3, "p100", 12),
		},
	}

	result, err := SelectBatch(in, DefaultRules())
	require.NoError(t, err)
	require.Len(t, result.Selections, 1)

	assert.Equal(t, "p100", result.Selections[0].PlayerID)
	assert.Equal(t, int64(2), result.Selections[0].Winner.Bid.ClaimantTeamID)
	assert.Len(t, result.Selections[0].Losers, 1)

	// p200's bid is deferred untouched
	require.Len(t, result.Deferred, 1)
	assert.Equal(t, "p200", result.Deferred[0].SubjectPlayerID)
}

func TestSelectBatch_RFAHighestEffectiveBidPicksPlayer(t *testing.T) {
	incumbent := int64(1)
	boosted := pendingBid(models.ClaimRFA, 1, "p900", 18) // effective 22 with boost
	boosted.IncumbentTeamID = &incumbent

	in := Input{
		ClaimType: models.ClaimRFA,
		Bids: []models.Bid{
			pendingBid(models.ClaimRFA, 2, "p100", 20),
			boosted,
		},
	}

	result, err := SelectBatch(in, DefaultRules())
	require.NoError(t, err)
	require.Len(t, result.Selections, 1)
	assert.Equal(t, "p900", result.Selections[0].PlayerID)
	assert.Equal(t, int64(22), result.Selections[0].Winner.EffectiveAmount)
}

// Scenario: a claim declaring the release of a player already dropped fails
// alone; other teams' claims on the same contested player proceed.
func TestSelectBatch_ReleaseUnavailableIsIsolated(t *testing.T) {
	withRelease := pendingBid(models.ClaimWaiver, 1, "p100", 30)
	withRelease.ReleasePlayerIDs = []string{"gone"}

	in := Input{
		ClaimType: models.ClaimWaiver,
		Bids: []models.Bid{
			withRelease,
			pendingBid(models.ClaimWaiver, 2, "p100", 10),
		},
		Rosters: map[int64]*models.RosterSnapshot{
			1: rosterWith(1, "keeper"), // "gone" already dropped
			2: rosterWith(2, "other"),
		},
		Priorities: map[int64]int{1: 1, 2: 2},
	}

	result, err := SelectBatch(in, DefaultRules())
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, int64(1), result.Failed[0].Bid.ClaimantTeamID)
	assert.Equal(t, ReasonReleaseUnavailable, result.Failed[0].Reason)

	require.Len(t, result.Selections, 1)
	assert.Equal(t, int64(2), result.Selections[0].Winner.Bid.ClaimantTeamID)
}

func TestSelectBatch_SameTeamOtherBidsUnaffectedByFailure(t *testing.T) {
	bad := pendingBid(models.ClaimWaiver, 1, "p100", 30)
	bad.ReleasePlayerIDs = []string{"gone"}
	good := pendingBid(models.ClaimWaiver, 1, "p200", 8)

	in := Input{
		ClaimType: models.ClaimWaiver,
		Bids:      []models.Bid{bad, good},
		Rosters: map[int64]*models.RosterSnapshot{
			1: rosterWith(1, "keeper"),
		},
		Priorities: map[int64]int{1: 1},
	}

	result, err := SelectBatch(in, DefaultRules())
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	require.Len(t, result.Selections, 1)
	assert.Equal(t, "p200", result.Selections[0].PlayerID)
}

func TestSelectBatch_SkipsTerminalAndAwarded(t *testing.T) {
	cancelled := pendingBid(models.ClaimWaiver, 1, "p100", 10)
	now := time.Now()
	cancelled.CancelledAt = &now

	processed := pendingBid(models.ClaimWaiver, 2, "p100", 12)
	processed.ProcessedAt = &now
	processed.Outcome = models.OutcomeCommitted

	onAwarded := pendingBid(models.ClaimWaiver, 3, "p300", 9)

	in := Input{
		ClaimType:      models.ClaimWaiver,
		Bids:           []models.Bid{cancelled, processed, onAwarded},
		AwardedPlayers: map[string]bool{"p300": true},
	}

	result, err := SelectBatch(in, DefaultRules())
	require.NoError(t, err)
	assert.Empty(t, result.Selections)
	require.Len(t, result.Deferred, 1)
	assert.Equal(t, "p300", result.Deferred[0].SubjectPlayerID)
}

func TestSelectBatch_EmptyBatch(t *testing.T) {
	result, err := SelectBatch(Input{ClaimType: models.ClaimWaiver}, DefaultRules())
	require.NoError(t, err)
	assert.Empty(t, result.Selections)
	assert.Empty(t, result.Deferred)
	assert.Empty(t, result.Failed)
}

func TestSelectBatch_EligibilityRuleExcludes(t *testing.T) {
	in := Input{
		ClaimType: models.ClaimWaiver,
		Bids: []models.Bid{
			pendingBid(models.ClaimWaiver, 1, "p100", 0),
			pendingBid(models.ClaimWaiver, 2, "p100", 5),
		},
		Eligible: func(bid *models.Bid) (bool, string, error) {
			if bid.BidAmount < 1 {
				return false, "bid below league minimum", nil
			}
			return true, "", nil
		},
	}

	result, err := SelectBatch(in, DefaultRules())
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "bid below league minimum", result.Failed[0].Reason)
	require.Len(t, result.Selections, 1)
	assert.Equal(t, int64(2), result.Selections[0].Winner.Bid.ClaimantTeamID)
}
