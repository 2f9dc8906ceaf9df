package resolve

import (
	"math/rand"
	"testing"

	"github.com/leaguehq/frontoffice/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func effective(team int64, amount int64, priority int) EffectiveBid {
	return EffectiveBid{
		Bid: &models.Bid{
			ClaimantTeamID: team,
			BidAmount:      amount,
		},
		EffectiveAmount: amount,
		WaiverPriority:  priority,
	}
}

func TestRank_DescendingByEffectiveAmount(t *testing.T) {
	ranked := Rank([]EffectiveBid{
		effective(1, 10, noPriority),
		effective(2, 25, noPriority),
		effective(3, 15, noPriority),
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, int64(2), ranked[0].Bid.ClaimantTeamID)
	assert.Equal(t, int64(3), ranked[1].Bid.ClaimantTeamID)
	assert.Equal(t, int64(1), ranked[2].Bid.ClaimantTeamID)
}

func TestRank_TieBrokenByWaiverPriority(t *testing.T) {
	ranked := Rank([]EffectiveBid{
		effective(1, 20, 5),
		effective(2, 20, 2),
		effective(3, 20, 9),
	})

	assert.Equal(t, int64(2), ranked[0].Bid.ClaimantTeamID)
	assert.Equal(t, int64(1), ranked[1].Bid.ClaimantTeamID)
	assert.Equal(t, int64(3), ranked[2].Bid.ClaimantTeamID)
}

func TestRank_TieBrokenByTeamIDWithoutPriorities(t *testing.T) {
	ranked := Rank([]EffectiveBid{
		effective(7, 20, noPriority),
		effective(3, 20, noPriority),
	})

	assert.Equal(t, int64(3), ranked[0].Bid.ClaimantTeamID)
	assert.Equal(t, int64(7), ranked[1].Bid.ClaimantTeamID)
}

func TestRank_EmptyInput(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank([]EffectiveBid{}))
}

// Same inputs in any order always yield the same ordering.
func TestRank_Deterministic(t *testing.T) {
	bids := []EffectiveBid{
		effective(1, 20, 4),
		effective(2, 20, 1),
		effective(3, 30, 7),
		effective(4, 10, 2),
		effective(5, 20, 3),
	}

	baseline := Rank(bids)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]EffectiveBid, len(bids))
		copy(shuffled, bids)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		ranked := Rank(shuffled)
		require.Len(t, ranked, len(baseline))
		for j := range baseline {
			assert.Equal(t, baseline[j].Bid.ClaimantTeamID, ranked[j].Bid.ClaimantTeamID)
		}
	}
}

// Scenario: incumbent bids $10 against a non-incumbent $11. The boost makes
// the incumbent's comparison value $12, so the incumbent wins even though the
// raw bid is lower; the charged price stays $10.
func TestRank_IncumbentBoostDecidesOrdering(t *testing.T) {
	rules := DefaultRules()
	incumbent := int64(1)

	x := rfaBid(1, 10, &incumbent)
	y := rfaBid(2, 11, &incumbent)

	ranked := Rank([]EffectiveBid{
		{Bid: x, EffectiveAmount: rules.EffectiveAmount(x), WaiverPriority: noPriority},
		{Bid: y, EffectiveAmount: rules.EffectiveAmount(y), WaiverPriority: noPriority},
	})

	assert.Equal(t, int64(1), ranked[0].Bid.ClaimantTeamID)
	assert.Equal(t, int64(12), ranked[0].EffectiveAmount)
	assert.Equal(t, int64(10), ranked[0].Bid.BidAmount)
}
