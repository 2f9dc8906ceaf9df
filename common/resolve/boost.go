package resolve

import (
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/shopspring/decimal"
)

// Rules holds the fixed bid-comparison parameters.
// The boost percentage and floor are league-wide constants, not per-league
// settings; they arrive here from config so tests can vary them.
type Rules struct {
	// BoostPercent is the incumbency boost as a fraction of the bid amount
	BoostPercent float64

	// BoostFloor is the minimum incumbency advantage in dollars, so a low
	// bid still carries a real home-field edge
	BoostFloor int64
}

// DefaultRules returns the production constants: 20% boost, $2 floor
func DefaultRules() Rules {
	return Rules{
		BoostPercent: 0.20,
		BoostFloor:   2,
	}
}

// EffectiveAmount returns the comparison value of a bid.
//
// A restricted-free-agency bid from the team holding the tag is boosted to
// bid_amount + max(round(bid_amount * BoostPercent), BoostFloor). Every other
// bid compares at its face amount. The boost exists only for ranking; the
// settled price is always the original bid_amount.
func (r Rules) EffectiveAmount(bid *models.Bid) int64 {
	if bid.ClaimType != models.ClaimRFA || !bid.IsIncumbent() {
		return bid.BidAmount
	}

	// Decimal arithmetic keeps the rounding exact; Round is half away from
	// zero, matching round() semantics for non-negative amounts.
	boost := decimal.NewFromInt(bid.BidAmount).
		Mul(decimal.NewFromFloat(r.BoostPercent)).
		Round(0).
		IntPart()

	if boost < r.BoostFloor {
		boost = r.BoostFloor
	}

	return bid.BidAmount + boost
}

// EffectiveBid annotates a bid with its boosted comparison value and the
// claimant's waiver priority. Derived at resolution time, never persisted.
type EffectiveBid struct {
	Bid             *models.Bid
	EffectiveAmount int64

	// Claimant's waiver priority; lower wins same-amount ties in waiver
	// batches. Set to noPriority when the claim type carries none.
	WaiverPriority int
}

// noPriority sorts behind every real waiver priority
const noPriority = 1 << 30
