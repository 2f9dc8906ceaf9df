package resolve

import "sort"

// Rank orders the competing bids for a single player, winner first.
//
// Ordering is fully deterministic given identical inputs, independent of
// submission order and clock precision:
//
//  1. descending effective amount
//  2. ascending waiver priority (waiver batches; a held priority number is
//     spent only on a successful claim)
//  3. ascending claimant team id
//
// An empty input yields an empty ranking, not an error.
func Rank(bids []EffectiveBid) []EffectiveBid {
	ranked := make([]EffectiveBid, len(bids))
	copy(ranked, bids)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].EffectiveAmount != ranked[j].EffectiveAmount {
			return ranked[i].EffectiveAmount > ranked[j].EffectiveAmount
		}
		if ranked[i].WaiverPriority != ranked[j].WaiverPriority {
			return ranked[i].WaiverPriority < ranked[j].WaiverPriority
		}
		return ranked[i].Bid.ClaimantTeamID < ranked[j].Bid.ClaimantTeamID
	})

	return ranked
}
