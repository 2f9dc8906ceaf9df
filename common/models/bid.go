package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClaimType distinguishes the three claim protocols. Code that branches on it
// switches exhaustively; there is no duck-typing on optional fields.
type ClaimType string

const (
	ClaimWaiver     ClaimType = "waiver"
	ClaimRFA        ClaimType = "restricted_free_agency"
	ClaimTransition ClaimType = "transition"
)

// ParseClaimType validates a claim type string from an API request
func ParseClaimType(s string) (ClaimType, error) {
	switch ClaimType(s) {
	case ClaimWaiver, ClaimRFA, ClaimTransition:
		return ClaimType(s), nil
	default:
		return "", fmt.Errorf("unknown claim type: %q", s)
	}
}

// BidOutcome represents the settlement state of a bid.
// Transitions: PENDING -> (CANCELLED | SELECTED) -> (COMMITTED | REJECTED_AT_SETTLEMENT).
// FAILED_SELECTION marks RFA bids excluded before ranking (e.g. release players gone).
type BidOutcome string

const (
	OutcomePending   BidOutcome = "PENDING"
	OutcomeCancelled BidOutcome = "CANCELLED"
	OutcomeSelected  BidOutcome = "SELECTED"
	OutcomeCommitted BidOutcome = "COMMITTED"
	OutcomeRejected  BidOutcome = "REJECTED_AT_SETTLEMENT"
	OutcomeFailedSel BidOutcome = "FAILED_SELECTION"
)

// Bid is a claim submitted by a team on a player.
// Rows are append-only: once processed_at is set the bid is immutable.
type Bid struct {
	BidID           uuid.UUID `db:"bid_id" json:"bid_id"`
	LeagueID        int64     `db:"league_id" json:"league_id"`
	ClaimType       ClaimType `db:"claim_type" json:"claim_type"`
	ClaimantTeamID  int64     `db:"claimant_team_id" json:"claimant_team_id"`
	SubjectPlayerID string    `db:"subject_player_id" json:"subject_player_id"`
	BidAmount       int64     `db:"bid_amount" json:"bid_amount"`

	// Team currently holding the restricted tag on the player, when any.
	IncumbentTeamID *int64 `db:"incumbent_team_id" json:"incumbent_team_id,omitempty"`

	// Players the claimant will drop to make roster room, in declared order.
	ReleasePlayerIDs []string `db:"release_player_ids" json:"release_player_ids"`

	SubmittedAt   time.Time  `db:"submitted_at" json:"submitted_at"`
	CancelledAt   *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	ProcessedAt   *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	Outcome       BidOutcome `db:"outcome" json:"outcome"`
	OutcomeReason *string    `db:"outcome_reason" json:"outcome_reason,omitempty"`
}

// IsCancelled reports whether the owner withdrew the bid
func (b *Bid) IsCancelled() bool {
	return b.CancelledAt != nil
}

// IsProcessed reports whether the bid has a settled outcome
func (b *Bid) IsProcessed() bool {
	return b.ProcessedAt != nil
}

// CanCancel reports whether cancellation is still allowed.
// Cancellation may only occur while processed_at is null.
func (b *Bid) CanCancel() bool {
	return !b.IsProcessed() && !b.IsCancelled()
}

// IsIncumbent reports whether the claimant holds the restricted tag
func (b *Bid) IsIncumbent() bool {
	return b.IncumbentTeamID != nil && *b.IncumbentTeamID == b.ClaimantTeamID
}
