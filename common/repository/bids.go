package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/leaguehq/frontoffice/common/db"
	"github.com/leaguehq/frontoffice/common/models"
)

// ErrBidUnavailable is returned when a bid cannot transition because it was
// already processed or cancelled by a concurrent action.
var ErrBidUnavailable = errors.New("bid already processed or cancelled")

// BidRepository handles database operations for bids
type BidRepository struct {
	db *db.DB
}

// NewBidRepository creates a new bid repository
func NewBidRepository(database *db.DB) *BidRepository {
	return &BidRepository{db: database}
}

const bidColumns = `bid_id, league_id, claim_type, claimant_team_id, subject_player_id,
	bid_amount, incumbent_team_id, release_player_ids, submitted_at,
	cancelled_at, processed_at, outcome, outcome_reason`

// Create inserts a new bid
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (bid_id, league_id, claim_type, claimant_team_id, subject_player_id,
			bid_amount, incumbent_team_id, release_player_ids, submitted_at, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		bid.BidID,
		bid.LeagueID,
		bid.ClaimType,
		bid.ClaimantTeamID,
		bid.SubjectPlayerID,
		bid.BidAmount,
		bid.IncumbentTeamID,
		bid.ReleasePlayerIDs,
		bid.SubmittedAt,
		bid.Outcome,
	)

	if err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}

	return nil
}

// GetByID retrieves a bid by its ID
func (r *BidRepository) GetByID(ctx context.Context, bidID uuid.UUID) (*models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE bid_id = $1`

	bid, err := scanBid(r.db.QueryRow(ctx, query, bidID))
	if err != nil {
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}

	return bid, nil
}

// ListPending retrieves the unprocessed, uncancelled bids of one league and
// claim type, oldest first
func (r *BidRepository) ListPending(ctx context.Context, leagueID int64, claimType models.ClaimType) ([]models.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE league_id = $1 AND claim_type = $2
		  AND processed_at IS NULL AND cancelled_at IS NULL
		ORDER BY submitted_at ASC
	`

	rows, err := r.db.Query(ctx, query, leagueID, claimType)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bids: %w", err)
	}
	defer rows.Close()

	return collectBids(rows)
}

// ListByTeam retrieves a team's bids, newest first
func (r *BidRepository) ListByTeam(ctx context.Context, leagueID, teamID int64, limit int) ([]models.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE league_id = $1 AND claimant_team_id = $2
		ORDER BY submitted_at DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, leagueID, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list team bids: %w", err)
	}
	defer rows.Close()

	return collectBids(rows)
}

// Cancel sets cancelled_at on a still-pending bid.
// Returns ErrBidUnavailable if the bid was already processed or cancelled.
func (r *BidRepository) Cancel(ctx context.Context, bidID uuid.UUID) error {
	query := `
		UPDATE bids
		SET cancelled_at = now(), outcome = $2
		WHERE bid_id = $1 AND processed_at IS NULL AND cancelled_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, bidID, models.OutcomeCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel bid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBidUnavailable
	}

	return nil
}

// MarkProcessed finalizes a bid's outcome. A bid is never updated twice:
// the processed_at guard makes replayed batches no-ops.
func (r *BidRepository) MarkProcessed(ctx context.Context, bidID uuid.UUID, outcome models.BidOutcome, reason string) error {
	query := `
		UPDATE bids
		SET processed_at = now(), outcome = $2, outcome_reason = NULLIF($3, '')
		WHERE bid_id = $1 AND processed_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, bidID, outcome, reason)
	if err != nil {
		return fmt.Errorf("failed to mark bid processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBidUnavailable
	}

	return nil
}

// IsCancelled re-checks cancellation state immediately before settlement
func (r *BidRepository) IsCancelled(ctx context.Context, bidID uuid.UUID) (bool, error) {
	query := `SELECT cancelled_at IS NOT NULL FROM bids WHERE bid_id = $1`

	var cancelled bool
	if err := r.db.QueryRow(ctx, query, bidID).Scan(&cancelled); err != nil {
		return false, fmt.Errorf("failed to check cancellation: %w", err)
	}

	return cancelled, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBid(row rowScanner) (*models.Bid, error) {
	bid := &models.Bid{}
	var cancelledAt, processedAt *time.Time

	err := row.Scan(
		&bid.BidID,
		&bid.LeagueID,
		&bid.ClaimType,
		&bid.ClaimantTeamID,
		&bid.SubjectPlayerID,
		&bid.BidAmount,
		&bid.IncumbentTeamID,
		&bid.ReleasePlayerIDs,
		&bid.SubmittedAt,
		&cancelledAt,
		&processedAt,
		&bid.Outcome,
		&bid.OutcomeReason,
	)
	if err != nil {
		return nil, err
	}

	bid.CancelledAt = cancelledAt
	bid.ProcessedAt = processedAt
	return bid, nil
}

func collectBids(rows pgx.Rows) ([]models.Bid, error) {
	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, *bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return bids, nil
}
