package repository

import (
	"context"
	"fmt"

	"github.com/leaguehq/frontoffice/common/db"
	"github.com/leaguehq/frontoffice/common/models"
)

// TransactionRepository handles the append-only transaction ledger
type TransactionRepository struct {
	db *db.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(database *db.DB) *TransactionRepository {
	return &TransactionRepository{db: database}
}

// AwardedPlayers returns the players already holding an award for the
// period. The selector excludes them, which is what makes replaying a
// crashed batch safe.
func (r *TransactionRepository) AwardedPlayers(ctx context.Context, leagueID int64, period string) (map[string]bool, error) {
	query := `
		SELECT player_id
		FROM transactions
		WHERE league_id = $1 AND period = $2 AND kind = $3
	`

	rows, err := r.db.Query(ctx, query, leagueID, period, models.TxAward)
	if err != nil {
		return nil, fmt.Errorf("failed to list awarded players: %w", err)
	}
	defer rows.Close()

	awarded := make(map[string]bool)
	for rows.Next() {
		var playerID string
		if err := rows.Scan(&playerID); err != nil {
			return nil, fmt.Errorf("failed to scan awarded player: %w", err)
		}
		awarded[playerID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating awarded players: %w", err)
	}

	return awarded, nil
}

// ListByTeam retrieves a team's ledger entries, newest first
func (r *TransactionRepository) ListByTeam(ctx context.Context, leagueID, teamID int64, limit int) ([]models.Transaction, error) {
	query := `
		SELECT transaction_id, league_id, team_id, player_id, kind, period,
		       amount, bid_id, roster_delta, created_at
		FROM transactions
		WHERE league_id = $1 AND team_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, leagueID, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.TransactionID,
			&tx.LeagueID,
			&tx.TeamID,
			&tx.PlayerID,
			&tx.Kind,
			&tx.Period,
			&tx.Amount,
			&tx.BidID,
			&tx.RosterDelta,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}
