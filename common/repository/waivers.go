package repository

import (
	"context"
	"fmt"

	"github.com/leaguehq/frontoffice/common/db"
)

// WaiverRepository handles waiver priority state
type WaiverRepository struct {
	db *db.DB
}

// NewWaiverRepository creates a new waiver repository
func NewWaiverRepository(database *db.DB) *WaiverRepository {
	return &WaiverRepository{db: database}
}

// Priorities returns the league's waiver order keyed by team id; lower is
// better
func (r *WaiverRepository) Priorities(ctx context.Context, leagueID int64) (map[int64]int, error) {
	query := `
		SELECT team_id, priority
		FROM waiver_priorities
		WHERE league_id = $1
	`

	rows, err := r.db.Query(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to read waiver priorities: %w", err)
	}
	defer rows.Close()

	priorities := make(map[int64]int)
	for rows.Next() {
		var teamID int64
		var priority int
		if err := rows.Scan(&teamID, &priority); err != nil {
			return nil, fmt.Errorf("failed to scan waiver priority: %w", err)
		}
		priorities[teamID] = priority
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating waiver priorities: %w", err)
	}

	return priorities, nil
}
