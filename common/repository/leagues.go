package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leaguehq/frontoffice/common/db"
	"github.com/leaguehq/frontoffice/common/models"
)

// LeagueRepository handles database operations for leagues and teams
type LeagueRepository struct {
	db *db.DB
}

// NewLeagueRepository creates a new league repository
func NewLeagueRepository(database *db.DB) *LeagueRepository {
	return &LeagueRepository{db: database}
}

// GetByID retrieves a league by its ID
func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (*models.League, error) {
	query := `
		SELECT league_id, name, salary_cap, roster_limit, current_period,
		       claim_rule, lineup_slots, created_at
		FROM leagues
		WHERE league_id = $1
	`

	league := &models.League{}
	var slotsJSON []byte

	err := r.db.QueryRow(ctx, query, leagueID).Scan(
		&league.LeagueID,
		&league.Name,
		&league.SalaryCap,
		&league.RosterLimit,
		&league.CurrentPeriod,
		&league.ClaimRule,
		&slotsJSON,
		&league.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}

	if err := json.Unmarshal(slotsJSON, &league.LineupSlots); err != nil {
		return nil, fmt.Errorf("malformed lineup_slots for league %d: %w", leagueID, err)
	}

	return league, nil
}

// ListLeagueIDsWithPending returns leagues holding at least one pending bid
// of the given claim type, so the resolver only visits leagues with work.
func (r *LeagueRepository) ListLeagueIDsWithPending(ctx context.Context, claimType models.ClaimType) ([]int64, error) {
	query := `
		SELECT DISTINCT league_id
		FROM bids
		WHERE claim_type = $1 AND processed_at IS NULL AND cancelled_at IS NULL
		ORDER BY league_id
	`

	rows, err := r.db.Query(ctx, query, claimType)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues with pending bids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan league id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating league ids: %w", err)
	}

	return ids, nil
}

// GetPlayers retrieves players by id, keyed by player id
func (r *LeagueRepository) GetPlayers(ctx context.Context, playerIDs []string) (map[string]models.Player, error) {
	query := `
		SELECT player_id, name, position, nfl_team, projected_points
		FROM players
		WHERE player_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	defer rows.Close()

	players := make(map[string]models.Player, len(playerIDs))
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.Position, &p.NFLTeam, &p.ProjectedPoints); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players[p.PlayerID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}
