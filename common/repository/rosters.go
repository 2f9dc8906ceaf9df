package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/leaguehq/frontoffice/common/db"
	"github.com/leaguehq/frontoffice/common/models"
)

// RosterRepository handles database operations for roster slots
type RosterRepository struct {
	db *db.DB
}

// NewRosterRepository creates a new roster repository
func NewRosterRepository(database *db.DB) *RosterRepository {
	return &RosterRepository{db: database}
}

// Snapshot reads a team's current roster. Settlement always takes a fresh
// snapshot rather than reusing the one from selection time.
func (r *RosterRepository) Snapshot(ctx context.Context, leagueID, teamID int64) (*models.RosterSnapshot, error) {
	query := `
		SELECT league_id, team_id, player_id, slot, salary, acquired_at
		FROM roster_slots
		WHERE league_id = $1 AND team_id = $2
		ORDER BY player_id
	`

	rows, err := r.db.Query(ctx, query, leagueID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	defer rows.Close()

	snapshot := &models.RosterSnapshot{LeagueID: leagueID, TeamID: teamID}
	for rows.Next() {
		var slot models.RosterSlot
		if err := rows.Scan(&slot.LeagueID, &slot.TeamID, &slot.PlayerID, &slot.Slot, &slot.Salary, &slot.AcquiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan roster slot: %w", err)
		}
		snapshot.Slots = append(snapshot.Slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roster slots: %w", err)
	}

	return snapshot, nil
}

// Snapshots reads the rosters of several teams in one pass
func (r *RosterRepository) Snapshots(ctx context.Context, leagueID int64, teamIDs []int64) (map[int64]*models.RosterSnapshot, error) {
	snapshots := make(map[int64]*models.RosterSnapshot, len(teamIDs))
	for _, teamID := range teamIDs {
		snap, err := r.Snapshot(ctx, leagueID, teamID)
		if err != nil {
			return nil, err
		}
		snapshots[teamID] = snap
	}
	return snapshots, nil
}

// IsFreeAgent reports whether no team in the league rosters the player
func (r *RosterRepository) IsFreeAgent(ctx context.Context, leagueID int64, playerID string) (bool, error) {
	query := `SELECT NOT EXISTS (SELECT 1 FROM roster_slots WHERE league_id = $1 AND player_id = $2)`

	var free bool
	if err := r.db.QueryRow(ctx, query, leagueID, playerID).Scan(&free); err != nil {
		return false, fmt.Errorf("failed to check free agency: %w", err)
	}

	return free, nil
}

// HoldingTeam returns the team currently rostering the player, or nil
func (r *RosterRepository) HoldingTeam(ctx context.Context, leagueID int64, playerID string) (*int64, error) {
	query := `SELECT team_id FROM roster_slots WHERE league_id = $1 AND player_id = $2`

	var teamID int64
	err := r.db.QueryRow(ctx, query, leagueID, playerID).Scan(&teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find holding team: %w", err)
	}

	return &teamID, nil
}
