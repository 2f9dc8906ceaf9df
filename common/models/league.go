package models

import "time"

// League holds the configuration the resolution engine reads.
// Maps to: leagues table
type League struct {
	LeagueID    int64  `db:"league_id" json:"league_id"`
	Name        string `db:"name" json:"name"`
	SalaryCap   int64  `db:"salary_cap" json:"salary_cap"`
	RosterLimit int    `db:"roster_limit" json:"roster_limit"`

	// Identifier of the current waiver/claim period, e.g. "2026-W35".
	// Award transactions are uniquely keyed by (league, player, period).
	CurrentPeriod string `db:"current_period" json:"current_period"`

	// Optional CEL expression gating claim eligibility, e.g.
	// "bid.amount >= 1 && bid.claim_type == 'waiver'". Empty means no rule.
	ClaimRule *string `db:"claim_rule" json:"claim_rule,omitempty"`

	// Starting-lineup configuration consumed by the auction optimizer.
	LineupSlots []LineupSlot `db:"lineup_slots" json:"lineup_slots"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LineupSlot describes one positional constraint of the starting lineup.
// Min == Max for fixed slots; flex slots list several eligible positions
// and may span a range (e.g. between 1 and 2 flex players).
type LineupSlot struct {
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
	Min       int      `json:"min"`
	Max       int      `json:"max"`
}

// Team represents a franchise in a league.
// Maps to: teams table
type Team struct {
	TeamID    int64     `db:"team_id" json:"team_id"`
	LeagueID  int64     `db:"league_id" json:"league_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Player represents an NFL player known to the platform.
// Maps to: players table
type Player struct {
	PlayerID        string  `db:"player_id" json:"player_id"`
	Name            string  `db:"name" json:"name"`
	Position        string  `db:"position" json:"position"`
	NFLTeam         *string `db:"nfl_team" json:"nfl_team,omitempty"`
	ProjectedPoints float64 `db:"projected_points" json:"projected_points"`
}
