package models

import "time"

// RosterSlotKind is the slot a rostered player occupies
type RosterSlotKind string

const (
	SlotActive   RosterSlotKind = "active"
	SlotPractice RosterSlotKind = "practice"
	SlotReserve  RosterSlotKind = "reserve"
)

// RosterSlot is one rostered player on one team.
// Maps to: roster_slots table
type RosterSlot struct {
	LeagueID   int64          `db:"league_id" json:"league_id"`
	TeamID     int64          `db:"team_id" json:"team_id"`
	PlayerID   string         `db:"player_id" json:"player_id"`
	Slot       RosterSlotKind `db:"slot" json:"slot"`
	Salary     int64          `db:"salary" json:"salary"`
	AcquiredAt time.Time      `db:"acquired_at" json:"acquired_at"`
}

// RosterSnapshot is the state of a team's roster at a point in time.
// Read before ranking and re-read fresh at settlement; never cached between
// the two, so settlement decisions see concurrent adds and drops.
type RosterSnapshot struct {
	TeamID   int64        `json:"team_id"`
	LeagueID int64        `json:"league_id"`
	Slots    []RosterSlot `json:"slots"`
}

// Has reports whether the player is on the roster, in any slot
func (s *RosterSnapshot) Has(playerID string) bool {
	for _, slot := range s.Slots {
		if slot.PlayerID == playerID {
			return true
		}
	}
	return false
}

// HasActive reports whether the player occupies an active slot
func (s *RosterSnapshot) HasActive(playerID string) bool {
	for _, slot := range s.Slots {
		if slot.PlayerID == playerID && slot.Slot == SlotActive {
			return true
		}
	}
	return false
}

// Size returns the number of rostered players across all slots
func (s *RosterSnapshot) Size() int {
	return len(s.Slots)
}

// SalaryCommitted sums the salaries of all rostered players
func (s *RosterSnapshot) SalaryCommitted() int64 {
	var total int64
	for _, slot := range s.Slots {
		total += slot.Salary
	}
	return total
}
