package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/leaguehq/frontoffice/common/repository"
)

// The engine talks to storage through narrow interfaces so the decision
// logic can be exercised against in-memory fakes. The repository package
// provides the pgx-backed implementations.

// BidStore reads and finalizes bids
type BidStore interface {
	ListPending(ctx context.Context, leagueID int64, claimType models.ClaimType) ([]models.Bid, error)
	MarkProcessed(ctx context.Context, bidID uuid.UUID, outcome models.BidOutcome, reason string) error
	IsCancelled(ctx context.Context, bidID uuid.UUID) (bool, error)
}

// RosterStore reads roster state
type RosterStore interface {
	Snapshot(ctx context.Context, leagueID, teamID int64) (*models.RosterSnapshot, error)
	Snapshots(ctx context.Context, leagueID int64, teamIDs []int64) (map[int64]*models.RosterSnapshot, error)
	IsFreeAgent(ctx context.Context, leagueID int64, playerID string) (bool, error)
	HoldingTeam(ctx context.Context, leagueID int64, playerID string) (*int64, error)
}

// LedgerStore reads the transaction ledger
type LedgerStore interface {
	AwardedPlayers(ctx context.Context, leagueID int64, period string) (map[string]bool, error)
}

// WaiverStore reads waiver priorities
type WaiverStore interface {
	Priorities(ctx context.Context, leagueID int64) (map[int64]int, error)
}

// LeagueStore reads league configuration
type LeagueStore interface {
	GetByID(ctx context.Context, leagueID int64) (*models.League, error)
}

// AwardCommitter atomically commits one winning bid
type AwardCommitter interface {
	CommitAward(ctx context.Context, award *repository.Award) error
}

// BatchRunStore records resolver invocations
type BatchRunStore interface {
	Create(ctx context.Context, run *models.BatchRun) error
	Finish(ctx context.Context, run *models.BatchRun) error
}

// Notifier delivers {team_id, message} payloads to the external dispatcher
type Notifier interface {
	Notify(ctx context.Context, note models.Notification) error
}
