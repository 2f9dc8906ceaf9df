package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionKind classifies ledger entries
type TransactionKind string

const (
	TxAward      TransactionKind = "award"
	TxRelease    TransactionKind = "release"
	TxManualAdd  TransactionKind = "manual_add"
	TxManualDrop TransactionKind = "manual_drop"
)

// Transaction is one immutable row of the append-only ledger.
// Award rows carry the settled price and a merge-patch delta of the
// claimant's roster before and after settlement.
// Maps to: transactions table
type Transaction struct {
	TransactionID uuid.UUID       `db:"transaction_id" json:"transaction_id"`
	LeagueID      int64           `db:"league_id" json:"league_id"`
	TeamID        int64           `db:"team_id" json:"team_id"`
	PlayerID      string          `db:"player_id" json:"player_id"`
	Kind          TransactionKind `db:"kind" json:"kind"`
	Period        string          `db:"period" json:"period"`
	Amount        int64           `db:"amount" json:"amount"`
	BidID         *uuid.UUID      `db:"bid_id" json:"bid_id,omitempty"`
	RosterDelta   json.RawMessage `db:"roster_delta" json:"roster_delta,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Notification is the payload handed to the external dispatcher
// (push/voice/text). Only the shape is defined here, not delivery.
type Notification struct {
	TeamID  int64  `json:"team_id"`
	Message string `json:"message"`
}

// BatchRunStatus is the lifecycle state of one resolver invocation
type BatchRunStatus string

const (
	BatchRunning   BatchRunStatus = "RUNNING"
	BatchCompleted BatchRunStatus = "COMPLETED"
	BatchFailed    BatchRunStatus = "FAILED"
)

// BatchRun records one resolver invocation for auditing and re-run safety.
// Maps to: batch_runs table
type BatchRun struct {
	BatchID    uuid.UUID      `db:"batch_id" json:"batch_id"`
	LeagueID   int64          `db:"league_id" json:"league_id"`
	ClaimType  ClaimType      `db:"claim_type" json:"claim_type"`
	DryRun     bool           `db:"dry_run" json:"dry_run"`
	Status     BatchRunStatus `db:"status" json:"status"`
	Committed  int            `db:"committed" json:"committed"`
	Rejected   int            `db:"rejected" json:"rejected"`
	Deferred   int            `db:"deferred" json:"deferred"`
	StartedAt  time.Time      `db:"started_at" json:"started_at"`
	FinishedAt *time.Time     `db:"finished_at" json:"finished_at,omitempty"`
	Error      *string        `db:"error" json:"error,omitempty"`
}

// WaiverPriority is a team's place in the waiver order; lower is better.
// Rotated only when the team wins a claim.
// Maps to: waiver_priorities table
type WaiverPriority struct {
	LeagueID int64 `db:"league_id" json:"league_id"`
	TeamID   int64 `db:"team_id" json:"team_id"`
	Priority int   `db:"priority" json:"priority"`
}
