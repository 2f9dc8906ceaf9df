package repository

import (
	"context"
	"fmt"

	"github.com/leaguehq/frontoffice/common/db"
	"github.com/leaguehq/frontoffice/common/models"
)

// BatchRunRepository records resolver invocations
type BatchRunRepository struct {
	db *db.DB
}

// NewBatchRunRepository creates a new batch run repository
func NewBatchRunRepository(database *db.DB) *BatchRunRepository {
	return &BatchRunRepository{db: database}
}

// Create inserts a RUNNING batch run row
func (r *BatchRunRepository) Create(ctx context.Context, run *models.BatchRun) error {
	query := `
		INSERT INTO batch_runs (batch_id, league_id, claim_type, dry_run, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		run.BatchID,
		run.LeagueID,
		run.ClaimType,
		run.DryRun,
		run.Status,
		run.StartedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create batch run: %w", err)
	}

	return nil
}

// Finish records the terminal state and counters of a batch run
func (r *BatchRunRepository) Finish(ctx context.Context, run *models.BatchRun) error {
	query := `
		UPDATE batch_runs
		SET status = $2, committed = $3, rejected = $4, deferred = $5,
		    finished_at = now(), error = $6
		WHERE batch_id = $1
	`

	_, err := r.db.Exec(
		ctx,
		query,
		run.BatchID,
		run.Status,
		run.Committed,
		run.Rejected,
		run.Deferred,
		run.Error,
	)

	if err != nil {
		return fmt.Errorf("failed to finish batch run: %w", err)
	}

	return nil
}
