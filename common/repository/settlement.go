package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leaguehq/frontoffice/common/db"
	"github.com/leaguehq/frontoffice/common/models"
)

// ErrAlreadyAwarded is returned when another run already recorded an award
// for the same (league, player, period). The database uniqueness constraint
// is the backstop against double-award when job runners overlap.
var ErrAlreadyAwarded = errors.New("player already awarded for this period")

// Award is everything needed to commit one winning bid.
type Award struct {
	Bid    *models.Bid
	Price  int64
	Period string

	// RosterDelta is the merge patch of the claimant's roster, computed by
	// the settler and stored on the award ledger row.
	RosterDelta json.RawMessage

	// RotateWaiver moves the winner to the back of the waiver order.
	RotateWaiver bool
}

// SettlementStore commits award outcomes. All writes for one bid share a
// single transaction so a mid-failure leaves no partial roster mutation.
type SettlementStore struct {
	db *db.DB
}

// NewSettlementStore creates a new settlement store
func NewSettlementStore(database *db.DB) *SettlementStore {
	return &SettlementStore{db: database}
}

// CommitAward atomically finalizes a winning bid: drops the declared release
// players, adds the subject player at the settled price, appends the ledger
// rows, rotates waiver priority when applicable, and marks the bid
// processed. Any failure rolls the whole bid back; other bids in the batch
// are unaffected since each has its own transaction.
func (s *SettlementStore) CommitAward(ctx context.Context, award *Award) error {
	bid := award.Bid

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		// The processed_at guard is the authoritative cancellation and
		// replay check; selection was only provisional.
		tag, err := tx.Exec(ctx, `
			UPDATE bids
			SET processed_at = now(), outcome = $2
			WHERE bid_id = $1 AND processed_at IS NULL AND cancelled_at IS NULL
		`, bid.BidID, models.OutcomeCommitted)
		if err != nil {
			return fmt.Errorf("failed to finalize bid: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrBidUnavailable
		}

		for _, playerID := range bid.ReleasePlayerIDs {
			tag, err := tx.Exec(ctx, `
				DELETE FROM roster_slots
				WHERE league_id = $1 AND team_id = $2 AND player_id = $3
			`, bid.LeagueID, bid.ClaimantTeamID, playerID)
			if err != nil {
				return fmt.Errorf("failed to release player %s: %w", playerID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("release player %s not on roster", playerID)
			}

			if err := insertLedgerRow(ctx, tx, &models.Transaction{
				TransactionID: uuid.New(),
				LeagueID:      bid.LeagueID,
				TeamID:        bid.ClaimantTeamID,
				PlayerID:      playerID,
				Kind:          models.TxRelease,
				Period:        award.Period,
				BidID:         &bid.BidID,
			}); err != nil {
				return err
			}
		}

		// A tagged player sits on the incumbent's roster until the claim
		// resolves: the award then moves the existing slot (or re-prices it
		// when the incumbent retains). Free agents get a fresh slot.
		moved := false
		if bid.IncumbentTeamID != nil {
			tag, err := tx.Exec(ctx, `
				UPDATE roster_slots
				SET team_id = $2, slot = $4, salary = $5,
				    acquired_at = CASE WHEN team_id = $2 THEN acquired_at ELSE now() END
				WHERE league_id = $1 AND player_id = $3 AND team_id = $6
			`, bid.LeagueID, bid.ClaimantTeamID, bid.SubjectPlayerID,
				models.SlotActive, award.Price, *bid.IncumbentTeamID)
			if err != nil {
				return fmt.Errorf("failed to move tagged player: %w", err)
			}
			moved = tag.RowsAffected() > 0
		}
		if !moved {
			_, err = tx.Exec(ctx, `
				INSERT INTO roster_slots (league_id, team_id, player_id, slot, salary)
				VALUES ($1, $2, $3, $4, $5)
			`, bid.LeagueID, bid.ClaimantTeamID, bid.SubjectPlayerID, models.SlotActive, award.Price)
			if err != nil {
				return fmt.Errorf("failed to add player to roster: %w", err)
			}
		}

		if err := insertLedgerRow(ctx, tx, &models.Transaction{
			TransactionID: uuid.New(),
			LeagueID:      bid.LeagueID,
			TeamID:        bid.ClaimantTeamID,
			PlayerID:      bid.SubjectPlayerID,
			Kind:          models.TxAward,
			Period:        award.Period,
			Amount:        award.Price,
			BidID:         &bid.BidID,
			RosterDelta:   award.RosterDelta,
		}); err != nil {
			return err
		}

		if award.RotateWaiver {
			if err := rotateWaiverPriority(ctx, tx, bid.LeagueID, bid.ClaimantTeamID); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyAwarded
		}
		return err
	}

	return nil
}

func insertLedgerRow(ctx context.Context, tx pgx.Tx, row *models.Transaction) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (transaction_id, league_id, team_id, player_id,
			kind, period, amount, bid_id, roster_delta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, row.TransactionID, row.LeagueID, row.TeamID, row.PlayerID,
		row.Kind, row.Period, row.Amount, row.BidID, row.RosterDelta)
	if err != nil {
		return fmt.Errorf("failed to append ledger row: %w", err)
	}
	return nil
}

// rotateWaiverPriority sends the winner to the back of the order and closes
// the gap. Teams that failed keep their position.
func rotateWaiverPriority(ctx context.Context, tx pgx.Tx, leagueID, teamID int64) error {
	var current, max int
	err := tx.QueryRow(ctx, `
		SELECT priority, (SELECT MAX(priority) FROM waiver_priorities WHERE league_id = $1)
		FROM waiver_priorities
		WHERE league_id = $1 AND team_id = $2
	`, leagueID, teamID).Scan(&current, &max)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil // league does not track priorities
		}
		return fmt.Errorf("failed to read waiver priority: %w", err)
	}

	if current == max {
		return nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE waiver_priorities
		SET priority = priority - 1
		WHERE league_id = $1 AND priority > $2
	`, leagueID, current)
	if err != nil {
		return fmt.Errorf("failed to shift waiver priorities: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE waiver_priorities
		SET priority = $3
		WHERE league_id = $1 AND team_id = $2
	`, leagueID, teamID, max)
	if err != nil {
		return fmt.Errorf("failed to rotate waiver priority: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
