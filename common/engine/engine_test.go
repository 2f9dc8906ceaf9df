package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leaguehq/frontoffice/common/logger"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/leaguehq/frontoffice/common/repository"
	"github.com/leaguehq/frontoffice/common/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore backs every engine interface with in-memory state so batch runs
// can be exercised without a database. CommitAward mutates rosters and the
// award set the same way the real settlement transaction does.
type fakeStore struct {
	league     *models.League
	bids       map[uuid.UUID]*models.Bid
	order      []uuid.UUID
	rosters    map[int64]*models.RosterSnapshot
	awarded    map[string]bool
	priorities map[int64]int
	runs       map[uuid.UUID]*models.BatchRun
	awards     []*repository.Award
	notes      []models.Notification

	// cancelledLate simulates an owner cancelling between selection and
	// settlement; ListPending still returns the bid as pending.
	cancelledLate map[uuid.UUID]bool

	commitErr error
}

func newFakeStore(league *models.League) *fakeStore {
	return &fakeStore{
		league:        league,
		bids:          make(map[uuid.UUID]*models.Bid),
		rosters:       make(map[int64]*models.RosterSnapshot),
		awarded:       make(map[string]bool),
		priorities:    make(map[int64]int),
		runs:          make(map[uuid.UUID]*models.BatchRun),
		cancelledLate: make(map[uuid.UUID]bool),
	}
}

func (s *fakeStore) addBid(bid models.Bid) uuid.UUID {
	if bid.BidID == uuid.Nil {
		bid.BidID = uuid.New()
	}
	bid.LeagueID = s.league.LeagueID
	bid.Outcome = models.OutcomePending
	bid.SubmittedAt = time.Now()
	s.bids[bid.BidID] = &bid
	s.order = append(s.order, bid.BidID)
	return bid.BidID
}

func (s *fakeStore) addRoster(teamID int64, slots ...models.RosterSlot) {
	s.rosters[teamID] = &models.RosterSnapshot{
		TeamID:   teamID,
		LeagueID: s.league.LeagueID,
		Slots:    slots,
	}
}

func (s *fakeStore) GetByID(_ context.Context, leagueID int64) (*models.League, error) {
	if leagueID != s.league.LeagueID {
		return nil, fmt.Errorf("league %d not found", leagueID)
	}
	return s.league, nil
}

func (s *fakeStore) ListPending(_ context.Context, leagueID int64, claimType models.ClaimType) ([]models.Bid, error) {
	var pending []models.Bid
	for _, id := range s.order {
		bid := s.bids[id]
		if bid.LeagueID == leagueID && bid.ClaimType == claimType &&
			!bid.IsProcessed() && !bid.IsCancelled() {
			pending = append(pending, *bid)
		}
	}
	return pending, nil
}

func (s *fakeStore) MarkProcessed(_ context.Context, bidID uuid.UUID, outcome models.BidOutcome, reason string) error {
	bid, ok := s.bids[bidID]
	if !ok {
		return fmt.Errorf("bid %s not found", bidID)
	}
	now := time.Now()
	bid.ProcessedAt = &now
	bid.Outcome = outcome
	if reason != "" {
		bid.OutcomeReason = &reason
	}
	return nil
}

func (s *fakeStore) IsCancelled(_ context.Context, bidID uuid.UUID) (bool, error) {
	if s.cancelledLate[bidID] {
		return true, nil
	}
	return s.bids[bidID].IsCancelled(), nil
}

func (s *fakeStore) Snapshot(_ context.Context, leagueID, teamID int64) (*models.RosterSnapshot, error) {
	roster, ok := s.rosters[teamID]
	if !ok {
		return &models.RosterSnapshot{TeamID: teamID, LeagueID: leagueID}, nil
	}
	copied := *roster
	copied.Slots = append([]models.RosterSlot(nil), roster.Slots...)
	return &copied, nil
}

func (s *fakeStore) Snapshots(ctx context.Context, leagueID int64, teamIDs []int64) (map[int64]*models.RosterSnapshot, error) {
	out := make(map[int64]*models.RosterSnapshot, len(teamIDs))
	for _, teamID := range teamIDs {
		snap, err := s.Snapshot(ctx, leagueID, teamID)
		if err != nil {
			return nil, err
		}
		out[teamID] = snap
	}
	return out, nil
}

func (s *fakeStore) HoldingTeam(_ context.Context, _ int64, playerID string) (*int64, error) {
	for teamID, roster := range s.rosters {
		if roster.Has(playerID) {
			held := teamID
			return &held, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) IsFreeAgent(_ context.Context, _ int64, playerID string) (bool, error) {
	for _, roster := range s.rosters {
		if roster.Has(playerID) {
			return false, nil
		}
	}
	return true, nil
}

func (s *fakeStore) AwardedPlayers(_ context.Context, _ int64, _ string) (map[string]bool, error) {
	out := make(map[string]bool, len(s.awarded))
	for k, v := range s.awarded {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStore) Priorities(_ context.Context, _ int64) (map[int64]int, error) {
	out := make(map[int64]int, len(s.priorities))
	for k, v := range s.priorities {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, run *models.BatchRun) error {
	copied := *run
	s.runs[run.BatchID] = &copied
	return nil
}

func (s *fakeStore) Finish(_ context.Context, run *models.BatchRun) error {
	copied := *run
	s.runs[run.BatchID] = &copied
	return nil
}

func (s *fakeStore) CommitAward(_ context.Context, award *repository.Award) error {
	if s.commitErr != nil {
		return s.commitErr
	}

	bid := s.bids[award.Bid.BidID]
	if s.awarded[bid.SubjectPlayerID] {
		return repository.ErrAlreadyAwarded
	}
	if bid.IsProcessed() || bid.IsCancelled() || s.cancelledLate[bid.BidID] {
		return repository.ErrBidUnavailable
	}

	// A tagged player leaves the incumbent's roster when the claim commits,
	// mirroring the move-or-reprice in the settlement transaction.
	if bid.IncumbentTeamID != nil {
		if inc := s.rosters[*bid.IncumbentTeamID]; inc != nil {
			kept := inc.Slots[:0]
			for _, slot := range inc.Slots {
				if slot.PlayerID != bid.SubjectPlayerID {
					kept = append(kept, slot)
				}
			}
			inc.Slots = kept
		}
	}

	roster := s.rosters[bid.ClaimantTeamID]
	if roster == nil {
		roster = &models.RosterSnapshot{TeamID: bid.ClaimantTeamID, LeagueID: bid.LeagueID}
		s.rosters[bid.ClaimantTeamID] = roster
	}
	for _, playerID := range bid.ReleasePlayerIDs {
		kept := roster.Slots[:0]
		for _, slot := range roster.Slots {
			if slot.PlayerID != playerID {
				kept = append(kept, slot)
			}
		}
		roster.Slots = kept
	}
	roster.Slots = append(roster.Slots, models.RosterSlot{
		LeagueID: bid.LeagueID,
		TeamID:   bid.ClaimantTeamID,
		PlayerID: bid.SubjectPlayerID,
		Slot:     models.SlotActive,
		Salary:   award.Price,
	})

	s.awarded[bid.SubjectPlayerID] = true
	now := time.Now()
	bid.ProcessedAt = &now
	bid.Outcome = models.OutcomeCommitted
	s.awards = append(s.awards, award)

	if award.RotateWaiver {
		if current, ok := s.priorities[bid.ClaimantTeamID]; ok {
			max := 0
			for _, p := range s.priorities {
				if p > max {
					max = p
				}
			}
			for teamID, p := range s.priorities {
				if p > current {
					s.priorities[teamID] = p - 1
				}
			}
			s.priorities[bid.ClaimantTeamID] = max
		}
	}

	return nil
}

func (s *fakeStore) Notify(_ context.Context, note models.Notification) error {
	s.notes = append(s.notes, note)
	return nil
}

func newTestEngine(store *fakeStore) *Engine {
	return New(Opts{
		Leagues:   store,
		Bids:      store,
		Rosters:   store,
		Ledger:    store,
		Waivers:   store,
		Runs:      store,
		Committer: store,
		Notifier:  store,
		Rules:     resolve.DefaultRules(),
		Logger:    logger.New("error", "json"),
	})
}

func testLeague() *models.League {
	return &models.League{
		LeagueID:      1,
		Name:          "Test League",
		SalaryCap:     200,
		RosterLimit:   5,
		CurrentPeriod: "2026-W35",
	}
}

func TestProcessBatchWaiverHighestBidWins(t *testing.T) {
	store := newFakeStore(testLeague())
	winID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       25,
	})
	loseID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p100",
		BidAmount:       15,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, models.BatchCompleted, run.Status)
	assert.Equal(t, 1, run.Committed)
	assert.Equal(t, 0, run.Rejected)

	assert.Equal(t, models.OutcomeCommitted, store.bids[winID].Outcome)
	assert.Equal(t, models.OutcomeFailedSel, store.bids[loseID].Outcome)
	require.NotNil(t, store.bids[loseID].OutcomeReason)
	assert.Equal(t, ReasonLostToHigherBid, *store.bids[loseID].OutcomeReason)

	require.Len(t, store.awards, 1)
	assert.Equal(t, int64(25), store.awards[0].Price)
	assert.True(t, store.rosters[10].Has("p100"))
	assert.Len(t, store.notes, 2)
}

func TestProcessBatchAwardedPlayerDeferred(t *testing.T) {
	store := newFakeStore(testLeague())
	store.awarded["p100"] = true
	bidID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       25,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 0, run.Committed)
	assert.Equal(t, 1, run.Deferred)
	assert.Equal(t, models.OutcomePending, store.bids[bidID].Outcome)
	assert.Empty(t, store.awards)
}

// A batch that crashed after committing awards can be re-run safely: the
// surviving pending bids on awarded players defer and no second award lands.
func TestProcessBatchRerunAfterPartialRun(t *testing.T) {
	store := newFakeStore(testLeague())
	store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       25,
	})
	rivalID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p100",
		BidAmount:       15,
	})

	eng := newTestEngine(store)
	first, err := eng.ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)
	require.Equal(t, 1, first.Committed)

	// Pretend the loser finalization never landed.
	store.bids[rivalID].ProcessedAt = nil
	store.bids[rivalID].Outcome = models.OutcomePending
	store.bids[rivalID].OutcomeReason = nil

	second, err := eng.ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Committed)
	assert.Equal(t, 1, second.Deferred)
	assert.Len(t, store.awards, 1)
	assert.Len(t, store.rosters[10].Slots, 1)
}

// One bid failing settlement validation must not block the rest of the batch.
func TestProcessBatchSettlementFailureIsolated(t *testing.T) {
	store := newFakeStore(testLeague())
	// p200 is already rostered elsewhere, so that award fails validation.
	store.addRoster(30, models.RosterSlot{PlayerID: "p200", Slot: models.SlotActive, Salary: 10})

	goodID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       20,
	})
	badID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p200",
		BidAmount:       30,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, models.BatchCompleted, run.Status)
	assert.Equal(t, 1, run.Committed)
	assert.Equal(t, 1, run.Rejected)

	assert.Equal(t, models.OutcomeCommitted, store.bids[goodID].Outcome)
	assert.Equal(t, models.OutcomeRejected, store.bids[badID].Outcome)
	require.NotNil(t, store.bids[badID].OutcomeReason)
	assert.Equal(t, ReasonPlayerUnavailable, *store.bids[badID].OutcomeReason)
}

func TestProcessBatchCapSpaceRejection(t *testing.T) {
	store := newFakeStore(testLeague())
	store.addRoster(10,
		models.RosterSlot{PlayerID: "r1", Slot: models.SlotActive, Salary: 190},
	)
	bidID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       20,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, run.Rejected)
	require.NotNil(t, store.bids[bidID].OutcomeReason)
	assert.Equal(t, ReasonInsufficientCap, *store.bids[bidID].OutcomeReason)
}

func TestProcessBatchReleaseFreesCapAndRoom(t *testing.T) {
	league := testLeague()
	league.RosterLimit = 1
	store := newFakeStore(league)
	store.addRoster(10,
		models.RosterSlot{PlayerID: "r1", Slot: models.SlotActive, Salary: 190},
	)
	bidID := store.addBid(models.Bid{
		ClaimType:        models.ClaimWaiver,
		ClaimantTeamID:   10,
		SubjectPlayerID:  "p100",
		BidAmount:        20,
		ReleasePlayerIDs: []string{"r1"},
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, run.Committed)
	assert.Equal(t, models.OutcomeCommitted, store.bids[bidID].Outcome)
	assert.False(t, store.rosters[10].Has("r1"))
	assert.True(t, store.rosters[10].Has("p100"))
}

func TestProcessBatchCancellationWinsRace(t *testing.T) {
	store := newFakeStore(testLeague())
	winID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       25,
	})
	loserID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p100",
		BidAmount:       15,
	})
	store.cancelledLate[winID] = true

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 0, run.Committed)
	assert.Empty(t, store.awards)
	// The beaten bid stays pending and contests the player next pass.
	assert.Equal(t, models.OutcomePending, store.bids[loserID].Outcome)
}

func TestProcessBatchRFAOnePlayerPerPass(t *testing.T) {
	store := newFakeStore(testLeague())
	highID := store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       50,
	})
	otherID := store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p200",
		BidAmount:       40,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimRFA, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, run.Committed)
	assert.Equal(t, 1, run.Deferred)
	assert.Equal(t, models.OutcomeCommitted, store.bids[highID].Outcome)
	assert.Equal(t, models.OutcomePending, store.bids[otherID].Outcome)
}

func TestProcessBatchIncumbentWinsButPaysFace(t *testing.T) {
	store := newFakeStore(testLeague())
	incumbent := int64(10)
	incID := store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       10,
		IncumbentTeamID: &incumbent,
	})
	store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p100",
		BidAmount:       11,
		IncumbentTeamID: &incumbent,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimRFA, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, run.Committed)
	assert.Equal(t, models.OutcomeCommitted, store.bids[incID].Outcome)
	require.Len(t, store.awards, 1)
	assert.Equal(t, int64(10), store.awards[0].Price)
}

// A tagged player sits on the incumbent's roster while the claim is open.
// When the incumbent's matching bid wins, the slot is re-priced in place:
// no duplicate slot, no roster growth, salary at the settled price.
func TestProcessBatchIncumbentRetainsRosteredPlayer(t *testing.T) {
	league := testLeague()
	league.RosterLimit = 1
	store := newFakeStore(league)
	incumbent := int64(10)
	store.addRoster(10,
		models.RosterSlot{LeagueID: 1, TeamID: 10, PlayerID: "p100", Slot: models.SlotActive, Salary: 5},
	)
	incID := store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       10,
		IncumbentTeamID: &incumbent,
	})
	rivalID := store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p100",
		BidAmount:       11,
		IncumbentTeamID: &incumbent,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimRFA, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, run.Committed)
	assert.Equal(t, 0, run.Rejected)
	assert.Equal(t, models.OutcomeCommitted, store.bids[incID].Outcome)
	assert.Equal(t, models.OutcomeFailedSel, store.bids[rivalID].Outcome)

	require.Len(t, store.awards, 1)
	assert.Equal(t, int64(10), store.awards[0].Price)

	require.Len(t, store.rosters[10].Slots, 1)
	assert.Equal(t, "p100", store.rosters[10].Slots[0].PlayerID)
	assert.Equal(t, int64(10), store.rosters[10].Slots[0].Salary)
}

// A rival outbidding the boosted incumbent takes the tagged player off the
// incumbent's roster and onto its own at the settled price.
func TestProcessBatchRivalSignsAwayRosteredPlayer(t *testing.T) {
	store := newFakeStore(testLeague())
	incumbent := int64(10)
	store.addRoster(10,
		models.RosterSlot{LeagueID: 1, TeamID: 10, PlayerID: "p100", Slot: models.SlotActive, Salary: 5},
	)
	incID := store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       10,
		IncumbentTeamID: &incumbent,
	})
	rivalID := store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p100",
		BidAmount:       20,
		IncumbentTeamID: &incumbent,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimRFA, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, run.Committed)
	assert.Equal(t, models.OutcomeCommitted, store.bids[rivalID].Outcome)
	assert.Equal(t, models.OutcomeFailedSel, store.bids[incID].Outcome)

	require.Len(t, store.awards, 1)
	assert.Equal(t, int64(20), store.awards[0].Price)

	assert.False(t, store.rosters[10].Has("p100"))
	require.True(t, store.rosters[20].Has("p100"))
	for _, slot := range store.rosters[20].Slots {
		if slot.PlayerID == "p100" {
			assert.Equal(t, int64(20), slot.Salary)
		}
	}
}

func TestProcessBatchWaiverRotationOnWin(t *testing.T) {
	store := newFakeStore(testLeague())
	store.priorities = map[int64]int{10: 1, 20: 2, 30: 3}
	store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p100",
		BidAmount:       25,
	})

	_, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 3, store.priorities[20])
	assert.Equal(t, 2, store.priorities[30])
	assert.Equal(t, 1, store.priorities[10])
}

func TestProcessBatchLeagueRuleExcludesBid(t *testing.T) {
	league := testLeague()
	rule := `bid.amount >= 5`
	league.ClaimRule = &rule
	store := newFakeStore(league)

	lowID := store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       2,
	})
	okID := store.addBid(models.Bid{
		ClaimType:       models.ClaimRFA,
		ClaimantTeamID:  20,
		SubjectPlayerID: "p100",
		BidAmount:       8,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimRFA, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, run.Committed)
	assert.Equal(t, models.OutcomeFailedSel, store.bids[lowID].Outcome)
	require.NotNil(t, store.bids[lowID].OutcomeReason)
	assert.Equal(t, ReasonIneligible, *store.bids[lowID].OutcomeReason)
	assert.Equal(t, models.OutcomeCommitted, store.bids[okID].Outcome)
}

func TestProcessBatchMalformedRuleFailsBatch(t *testing.T) {
	league := testLeague()
	rule := `bid.amount >=`
	league.ClaimRule = &rule
	store := newFakeStore(league)
	bidID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       25,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.Error(t, err)

	assert.Equal(t, models.BatchFailed, run.Status)
	require.NotNil(t, run.Error)
	assert.Equal(t, models.OutcomePending, store.bids[bidID].Outcome)
	assert.Empty(t, store.awards)
}

func TestProcessBatchDryRunWritesNothing(t *testing.T) {
	store := newFakeStore(testLeague())
	winID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       25,
	})

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, true)
	require.NoError(t, err)

	assert.Equal(t, models.BatchCompleted, run.Status)
	assert.Equal(t, 1, run.Committed)

	assert.Equal(t, models.OutcomePending, store.bids[winID].Outcome)
	assert.Empty(t, store.awards)
	assert.Empty(t, store.runs)
	assert.Empty(t, store.notes)
}

func TestProcessBatchEmptyBatch(t *testing.T) {
	store := newFakeStore(testLeague())

	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	assert.Equal(t, models.BatchCompleted, run.Status)
	assert.Equal(t, 0, run.Committed)
	require.Contains(t, store.runs, run.BatchID)
	assert.Equal(t, models.BatchCompleted, store.runs[run.BatchID].Status)
}

func TestProcessBatchRosterDeltaRecorded(t *testing.T) {
	store := newFakeStore(testLeague())
	store.addRoster(10,
		models.RosterSlot{LeagueID: 1, TeamID: 10, PlayerID: "r1", Slot: models.SlotActive, Salary: 30},
	)
	store.addBid(models.Bid{
		ClaimType:        models.ClaimWaiver,
		ClaimantTeamID:   10,
		SubjectPlayerID:  "p100",
		BidAmount:        20,
		ReleasePlayerIDs: []string{"r1"},
	})

	_, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, time.Time{}, false)
	require.NoError(t, err)

	require.Len(t, store.awards, 1)
	delta := string(store.awards[0].RosterDelta)
	assert.Contains(t, delta, "p100")
	assert.NotContains(t, delta, `"r1"`)
}

func TestProcessBatchAsOfCutoff(t *testing.T) {
	store := newFakeStore(testLeague())
	bidID := store.addBid(models.Bid{
		ClaimType:       models.ClaimWaiver,
		ClaimantTeamID:  10,
		SubjectPlayerID: "p100",
		BidAmount:       25,
	})

	// Cutoff before the bid was submitted: it sits the pass out untouched.
	asOf := time.Now().Add(-time.Hour)
	run, err := newTestEngine(store).ProcessBatch(context.Background(), 1, models.ClaimWaiver, asOf, false)
	require.NoError(t, err)

	assert.Equal(t, 0, run.Committed)
	assert.Equal(t, 1, run.Deferred)
	assert.Equal(t, models.OutcomePending, store.bids[bidID].Outcome)
	assert.Empty(t, store.awards)
}
