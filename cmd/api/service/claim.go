package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leaguehq/frontoffice/common/logger"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/leaguehq/frontoffice/common/repository"
)

// ErrInvalidClaim marks submission-time validation failures; handlers map it
// to a 400 response.
var ErrInvalidClaim = errors.New("invalid claim")

// SubmitClaimRequest is the payload for submitting a new claim
type SubmitClaimRequest struct {
	LeagueID         int64    `json:"league_id"`
	ClaimType        string   `json:"claim_type"`
	ClaimantTeamID   int64    `json:"claimant_team_id"`
	SubjectPlayerID  string   `json:"subject_player_id"`
	BidAmount        int64    `json:"bid_amount"`
	IncumbentTeamID  *int64   `json:"incumbent_team_id,omitempty"`
	ReleasePlayerIDs []string `json:"release_player_ids,omitempty"`
}

// ClaimService handles bid submission, cancellation and listing. Submission
// only sanity-checks the request; roster, cap and availability are enforced
// at settlement, where they are authoritative.
type ClaimService struct {
	bids    *repository.BidRepository
	leagues *repository.LeagueRepository
	rosters *repository.RosterRepository
	ledger  *repository.TransactionRepository
	log     *logger.Logger
}

// ClaimServiceOpts carries the dependencies of a ClaimService
type ClaimServiceOpts struct {
	Bids    *repository.BidRepository
	Leagues *repository.LeagueRepository
	Rosters *repository.RosterRepository
	Ledger  *repository.TransactionRepository
	Logger  *logger.Logger
}

// NewClaimService creates a new claim service
func NewClaimService(opts ClaimServiceOpts) *ClaimService {
	return &ClaimService{
		bids:    opts.Bids,
		leagues: opts.Leagues,
		rosters: opts.Rosters,
		ledger:  opts.Ledger,
		log:     opts.Logger,
	}
}

// Submit validates and records a new pending bid
func (s *ClaimService) Submit(ctx context.Context, req *SubmitClaimRequest) (*models.Bid, error) {
	claimType, err := models.ParseClaimType(req.ClaimType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}

	if req.BidAmount < 0 {
		return nil, fmt.Errorf("%w: bid amount must be non-negative", ErrInvalidClaim)
	}
	if req.SubjectPlayerID == "" {
		return nil, fmt.Errorf("%w: subject player is required", ErrInvalidClaim)
	}

	seen := make(map[string]bool, len(req.ReleasePlayerIDs))
	for _, playerID := range req.ReleasePlayerIDs {
		if playerID == req.SubjectPlayerID {
			return nil, fmt.Errorf("%w: cannot release the claimed player", ErrInvalidClaim)
		}
		if seen[playerID] {
			return nil, fmt.Errorf("%w: duplicate release player %s", ErrInvalidClaim, playerID)
		}
		seen[playerID] = true
	}

	if _, err := s.leagues.GetByID(ctx, req.LeagueID); err != nil {
		return nil, fmt.Errorf("%w: league not found", ErrInvalidClaim)
	}

	// The tag holder is normally known to the platform; a caller-supplied
	// incumbent overrides the lookup for commissioner corrections.
	incumbent := req.IncumbentTeamID
	if incumbent == nil && claimType != models.ClaimWaiver {
		incumbent, err = s.rosters.HoldingTeam(ctx, req.LeagueID, req.SubjectPlayerID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up tag holder: %w", err)
		}
	}

	bid := &models.Bid{
		BidID:            uuid.New(),
		LeagueID:         req.LeagueID,
		ClaimType:        claimType,
		ClaimantTeamID:   req.ClaimantTeamID,
		SubjectPlayerID:  req.SubjectPlayerID,
		BidAmount:        req.BidAmount,
		IncumbentTeamID:  incumbent,
		ReleasePlayerIDs: req.ReleasePlayerIDs,
		SubmittedAt:      time.Now().UTC(),
		Outcome:          models.OutcomePending,
	}

	if err := s.bids.Create(ctx, bid); err != nil {
		return nil, err
	}

	s.log.WithLeagueID(bid.LeagueID).WithBidID(bid.BidID.String()).Info("claim submitted",
		"claim_type", claimType,
		"player_id", bid.SubjectPlayerID,
		"team_id", bid.ClaimantTeamID,
		"amount", bid.BidAmount)

	return bid, nil
}

// Cancel withdraws a still-pending bid. Once a batch has picked the bid up
// and settled it, cancellation returns repository.ErrBidUnavailable.
func (s *ClaimService) Cancel(ctx context.Context, bidID uuid.UUID) error {
	if err := s.bids.Cancel(ctx, bidID); err != nil {
		return err
	}

	s.log.WithBidID(bidID.String()).Info("claim cancelled")
	return nil
}

// Get retrieves one bid
func (s *ClaimService) Get(ctx context.Context, bidID uuid.UUID) (*models.Bid, error) {
	return s.bids.GetByID(ctx, bidID)
}

// List retrieves a team's bids, newest first
func (s *ClaimService) List(ctx context.Context, leagueID, teamID int64, limit int) ([]models.Bid, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.bids.ListByTeam(ctx, leagueID, teamID, limit)
}

// History retrieves a team's settled ledger entries, newest first
func (s *ClaimService) History(ctx context.Context, leagueID, teamID int64, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.ledger.ListByTeam(ctx, leagueID, teamID, limit)
}
