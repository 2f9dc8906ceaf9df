package container

import (
	"github.com/leaguehq/frontoffice/cmd/api/service"
	"github.com/leaguehq/frontoffice/common/bootstrap"
	"github.com/leaguehq/frontoffice/common/engine"
	"github.com/leaguehq/frontoffice/common/ratelimit"
	"github.com/leaguehq/frontoffice/common/repository"
	"github.com/leaguehq/frontoffice/common/resolve"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	Components *bootstrap.Components

	// Repositories
	BidRepo      *repository.BidRepository
	LeagueRepo   *repository.LeagueRepository
	RosterRepo   *repository.RosterRepository
	TxRepo       *repository.TransactionRepository
	WaiverRepo   *repository.WaiverRepository
	BatchRunRepo *repository.BatchRunRepository
	Settlement   *repository.SettlementStore

	// Services
	Engine           *engine.Engine
	ClaimService     *service.ClaimService
	ResolveService   *service.ResolveService
	OptimizerService *service.OptimizerService

	// RateLimiter is nil when Redis is not configured; routes then skip
	// submission throttling.
	RateLimiter *ratelimit.Limiter
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Initialize repositories
	bidRepo := repository.NewBidRepository(components.DB)
	leagueRepo := repository.NewLeagueRepository(components.DB)
	rosterRepo := repository.NewRosterRepository(components.DB)
	txRepo := repository.NewTransactionRepository(components.DB)
	waiverRepo := repository.NewWaiverRepository(components.DB)
	batchRunRepo := repository.NewBatchRunRepository(components.DB)
	settlement := repository.NewSettlementStore(components.DB)

	var notifier engine.Notifier
	if cfg.Notify.Enabled {
		notifier = engine.NewStreamNotifier(components.Queue, components.Redis, cfg.Notify.Stream)
	}

	var limiter *ratelimit.Limiter
	if components.Redis != nil {
		limiter = ratelimit.NewLimiter(components.Redis.GetUnderlying(), components.Logger)
	}

	resolutionEngine := engine.New(engine.Opts{
		Leagues:   leagueRepo,
		Bids:      bidRepo,
		Rosters:   rosterRepo,
		Ledger:    txRepo,
		Waivers:   waiverRepo,
		Runs:      batchRunRepo,
		Committer: settlement,
		Notifier:  notifier,
		Rules: resolve.Rules{
			BoostPercent: cfg.Resolver.BoostPercent,
			BoostFloor:   cfg.Resolver.BoostFloor,
		},
		Logger: components.Logger,
	})

	// Initialize services (bottom-up: dependencies first)
	claimService := service.NewClaimService(service.ClaimServiceOpts{
		Bids:    bidRepo,
		Leagues: leagueRepo,
		Rosters: rosterRepo,
		Ledger:  txRepo,
		Logger:  components.Logger,
	})

	resolveService := service.NewResolveService(service.ResolveServiceOpts{
		Engine: resolutionEngine,
		Logger: components.Logger,
	})

	optimizerService := service.NewOptimizerService(service.OptimizerServiceOpts{
		Leagues:        leagueRepo,
		Rosters:        rosterRepo,
		Cache:          components.Cache,
		BudgetHeadroom: cfg.Resolver.BudgetHeadroom,
		Logger:         components.Logger,
	})

	return &Container{
		Components:       components,
		BidRepo:          bidRepo,
		LeagueRepo:       leagueRepo,
		RosterRepo:       rosterRepo,
		TxRepo:           txRepo,
		WaiverRepo:       waiverRepo,
		BatchRunRepo:     batchRunRepo,
		Settlement:       settlement,
		Engine:           resolutionEngine,
		ClaimService:     claimService,
		ResolveService:   resolveService,
		OptimizerService: optimizerService,
		RateLimiter:      limiter,
	}, nil
}
