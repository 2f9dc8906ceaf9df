package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leaguehq/frontoffice/cmd/resolver/worker"
	"github.com/leaguehq/frontoffice/common/bootstrap"
	"github.com/leaguehq/frontoffice/common/config"
	"github.com/leaguehq/frontoffice/common/db"
	"github.com/leaguehq/frontoffice/common/engine"
	"github.com/leaguehq/frontoffice/common/logger"
	"github.com/leaguehq/frontoffice/common/repository"
	"github.com/leaguehq/frontoffice/common/resolve"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load("resolver")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Service.LogLevel, cfg.Service.LogFormat)

	// Bootstrap service components
	components, err := bootstrap.Setup(ctx, "resolver",
		bootstrap.WithCustomConfig(cfg),
		bootstrap.WithCustomLogger(log),
		bootstrap.WithDBInitHook(func(*db.DB) error {
			return db.Migrate(cfg.DatabaseURL(), log)
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup service: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	components.Logger.Info("resolver starting")

	leagueRepo := repository.NewLeagueRepository(components.DB)
	bidRepo := repository.NewBidRepository(components.DB)
	rosterRepo := repository.NewRosterRepository(components.DB)
	txRepo := repository.NewTransactionRepository(components.DB)
	waiverRepo := repository.NewWaiverRepository(components.DB)
	batchRunRepo := repository.NewBatchRunRepository(components.DB)
	settlement := repository.NewSettlementStore(components.DB)

	var notifier engine.Notifier
	if cfg.Notify.Enabled {
		notifier = engine.NewStreamNotifier(components.Queue, components.Redis, cfg.Notify.Stream)
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

	resolverWorker := worker.NewResolverWorker(worker.Opts{
		Engine:   resolutionEngine,
		Leagues:  leagueRepo,
		Interval: cfg.Resolver.BatchInterval,
		DryRun:   cfg.Resolver.DryRun,
		Logger:   components.Logger,
	})

	// Start workers in goroutines
	errChan := make(chan error, 1)
	go func() {
		if err := resolverWorker.Start(ctx); err != nil && err != context.Canceled {
			errChan <- fmt.Errorf("resolver worker error: %w", err)
		}
	}()

	if cfg.Notify.Enabled && components.Redis != nil {
		notifyWorker := worker.NewNotifyWorker(worker.NotifyOpts{
			Redis:  components.Redis,
			Queue:  components.Queue,
			Stream: cfg.Notify.Stream,
			Logger: components.Logger,
		})
		go func() {
			if err := notifyWorker.Start(ctx); err != nil && err != context.Canceled {
				errChan <- fmt.Errorf("notify worker error: %w", err)
			}
		}()
	}

	components.Logger.Info("resolver started successfully")

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		components.Logger.Error("worker failed", "error", err)
		os.Exit(1)
	case sig := <-sigChan:
		components.Logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}

	components.Logger.Info("resolver shutting down gracefully")
}
