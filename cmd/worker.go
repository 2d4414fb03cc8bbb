package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/dispatch"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/queue"
	"github.com/caravanleads/caravan/internal/store"
	"github.com/caravanleads/caravan/internal/store/pg"
)

func workerCmd() *cobra.Command {
	var roleOverride string
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the job queue worker pool (role=core|dispatch|all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(roleOverride)
		},
	}
	cmd.Flags().StringVar(&roleOverride, "role", "", "override worker.role from config (core|dispatch|all)")
	return cmd
}

func runWorker(roleOverride string) error {
	logger := newLogger()

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	role := cfg.Worker.Role
	if roleOverride != "" {
		role = roleOverride
	}

	stores, err := pg.NewPGStores(store.StoreConfig{
		PostgresDSN: cfg.Database.DSN,
		MaxOpenConn: cfg.Database.MaxOpenConn,
		MaxIdleConn: cfg.Database.MaxIdleConn,
	})
	if err != nil {
		return fmt.Errorf("connect stores: %w", err)
	}

	renderer := dispatch.NewRenderer(cfg.Labels, cfg.Pricing.Build().Items)
	adapter := newLoggingChannelAdapter(logger)

	handlers := queue.BuildHandlers(queue.Deps{
		Jobs:        stores.Jobs,
		Media:       stores.Media,
		Leads:       stores.Leads,
		Outbound:    adapter,
		Operator:    adapter,
		Crew:        adapter,
		Fetcher:     adapter,
		Objects:     adapter,
		Renderer:    renderer,
		FeaturesFor: cfg.ResolveFeatures,
	})

	pool := queue.NewWorkerPool(queue.Config{
		Role:              domain.WorkerRole(role),
		Concurrency:       cfg.Worker.Concurrency,
		PollInterval:      parseDurationOr(cfg.Worker.PollInterval, 200*time.Millisecond),
		LeaseHorizon:      parseDurationOr(cfg.Worker.LeaseHorizon, 5*time.Minute),
		OrphanSweepEvery:  parseDurationOr(cfg.Worker.OrphanSweepEvery, time.Minute),
		MediaCleanupEvery: parseDurationOr(cfg.Worker.MediaCleanupEvery, time.Hour),
	}, stores.Jobs, handlers, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	logger.Info("worker pool started", "role", role, "concurrency", cfg.Worker.Concurrency)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down worker pool", "signal", sig)

	cancel()
	pool.Stop()
	return nil
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
