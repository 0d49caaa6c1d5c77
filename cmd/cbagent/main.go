package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"github.com/depotcb/cbagent/internal/cli"
	"github.com/depotcb/cbagent/internal/config"
	"github.com/depotcb/cbagent/internal/logging"
	"github.com/depotcb/cbagent/internal/planner"
	"github.com/depotcb/cbagent/internal/repository"
	"github.com/depotcb/cbagent/internal/rootcause"
	"github.com/depotcb/cbagent/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.UserMessage(err))
		os.Exit(1)
	}
}

// store is what the services need from a metrics store adapter.
type store interface {
	repository.MetricsStore
	repository.Snapshotter
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	storeOpts := []repository.StoreOption{
		repository.WithLogger(logger),
		repository.WithTimeout(cfg.StoreTimeout),
	}

	// Open the metrics store for the configured driver.
	var metrics store
	var imports service.ImportService
	prom := service.NewPrometheusObserver(nil)
	observers := []service.UseCaseObserver{service.NewSlogUseCaseObserver(logger), prom}

	switch cfg.StoreDriver {
	case planner.DialectPostgres:
		pg, err := repository.OpenPostgresStore(ctx, cfg.DSN(), storeOpts...)
		if err != nil {
			return err
		}
		defer pg.Close()
		metrics = pg
	default:
		sqlStore, err := repository.OpenSQLStore(ctx, string(cfg.StoreDriver), cfg.DSN(), storeOpts...)
		if err != nil {
			return err
		}
		defer sqlStore.Close()
		metrics = sqlStore
		// Snapshot files are only written to the local store.
		if cfg.StoreDriver == planner.DialectSQLite {
			imports = service.NewImportService(sqlStore.UnitOfWork(), nil, observers...)
		}
	}

	// Wire loaders
	base, err := repository.NewLoader(metrics, cfg.Tables, logger)
	if err != nil {
		return err
	}
	var loader repository.SnapshotLoader = base
	if cfg.CacheEnabled() {
		cached, err := repository.NewCachedLoader(base, cfg.CacheSize, cfg.CacheTTL)
		if err != nil {
			return fmt.Errorf("creating snapshot cache: %w", err)
		}
		loader = cached
	}

	// Wire services
	defaults := service.Defaults{
		DepotID:           cfg.DefaultDepot,
		LookbackDays:      cfg.DefaultLookbackDays,
		TopN:              cfg.DefaultTopN,
		MinOrderFrequency: cfg.MinOrderFrequency,
		AddItemLimit:      cfg.AddItemLimit,
	}
	recommendSvc := service.NewRecommendService(loader, cfg.ImpactConfig(), defaults, observers...)
	explainSvc := service.NewExplainService(metrics, loader, rootcause.DefaultThresholds(), defaults, observers...)

	app := &cli.App{
		Ask:       service.NewAskService(metrics, base.Renderer(), explainSvc, recommendSvc, defaults, observers...),
		Recommend: recommendSvc,
		Explain:   explainSvc,
		Dashboard: service.NewDashboardService(loader, defaults, observers...),
		Import:    imports,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	runErr := cli.NewRootCmd(app).ExecuteContext(ctx)

	if cfg.MetricsTextfile != "" {
		if err := prom.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("writing metrics textfile", slog.String("path", cfg.MetricsTextfile), slog.String("error", err.Error()))
		}
	}
	if c, ok := loader.(*repository.CachedLoader); ok {
		s := c.Stats()
		logger.Debug("snapshot cache", slog.Uint64("hits", s.Hits), slog.Uint64("misses", s.Misses), slog.Int("size", s.Size))
	}
	return runErr
}
