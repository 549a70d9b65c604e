package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/precip-maps/internal/adapter/filesystem"
	httpadapter "github.com/couchcryptid/precip-maps/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/precip-maps/internal/adapter/kafka"
	"github.com/couchcryptid/precip-maps/internal/config"
	"github.com/couchcryptid/precip-maps/internal/observability"
	"github.com/couchcryptid/precip-maps/internal/pipeline"
	"github.com/couchcryptid/precip-maps/internal/render"
)

func main() {
	date := flag.String("date", "", "reference date YYYY-MM-DD; maps cover the month of the day before")
	once := flag.Bool("once", false, "run once and exit even when SCHEDULE is set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *date != "" {
		ref, err := cfg.ParseReferenceDate(*date)
		if err != nil {
			slog.Error("invalid -date flag", "error", err)
			os.Exit(1)
		}
		cfg.ReferenceDate = ref
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	orchestrator, closeFn, err := build(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once || cfg.Schedule == "" {
		if _, err := orchestrator.Run(ctx); err != nil {
			logger.Error("map run failed", "error", err)
			closeFn()
			os.Exit(1) //nolint:gocritic // publisher closed above
		}
		return
	}

	if err := serve(ctx, cfg, orchestrator, logger, metrics); err != nil {
		logger.Error("scheduler error", "error", err)
		closeFn()
		os.Exit(1) //nolint:gocritic // publisher closed above
	}
}

// build wires the orchestrator and returns a function releasing its resources.
func build(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Orchestrator, func(), error) {
	layout, err := config.LoadLayout(cfg.LayoutPath)
	if err != nil {
		return nil, nil, err
	}

	basemap, err := render.DefaultBasemap()
	if cfg.BasemapPath != "" {
		basemap, err = render.LoadBasemap(cfg.BasemapPath)
	}
	if err != nil {
		return nil, nil, err
	}

	renderer, err := render.NewRenderer(render.Options{
		Width:       cfg.ImageWidth,
		Height:      cfg.ImageHeight,
		Layout:      layout,
		Basemap:     basemap,
		LogoPath:    cfg.LogoPath,
		SkipInvalid: cfg.SkipInvalidStations,
	}, logger, metrics)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {}
	var publisher pipeline.ProductPublisher
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		closeFn = func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("map product publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("map product publishing disabled")
	}

	store := filesystem.NewStore(logger)
	o := pipeline.New(store, store, renderer, publisher, clockwork.NewRealClock(), logger, metrics, pipeline.Options{
		DataPath:        cfg.StationDataPath,
		OutputDir:       cfg.OutputDir,
		Extension:       cfg.Extension(),
		ReferenceDate:   cfg.ReferenceDate,
		Location:        cfg.Location,
		SkipInvalid:     cfg.SkipInvalidStations,
		MetricsTextfile: cfg.MetricsTextfile,
	})
	return o, closeFn, nil
}

// serve runs the scheduler and the health server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, o *pipeline.Orchestrator, logger *slog.Logger, metrics *observability.Metrics) error {
	runner := pipeline.RunnerFunc(func(ctx context.Context) error {
		_, err := o.Run(ctx)
		return err
	})
	scheduler, err := pipeline.NewScheduler(cfg.Schedule, cfg.Location, runner, logger, metrics)
	if err != nil {
		return err
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, o, httpadapter.Options{Runner: o, Location: cfg.Location}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	err = scheduler.Start(ctx)
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("http server shutdown error", "error", serr)
	}

	logger.Info("shutdown complete")
	return err
}
