package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/skcc-skimmer-feed/internal/adapter/kafka"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/adapter/logview"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/adapter/skimmer"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/adapter/tui"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/config"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/observability"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/pipeline"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/store"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.9.0"

func main() {
	if err := run(); err != nil {
		slog.Error("skimmer failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logOut := os.Stderr
	if cfg.UI == config.UITUI {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := observability.NewLoggerTo(logOut, cfg)
	metrics := observability.NewMetrics()
	logger.Info("skcc skimmer feed starting", "version", version, "ui", cfg.UI)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	proc, err := skimmer.Start(skimmer.Options{
		Command:   cfg.SkimmerCommand,
		Dir:       cfg.SkimmerDir,
		StopGrace: cfg.SkimmerStopGrace,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	var renderers pipeline.Renderers

	var hub *httpadapter.SnapshotHub
	if cfg.HTTPAddr != "" {
		hub = httpadapter.NewSnapshotHub(logger)
		renderers = append(renderers, hub)
	}

	var (
		program     *tea.Program
		tuiRenderer *tui.Renderer
	)
	switch cfg.UI {
	case config.UITUI:
		program = tea.NewProgram(tui.New("SKCC Skimmer "+version), tea.WithAltScreen(), tea.WithContext(ctx))
		tuiRenderer = tui.NewRenderer(program)
		renderers = append(renderers, tuiRenderer)
	case config.UILog:
		renderers = append(renderers, logview.NewRenderer(logger))
	}

	// Kafka export is optional (KAFKA_BROKERS).
	var (
		loader pipeline.SpotLoader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		loader = writer
		logger.Info("kafka spot export enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSpotTopic)
	}

	queue := pipeline.NewQueue()
	reader := pipeline.NewReader(proc, pipeline.NewTransformer(logger, metrics), queue, logger, metrics)
	dispatcher := pipeline.NewDispatcher(queue, store.New(store.WithMaxAge(cfg.MaxSpotAge)), renderers, loader, pipeline.DispatcherConfig{
		Interval:        cfg.DispatchInterval,
		MaxBatch:        cfg.DispatchMaxBatch,
		RefreshInterval: cfg.RefreshInterval,
	}, logger, metrics)
	p := pipeline.New(reader, dispatcher, logger)

	// Start HTTP server.
	var srv *httpadapter.Server
	if hub != nil {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, hub, logger, metrics)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	// Start the pipeline.
	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	// Quitting the TUI stops the service.
	tuiDone := make(chan struct{})
	if program != nil {
		go tuiRenderer.Run(ctx)
		go func() {
			defer close(tuiDone)
			defer cancel()
			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				logger.Error("tui error", "error", err)
			}
		}()
	} else {
		close(tuiDone)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if err := proc.Stop(); err != nil {
		logger.Error("skimmer stop error", "error", err)
	}
	<-pipelineDone
	<-tuiDone

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
