// Pokeflow Extractor — выгружает PokeAPI в RabbitMQ.
//
// Без EXTRACT_CRON выполняет одну выгрузку и завершается.
// С EXTRACT_CRON работает как сервис: выгружает по расписанию
// и отдаёт /healthz и /metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaiso/pokeflow/internal/cli"
	"github.com/shaiso/pokeflow/internal/config"
	"github.com/shaiso/pokeflow/internal/scheduler"
	"github.com/shaiso/pokeflow/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting pokeflow-extractor")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	job := func(ctx context.Context) error {
		_, err := cli.RunExtraction(ctx, cfg, logger)
		return err
	}

	if cfg.ExtractCron == "" {
		if err := job(ctx); err != nil {
			logger.Error("extraction failed", "error", err)
			os.Exit(1)
		}
		return
	}

	sched, err := scheduler.ParseSchedule(cfg.ExtractCron, cfg.ExtractTimezone)
	if err != nil {
		logger.Error("invalid EXTRACT_CRON", "error", err)
		os.Exit(1)
	}

	s, err := scheduler.New(scheduler.Config{
		Schedule:   sched,
		Job:        job,
		RunOnStart: true,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	// HTTP: /healthz + /metrics
	srv := &http.Server{
		Addr:              ":" + cfg.ExtractorPort,
		Handler:           telemetry.NewServeMux(logger, nil),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	logger.Info("pokeflow-extractor stopped")
}
