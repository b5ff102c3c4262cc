// Pokeflow Loader — загружает пакеты PokeAPI из RabbitMQ в PostgreSQL.
//
// Loader:
//   - Применяет схему БД при старте
//   - Получает pokemon.batch, evolution.batch и type.batch из ingest.pipeline
//   - Разворачивает цепочки эволюции в записи из трёх стадий
//   - Отправляет необрабатываемые сообщения в DLQ
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaiso/pokeflow/internal/config"
	"github.com/shaiso/pokeflow/internal/loader"
	"github.com/shaiso/pokeflow/internal/mq"
	"github.com/shaiso/pokeflow/internal/repo"
	"github.com/shaiso/pokeflow/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting pokeflow-loader")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	if err := repo.Migrate(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	// RabbitMQ
	mqConn, err := mq.NewConnection(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}
	logger.Debug("topology ready", "topology", mq.TopologyInfo())

	l := loader.New(loader.Config{
		Pokemon:    repo.NewPokemonRepo(pool),
		Evolutions: repo.NewEvolutionRepo(pool),
		Types:      repo.NewTypeRepo(pool),
		Overflow:   cfg.Overflow,
		Conn:       mqConn,
		Logger:     logger,
	})

	if err := l.Start(ctx); err != nil {
		logger.Error("failed to start loader", "error", err)
		os.Exit(1)
	}

	// HTTP: /healthz + /metrics
	mux := telemetry.NewServeMux(logger, map[string]telemetry.HealthCheck{
		"postgres": pool.Ping,
		"rabbitmq": func(context.Context) error {
			if !mqConn.IsConnected() {
				return mq.ErrNoChannel
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.LoaderPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	l.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	logger.Info("pokeflow-loader stopped")
}
