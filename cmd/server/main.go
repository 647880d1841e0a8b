package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/umar-saleem/points-ledger/internal/api"
	"github.com/umar-saleem/points-ledger/internal/config"
	"github.com/umar-saleem/points-ledger/internal/events/kafka"
	"github.com/umar-saleem/points-ledger/internal/interfaces"
	"github.com/umar-saleem/points-ledger/internal/ledger"
	"github.com/umar-saleem/points-ledger/internal/metrics"
	"github.com/umar-saleem/points-ledger/internal/storage/memory"
	"github.com/umar-saleem/points-ledger/internal/storage/postgres"
	storeredis "github.com/umar-saleem/points-ledger/internal/storage/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	balances, history, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}
	defer closeStore()

	opts := []ledger.Option{ledger.WithLogger(log)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close() //nolint:errcheck
		opts = append(opts, ledger.WithEventPublisher(publisher))
		log.Info("event publishing enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	transactor := ledger.NewTransactor(balances, history, opts...)
	metrics.ObserveLockRegistry(transactor.Locks())

	server := api.NewServer(transactor, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("address", cfg.ServerAddress),
			zap.String("storage", cfg.StorageDriver),
		)
		errCh <- server.Listen(cfg.ServerAddress)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	timeout := time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second
	if err := server.App().ShutdownWithTimeout(timeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// openStores builds the configured balance/history store pair. All
// drivers implement both interfaces with a single store value.
func openStores(ctx context.Context, cfg config.Config) (interfaces.BalanceStore, interfaces.HistoryStore, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		return store, store, func() { store.Close() }, nil

	case config.DriverRedis:
		store, err := storeredis.Open(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, func() { store.Close() }, nil

	default:
		store := memory.NewStore()
		return store, store, func() {}, nil
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}
