package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/offline_pay/internal/config"
	"github.com/congo-pay/offline_pay/internal/infra"
	"github.com/congo-pay/offline_pay/internal/ledger"
	"github.com/congo-pay/offline_pay/internal/logging"
	"github.com/congo-pay/offline_pay/internal/server"
	"github.com/congo-pay/offline_pay/internal/vault"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set, idempotency and redeem rate limiting disabled")
	}

	blobs, err := openBlobStore(ctx, cfg, db, cache)
	if err != nil {
		logger.Error("open vault storage", "backend", cfg.VaultBackend, "error", err)
		os.Exit(1)
	}
	codec, err := vault.NewCodec(cfg.VaultPassphrase)
	if err != nil {
		logger.Error("build vault codec", "error", err)
		os.Exit(1)
	}
	v := vault.New(blobs, codec, cfg.VaultKeyID, logger)

	state, fresh, err := v.LoadOrInit(ctx, cfg.BootstrapBalance)
	if err != nil {
		logger.Error("load wallet", "error", err)
		os.Exit(1)
	}
	logger.Info("wallet ready",
		slog.String("user_id", state.UserID),
		slog.String("balance", state.Balance.String()),
		slog.Int64("nonce", state.Nonce),
		slog.Bool("fresh", fresh),
	)

	store := ledger.NewStore(state, ledger.WithCommitHook(v.Save))

	srv, err := server.New(cfg, store, db, cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

func openBlobStore(ctx context.Context, cfg config.Config, db *pgxpool.Pool, cache *redis.Client) (vault.BlobStore, error) {
	switch cfg.VaultBackend {
	case config.BackendMemory:
		return vault.NewMemoryStore(), nil
	case config.BackendRedis:
		return vault.NewRedisStore(cache), nil
	case config.BackendPostgres:
		return vault.NewPostgresStore(ctx, db)
	default:
		return vault.NewFileStore(cfg.VaultPath)
	}
}
