package main

import (
	"context"
	"encoding/hex"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/starterdev/guardian-form-backend/internal/api/rest"
	"github.com/starterdev/guardian-form-backend/internal/infrastructure/config"
	"github.com/starterdev/guardian-form-backend/internal/metrics"
	"github.com/starterdev/guardian-form-backend/internal/service/session"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	reg, err := metrics.NewRegistry("guardian-form-backend")
	if err != nil {
		logger.Fatal("failed to initialize metrics", zap.Error(err))
	}

	store, err := newSessionStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize session store", zap.Error(err))
	}

	server := rest.NewServer(cfg, logger, reg, store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "development" {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, err
	}
	return zcfg.Build()
}

// newSessionStore wires the optional persistence collaborator. Without Redis
// (or without a seal key) sessions are held in memory only.
func newSessionStore(cfg *config.Config, logger *zap.Logger) (session.Store, error) {
	if cfg.Session.SealKey == "" {
		logger.Info("session persistence disabled: no seal key configured")
		return nil, nil
	}
	key, err := hex.DecodeString(cfg.Session.SealKey)
	if err != nil {
		return nil, err
	}
	sealer, err := session.NewSealer(key)
	if err != nil {
		return nil, err
	}
	if !cfg.Redis.Enabled {
		return session.NewMemoryStore(sealer), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return session.NewRedisStore(client, sealer, cfg.Session.Prefix, cfg.Session.TTL, logger.Named("session")), nil
}
