package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/agriconnect/platform/internal/api"
	"github.com/agriconnect/platform/internal/api/handler"
	"github.com/agriconnect/platform/internal/core/datastore"
	"github.com/agriconnect/platform/internal/core/ports"
	"github.com/agriconnect/platform/internal/core/service"
	"github.com/agriconnect/platform/internal/infrastructure/db/memory"
	"github.com/agriconnect/platform/internal/infrastructure/db/postgres"
	"github.com/agriconnect/platform/internal/infrastructure/db/redis"
	"github.com/agriconnect/platform/internal/infrastructure/db/remote"
	"github.com/agriconnect/platform/internal/infrastructure/db/sqlite"
	"github.com/agriconnect/platform/internal/infrastructure/db/sqlrepo"
	"github.com/agriconnect/platform/internal/infrastructure/queue"
	"github.com/agriconnect/platform/internal/pkg/config"
	"github.com/agriconnect/platform/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Persistence backend, chosen once for the lifetime of the process ---
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("backend unavailable")
	}

	store := datastore.New(backend, logger.Named("datastore"))
	if err := store.Open(ctx); err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("datastore failed to open")
	}
	defer store.Close()

	// --- Redis (optional): request dedup for /api/run ---
	var (
		rdb  *redislib.Client
		idem handler.IdempotencyChecker
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis unavailable")
		}
		defer rdb.Close()
		idem = redis.NewIdempotencyChecker(rdb)
	}

	// --- Domain services ---
	userRepo := sqlrepo.NewUserRepository(store)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	notificationService := service.NewNotificationService(store)

	dispatcher := queue.NewDispatcher(cfg.Workers.Notifications, notificationService, logger.Named("dispatcher"))
	dispatcher.Start(ctx)

	// --- HTTP surface ---
	e := api.NewRouter(api.RouterDeps{
		Store:       store,
		AuthService: authService,
		Notifier:    dispatcher,
		Idempotency: idem,
		Redis:       rdb,
		JWTSecret:   cfg.JWTSecret,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("backend", cfg.Backend).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openBackend constructs the DataBackend named by cfg.Backend.
func openBackend(ctx context.Context, cfg *config.Config) (ports.DataBackend, error) {
	switch cfg.Backend {
	case "sqlite":
		return sqlite.Open(ctx, sqlite.Config{
			Path:         cfg.SQLite.Path,
			SeedPassword: cfg.Seed.Password,
		})
	case "postgres":
		return postgres.Open(ctx, postgres.Config{
			URL:          cfg.Postgres.URL,
			SeedPassword: cfg.Seed.Password,
		})
	case "memory":
		return memory.NewStore(), nil
	case "remote":
		if cfg.Remote.BaseURL == "" {
			return nil, fmt.Errorf("backend remote requires REMOTE_BASE_URL")
		}
		return remote.New(remote.Config{
			BaseURL: cfg.Remote.BaseURL,
			Token:   cfg.Remote.Token,
		}), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
