package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/inventory-platform/inventory-api/internal/api"
	"github.com/inventory-platform/inventory-api/internal/api/handler"
	"github.com/inventory-platform/inventory-api/internal/core/rbac"
	"github.com/inventory-platform/inventory-api/internal/core/service"
	mongodb "github.com/inventory-platform/inventory-api/internal/infrastructure/db/mongo"
	redisdb "github.com/inventory-platform/inventory-api/internal/infrastructure/db/redis"
	"github.com/inventory-platform/inventory-api/internal/infrastructure/queue"
	"github.com/inventory-platform/inventory-api/internal/pkg/config"
	"github.com/inventory-platform/inventory-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "inventory-api",
		Version: version,
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "inventory-api",
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	// --- Audit ---
	audit := queue.NewDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer, mongodb.NewAuditRepository(db), logger.Component("audit"))
	audit.Start()
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := audit.Close(drainCtx); err != nil {
			log.Warn().Err(err).Msg("audit queue not fully drained")
		}
	}()

	// --- Core ---
	codec, err := service.NewTokenCodec(service.TokenConfig{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}

	registry := rbac.NewRegistry()
	roles := service.NewRoleService(registry, mongodb.NewRoleRepository(db), audit, logger.Component("roles"))
	if err := roles.LoadPersisted(ctx); err != nil {
		return err
	}

	userRepo := mongodb.NewUserRepository(db)
	users := service.NewUserService(userRepo, registry, audit, logger.Component("users"))
	if _, err := users.Bootstrap(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		return err
	}

	limiter := redisdb.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout)
	auth := service.NewAuthService(service.NewCredentialVerifier(userRepo), registry, codec, limiter, audit, logger.Component("auth"))

	e := api.NewRouter(api.Deps{
		Log:      log,
		Auth:     auth,
		Verifier: codec,
		Users:    users,
		Roles:    roles,
		Audit:    audit,
		Checks: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
	})

	return run(ctx, e, ":"+cfg.Port, log)
}

// httpServer is the part of *echo.Echo that run drives.
type httpServer interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// run serves until ctx is cancelled, then shuts the server down gracefully.
func run(ctx context.Context, srv httpServer, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
