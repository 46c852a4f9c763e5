// Package main Identity API
//
// @title           Identity API
// @version         1.0
// @description     Login, sign-up and password management for patients, counselors and doctors.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/medicalassistance/identity-core/internal/api"
	"github.com/medicalassistance/identity-core/internal/api/handler"
	"github.com/medicalassistance/identity-core/internal/core/service"
	mongodb "github.com/medicalassistance/identity-core/internal/infrastructure/db/mongo"
	redisdb "github.com/medicalassistance/identity-core/internal/infrastructure/db/redis"
	"github.com/medicalassistance/identity-core/internal/infrastructure/queue"
	"github.com/medicalassistance/identity-core/internal/infrastructure/security"
	"github.com/medicalassistance/identity-core/internal/pkg/config"
	"github.com/medicalassistance/identity-core/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "identity",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("identity service stopped with error")
	}
	log.Info().Msg("identity service stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var (
		mongoClient *mongo.Client
		db          *mongo.Database
		rdb         *redis.Client
	)

	err := connectWithRetry(ctx, log, "mongodb", func(ctx context.Context) (err error) {
		mongoClient, db, err = mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		return err
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	err = connectWithRetry(ctx, log, "redis", func(ctx context.Context) (err error) {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		return err
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	records := mongodb.NewPatientRecordRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, records); err != nil {
		return err
	}

	// --- Services ---
	tokens := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.ResetTokenTTL)
	statuses := service.NewRecordStatusService(records, redisdb.NewStatusCache(rdb), cfg.Status.CacheTTL, log)
	authService := service.NewAuthService(users, security.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, statuses, log)
	auditService := service.NewAuditService(mongodb.NewAuditRepository(db), log)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditService, log)
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		Tokens:      tokens,
		Audit:       dispatcher,
		Checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Log:           log,
		AuthRateLimit: cfg.Auth.RateLimit,
		AuthRateBurst: cfg.Auth.RateBurst,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			stopWorkers()
			return err
		}
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	stopWorkers()
	dispatcher.Wait()
	return nil
}

// connectWithRetry retries fn with exponential backoff while a dependency is
// still starting up.
func connectWithRetry(ctx context.Context, log zerolog.Logger, name string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("connection attempt failed")
			return retry.RetryableError(err)
		}
		return nil
	})
}
