package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/token-auth-service/internal/api/http"
	"github.com/spec-kit/token-auth-service/internal/api/http/handlers"
	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/config"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/observability"
	"github.com/spec-kit/token-auth-service/internal/persistence"
	"github.com/spec-kit/token-auth-service/internal/repository"
	"github.com/spec-kit/token-auth-service/internal/service"
	"github.com/spec-kit/token-auth-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	secret, err := auth.DecodeSecret(cfg.Auth.TokenSecret)
	if err != nil {
		logger.Fatal("invalid AUTH_TOKEN_SECRET", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewMemoryUserRepository()
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
	}
	if err := service.SeedUsers(ctx, userRepo, cfg.Auth.SeedUsers, cfg.Auth.BcryptCost, logger); err != nil {
		logger.Fatal("failed to seed users", zap.Error(err))
	}

	var limiter service.LoginLimiter = service.NoopLoginLimiter{}
	if redis.Enabled() {
		limiter = service.NewRedisLoginLimiter(redis.Client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow())
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, logger, metrics)
	worker.StartAuditWorker(auditService)

	codec := auth.NewTokenCodec(secret)
	loginService, err := service.NewLoginService(service.LoginDependencies{
		Users:      userRepo,
		Limiter:    limiter,
		Issuer:     codec,
		Dispatcher: dispatcher,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if err != nil {
		logger.Fatal("failed to init login service", zap.Error(err))
	}

	tokenFilter := auth.NewTokenFilter(auth.FilterConfig{
		Engine:    auth.NewEngine(codec, codec),
		Reject:    auth.DefaultRejectionHandler,
		Logger:    logger,
		Listeners: []auth.DecisionListener{auditService.ObserveDecision},
	})

	app := httptransport.NewApp(httptransport.ServerConfig{
		Name:    cfg.App.Name,
		Timeout: cfg.App.RequestTimeout(),
		Logger:  logger,
		Metrics: metrics,
	}, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Login:         handlers.NewLoginHandler(loginService),
		API:           handlers.NewAPIHandler(),
		TokenFilter:   tokenFilter,
		Authenticator: loginService,
		Reject:        auth.DefaultRejectionHandler,
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
