package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/status-page/internal/api/http"
	"github.com/spec-kit/status-page/internal/api/http/handlers"
	"github.com/spec-kit/status-page/internal/auth"
	"github.com/spec-kit/status-page/internal/config"
	"github.com/spec-kit/status-page/internal/events"
	"github.com/spec-kit/status-page/internal/observability"
	"github.com/spec-kit/status-page/internal/persistence"
	"github.com/spec-kit/status-page/internal/repository"
	"github.com/spec-kit/status-page/internal/service"
	"github.com/spec-kit/status-page/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var (
		denylist    auth.TokenDenylist
		redisPinger handlers.Pinger
	)
	if cfg.Auth.RevocationEnabled {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		denylist = repository.NewSessionDenylist(redis.Client)
		redisPinger = redis
	}

	if cfg.Auth.DemoMode && cfg.App.IsProduction() {
		logger.Warn("demo mode is enabled in production; demo credentials grant access")
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	codec := auth.NewTokenCodec(cfg.Auth.JWTSecret, logger)
	cookies := auth.NewSessionCookies(cfg.App.IsProduction())

	pool := pg.PoolHandle()
	orgRepo := repository.NewOrganizationRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Codec:      codec,
		UserRepo:   repository.NewUserRepository(pool),
		OrgRepo:    orgRepo,
		MemberRepo: memberRepo,
		Tx:         persistence.NewTxManager(pool),
		Denylist:   denylist,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, cfg.App, logger, metrics)

	orgHandler := handlers.NewOrganizationHandler(service.NewOrganizationService(orgRepo, memberRepo, logger))
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Gate:          auth.NewGate(codec, cookies, nil, logger),
		Resolver:      authService.Resolver(),
		Cookies:       cookies,
		Health:        handlers.NewHealthHandler(cfg, pg, redisPinger),
		Auth:          handlers.NewAuthHandler(authService, cookies),
		Dashboard:     handlers.NewDashboardHandler(),
		Organizations: orgHandler,
		Debug:         handlers.NewDebugHandler(metrics),
		Logger:        logger,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
