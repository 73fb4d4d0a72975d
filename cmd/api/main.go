package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/voicedesk/internal/api/http"
	"github.com/spec-kit/voicedesk/internal/api/http/handlers"
	"github.com/spec-kit/voicedesk/internal/auth"
	"github.com/spec-kit/voicedesk/internal/completion"
	"github.com/spec-kit/voicedesk/internal/config"
	"github.com/spec-kit/voicedesk/internal/events"
	"github.com/spec-kit/voicedesk/internal/observability"
	"github.com/spec-kit/voicedesk/internal/persistence"
	"github.com/spec-kit/voicedesk/internal/repository"
	"github.com/spec-kit/voicedesk/internal/service"
	"github.com/spec-kit/voicedesk/internal/ticketing"
	"github.com/spec-kit/voicedesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	companyRepo := repository.NewCompanyRepository(pool)
	voicemailRepo := repository.NewVoicemailRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	idempotency := repository.NewIdempotencyStore(redis.Client)

	completions := completion.NewClient(cfg.OpenAI, logger)
	ticketingClient := ticketing.NewClient(cfg.Jira, logger)

	triageService := service.NewTriageService(service.TriageDependencies{
		Completions:   completions,
		Ticketing:     ticketingClient,
		CompanyRepo:   companyRepo,
		VoicemailRepo: voicemailRepo,
		Idempotency:   idempotency,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
	})

	provisionWorker := worker.NewProvisionWorker(companyRepo, ticketingClient, dispatcher, logger)
	provisionWorker.Start(ctx)

	companyService := service.NewCompanyService(service.CompanyDependencies{
		CompanyRepo:   companyRepo,
		VoicemailRepo: voicemailRepo,
		Provisioner:   provisionWorker,
		QuotaConfig:   cfg.Quota,
		Logger:        logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(adminRepo, tokens, cfg.Auth)
	authMiddleware := auth.NewAuthMiddleware(tokens, adminRepo)

	notificationService := service.NewNotificationService(cfg.Notification, logger)
	worker.StartNotificationWorker(dispatcher, notificationService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Companies:      handlers.NewCompaniesHandler(companyService),
		Webhooks:       handlers.NewWebhookHandler(cfg.Webhook.Secret, triageService, companyService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	provisionWorker.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
