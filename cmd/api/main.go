package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-workflow/internal/api/http"
	"github.com/spec-kit/ticket-workflow/internal/api/http/handlers"
	"github.com/spec-kit/ticket-workflow/internal/archive"
	"github.com/spec-kit/ticket-workflow/internal/auth"
	"github.com/spec-kit/ticket-workflow/internal/balancer"
	"github.com/spec-kit/ticket-workflow/internal/catalog"
	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/identity"
	"github.com/spec-kit/ticket-workflow/internal/observability"
	"github.com/spec-kit/ticket-workflow/internal/persistence"
	"github.com/spec-kit/ticket-workflow/internal/service"
	"github.com/spec-kit/ticket-workflow/internal/store"
	"github.com/spec-kit/ticket-workflow/internal/sweep"
	"github.com/spec-kit/ticket-workflow/internal/worker"
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

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	supportRoles := toRoleIDs(cfg.Catalog.SupportRoleIDs)
	adminRoles := toRoleIDs(cfg.Catalog.AdminRoleIDs)

	templates, err := catalog.LoadFile(cfg.Catalog.TemplateFile, supportRoles, adminRoles)
	if err != nil {
		logger.Fatal("failed to load template catalog", zap.Error(err))
	}

	directory, err := identity.LoadFile(cfg.Catalog.DirectoryFile)
	if err != nil {
		logger.Fatal("failed to load member directory", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	registry := store.New(cfg.Workflow.MaxTicketsPerUser, store.SystemClock{})

	workflow := service.NewWorkflowService(service.WorkflowDependencies{
		Catalog:    templates,
		Store:      registry,
		Balancer:   balancer.New(registry, directory),
		Directory:  directory,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		AdminRoles: adminRoles,
	})

	notifications := service.NewNotificationService(dispatcher, service.LogChannelPort{Logger: logger}, metrics, logger, cfg.Notification)

	var archiver *archive.Archiver
	if pg.PoolHandle() != nil || redis.Client != nil {
		archiver = archive.NewArchiver(pg.PoolHandle(), redis.Client, logger)
	}
	worker.StartSubscribers(dispatcher, notifications, archiver)

	scheduler := sweep.NewScheduler(logger)
	slaMonitor := sweep.NewSLAMonitor(registry, store.SystemClock{}, dispatcher, cfg.Workflow.Escalation, logger)
	if err := scheduler.Register("sla-scan", cfg.Workflow.SLAScanSchedule, slaMonitor); err != nil {
		logger.Fatal("failed to schedule sla scan", zap.Error(err))
	}
	autoClose := sweep.NewAutoCloseSweeper(registry, store.SystemClock{}, workflow, cfg.Workflow.AutoCloseCutoff(), logger)
	if err := scheduler.Register("auto-close", cfg.Workflow.AutoCloseSchedule, autoClose); err != nil {
		logger.Fatal("failed to schedule auto close", zap.Error(err))
	}
	scheduler.Start()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, directory)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	staffRoles := append(append([]domain.RoleID{}, supportRoles...), adminRoles...)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(workflow, archiver),
		Stats:          handlers.NewStatsHandler(workflow),
		AuthMiddleware: authMiddleware,
		StaffRoles:     staffRoles,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	scheduler.Stop()
	_ = app.Shutdown()
}

func toRoleIDs(raw []string) []domain.RoleID {
	out := make([]domain.RoleID, 0, len(raw))
	for _, id := range raw {
		out = append(out, domain.RoleID(id))
	}
	return out
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
