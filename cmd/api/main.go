package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ops-portal/internal/api/http"
	"github.com/spec-kit/ops-portal/internal/api/http/handlers"
	"github.com/spec-kit/ops-portal/internal/auth"
	"github.com/spec-kit/ops-portal/internal/config"
	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/observability"
	"github.com/spec-kit/ops-portal/internal/persistence"
	"github.com/spec-kit/ops-portal/internal/service"
	"github.com/spec-kit/ops-portal/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	categoryOwners, err := config.LoadCategoryOwners(cfg.Routing.CategoryOwnerMapPath)
	if err != nil {
		logger.Fatal("failed to load category owner map", zap.Error(err))
	}

	store := pg.Store()
	reportLoc := cfg.Report.Location()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: store.Users(),
		Logger:   logger,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		Store:      store,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	if cfg.Auth.BootstrapAdminPassword != "" {
		if _, err := directoryService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminID, cfg.Auth.BootstrapAdminPassword); err != nil {
			logger.Fatal("failed to bootstrap admin", zap.Error(err))
		}
	}
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:          store,
		Resolver:       service.NewOwnerResolver(categoryOwners),
		Dispatcher:     dispatcher,
		Logger:         logger,
		ReportLocation: reportLoc,
	})
	kitchenLogService := service.NewKitchenLogService(service.KitchenLogDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
		Location:   reportLoc,
	})
	photoService := service.NewOrderPhotoService(service.OrderPhotoDependencies{
		Store:    store,
		Logger:   logger,
		Location: reportLoc,
	})
	importService := service.NewImportService(service.ImportDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(dispatcher, store.Notifications(), logger)

	worker.StartNotificationWorker(dispatcher, notificationService,
		events.NewRedisPublisher(redis.UniversalClient(), cfg.Notification.RedisChannel))

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimitMB * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(directoryService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Staff:          handlers.NewStaffHandler(kitchenLogService, importService),
		Photos:         handlers.NewPhotosHandler(photoService),
		Imports:        handlers.NewImportsHandler(importService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
