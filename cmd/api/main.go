package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/jabana-gov/case-service/internal/api/http"
	"github.com/jabana-gov/case-service/internal/api/http/handlers"
	"github.com/jabana-gov/case-service/internal/auth"
	"github.com/jabana-gov/case-service/internal/config"
	"github.com/jabana-gov/case-service/internal/events"
	"github.com/jabana-gov/case-service/internal/observability"
	"github.com/jabana-gov/case-service/internal/persistence"
	"github.com/jabana-gov/case-service/internal/reference"
	"github.com/jabana-gov/case-service/internal/repository"
	"github.com/jabana-gov/case-service/internal/service"
	"github.com/jabana-gov/case-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	caseRepo := repository.NewCaseRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	historyRepo := repository.NewCaseHistoryRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	references := reference.NewGenerator(redis.Client, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		StaffRepo:         staffRepo,
		PasswordResetRepo: resetRepo,
	})
	caseService := service.NewCaseService(service.CaseDependencies{
		CaseRepo:    caseRepo,
		NoteRepo:    noteRepo,
		HistoryRepo: historyRepo,
		StaffRepo:   staffRepo,
		References:  references,
		Dispatcher:  dispatcher,
	})
	trackingService := service.NewTrackingService(cfg.Tracking, service.TrackingDependencies{
		CaseRepo:    caseRepo,
		HistoryRepo: historyRepo,
		Cache:       redis.Client,
	}, logger)
	reportService := service.NewReportService(service.ReportDependencies{
		CaseRepo:  caseRepo,
		StaffRepo: staffRepo,
	})
	staffService := service.NewStaffService(*cfg, service.StaffDependencies{StaffRepo: staffRepo})
	notificationService := service.NewNotificationService(dispatcher, notificationRepo, logger, cfg.Notification)

	worker.StartNotificationWorker(dispatcher, notificationService, trackingService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, staffRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Staff:          handlers.NewStaffHandler(authService, staffService),
		Cases:          handlers.NewCasesHandler(caseService),
		StaffCases:     handlers.NewStaffCasesHandler(caseService),
		Track:          handlers.NewTrackHandler(trackingService),
		Reports:        handlers.NewReportsHandler(reportService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
		Tracking:       cfg.Tracking,
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
