package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/bloomcove/booking-api/api/swagger"
	"github.com/bloomcove/booking-api/internal/handler"
	"github.com/bloomcove/booking-api/internal/repository"
	"github.com/bloomcove/booking-api/internal/service"
	"github.com/bloomcove/booking-api/pkg/cache"
	"github.com/bloomcove/booking-api/pkg/config"
	"github.com/bloomcove/booking-api/pkg/database"
	"github.com/bloomcove/booking-api/pkg/export"
	"github.com/bloomcove/booking-api/pkg/jobs"
	"github.com/bloomcove/booking-api/pkg/logger"
	"github.com/bloomcove/booking-api/pkg/storage"
)

// @title Bloomcove Booking API
// @version 1.0.0
// @description Recurring availability, calendar projection and conflict-checked bookings for wellness studios.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	userRepo := repository.NewUserRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Availability.CacheTTL, logr, cfg.Availability.CacheEnabled)
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "bloomcove-booking-api",
		SingleSession:      cfg.JWT.SingleSession,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	staffService := service.NewStaffService(staffRepo, validate, logr)
	offeringService := service.NewOfferingService(offeringRepo, validate, logr)
	slotService := service.NewSlotService(slotRepo, staffRepo, userRepo, cacheService, validate, logr)
	bookingService := service.NewBookingService(bookingRepo, slotRepo, offeringRepo, userRepo, cacheService, metricsService, validate, logr)
	availabilityService := service.NewAvailabilityService(slotRepo, bookingRepo, staffRepo, cacheService, logr)

	deps := &apiDeps{
		cfg:            cfg,
		authService:    authService,
		metricsService: metricsService,
		userRepo:       userRepo,
		auth:           handler.NewAuthHandler(authService),
		users:          handler.NewUserHandler(userService),
		staff:          handler.NewStaffHandler(staffService),
		offerings:      handler.NewOfferingHandler(offeringService),
		slots:          handler.NewSlotHandler(slotService),
		bookings:       handler.NewBookingHandler(bookingService),
		availability:   handler.NewAvailabilityHandler(availabilityService),
		metrics:        handler.NewMetricsHandler(metricsService),
	}

	ctx := context.Background()

	if cfg.Reports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err, "dir", cfg.Reports.StorageDir)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportService := service.NewExportService(
			bookingRepo, slotRepo, staffRepo, offeringRepo,
			fileStore, signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
			logr,
			export.NewCSVExporter(), export.NewPDFExporter(),
		)

		worker := service.NewReportWorker(reportRepo, exportService, cfg.Reports.WorkerRetries, logr)
		queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			BufferSize: 64,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		reportService := service.NewReportService(reportRepo, queue, exportService, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportService.RecoverPendingJobs(ctx)
		reportService.StartCleanup(ctx)

		deps.reports = handler.NewReportHandler(reportService, logr)
	}

	r := newRouter(cfg, logr)
	registerRoutes(r, deps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
