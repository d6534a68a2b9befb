package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/drukmotors/dealership-backend/config"
	"github.com/drukmotors/dealership-backend/internal/app/controller"
	"github.com/drukmotors/dealership-backend/internal/app/service"
	"github.com/drukmotors/dealership-backend/internal/cache"
	"github.com/drukmotors/dealership-backend/internal/db"
	"github.com/drukmotors/dealership-backend/internal/middleware"
	"github.com/drukmotors/dealership-backend/internal/registry"
	"github.com/drukmotors/dealership-backend/internal/router"
	"github.com/drukmotors/dealership-backend/internal/scheduler"
	"github.com/drukmotors/dealership-backend/internal/storage"
	"github.com/drukmotors/dealership-backend/internal/store"
	"github.com/drukmotors/dealership-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting DRUK MOTORS Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
		"log_level":   logLevel,
	})

	reg := registry.New()

	// Select the backing store: real database or the in-memory backend
	var dataStore store.Store
	switch cfg.Database.Driver {
	case "postgres":
		if err := db.Initialize(&cfg.Database); err != nil {
			logger.Fatal("Failed to initialize database", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database connection", err)
			}
		}()

		if err := db.Migrate(reg); err != nil {
			logger.Fatal("Failed to run migrations", err)
		}
		dataStore = store.NewGorm(db.GetDB(), reg)
	case "memory":
		logger.Info("Using in-memory store", nil)
		dataStore = store.NewMemory(reg)
	default:
		logger.Fatal("Unknown database driver", fmt.Errorf("driver %q", cfg.Database.Driver))
	}

	if err := db.SeedDemoData(context.Background(), dataStore); err != nil {
		logger.Warn("Failed to seed demo data", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Page-cache invalidation hook, no-op without Redis
	var invalidator cache.Invalidator = cache.Noop{}
	if cfg.Redis.Host != "" {
		redisInvalidator, err := cache.NewRedisInvalidator(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer redisInvalidator.Close()
		invalidator = redisInvalidator
	}

	// Image storage, disabled without a bucket
	var images storage.ImageStorage = storage.Disabled{}
	if cfg.S3.Bucket != "" {
		images = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	}

	// Initialize services
	resourceService := service.NewResourceService(reg, dataStore, invalidator)
	authService := service.NewAuthService(
		dataStore,
		images,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	announcementService := service.NewAnnouncementService(dataStore, invalidator)
	appointmentService := service.NewAppointmentService(dataStore)
	catalogService := service.NewCatalogService(dataStore)
	contentService := service.NewContentService(dataStore, images, invalidator)
	statsService := service.NewStatsService(dataStore, announcementService)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	catalogController := controller.NewCatalogController(catalogService, announcementService)
	appointmentController := controller.NewAppointmentController(appointmentService)
	adminController := controller.NewAdminController(resourceService, statsService)
	managementController := controller.NewManagementController(announcementService, contentService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the daily stale-appointment sweep
	appointmentScheduler := scheduler.NewAppointmentScheduler(appointmentService)
	if err := appointmentScheduler.Start(); err != nil {
		logger.Error("Failed to start appointment scheduler", err)
	}
	defer appointmentScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		catalogController,
		appointmentController,
		adminController,
		managementController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
