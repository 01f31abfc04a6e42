package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/controller"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/db"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/router"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/scheduler"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/storage"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/websocket"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/docref"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/document"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/minting"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/redis"
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

	logger.Info("Starting Antonio Bellaova platform server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and ensure the admin account exists
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.SeedAdmin(&cfg.Atelier); err != nil {
		logger.Warn("Failed to seed admin account", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis backs the token blacklist. The server degrades to
	// stateless logout when it is unreachable.
	useRedis := true
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
		useRedis = false
	} else {
		defer redis.Close()
	}

	// WebSocket hub for the live event feed
	hub := websocket.NewHub()
	go hub.Run()

	// Document pipeline
	refs := docref.NewUUIDGenerator()
	renderer := document.NewHTMLRenderer()
	minter := minting.NewSimulatedMinter(2 * time.Second)

	var archiver storage.Archiver
	if cfg.Archive.Enabled {
		archiver = storage.NewS3Archive(&cfg.Archive)
	} else {
		archiver = storage.NoopArchive{}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	masterpieceRepo := repository.NewMasterpieceRepository(db.GetDB())
	workflowRepo := repository.NewWorkflowRepository(db.GetDB())
	paymentRepo := repository.NewPaymentRepository(db.GetDB())
	contractRepo := repository.NewContractRepository(db.GetDB())
	escrowRepo := repository.NewEscrowRepository(db.GetDB())
	certificateRepo := repository.NewCertificateRepository(db.GetDB())
	provenanceRepo := repository.NewProvenanceRepository(db.GetDB())
	auctionRepo := repository.NewAuctionRepository(db.GetDB())
	resaleRepo := repository.NewResaleRepository(db.GetDB())
	fractionalRepo := repository.NewFractionalRepository(db.GetDB())
	notificationRepo := repository.NewNotificationRepository(db.GetDB())
	logisticsRepo := repository.NewLogisticsRepository(db.GetDB())
	crmRepo := repository.NewCRMRepository(db.GetDB())

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, hub)
	authService := service.NewAuthService(userRepo, &cfg.JWT, useRedis)
	rarityService := service.NewRarityService(masterpieceRepo, provenanceRepo, auctionRepo)
	masterpieceService := service.NewMasterpieceService(masterpieceRepo, provenanceRepo, rarityService, &cfg.Policy, hub)
	workflowService := service.NewWorkflowService(
		db.GetDB(),
		workflowRepo,
		masterpieceRepo,
		paymentRepo,
		contractRepo,
		escrowRepo,
		certificateRepo,
		provenanceRepo,
		fractionalRepo,
		userRepo,
		notificationService,
		refs,
		renderer,
		minter,
		archiver,
		hub,
		cfg,
	)
	escrowService := service.NewEscrowService(db.GetDB(), escrowRepo, workflowRepo, notificationService)
	contractService := service.NewContractService(contractRepo, provenanceRepo, authService, notificationService, hub)
	certificateService := service.NewCertificateService(certificateRepo, masterpieceRepo)
	auctionService := service.NewAuctionService(db.GetDB(), auctionRepo, masterpieceRepo, rarityService, notificationService, hub)
	resaleService := service.NewResaleService(
		db.GetDB(),
		resaleRepo,
		masterpieceRepo,
		escrowRepo,
		certificateRepo,
		fractionalRepo,
		provenanceRepo,
		userRepo,
		notificationService,
		refs,
		renderer,
		hub,
		cfg,
	)
	fractionalService := service.NewFractionalService(db.GetDB(), fractionalRepo, masterpieceRepo, provenanceRepo)
	logisticsService := service.NewLogisticsService(logisticsRepo, workflowRepo, notificationService, hub)
	crmService := service.NewCRMService(crmRepo, userRepo, notificationService)
	analyticsService := service.NewAnalyticsService(db.GetDB(), fractionalRepo, provenanceRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	masterpieceController := controller.NewMasterpieceController(masterpieceService)
	workflowController := controller.NewWorkflowController(workflowService)
	escrowController := controller.NewEscrowController(escrowService)
	contractController := controller.NewContractController(contractService)
	certificateController := controller.NewCertificateController(certificateService)
	auctionController := controller.NewAuctionController(auctionService)
	resaleController := controller.NewResaleController(resaleService)
	fractionalController := controller.NewFractionalController(fractionalService)
	notificationController := controller.NewNotificationController(notificationService)
	logisticsController := controller.NewLogisticsController(logisticsService)
	crmController := controller.NewCRMController(crmService)
	analyticsController := controller.NewAnalyticsController(analyticsService)
	wsController := controller.NewWebSocketController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, useRedis)

	// Periodic jobs
	sched := scheduler.New(escrowService, &cfg.Escrow)
	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}

	// Setup router
	r := router.NewRouter(
		authController,
		masterpieceController,
		workflowController,
		escrowController,
		contractController,
		certificateController,
		auctionController,
		resaleController,
		fractionalController,
		notificationController,
		logisticsController,
		crmController,
		analyticsController,
		wsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced server shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
