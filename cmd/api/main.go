package main

import (
	"context"
	"log"
	"time"

	"github.com/AssetDocs/legacylocker/config"
	"github.com/AssetDocs/legacylocker/internal/handler"
	"github.com/AssetDocs/legacylocker/internal/notify"
	lockerredis "github.com/AssetDocs/legacylocker/internal/redis"
	"github.com/AssetDocs/legacylocker/internal/repository"
	"github.com/AssetDocs/legacylocker/internal/scanner"
	"github.com/AssetDocs/legacylocker/internal/server"
	"github.com/AssetDocs/legacylocker/internal/services"
	"github.com/AssetDocs/legacylocker/internal/storage"
	"github.com/AssetDocs/legacylocker/pkg/database"
	"github.com/AssetDocs/legacylocker/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	// Connect to Database
	database.Connect(cfg)

	if err := database.ApplyRawMigrations("migrations"); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	lockerRepo := repository.NewLockerRepository(database.DB)
	requestRepo := repository.NewRecoveryRequestRepository(database.DB)
	profileRepo := repository.NewProfileRepository(database.DB)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.EmailAPIKey != "" {
		notifier = notify.NewResendSender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom)
	} else {
		l.Infof("No email API key configured, notifications disabled")
	}

	var docStore *storage.Client
	if cfg.S3Bucket != "" {
		var err error
		docStore, err = storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PresignTTL: 15 * time.Minute,
		})
		if err != nil {
			log.Fatalf("Failed to initialize document storage: %v", err)
		}
	}

	lockerService := services.NewLockerService(lockerRepo)
	recoveryService := services.NewRecoveryService(database.DB, lockerRepo, requestRepo, profileRepo, notifier, l)
	documentService := services.NewDocumentService(docStore)
	verifier := services.NewTokenVerifier(cfg.JWTSecret)

	var limiter *lockerredis.RateLimiter
	var scanLock scanner.RunLock = scanner.NoLock{}
	if cfg.RedisHost != "" {
		lockerredis.Initialize(lockerredis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		limiter = lockerredis.NewRateLimiter(lockerredis.GetClient(), lockerredis.DefaultRateLimitConfig())
		scanLock = lockerredis.NewScanLock(lockerredis.GetClient(), 10*time.Minute)
	}

	processor := scanner.NewProcessor(lockerRepo, requestRepo, profileRepo, notifier, l, cfg.ScanBatchSize)
	runner := scanner.NewRunner(processor, scanLock, l)

	scanCtx, cancelScan := context.WithCancel(context.Background())
	defer cancelScan()
	if err := runner.Start(scanCtx, cfg.ScanSchedule); err != nil {
		log.Fatalf("Failed to start expiry scanner: %v", err)
	}
	defer runner.Stop()

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Locker:   handler.NewLockerHandler(lockerService),
		Recovery: handler.NewRecoveryHandler(recoveryService, documentService),
		Scan:     handler.NewScanHandler(runner),
	}, verifier, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
