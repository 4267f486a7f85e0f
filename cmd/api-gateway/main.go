package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/noah-isme/exam-seating-api/api/swagger"
	"github.com/noah-isme/exam-seating-api/internal/events"
	"github.com/noah-isme/exam-seating-api/internal/handler"
	"github.com/noah-isme/exam-seating-api/internal/recognition"
	"github.com/noah-isme/exam-seating-api/internal/repository"
	"github.com/noah-isme/exam-seating-api/internal/router"
	"github.com/noah-isme/exam-seating-api/internal/service"
	"github.com/noah-isme/exam-seating-api/pkg/cache"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	"github.com/noah-isme/exam-seating-api/pkg/database"
	"github.com/noah-isme/exam-seating-api/pkg/jobs"
	"github.com/noah-isme/exam-seating-api/pkg/logger"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

// @title Exam Seating API
// @version 0.1.0
// @description Exam hall seat allocation with face-recognition assisted placement
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	hallRepo := repository.NewHallRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	var chartCache *repository.CacheRepository
	if cfg.Chart.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, chart cache disabled", "error", err)
			cfg.Chart.CacheEnabled = false
		} else {
			chartCache = repository.NewCacheRepository(redisClient, logr)
			defer chartCache.Close() //nolint:errcheck
		}
	}

	publisher, err := events.New(cfg.Events, logr)
	if err != nil {
		logr.Sugar().Warnw("event broker unavailable, events disabled", "error", err)
		publisher = events.NoopPublisher{}
	}
	defer publisher.Close() //nolint:errcheck

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "exam-seating-api",
	})
	studentService := service.NewStudentService(studentRepo, validate, logr, cfg.Photos)
	hallService := service.NewHallService(hallRepo, chartCache, validate, logr)

	seatingService := service.NewSeatingService(hallRepo, studentRepo, assignmentRepo, chartCache, publisher, validate, logr, cfg.Chart)

	recognizer := recognition.NewStub(recognition.StubConfig{
		Delay:       cfg.Recognition.Delay,
		SuccessRate: cfg.Recognition.SuccessRate,
	}, nil)
	recognitionService := service.NewRecognitionService(recognizer, studentRepo, assignmentRepo, seatingService, logr, cfg.Recognition)

	metricsService := service.NewMetricsService()

	fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportService := service.NewExportService(hallRepo, studentRepo, assignmentRepo, fileStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	exportWorker := service.NewExportWorker(exportJobRepo, exportService, cfg.Exports.WorkerRetries, logr)
	exportQueue := jobs.NewQueue("exports", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	exportJobService := service.NewExportJobService(exportJobRepo, hallRepo, exportQueue, exportService, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})
	if cfg.Exports.Enabled {
		exportQueue.Start(ctx)
		defer exportQueue.Stop()
		exportJobService.RecoverPendingJobs(ctx)
		exportJobService.StartCleanup(ctx)
	}

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Students:    handler.NewStudentHandler(studentService),
		Halls:       handler.NewHallHandler(hallService),
		Seating:     handler.NewSeatingHandler(seatingService, metricsService),
		Recognition: handler.NewRecognitionHandler(recognitionService, metricsService),
		Exports:     handler.NewExportHandler(exportJobService, metricsService),
		Metrics:     handler.NewMetricsHandler(metricsService),
	}

	engine := router.New(cfg, logr, authService, metricsService, userRepo, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: engine}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}
