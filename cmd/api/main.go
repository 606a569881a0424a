package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/modguard/internal/api"
	"github.com/timmy/modguard/internal/api/middleware"
	"github.com/timmy/modguard/internal/config"
	"github.com/timmy/modguard/internal/logger"
	"github.com/timmy/modguard/internal/repository"
	"github.com/timmy/modguard/internal/service"
	"github.com/timmy/modguard/internal/storage"
)

func main() {
	// CONFIG_PATH overrides the default configs/config.yaml lookup
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = appLogger.WithContext(ctx)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	lexiconRepo := repository.NewLexiconRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	var objectStorage storage.ObjectStorage
	if cfg.Storage.Enabled() {
		objectStorage, err = storage.NewStorage(&cfg.Storage)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
	}

	lexiconService := service.NewLexiconService(lexiconRepo, objectStorage)
	if cfg.Lexicon.SeedOnStart {
		if _, err := lexiconService.Seed(ctx, cfg.Lexicon.SeedWords); err != nil {
			appLogger.WithError(err).Fatal("Failed to seed lexicon")
		}
	}
	if cfg.Lexicon.SeedObject != "" {
		if objectStorage == nil {
			appLogger.Warn("lexicon.seed_object is set but storage is not configured, skipping")
		} else if _, err := lexiconService.ImportObject(ctx, cfg.Lexicon.SeedObject); errors.Is(err, service.ErrWordListNotFound) {
			appLogger.WithField("key", cfg.Lexicon.SeedObject).Warn("lexicon.seed_object does not exist, skipping")
		} else if err != nil {
			appLogger.WithError(err).Warn("Failed to import lexicon from object storage")
		}
	}

	llmClient := service.NewLLMClientFromConfig(&cfg.AI)
	if llmClient.IsEnabled() {
		appLogger.WithFields(logger.Fields{
			logger.FieldModel: llmClient.GetModel(),
		}).Info("Classifier enabled")
	} else {
		appLogger.Warn("No AI API key configured, classifier calls will fall back to neutral results")
	}

	classifier := service.NewClassifier(llmClient, cfg.AI.Timeout)
	profanityService := service.NewProfanityService(lexiconRepo, classifier)
	sentimentService := service.NewSentimentService(classifier)
	moderationService := service.NewModerationService(profanityService, sentimentService, submissionRepo)

	var limiter *middleware.IPRateLimiter
	if cfg.Server.RateLimit.RPS > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
		go limiter.Run(ctx, 10*time.Minute)
	}

	router := api.SetupRouter(api.Services{
		Profanity:  profanityService,
		Moderation: moderationService,
	}, cfg.Server, limiter, appLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	appLogger.Info("Server exited")
}
