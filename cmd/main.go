package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftpress/draftpress/internal/ai"
	"github.com/draftpress/draftpress/internal/api"
	"github.com/draftpress/draftpress/internal/cache"
	"github.com/draftpress/draftpress/internal/config"
	"github.com/draftpress/draftpress/internal/dedup"
	"github.com/draftpress/draftpress/internal/logger"
	"github.com/draftpress/draftpress/internal/media"
	"github.com/draftpress/draftpress/internal/middleware"
	"github.com/draftpress/draftpress/internal/news"
	"github.com/draftpress/draftpress/internal/pipeline"
	"github.com/draftpress/draftpress/internal/scheduler"
	"github.com/draftpress/draftpress/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting draftpress...")

	ctx := context.Background()

	// Document store
	st, err := store.New(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error closing MongoDB client")
		}
	}()

	// Seen-topic cache; fall back to the in-memory implementation when
	// Redis is unreachable so generation still works.
	var seen cache.SeenCache
	seen, err = cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory seen cache")
		seen = cache.NewMockSeenCache()
	}
	defer func() {
		if err := seen.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing seen cache")
		}
	}()

	// News aggregation, priority order: keyed API first, then JSON feed.
	aggregator := news.NewAggregator(
		news.NewAPISource(cfg.NewsAPIKey, "technology", cfg.NewsTimeout),
		news.NewFeedSource(cfg.NewsFeedURL, cfg.NewsTimeout),
	)

	// Generative client and parser
	generator := ai.NewClient(ai.ClientOptions{
		APIKey:      cfg.AIApiKey,
		Model:       cfg.AIModel,
		Timeout:     cfg.AITimeout,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
		MaxAttempts: cfg.AIMaxAttempts,
	})
	parser := ai.NewParser()

	// Duplicate detection over both collections
	detector := dedup.NewDetector(dedup.KeywordMatcher{}, st.Suggestions, st.Posts)

	// Featured images, with optional R2 mirroring
	images := media.NewImageClient(cfg.ImageAPIKey, cfg.ImageTimeout)
	var mirror pipeline.ImageMirror
	if cfg.R2Endpoint != "" {
		m, err := media.NewMirror(ctx, cfg.R2Endpoint, cfg.R2AccessKey, cfg.R2SecretKey, cfg.R2Bucket)
		if err != nil {
			log.Warn().Err(err).Msg("R2 mirror unavailable, images will not be mirrored")
		} else {
			mirror = m
		}
	}

	// Generation pipeline and suggestion lifecycle
	svc := pipeline.NewService(aggregator, generator, parser, detector, images, mirror, st.Suggestions, seen, pipeline.Options{
		DuplicateWindowHours: cfg.DuplicateWindowHours,
		BatchMaxPending:      cfg.BatchMaxPending,
		BatchMaxTopics:       cfg.BatchMaxTopics,
		SeenTTL:              cfg.SeenTTL,
	})
	lifecycle := pipeline.NewLifecycle(st.Suggestions, st.Posts, st.Users, pipeline.Principal{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
	})

	// Recurring auto-generation
	sched := scheduler.NewHandle(svc, cfg.SchedulerInterval, cfg.MaxPending)
	defer sched.Stop()

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	// Setup API routes
	handlers := api.NewHandlers(cfg, st, svc, lifecycle, sched)
	api.SetupRoutes(app, handlers, cfg.AdminAPIKey)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
