// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"macromaps/internal/api"
	"macromaps/internal/cache"
	"macromaps/internal/common/config"
	"macromaps/internal/common/database"
	"macromaps/internal/common/logger"
	"macromaps/internal/common/observability"
	"macromaps/internal/llm"
	"macromaps/internal/pipeline"
	"macromaps/internal/places"
	"macromaps/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting server...",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Repositories and clients ---
	restaurants := store.NewRestaurantRepository(pg.GetDB(), log)
	menus := store.NewMenuItemRepository(pg.GetDB(), log)
	scanCache := cache.NewScanCache(rdb, config.GetDuration(cfg.Scan.CacheTTL), log)

	model := llm.NewClient(&llm.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Retry:          llm.NewRetryPolicy(cfg.LLM.Retry),
		Classification: llm.NewTier("classification", cfg.LLM.Classification),
		Analysis:       llm.NewTier("analysis", cfg.LLM.Analysis),
		Aggregation:    llm.NewTier("aggregation", cfg.LLM.Aggregation),
	}, log)

	extractor := places.NewClient(&places.Config{
		BaseURL:      cfg.Scraper.BaseURL,
		Token:        cfg.Scraper.Token,
		ActorID:      cfg.Scraper.ActorID,
		MaxPlaces:    cfg.Scraper.MaxPlaces,
		MaxImages:    cfg.Scraper.MaxImages,
		PollInterval: config.GetDuration(cfg.Scraper.PollInterval),
		RunTimeout:   config.GetDuration(cfg.Scraper.RunTimeout),
	}, log)

	processor := pipeline.NewProcessor(restaurants, menus, model, &cfg.Pipeline, log)
	driver := pipeline.NewDriver(processor, restaurants, &cfg.Pipeline, obs, log)

	server := api.NewServer(cfg, restaurants, menus, extractor, driver, scanCache, log)

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: server.Router(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Server stopped gracefully")
}
