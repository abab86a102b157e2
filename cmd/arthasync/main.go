package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"arthasync/internal/advisor"
	"arthasync/internal/app"
	"arthasync/internal/cache"
	"arthasync/internal/cli"
	apphttp "arthasync/internal/http"
	"arthasync/internal/log"
	"arthasync/internal/metrics"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	res := cli.InitBackend(startCtx, logger, cfg, false)

	gen, err := advisor.NewGenerator(startCtx, advisor.Config{
		Provider: cfg.AdviceProvider,
		APIKey:   cfg.AdviceAPIKey,
		Model:    cfg.AdviceModel,
		BaseURL:  cfg.AdviceBaseURL,
	})
	switch {
	case errors.Is(err, advisor.ErrNotConfigured):
		logger.Info("Advice disabled - no API key provided")
	case err != nil:
		logger.Error("Failed to initialize advice provider", log.FieldError, err.Error(), log.FieldProvider, cfg.AdviceProvider)
		os.Exit(1)
	default:
		logger.Info("Advice provider initialized", log.FieldProvider, cfg.AdviceProvider)
	}

	adv := advisor.New(gen, advisor.Options{
		Timeout:  cfg.AdviceTimeout,
		CacheTTL: cfg.AdviceCacheTTL,
		Logger:   logger,
	})

	caches := cache.NewManager(logger)
	caches.Register(adv.Cache())
	caches.StartCleanup(cacheCleanupInterval)
	metrics.RegisterCache("advice", adv.CacheStats)

	opts := app.Options{Adviser: adv, Logger: logger}
	if res.Events != nil {
		opts.Publisher = res.Events
	}
	ctrl := app.New(res.Store, opts)
	if err := ctrl.Load(startCtx); err != nil {
		logger.Error("Failed to load data", log.FieldError, err.Error(), "error_type", log.ErrorTypeDatabase)
		_ = res.Cleanup()
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, ctrl, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              res.Store.Ping,
		Metrics:            metrics.Handler(),
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err.Error())
		}
	})

	logger.Info("Starting arthasync server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", res.Events != nil,
		"advice", adv.Enabled(),
		"locked", ctrl.IsLocked())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
