package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"arthasync/internal/cli"
	"arthasync/internal/log"
	"arthasync/internal/metrics"
	"arthasync/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting arthasync-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Invalid worker configuration", log.FieldError, err.Error(), "error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	res := cli.InitBackend(startCtx, logger, cfg, true)
	cancelStart()

	watcher := worker.NewBudgetWatcher(res.Store, logger)

	var metricsSrv *http.Server
	if cfg.WorkerMetricsEnabled() {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", metrics.Handler())
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		metricsSrv = &http.Server{
			Addr:              ":" + cfg.WorkerMetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", log.FieldError, err.Error())
			}
		}()
	}

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err.Error())
		}
	})

	// Populate the gauge before the first event arrives
	if err := watcher.StartupCheck(ctx); err != nil {
		logger.Error("Startup budget check failed", log.FieldError, err.Error())
	}

	go func() {
		if err := res.Events.ConsumeChanges(ctx, watcher.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Event consumption stopped", log.FieldError, err.Error())
		}
	}()

	logger.Info("Worker consuming change events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"metrics_port", cfg.WorkerMetricsPort)
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
