package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/resume-sorter/internal/bootstrap"
	"github.com/kirillkom/resume-sorter/internal/config"
	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/observability/logging"
)

func main() {
	cfg, err := config.LoadWithFile()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	if cfg.NATSURL == "" {
		logger.Error("worker_requires_nats", "error", errors.New("NATS_URL is not set"))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker")
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSortSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Queue.SubscribeSortRequests(ctx, func(handlerCtx context.Context, req domain.SortRequest) error {
		sortCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Minute)
		defer cancel()
		_, err := app.Sorter.Sort(sortCtx, req)
		return err
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
