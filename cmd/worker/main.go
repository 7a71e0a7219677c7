package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursecompass/internal/bootstrap"
	"coursecompass/internal/config"
	"coursecompass/internal/observability/logging"
	"coursecompass/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", workerMetrics.Handler())
		server := &http.Server{Addr: ":" + cfg.WorkerMetricsPort, Handler: mux}
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", "error", err)
		}
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSReindexSubject)
	err = app.Queue.SubscribeReindexRequested(ctx, func(handlerCtx context.Context) error {
		buildCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Minute)
		defer cancel()

		workerMetrics.StartRebuild()
		start := time.Now()
		buildErr := app.IndexUC.Rebuild(buildCtx)
		chunkCount := 0
		if snap := app.Snapshot.Load(); snap != nil {
			chunkCount = snap.ChunkCount()
		}
		workerMetrics.FinishRebuild("worker", time.Since(start), chunkCount, buildErr)

		if buildErr != nil {
			logger.Error("index rebuild failed", "error", buildErr)
			return buildErr
		}
		logger.Info("index rebuild complete", "chunks", chunkCount, "duration", time.Since(start).String())
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
