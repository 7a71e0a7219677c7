package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "coursecompass/internal/adapters/http"
	"coursecompass/internal/bootstrap"
	"coursecompass/internal/config"
	"coursecompass/internal/observability/logging"
	"coursecompass/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("api")

	// Serve from the last successful build immediately; a cold database just
	// means /healthz stays degraded until the first reindex completes.
	if err := app.IndexUC.Reload(ctx); err != nil {
		logger.Warn("could not reload persisted index, waiting for first build", "error", err)
	}
	if snap := app.Snapshot.Load(); snap != nil {
		httpMetrics.SetSnapshotChunks(snap.ChunkCount())
	}

	// Reload the snapshot whenever the worker publishes a fresh index.
	go func() {
		err := app.Queue.SubscribeIndexPublished(ctx, func(handlerCtx context.Context, chunkCount int) error {
			logger.Info("new index published, reloading snapshot", "chunks", chunkCount)
			if err := app.IndexUC.Reload(handlerCtx); err != nil {
				return err
			}
			httpMetrics.SetSnapshotChunks(chunkCount)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("index published subscription failed", "error", err)
		}
	}()

	router := httpadapter.NewRouter(
		app.AnswerUC,
		app.RetrieveUC,
		app.Queue,
		app.Snapshot.Ready,
		httpMetrics,
		httpadapter.RouterConfig{
			RateLimitRPS:   cfg.APIRateLimitRPS,
			RateLimitBurst: cfg.APIRateLimitBurst,
			MaxInFlight:    cfg.APIMaxInFlight,
			Collection:     cfg.VectorCollection,
			ChunkCount: func() int {
				if snap := app.Snapshot.Load(); snap != nil {
					return snap.ChunkCount()
				}
				return 0
			},
		},
	)
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
