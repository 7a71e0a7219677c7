package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursecompass/internal/bootstrap"
	"coursecompass/internal/config"
	"coursecompass/internal/observability/logging"
)

// One-shot batch indexer: ingest, chunk, embed, index, exit. Useful for
// initial corpus loads and CI without a running worker.
func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("indexer", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	buildCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	start := time.Now()
	if err := app.IndexUC.Rebuild(buildCtx); err != nil {
		log.Fatalf("index rebuild failed: %v", err)
	}

	chunkCount := 0
	if snap := app.Snapshot.Load(); snap != nil {
		chunkCount = snap.ChunkCount()
	}
	logger.Info("index rebuild complete", "chunks", chunkCount, "duration", time.Since(start).String())
}
