package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"divebooks/internal/amqp"
	"divebooks/internal/cli"
	applog "divebooks/internal/log"
	gsheet "divebooks/internal/sheets/google"
	"divebooks/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting sync-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("Sync-worker requires GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}
	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, sheetsClient)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch rows whose events were lost while the worker was down.
	logger.Info("Performing startup export check...")
	if count, err := syncWorker.ExportAll(ctx); err != nil {
		logger.Error("Startup export failed", "error", err)
	} else {
		logger.Info("Startup export complete", "rows_exported", count)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.Consume(gctx, syncWorker.HandleEvent)
	})

	// Periodic full export as a safety net behind the event stream.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if count, err := syncWorker.ExportAll(gctx); err != nil {
					logger.Error("Periodic export failed", "error", err)
				} else {
					logger.Info("Periodic export complete", "rows_exported", count)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Sync-worker stopped with error", "error", err)
	}
	cli.WaitForShutdown(ctx, done)
}
