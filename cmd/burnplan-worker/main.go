package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"burnplan/internal/cli"
	"burnplan/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting burnplan-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// Snapshots always go to SQLite, the worker is their only writer.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshotWorker := worker.NewSnapshotWorker(repo)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return snapshotWorker.Run(gctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
