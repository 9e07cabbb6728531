package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"burnplan/internal/amqp"
	"burnplan/internal/backend"
	"burnplan/internal/budget"
	"burnplan/internal/cli"
	apphttp "burnplan/internal/http"
	"burnplan/internal/services"
	"burnplan/internal/weighting"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	// History backend (memory or sqlite)
	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backend.Config{
		Type:         backend.BackendType(cfg.HistoryBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize history backend", "error", err, "backend", cfg.HistoryBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}()
	}

	// External weighting service (optional)
	var weightingSvc budget.WeightingService
	if cfg.WeightingEnabled {
		weightingSvc = weighting.NewClient(cfg.WeightingURL, cfg.WeightingTimeout)
		logger.Info("External weighting enabled", "url", cfg.WeightingURL)
	}

	// AMQP publisher (optional, distribution works without it)
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	distributor := budget.NewDistributor(result.Backend, weightingSvc)
	service := services.NewBudgetService(distributor, publisher)
	defer func() {
		if err := service.Close(); err != nil {
			logger.Error("Service close error", "error", err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, service, result.Backend, cfg.FinancialMonthStartDay)
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting burnplan server",
		"port", cfg.Port,
		"backend", cfg.HistoryBackend,
		"month_start_day", cfg.FinancialMonthStartDay)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
