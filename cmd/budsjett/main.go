package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budsjett/internal/amqp"
	"budsjett/internal/cache"
	"budsjett/internal/cli"
	"budsjett/internal/engine"
	apphttp "budsjett/internal/http"
	"budsjett/internal/log"
	"budsjett/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap(log.ComponentApp)
	repo := cli.OpenRepository(logger, cfg.SQLiteDBPath)

	// An explicit PAYDAY wins over whatever is stored.
	if os.Getenv("PAYDAY") != "" {
		if err := repo.SetPayday(context.Background(), cfg.Payday); err != nil {
			logger.Error("failed to apply configured payday", "error", err, "payday", cfg.Payday)
			os.Exit(1)
		}
	}

	// AMQP is optional: without a broker the API still works, only the
	// export worker goes without notifications.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without change notifications", "error", err)
		} else {
			amqpClient = client
		}
	}

	reports := cache.NewLRUCache[engine.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(reports)
	cacheManager.StartCleanup(5 * time.Minute)

	svc := services.NewBudgetService(repo, amqpClient, reports, logger)
	defer svc.Close()

	srv := apphttp.NewServer(":"+cfg.Port, svc, logger)
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		cacheManager.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("starting budsjett server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
