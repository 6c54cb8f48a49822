package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nfo-analytics/config"
	"nfo-analytics/internal/logger"
	"nfo-analytics/internal/metrics"
	"nfo-analytics/internal/scanner"
	redisstore "nfo-analytics/internal/store/redis"
	sqlitestore "nfo-analytics/internal/store/sqlite"
)

func main() {
	cfg := config.Load()
	logger.Init("scanner", logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutdown signal received")
		cancel()
	}()

	store, err := sqlitestore.Open(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		slog.Error("sqlite init failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	// Redis mirror is optional: the serving layer falls back to SQLite
	// when the mirror is down.
	var mirror scanner.Mirror
	pub, err := redisstore.NewPublisher(redisstore.PublisherConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.SnapshotTTL,
	})
	if err != nil {
		slog.Warn("redis unavailable, snapshot mirror disabled", "err", err)
	} else {
		mirror = pub
		defer pub.Close()
	}

	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	health.CheckSQLite(ctx, store.DB())
	if pub != nil {
		health.CheckRedis(ctx, pub.Client())
	}
	srv := metrics.NewServer(cfg.MetricsAddr, health)
	srv.Start()

	svc := scanner.New(
		scanner.Config{Workers: cfg.Workers},
		store, store, store, store, store,
		mirror,
		prom,
	)

	runID := logger.NewRunID(time.Now())
	runCtx := logger.WithRunID(ctx, runID)
	slog.Info("starting batch run", "run_id", runID)

	summary, err := svc.Run(runCtx)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("batch run failed", "run_id", runID, "err", err)
		os.Exit(1)
	}
	health.MarkRunComplete(summary.FinishedAt)

	// Give scrapers a moment, then shut the metrics server down cleanly.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
}
