// Command strikes prints the at-the-money strike window for each
// futures underlying in the instrument master, anchored on the latest
// futures price. The output is the watchlist input for the options
// subscription side.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"nfo-analytics/config"
	"nfo-analytics/internal/logger"
	"nfo-analytics/internal/model"
	"nfo-analytics/internal/strike"
	sqlitestore "nfo-analytics/internal/store/sqlite"
)

type atmWindow struct {
	Name     string    `json:"name"`
	Expiry   string    `json:"expiry"`
	Interval float64   `json:"interval"`
	Strikes  []float64 `json:"strikes"`
}

func main() {
	cfg := config.Load()
	logger.Init("strikes", logger.ParseLevel(cfg.LogLevel))
	ctx := context.Background()

	store, err := sqlitestore.Open(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		slog.Error("sqlite init failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	futures, err := store.ListByType(ctx, model.TokenTypeFutures)
	if err != nil {
		slog.Error("list futures failed", "err", err)
		os.Exit(1)
	}

	svc := strike.NewService(store)
	enc := json.NewEncoder(os.Stdout)

	var failed int
	for _, fut := range futures {
		interval, err := svc.EstimateInterval(ctx, fut.Name, fut.Expiry)
		if err != nil {
			if errors.Is(err, strike.ErrInsufficientStrikes) {
				slog.Debug("no strike ladder listed", "name", fut.Name, "expiry", fut.Expiry)
				continue
			}
			slog.Error("interval estimation failed", "name", fut.Name, "err", err)
			failed++
			continue
		}

		strikes, err := svc.SelectATM(ctx, fut.Name, fut.Expiry, cfg.ATMBand)
		if err != nil {
			if errors.Is(err, strike.ErrNoReferencePrice) {
				slog.Debug("no futures quote yet", "name", fut.Name)
				continue
			}
			slog.Error("atm selection failed", "name", fut.Name, "err", err)
			failed++
			continue
		}

		enc.Encode(atmWindow{
			Name:     fut.Name,
			Expiry:   fut.Expiry,
			Interval: interval,
			Strikes:  strikes,
		})
	}

	if failed > 0 {
		slog.Warn("strike windows incomplete", "failed", failed)
		os.Exit(1)
	}
}
