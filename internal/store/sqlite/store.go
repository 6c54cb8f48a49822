// Package sqlite is the persistence layer for bars, the instrument master,
// computed indicator rows and the latest snapshot. It implements all the
// storage ports in internal/model.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the SQLite store.
type Config struct {
	DBPath string // path to the database file, e.g. "data/nfo.db"
}

// Store is a SQLite-backed implementation of the storage ports. It is
// opened once per batch run and passed into each component as an explicit
// handle — no ambient connection state.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Open opens the database with WAL mode and creates the schema.
func Open(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer; reads share the pool
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	slog.Info("sqlite opened", "path", cfg.DBPath)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			token  TEXT    NOT NULL,
			date   TEXT    NOT NULL,
			open   INTEGER NOT NULL,
			high   INTEGER NOT NULL,
			low    INTEGER NOT NULL,
			close  INTEGER NOT NULL,
			volume INTEGER NOT NULL,
			PRIMARY KEY (token, date)
		);

		CREATE TABLE IF NOT EXISTS instruments (
			token           TEXT PRIMARY KEY,
			symbol          TEXT NOT NULL,
			name            TEXT NOT NULL,
			expiry          TEXT NOT NULL DEFAULT '',
			strike          INTEGER NOT NULL DEFAULT 0,
			lot_size        INTEGER NOT NULL DEFAULT 1,
			instrument_type TEXT NOT NULL,
			token_type      TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_instruments_token_type ON instruments (token_type);
		CREATE INDEX IF NOT EXISTS idx_instruments_name_expiry ON instruments (name, expiry);

		CREATE TABLE IF NOT EXISTS indicator_rows (
			token            TEXT NOT NULL,
			date             TEXT NOT NULL,
			sma_200          REAL NOT NULL,
			sma_50           REAL NOT NULL,
			sma_20           REAL NOT NULL,
			pct_from_sma_200 REAL NOT NULL,
			high_21d         REAL NOT NULL,
			low_21d          REAL NOT NULL,
			high_52w         REAL NOT NULL,
			low_52w          REAL NOT NULL,
			all_time_high    REAL NOT NULL,
			all_time_low     REAL NOT NULL,
			avg_volume_15d   REAL NOT NULL,
			volume_ratio     REAL,
			rsi_14           REAL NOT NULL,
			macd             REAL NOT NULL,
			macd_signal      REAL NOT NULL,
			macd_hist        REAL NOT NULL,
			bb_upper         REAL NOT NULL,
			bb_middle        REAL NOT NULL,
			bb_lower         REAL NOT NULL,
			signal           TEXT NOT NULL,
			PRIMARY KEY (token, date)
		);

		CREATE TABLE IF NOT EXISTS latest_snapshot (
			token            TEXT PRIMARY KEY,
			symbol           TEXT NOT NULL,
			name             TEXT NOT NULL,
			lot_size         INTEGER NOT NULL,
			token_type       TEXT NOT NULL,
			date             TEXT NOT NULL,
			open             INTEGER NOT NULL,
			high             INTEGER NOT NULL,
			low              INTEGER NOT NULL,
			close            INTEGER NOT NULL,
			volume           INTEGER NOT NULL,
			sma_200          REAL NOT NULL,
			sma_50           REAL NOT NULL,
			sma_20           REAL NOT NULL,
			pct_from_sma_200 REAL NOT NULL,
			high_21d         REAL NOT NULL,
			low_21d          REAL NOT NULL,
			high_52w         REAL NOT NULL,
			low_52w          REAL NOT NULL,
			all_time_high    REAL NOT NULL,
			all_time_low     REAL NOT NULL,
			avg_volume_15d   REAL NOT NULL,
			volume_ratio     REAL,
			rsi_14           REAL NOT NULL,
			macd             REAL NOT NULL,
			macd_signal      REAL NOT NULL,
			macd_hist        REAL NOT NULL,
			bb_upper         REAL NOT NULL,
			bb_middle        REAL NOT NULL,
			bb_lower         REAL NOT NULL,
			signal           TEXT NOT NULL,
			updated_at       INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS futures_quotes (
			name  TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			ltp   INTEGER NOT NULL,
			ts    INTEGER NOT NULL
		);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
