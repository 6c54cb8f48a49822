package model

import (
	"context"
	"time"
)

// ── Storage Port Interfaces ──
// These interfaces decouple the analytics core from concrete storage
// implementations (SQLite, Redis). The core never holds ambient connection
// state: a handle implementing these ports is passed in per run.

// BarReader reads finalized daily bars.
type BarReader interface {
	// ReadBars returns all bars for an instrument with Date strictly before
	// the cutoff, ordered ascending by date. The cutoff excludes the bar of
	// the still-open trading session.
	ReadBars(ctx context.Context, token string, before time.Time) ([]PriceBar, error)

	// ReadBarAt returns the bar for an instrument on one specific date.
	// ok is false when no bar exists for that date.
	ReadBarAt(ctx context.Context, token string, date time.Time) (bar PriceBar, ok bool, err error)
}

// InstrumentReader reads the tradable-instrument master.
type InstrumentReader interface {
	// GetMetadata returns the instrument record for a token.
	GetMetadata(ctx context.Context, token string) (Instrument, error)

	// ListByType returns all instruments with the given token type
	// (SPOT, FUTURES or OPTIONS).
	ListByType(ctx context.Context, tokenType string) ([]Instrument, error)

	// GetStrikes returns the distinct listed strikes (paise) for an
	// underlying name and expiry.
	GetStrikes(ctx context.Context, name, expiry string) ([]int64, error)

	// GetReferencePrice returns the latest futures last-traded price (paise)
	// for an underlying name. ok is false when no quote is available.
	GetReferencePrice(ctx context.Context, name string) (ltp int64, ok bool, err error)
}

// IndicatorWriter persists computed indicator rows.
type IndicatorWriter interface {
	// ReplaceRows atomically deletes the instrument's previously computed
	// rows covering the new rows' date range and inserts the new rows as a
	// single unit. A crash mid-run must never leave a mixed-generation range.
	ReplaceRows(ctx context.Context, token string, rows []IndicatorRow) error
}

// IndicatorReader reads back computed indicator rows.
type IndicatorReader interface {
	// LatestRow returns the most recent indicator row for an instrument.
	// ok is false when the instrument has no computed rows yet.
	LatestRow(ctx context.Context, token string) (row IndicatorRow, ok bool, err error)
}

// SnapshotWriter persists the aggregated snapshot set.
type SnapshotWriter interface {
	// ReplaceSnapshot atomically clears the previous snapshot set and
	// inserts the new one (delete-all-then-insert, never delta-merge).
	ReplaceSnapshot(ctx context.Context, snaps []Snapshot) error
}
