package sqlite

import (
	"context"
	"fmt"
	"time"

	"nfo-analytics/internal/model"
)

// ReplaceRows atomically replaces the token's indicator rows over the new
// rows' date range: one transaction deletes the old range and inserts the
// new rows, so a crash mid-run never leaves a mixed-generation range.
// A no-op when rows is empty.
func (s *Store) ReplaceRows(ctx context.Context, token string, rows []model.IndicatorRow) error {
	if len(rows) == 0 {
		return nil
	}
	first := rows[0].Date.Format(model.DateLayout)
	last := rows[len(rows)-1].Date.Format(model.DateLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM indicator_rows WHERE token = ? AND date >= ? AND date <= ?`,
		token, first, last,
	); err != nil {
		return fmt.Errorf("sqlite delete rows %s: %w", token, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO indicator_rows (
			token, date, sma_200, sma_50, sma_20, pct_from_sma_200,
			high_21d, low_21d, high_52w, low_52w, all_time_high, all_time_low,
			avg_volume_15d, volume_ratio, rsi_14,
			macd, macd_signal, macd_hist,
			bb_upper, bb_middle, bb_lower, signal
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite prepare rows: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		r := &rows[i]
		if _, err := stmt.ExecContext(ctx,
			r.Token, r.Date.Format(model.DateLayout),
			r.SMA200, r.SMA50, r.SMA20, r.PctFromSMA200,
			r.High21D, r.Low21D, r.High52W, r.Low52W, r.AllTimeHigh, r.AllTimeLow,
			r.AvgVolume15D, nullable(r.VolumeRatio), r.RSI14,
			r.MACD, r.MACDSignal, r.MACDHist,
			r.BBUpper, r.BBMiddle, r.BBLower, string(r.Signal),
		); err != nil {
			return fmt.Errorf("sqlite insert row %s@%s: %w", r.Token, r.Date.Format(model.DateLayout), err)
		}
	}

	return tx.Commit()
}

// ReplaceSnapshot atomically replaces the entire snapshot set
// (delete-all-then-insert in one transaction).
func (s *Store) ReplaceSnapshot(ctx context.Context, snaps []model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM latest_snapshot`); err != nil {
		return fmt.Errorf("sqlite clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO latest_snapshot (
			token, symbol, name, lot_size, token_type,
			date, open, high, low, close, volume,
			sma_200, sma_50, sma_20, pct_from_sma_200,
			high_21d, low_21d, high_52w, low_52w, all_time_high, all_time_low,
			avg_volume_15d, volume_ratio, rsi_14,
			macd, macd_signal, macd_hist,
			bb_upper, bb_middle, bb_lower, signal, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite prepare snapshot: %w", err)
	}
	defer stmt.Close()

	for i := range snaps {
		sn := &snaps[i]
		if _, err := stmt.ExecContext(ctx,
			sn.Token, sn.Symbol, sn.Name, sn.LotSize, sn.TokenType,
			sn.Date.Format(model.DateLayout), sn.Open, sn.High, sn.Low, sn.Close, sn.Volume,
			sn.SMA200, sn.SMA50, sn.SMA20, sn.PctFromSMA200,
			sn.High21D, sn.Low21D, sn.High52W, sn.Low52W, sn.AllTimeHigh, sn.AllTimeLow,
			sn.AvgVolume15D, nullable(sn.VolumeRatio), sn.RSI14,
			sn.MACD, sn.MACDSignal, sn.MACDHist,
			sn.BBUpper, sn.BBMiddle, sn.BBLower, string(sn.Signal), sn.UpdatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("sqlite insert snapshot %s: %w", sn.Token, err)
		}
	}

	return tx.Commit()
}

// UpsertBars stores daily bars (acquisition collaborator boundary).
func (s *Store) UpsertBars(ctx context.Context, bars []model.PriceBar) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO bars (token, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite prepare bars: %w", err)
	}
	defer stmt.Close()

	for i := range bars {
		b := &bars[i]
		if _, err := stmt.ExecContext(ctx,
			b.Token, b.Date.Format(model.DateLayout), b.Open, b.High, b.Low, b.Close, b.Volume,
		); err != nil {
			return fmt.Errorf("sqlite insert bar %s@%s: %w", b.Token, b.Date.Format(model.DateLayout), err)
		}
	}
	return tx.Commit()
}

// UpsertInstruments stores instrument master records (metadata
// collaborator boundary).
func (s *Store) UpsertInstruments(ctx context.Context, instruments []model.Instrument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO instruments
			(token, symbol, name, expiry, strike, lot_size, instrument_type, token_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite prepare instruments: %w", err)
	}
	defer stmt.Close()

	for i := range instruments {
		in := &instruments[i]
		if _, err := stmt.ExecContext(ctx,
			in.Token, in.Symbol, in.Name, in.Expiry, in.Strike, in.LotSize, in.InstrumentType, in.TokenType,
		); err != nil {
			return fmt.Errorf("sqlite insert instrument %s: %w", in.Token, err)
		}
	}
	return tx.Commit()
}

// UpsertFuturesQuote stores the latest futures LTP for an underlying
// (quote collaborator boundary).
func (s *Store) UpsertFuturesQuote(ctx context.Context, name, token string, ltp int64, ts time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO futures_quotes (name, token, ltp, ts)
		VALUES (?, ?, ?, ?)
	`, name, token, ltp, ts.Unix())
	if err != nil {
		return fmt.Errorf("sqlite upsert quote %s: %w", name, err)
	}
	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
