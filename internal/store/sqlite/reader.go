package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nfo-analytics/internal/model"
)

// ReadBars returns all bars for a token dated strictly before the cutoff,
// ascending by date. The cutoff excludes the still-open session's bar.
func (s *Store) ReadBars(ctx context.Context, token string, before time.Time) ([]model.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, date, open, high, low, close, volume
		FROM bars
		WHERE token = ? AND date < ?
		ORDER BY date ASC
	`, token, before.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("sqlite query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		var b model.PriceBar
		var date string
		if err := rows.Scan(&b.Token, &date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("sqlite scan bar: %w", err)
		}
		if b.Date, err = time.ParseInLocation(model.DateLayout, date, time.UTC); err != nil {
			return nil, fmt.Errorf("sqlite bar date %q: %w", date, err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// ReadBarAt returns the bar for one token on one date; ok is false when
// no bar exists.
func (s *Store) ReadBarAt(ctx context.Context, token string, date time.Time) (model.PriceBar, bool, error) {
	var b model.PriceBar
	var d string
	err := s.db.QueryRowContext(ctx, `
		SELECT token, date, open, high, low, close, volume
		FROM bars
		WHERE token = ? AND date = ?
	`, token, date.Format(model.DateLayout)).Scan(&b.Token, &d, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume)
	if err == sql.ErrNoRows {
		return model.PriceBar{}, false, nil
	}
	if err != nil {
		return model.PriceBar{}, false, fmt.Errorf("sqlite read bar: %w", err)
	}
	if b.Date, err = time.ParseInLocation(model.DateLayout, d, time.UTC); err != nil {
		return model.PriceBar{}, false, fmt.Errorf("sqlite bar date %q: %w", d, err)
	}
	return b, true, nil
}

// GetMetadata returns the instrument record for a token.
func (s *Store) GetMetadata(ctx context.Context, token string) (model.Instrument, error) {
	var in model.Instrument
	err := s.db.QueryRowContext(ctx, `
		SELECT token, symbol, name, expiry, strike, lot_size, instrument_type, token_type
		FROM instruments
		WHERE token = ?
	`, token).Scan(&in.Token, &in.Symbol, &in.Name, &in.Expiry, &in.Strike, &in.LotSize, &in.InstrumentType, &in.TokenType)
	if err != nil {
		return model.Instrument{}, fmt.Errorf("sqlite instrument %s: %w", token, err)
	}
	return in, nil
}

// ListByType returns all instruments with the given token type.
func (s *Store) ListByType(ctx context.Context, tokenType string) ([]model.Instrument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, symbol, name, expiry, strike, lot_size, instrument_type, token_type
		FROM instruments
		WHERE token_type = ?
		ORDER BY token
	`, tokenType)
	if err != nil {
		return nil, fmt.Errorf("sqlite list instruments: %w", err)
	}
	defer rows.Close()

	var out []model.Instrument
	for rows.Next() {
		var in model.Instrument
		if err := rows.Scan(&in.Token, &in.Symbol, &in.Name, &in.Expiry, &in.Strike, &in.LotSize, &in.InstrumentType, &in.TokenType); err != nil {
			return nil, fmt.Errorf("sqlite scan instrument: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// GetStrikes returns the distinct listed option strikes (paise) for an
// underlying name and expiry.
func (s *Store) GetStrikes(ctx context.Context, name, expiry string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT strike
		FROM instruments
		WHERE name = ? AND expiry = ? AND token_type = ? AND strike > 0
	`, name, expiry, model.TokenTypeOptions)
	if err != nil {
		return nil, fmt.Errorf("sqlite query strikes: %w", err)
	}
	defer rows.Close()

	var strikes []int64
	for rows.Next() {
		var st int64
		if err := rows.Scan(&st); err != nil {
			return nil, fmt.Errorf("sqlite scan strike: %w", err)
		}
		strikes = append(strikes, st)
	}
	return strikes, rows.Err()
}

// GetReferencePrice returns the latest futures LTP (paise) for an
// underlying; ok is false when no quote exists.
func (s *Store) GetReferencePrice(ctx context.Context, name string) (int64, bool, error) {
	var ltp int64
	err := s.db.QueryRowContext(ctx,
		`SELECT ltp FROM futures_quotes WHERE name = ?`, name,
	).Scan(&ltp)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("sqlite reference price %s: %w", name, err)
	}
	return ltp, true, nil
}

// LatestRow returns the most recent indicator row for a token; ok is
// false when the token has no computed rows yet.
func (s *Store) LatestRow(ctx context.Context, token string) (model.IndicatorRow, bool, error) {
	var (
		r     model.IndicatorRow
		date  string
		ratio sql.NullFloat64
		sig   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT token, date, sma_200, sma_50, sma_20, pct_from_sma_200,
		       high_21d, low_21d, high_52w, low_52w, all_time_high, all_time_low,
		       avg_volume_15d, volume_ratio, rsi_14,
		       macd, macd_signal, macd_hist,
		       bb_upper, bb_middle, bb_lower, signal
		FROM indicator_rows
		WHERE token = ?
		ORDER BY date DESC
		LIMIT 1
	`, token).Scan(
		&r.Token, &date, &r.SMA200, &r.SMA50, &r.SMA20, &r.PctFromSMA200,
		&r.High21D, &r.Low21D, &r.High52W, &r.Low52W, &r.AllTimeHigh, &r.AllTimeLow,
		&r.AvgVolume15D, &ratio, &r.RSI14,
		&r.MACD, &r.MACDSignal, &r.MACDHist,
		&r.BBUpper, &r.BBMiddle, &r.BBLower, &sig,
	)
	if err == sql.ErrNoRows {
		return model.IndicatorRow{}, false, nil
	}
	if err != nil {
		return model.IndicatorRow{}, false, fmt.Errorf("sqlite latest row %s: %w", token, err)
	}
	if r.Date, err = time.ParseInLocation(model.DateLayout, date, time.UTC); err != nil {
		return model.IndicatorRow{}, false, fmt.Errorf("sqlite row date %q: %w", date, err)
	}
	if ratio.Valid {
		r.VolumeRatio = &ratio.Float64
	}
	r.Signal = model.Signal(sig)
	return r, true, nil
}
