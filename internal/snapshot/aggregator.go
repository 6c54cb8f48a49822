// Package snapshot joins the latest computed indicator row per instrument
// with the matching daily bar and instrument metadata into one flat
// read-optimized record set.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"nfo-analytics/internal/model"
)

// Aggregator builds the snapshot set from storage reads. It writes nothing
// itself; the caller hands the result to a SnapshotWriter for an atomic
// clear-then-insert replace.
type Aggregator struct {
	bars model.BarReader
	rows model.IndicatorReader
}

// New creates an Aggregator over bar and indicator readers.
func New(bars model.BarReader, rows model.IndicatorReader) *Aggregator {
	return &Aggregator{bars: bars, rows: rows}
}

// Build returns one Snapshot per candidate instrument that passes the
// filter and has at least one computed indicator row. Instruments without
// rows yet (or whose latest row has no matching bar) are an expected
// transient state: they are omitted and counted in skipped, never fatal.
func (a *Aggregator) Build(ctx context.Context, candidates []model.Instrument, filter func(model.Instrument) bool, now time.Time) (snaps []model.Snapshot, skipped int, err error) {
	for _, inst := range candidates {
		if filter != nil && !filter(inst) {
			continue
		}

		row, ok, err := a.rows.LatestRow(ctx, inst.Token)
		if err != nil {
			return nil, skipped, fmt.Errorf("latest row %s: %w", inst.Token, err)
		}
		if !ok {
			skipped++
			continue
		}

		bar, ok, err := a.bars.ReadBarAt(ctx, inst.Token, row.Date)
		if err != nil {
			return nil, skipped, fmt.Errorf("bar %s@%s: %w", inst.Token, row.Date.Format(model.DateLayout), err)
		}
		if !ok {
			// Row without its source bar — stale generation, skip
			skipped++
			continue
		}

		snaps = append(snaps, model.Snapshot{
			Token:     inst.Token,
			Symbol:    inst.Symbol,
			Name:      inst.Name,
			LotSize:   inst.LotSize,
			TokenType: inst.TokenType,

			Date:   bar.Date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,

			SMA200:        row.SMA200,
			SMA50:         row.SMA50,
			SMA20:         row.SMA20,
			PctFromSMA200: row.PctFromSMA200,
			High21D:       row.High21D,
			Low21D:        row.Low21D,
			High52W:       row.High52W,
			Low52W:        row.Low52W,
			AllTimeHigh:   row.AllTimeHigh,
			AllTimeLow:    row.AllTimeLow,
			AvgVolume15D:  row.AvgVolume15D,
			VolumeRatio:   row.VolumeRatio,
			RSI14:         row.RSI14,
			MACD:          row.MACD,
			MACDSignal:    row.MACDSignal,
			MACDHist:      row.MACDHist,
			BBUpper:       row.BBUpper,
			BBMiddle:      row.BBMiddle,
			BBLower:       row.BBLower,

			Signal:    row.Signal,
			UpdatedAt: now,
		})
	}
	return snaps, skipped, nil
}
