package indicator

import (
	"errors"

	"nfo-analytics/internal/model"
)

// ErrInsufficientHistory is returned when an instrument has fewer usable
// bars than the warm-up window. Callers skip the instrument and count it;
// it is not a fatal condition for a batch run.
var ErrInsufficientHistory = errors.New("insufficient bar history for warm-up")

// Indicator parameters. WarmupBars is the hard emission gate: rows exist
// only where the long SMA is defined.
const (
	WarmupBars = 200

	smaMidPeriod   = 50
	smaShortPeriod = 20
	rsiPeriod      = 14
	macdFast       = 12
	macdSlow       = 26
	macdSignal     = 9
	bbPeriod       = 20
	bbStdDev       = 2.0
	window21d      = 21  // 20 preceding + current
	window52w      = 365 // 364 preceding + current
	volumeWindow   = 15  // current + 14 preceding; see IndicatorRow.AvgVolume15D
)

// Calculator computes the full indicator profile for one instrument from
// its ordered daily bar history. It holds no state between instruments;
// a zero Calculator is ready to use and safe to share across goroutines.
type Calculator struct{}

// Compute produces the maximal ordered sequence of indicator rows for
// which the 200-bar trailing window exists.
//
// Input bars must be ascending by date and exclude the bar of the
// still-open session. Malformed bars fail fast with *model.InvalidBarError;
// fewer than WarmupBars usable bars returns ErrInsufficientHistory.
// Compute is deterministic: recomputing the same history yields identical
// rows.
func (Calculator) Compute(bars []model.PriceBar) ([]model.IndicatorRow, error) {
	if err := model.ValidateSeries(bars); err != nil {
		return nil, err
	}
	if len(bars) < WarmupBars {
		return nil, ErrInsufficientHistory
	}

	var (
		smaLong  = NewSMA(WarmupBars)
		smaMid   = NewSMA(smaMidPeriod)
		smaShort = NewSMA(smaShortPeriod)
		rsi      = NewRSI(rsiPeriod)
		macd     = NewMACD(macdFast, macdSlow, macdSignal)
		bb       = NewBollinger(bbPeriod, bbStdDev)
		ext21    = NewExtrema(window21d)
		ext52w   = NewExtrema(window52w)
		allTime  = &AllTime{}
		volAvg   = NewSMA(volumeWindow)
	)

	rows := make([]model.IndicatorRow, 0, len(bars)-WarmupBars+1)

	for i := range bars {
		bar := &bars[i]
		closeRs := bar.CloseRupees()
		volume := float64(bar.Volume)

		smaLong.Update(closeRs)
		smaMid.Update(closeRs)
		smaShort.Update(closeRs)
		rsi.Update(closeRs)
		macd.Update(closeRs)
		bb.Update(closeRs)
		ext21.Update(closeRs)
		ext52w.Update(closeRs)
		allTime.Update(closeRs)
		volAvg.Update(volume)

		if !smaLong.Ready() {
			// Warm-up: computed internally, dropped from output
			continue
		}

		row := model.IndicatorRow{
			Token:         bar.Token,
			Date:          bar.Date,
			SMA200:        smaLong.Value(),
			SMA50:         smaMid.Value(),
			SMA20:         smaShort.Value(),
			PctFromSMA200: (closeRs/smaLong.Value() - 1) * 100,
			High21D:       ext21.Max(),
			Low21D:        ext21.Min(),
			High52W:       ext52w.Max(),
			Low52W:        ext52w.Min(),
			AllTimeHigh:   allTime.Max(),
			AllTimeLow:    allTime.Min(),
			AvgVolume15D:  volAvg.Value(),
			RSI14:         rsi.Value(),
			MACD:          macd.Value(),
			MACDSignal:    macd.Signal(),
			MACDHist:      macd.Hist(),
			BBUpper:       bb.Upper(),
			BBMiddle:      bb.Value(),
			BBLower:       bb.Lower(),
		}

		// Ratio against the previous bar's volume; undefined when the
		// previous bar traded nothing. Never divides by the current bar.
		if i > 0 && bars[i-1].Volume > 0 {
			ratio := volume / float64(bars[i-1].Volume)
			row.VolumeRatio = &ratio
		}

		row.Signal = Classify(closeRs, volume, row.High21D, row.Low21D, row.AvgVolume15D)

		rows = append(rows, row)
	}

	return rows, nil
}
