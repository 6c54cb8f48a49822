package model

import (
	"fmt"
	"time"
)

// DateLayout is the canonical storage format for daily bar dates.
const DateLayout = "2006-01-02"

// PriceBar represents one daily OHLCV bar for a single instrument.
// All prices are in paise (int64) to avoid floating-point drift.
type PriceBar struct {
	Token  string    `json:"token"`
	Date   time.Time `json:"date"`   // trading day, midnight UTC
	Open   int64     `json:"open"`   // paise
	High   int64     `json:"high"`   // paise
	Low    int64     `json:"low"`    // paise
	Close  int64     `json:"close"`  // paise
	Volume int64     `json:"volume"` // traded quantity
}

// CloseRupees returns the close price converted from paise to rupees.
func (b *PriceBar) CloseRupees() float64 {
	return float64(b.Close) / 100.0
}

// Validate checks the single-bar invariants: positive prices,
// low <= open,close <= high, non-negative volume.
func (b *PriceBar) Validate() error {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return &InvalidBarError{Token: b.Token, Date: b.Date, Reason: "non-positive price"}
	}
	if b.Low > b.Open || b.Low > b.Close || b.Open > b.High || b.Close > b.High {
		return &InvalidBarError{Token: b.Token, Date: b.Date, Reason: "low <= open,close <= high violated"}
	}
	if b.Volume < 0 {
		return &InvalidBarError{Token: b.Token, Date: b.Date, Reason: "negative volume"}
	}
	return nil
}

// ValidateSeries checks per-bar invariants plus strictly increasing,
// unique dates across the series.
func ValidateSeries(bars []PriceBar) error {
	for i := range bars {
		if err := bars[i].Validate(); err != nil {
			return err
		}
		if i > 0 && !bars[i].Date.After(bars[i-1].Date) {
			return &InvalidBarError{
				Token:  bars[i].Token,
				Date:   bars[i].Date,
				Reason: "dates not strictly increasing",
			}
		}
	}
	return nil
}

// InvalidBarError reports a bar that violates the PriceBar invariants.
// Bars are never silently repaired; the offending instrument's batch fails.
type InvalidBarError struct {
	Token  string
	Date   time.Time
	Reason string
}

func (e *InvalidBarError) Error() string {
	return fmt.Sprintf("invalid bar %s@%s: %s", e.Token, e.Date.Format(DateLayout), e.Reason)
}
