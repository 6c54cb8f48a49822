package indicator

import "nfo-analytics/internal/model"

// Breakout classification thresholds.
//
// The upside tolerance (2%) and downside tolerance (0.5%) are deliberately
// asymmetric tuning parameters; do not symmetrize them without re-tuning
// against the volume window they were calibrated on.
const (
	volumeSurgeFactor  = 2.0
	breakoutTolerance  = 0.02
	breakdownTolerance = 0.005
)

// Classify applies the row-local breakout rules to one computed row.
//
//	BREAKOUT:  volume > 2x the 15-bar average volume, close above the prior
//	           21-bar high by at most 2%.
//	BREAKDOWN: volume > 2x the 15-bar average volume, close below the prior
//	           21-bar low by at most 0.5% (relative to close).
//
// The two are mutually exclusive: close cannot exceed the window high and
// fall below the window low at once.
func Classify(closePrice, volume, high21, low21, avgVolume15 float64) model.Signal {
	if volume <= volumeSurgeFactor*avgVolume15 {
		return model.SignalNone
	}
	if closePrice > high21 && (closePrice-high21)/high21 <= breakoutTolerance {
		return model.SignalBreakout
	}
	if closePrice < low21 && (low21-closePrice)/closePrice <= breakdownTolerance {
		return model.SignalBreakdown
	}
	return model.SignalNone
}
