package model

import "time"

// Signal classifies an indicator row's volume/price action.
type Signal string

const (
	SignalBreakout  Signal = "BREAKOUT"
	SignalBreakdown Signal = "BREAKDOWN"
	SignalNone      Signal = "NONE"
)

// IndicatorRow holds the computed technical profile for one instrument on
// one trading day. Prices are in rupees (float64); rows exist only for
// dates where the 200-bar SMA is defined.
//
// Rows are immutable once written — recomputation replaces the full
// affected date range, it never mutates rows in place.
type IndicatorRow struct {
	Token string    `json:"token"`
	Date  time.Time `json:"date"`

	SMA200        float64 `json:"sma_200"`
	SMA50         float64 `json:"sma_50"`
	SMA20         float64 `json:"sma_20"`
	PctFromSMA200 float64 `json:"pct_distance_from_sma_200"`

	High21D     float64 `json:"high_21d"`
	Low21D      float64 `json:"low_21d"`
	High52W     float64 `json:"high_52w"`
	Low52W      float64 `json:"low_52w"`
	AllTimeHigh float64 `json:"all_time_high"`
	AllTimeLow  float64 `json:"all_time_low"`

	// AvgVolume15D spans 15 bars: the current bar plus 14 preceding ones.
	// The "15d" name is historical; the bar count is what the breakout
	// thresholds were tuned against.
	AvgVolume15D float64 `json:"avg_volume_15d"`
	// VolumeRatio is volume / previous bar's volume. Nil when the previous
	// bar traded zero volume.
	VolumeRatio *float64 `json:"volume_ratio,omitempty"`

	RSI14      float64 `json:"rsi_14"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`

	BBUpper  float64 `json:"bb_upper"`
	BBMiddle float64 `json:"bb_middle"`
	BBLower  float64 `json:"bb_lower"`

	Signal Signal `json:"signal"`
}
