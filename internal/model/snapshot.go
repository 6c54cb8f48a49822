package model

import (
	"encoding/json"
	"time"
)

// Snapshot is the flat read-optimized record served to downstream readers:
// the latest indicator row per instrument joined with the bar at that date
// and the instrument metadata. The snapshot set is fully replaced on each
// aggregation run; it has no identity beyond the most recent materialization.
type Snapshot struct {
	Token     string `json:"token"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	LotSize   int    `json:"lot_size"`
	TokenType string `json:"token_type"`

	Date   time.Time `json:"date"`
	Open   int64     `json:"open"`   // paise
	High   int64     `json:"high"`   // paise
	Low    int64     `json:"low"`    // paise
	Close  int64     `json:"close"`  // paise
	Volume int64     `json:"volume"`

	SMA200        float64  `json:"sma_200"`
	SMA50         float64  `json:"sma_50"`
	SMA20         float64  `json:"sma_20"`
	PctFromSMA200 float64  `json:"pct_distance_from_sma_200"`
	High21D       float64  `json:"high_21d"`
	Low21D        float64  `json:"low_21d"`
	High52W       float64  `json:"high_52w"`
	Low52W        float64  `json:"low_52w"`
	AllTimeHigh   float64  `json:"all_time_high"`
	AllTimeLow    float64  `json:"all_time_low"`
	AvgVolume15D  float64  `json:"avg_volume_15d"`
	VolumeRatio   *float64 `json:"volume_ratio,omitempty"`
	RSI14         float64  `json:"rsi_14"`
	MACD          float64  `json:"macd"`
	MACDSignal    float64  `json:"macd_signal"`
	MACDHist      float64  `json:"macd_hist"`
	BBUpper       float64  `json:"bb_upper"`
	BBMiddle      float64  `json:"bb_middle"`
	BBLower       float64  `json:"bb_lower"`

	Signal    Signal    `json:"signal"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSON returns the JSON-encoded snapshot (ignoring errors for hot-path usage).
func (s *Snapshot) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}
