package model

// Token classification, matching the instrument master's tagging.
const (
	TokenTypeSpot    = "SPOT"
	TokenTypeFutures = "FUTURES"
	TokenTypeOptions = "OPTIONS"
)

// Instrument represents one entry from the tradable-instrument master.
type Instrument struct {
	Token          string `json:"token"`
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	Expiry         string `json:"expiry,omitempty"` // e.g. "25SEP2026"; empty for spot
	Strike         int64  `json:"strike,omitempty"` // paise; 0 for non-options
	LotSize        int    `json:"lot_size"`
	InstrumentType string `json:"instrument_type"` // EQ, FUTSTK, OPTSTK
	TokenType      string `json:"token_type"`      // SPOT, FUTURES, OPTIONS
}
