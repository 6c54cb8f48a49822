// Package indicator computes rolling technical statistics over ordered
// daily bar series and classifies each computed row into breakout,
// breakdown or no signal.
//
// The primitives are streaming: each consumes one value per bar in O(1)
// (or amortized O(1)) and reports Ready() once its warm-up window is full.
// The Calculator drives them over a full bar history and emits one
// IndicatorRow per date where the 200-bar SMA is defined.
package indicator

// Indicator is the interface shared by the rolling primitives.
type Indicator interface {
	// Name returns the indicator name (e.g. "SMA", "RSI").
	Name() string

	// Update feeds the next value in series order and recalculates.
	Update(value float64)

	// Value returns the current calculated value. Returns 0 if not enough
	// data has been seen.
	Value() float64

	// Ready returns true once the warm-up window is full.
	Ready() bool
}
