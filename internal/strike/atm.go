package strike

import (
	"errors"
	"math"
)

var (
	// ErrInvalidInterval means ATM selection was called with a non-positive
	// spacing — a programming error, reported loudly rather than defaulted.
	ErrInvalidInterval = errors.New("strike interval must be positive")

	// ErrInvalidBand means a negative band half-width was requested.
	ErrInvalidBand = errors.New("band half-width must be non-negative")
)

// SelectATMStrikes maps a reference price (rupees) to an ascending band of
// 2*band+1 candidate strikes centered on the nearest listed strike.
//
// The base strike is round(ref/interval)*interval. Rounding at the exact
// half-step uses math.Round, i.e. half away from zero: ref 2075 with
// interval 50 selects 2100, not 2050.
func SelectATMStrikes(referencePrice, interval float64, band int) ([]float64, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if band < 0 {
		return nil, ErrInvalidBand
	}

	base := math.Round(referencePrice/interval) * interval
	strikes := make([]float64, 0, 2*band+1)
	for k := -band; k <= band; k++ {
		strikes = append(strikes, base+float64(k)*interval)
	}
	return strikes, nil
}
