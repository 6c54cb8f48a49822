// Package strike infers listed option strike spacing and selects
// at-the-money strike bands around a reference price.
package strike

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrInsufficientStrikes means fewer than 2 distinct strikes were listed.
	ErrInsufficientStrikes = errors.New("fewer than 2 distinct strikes")

	// ErrNoValidInterval means no positive spacing survived filtering.
	ErrNoValidInterval = errors.New("no valid strike interval")
)

// EstimateInterval infers the canonical strike spacing (rupees) for one
// underlying+expiry from its listed strikes (paise).
//
// Strikes are deduplicated and sorted, so the estimate is invariant to
// input ordering and duplicates. Consecutive differences are rounded to
// 2 decimal places and non-positive differences discarded; the most
// frequent difference wins, ties broken by the smallest value.
func EstimateInterval(strikes []int64) (float64, error) {
	uniq := make([]int64, 0, len(strikes))
	seen := make(map[int64]struct{}, len(strikes))
	for _, s := range strikes {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
	}
	if len(uniq) < 2 {
		return 0, ErrInsufficientStrikes
	}

	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	counts := make(map[float64]int)
	for i := 1; i < len(uniq); i++ {
		d := round2(float64(uniq[i]-uniq[i-1]) / 100.0) // paise → rupees
		if d <= 0 {
			continue
		}
		counts[d]++
	}
	if len(counts) == 0 {
		return 0, ErrNoValidInterval
	}

	var best float64
	bestCount := 0
	for d, c := range counts {
		if c > bestCount || (c == bestCount && d < best) {
			best = d
			bestCount = c
		}
	}
	return best, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
