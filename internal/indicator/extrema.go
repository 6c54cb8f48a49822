package indicator

// Extrema tracks the rolling maximum and minimum over a trailing window of
// values (window-1 preceding + current) using monotonic deques, so each
// update is amortized O(1).
//
// Before the window fills, Max/Min cover the values seen so far — the same
// semantics as a windowed aggregate over partial leading windows. This
// matters for the 52-week window, which is wider than the 200-bar warm-up.
type Extrema struct {
	window int
	i      int // index of the last value fed
	maxDq  []extremaEntry
	minDq  []extremaEntry
}

type extremaEntry struct {
	idx int
	val float64
}

// NewExtrema creates a rolling max/min tracker over the given window.
func NewExtrema(window int) *Extrema {
	return &Extrema{window: window, i: -1}
}

func (e *Extrema) Update(value float64) {
	e.i++

	// Drop smaller values from the back of the max deque
	for len(e.maxDq) > 0 && e.maxDq[len(e.maxDq)-1].val <= value {
		e.maxDq = e.maxDq[:len(e.maxDq)-1]
	}
	e.maxDq = append(e.maxDq, extremaEntry{e.i, value})

	for len(e.minDq) > 0 && e.minDq[len(e.minDq)-1].val >= value {
		e.minDq = e.minDq[:len(e.minDq)-1]
	}
	e.minDq = append(e.minDq, extremaEntry{e.i, value})

	// Expire entries that fell out of the window
	cutoff := e.i - e.window + 1
	for e.maxDq[0].idx < cutoff {
		e.maxDq = e.maxDq[1:]
	}
	for e.minDq[0].idx < cutoff {
		e.minDq = e.minDq[1:]
	}
}

// Max returns the maximum over the trailing window.
func (e *Extrema) Max() float64 { return e.maxDq[0].val }

// Min returns the minimum over the trailing window.
func (e *Extrema) Min() float64 { return e.minDq[0].val }

// AllTime tracks the running maximum and minimum over the entire series.
// The window is unbounded and never reset.
type AllTime struct {
	seen bool
	max  float64
	min  float64
}

func (a *AllTime) Update(value float64) {
	if !a.seen {
		a.seen = true
		a.max = value
		a.min = value
		return
	}
	if value > a.max {
		a.max = value
	}
	if value < a.min {
		a.min = value
	}
}

// Max returns the all-time maximum.
func (a *AllTime) Max() float64 { return a.max }

// Min returns the all-time minimum.
func (a *AllTime) Min() float64 { return a.min }
