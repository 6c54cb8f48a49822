package indicator

// RSI calculates the Relative Strength Index using Wilder's smoothing.
// Update is O(1) per bar — no history scans. Values are bounded to
// [0, 100]; when the average loss is zero RSI is 100.
type RSI struct {
	period    int
	count     int
	prevClose float64
	avgGain   float64
	avgLoss   float64
	current   float64
}

// NewRSI creates a new RSI with the given period (typically 14).
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string { return "RSI" }

func (r *RSI) Update(value float64) {
	r.count++

	if r.count == 1 {
		// First value — no delta yet
		r.prevClose = value
		return
	}

	delta := value - r.prevClose
	r.prevClose = value

	gain := 0.0
	loss := 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if r.count <= r.period+1 {
		// Accumulation phase: build initial averages
		r.avgGain += gain
		r.avgLoss += loss

		if r.count == r.period+1 {
			r.avgGain /= float64(r.period)
			r.avgLoss /= float64(r.period)
			r.current = r.rsi()
		}
		return
	}

	// Wilder's smoothing: avg = (prevAvg*(period-1) + new) / period
	p := float64(r.period)
	r.avgGain = (r.avgGain*(p-1) + gain) / p
	r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	r.current = r.rsi()
}

func (r *RSI) rsi() float64 {
	if r.avgLoss == 0 {
		return 100.0
	}
	rs := r.avgGain / r.avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

func (r *RSI) Value() float64 { return r.current }
func (r *RSI) Ready() bool    { return r.count > r.period }
