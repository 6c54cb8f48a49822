package indicator

// MACD calculates Moving Average Convergence Divergence:
// line = EMA(close, fast) - EMA(close, slow), signal = EMA(line, signal),
// histogram = line - signal. The signal EMA only starts accumulating once
// the slow EMA is seeded, so with (12, 26, 9) the first signal value
// appears on bar 34.
type MACD struct {
	fast      *EMA
	slow      *EMA
	signalEMA *EMA
	line      float64
}

// NewMACD creates a MACD with the given fast/slow/signal periods
// (typically 12, 26, 9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:      NewEMA(fast),
		slow:      NewEMA(slow),
		signalEMA: NewEMA(signal),
	}
}

func (m *MACD) Name() string { return "MACD" }

func (m *MACD) Update(value float64) {
	m.fast.Update(value)
	m.slow.Update(value)
	if !m.slow.Ready() {
		return
	}
	m.line = m.fast.Value() - m.slow.Value()
	m.signalEMA.Update(m.line)
}

// Value returns the MACD line.
func (m *MACD) Value() float64 { return m.line }

// Signal returns the signal line (EMA of the MACD line).
func (m *MACD) Signal() float64 { return m.signalEMA.Value() }

// Hist returns line minus signal.
func (m *MACD) Hist() float64 { return m.line - m.signalEMA.Value() }

func (m *MACD) Ready() bool { return m.signalEMA.Ready() }
