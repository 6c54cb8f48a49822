package indicator

// EMA calculates an Exponential Moving Average with smoothing factor
// 2/(period+1), seeded by the SMA of the first period values.
// O(1) per update — no window storage needed.
type EMA struct {
	period     int
	multiplier float64
	current    float64
	count      int
	sum        float64
}

// NewEMA creates a new EMA with the given period.
func NewEMA(period int) *EMA {
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string { return "EMA" }

func (e *EMA) Update(value float64) {
	e.count++

	if e.count <= e.period {
		// Accumulate for the initial SMA seed
		e.sum += value
		if e.count == e.period {
			e.current = e.sum / float64(e.period)
		}
		return
	}

	// EMA = value*multiplier + prev*(1-multiplier)
	e.current = (value * e.multiplier) + (e.current * (1 - e.multiplier))
}

func (e *EMA) Value() float64 { return e.current }
func (e *EMA) Ready() bool    { return e.count >= e.period }
