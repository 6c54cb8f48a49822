package indicator

import "math"

// Bollinger calculates Bollinger Bands: middle = SMA(period), band width =
// stdDev multiples of the population standard deviation over the same
// window. Whenever defined, upper >= middle >= lower.
type Bollinger struct {
	period int
	stdDev float64
	buf    []float64 // circular window buffer
	idx    int
	count  int
	sum    float64

	middle float64
	upper  float64
	lower  float64
}

// NewBollinger creates Bollinger Bands with the given window and deviation
// multiple (typically 20, 2).
func NewBollinger(period int, stdDev float64) *Bollinger {
	return &Bollinger{
		period: period,
		stdDev: stdDev,
		buf:    make([]float64, period),
	}
}

func (b *Bollinger) Name() string { return "BB" }

func (b *Bollinger) Update(value float64) {
	if b.count >= b.period {
		b.sum -= b.buf[b.idx]
	}
	b.buf[b.idx] = value
	b.sum += value
	b.idx = (b.idx + 1) % b.period
	b.count++

	if b.count < b.period {
		return
	}

	mean := b.sum / float64(b.period)
	// Population variance over the full window; the window is small enough
	// that a direct scan is cheaper than maintaining running squares.
	var sq float64
	for _, v := range b.buf {
		d := v - mean
		sq += d * d
	}
	band := b.stdDev * math.Sqrt(sq/float64(b.period))

	b.middle = mean
	b.upper = mean + band
	b.lower = mean - band
}

// Value returns the middle band.
func (b *Bollinger) Value() float64 { return b.middle }

// Upper returns the upper band.
func (b *Bollinger) Upper() float64 { return b.upper }

// Lower returns the lower band.
func (b *Bollinger) Lower() float64 { return b.lower }

func (b *Bollinger) Ready() bool { return b.count >= b.period }
