package indicator

import (
	"math"
	"testing"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

// ────────────────────────────────────────────────────────────
// SMA
// ────────────────────────────────────────────────────────────

func TestSMA_Correctness_Period3(t *testing.T) {
	// Hand-calculated SMA(3) for a known close series:
	// 10, 12, 11, 13, 15
	// SMA after bar 3: (10+12+11)/3 = 11.0
	// SMA after bar 4: (12+11+13)/3 = 12.0
	// SMA after bar 5: (11+13+15)/3 = 13.0
	sma := NewSMA(3)
	prices := []float64{10, 12, 11, 13, 15}
	expected := []float64{0, 0, 11.0, 12.0, 13.0}
	ready := []bool{false, false, true, true, true}

	for i, p := range prices {
		sma.Update(p)
		if sma.Ready() != ready[i] {
			t.Errorf("bar %d: Ready()=%v, want %v", i, sma.Ready(), ready[i])
		}
		if ready[i] {
			assertClose(t, "SMA(3)", sma.Value(), expected[i], 0.0001)
		}
	}
}

func TestSMA_Correctness_Period5(t *testing.T) {
	// 10..16: SMA(5) = 12, 13, 14 once the window fills
	sma := NewSMA(5)
	prices := []float64{10, 11, 12, 13, 14, 15, 16}
	expected := []float64{0, 0, 0, 0, 12.0, 13.0, 14.0}

	for i, p := range prices {
		sma.Update(p)
		if i >= 4 {
			assertClose(t, "SMA(5)", sma.Value(), expected[i], 0.0001)
		} else if sma.Ready() {
			t.Errorf("bar %d: ready before window filled", i)
		}
	}
}

// ────────────────────────────────────────────────────────────
// EMA
// ────────────────────────────────────────────────────────────

func TestEMA_Correctness_Period3(t *testing.T) {
	// EMA(3): multiplier = 2/(3+1) = 0.5, seeded by SMA of first 3.
	// 100, 102, 104 → seed = 102.0
	// 103: 103*0.5 + 102.0*0.5 = 102.5
	// 105: 105*0.5 + 102.5*0.5 = 103.75
	ema := NewEMA(3)
	prices := []float64{100, 102, 104, 103, 105}
	expected := []float64{0, 0, 102.0, 102.5, 103.75}
	ready := []bool{false, false, true, true, true}

	for i, p := range prices {
		ema.Update(p)
		if ema.Ready() != ready[i] {
			t.Errorf("bar %d: Ready()=%v, want %v", i, ema.Ready(), ready[i])
		}
		if ready[i] {
			assertClose(t, "EMA(3)", ema.Value(), expected[i], 0.0001)
		}
	}
}

// ────────────────────────────────────────────────────────────
// RSI
// ────────────────────────────────────────────────────────────

func TestRSI_Correctness_Period2(t *testing.T) {
	// RSI(2) on 10, 11, 10, 11:
	// deltas: +1, -1, +1
	// seed after 2 deltas: avgGain=0.5, avgLoss=0.5 → RS=1 → RSI=50
	// next: avgGain=(0.5+1)/2=0.75, avgLoss=(0.5+0)/2=0.25 → RS=3 → RSI=75
	rsi := NewRSI(2)
	prices := []float64{10, 11, 10, 11}
	for i, p := range prices {
		rsi.Update(p)
		wantReady := i >= 2
		if rsi.Ready() != wantReady {
			t.Errorf("bar %d: Ready()=%v, want %v", i, rsi.Ready(), wantReady)
		}
	}
	assertClose(t, "RSI(2)", rsi.Value(), 75.0, 0.0001)
}

func TestRSI_AllGains_Is100(t *testing.T) {
	rsi := NewRSI(14)
	for i := 0; i < 40; i++ {
		rsi.Update(100 + float64(i))
	}
	assertClose(t, "RSI all gains", rsi.Value(), 100.0, 0.0001)
}

func TestRSI_AllLosses_Is0(t *testing.T) {
	rsi := NewRSI(14)
	for i := 0; i < 40; i++ {
		rsi.Update(100 - float64(i))
	}
	assertClose(t, "RSI all losses", rsi.Value(), 0.0, 0.0001)
}

func TestRSI_Bounded(t *testing.T) {
	rsi := NewRSI(14)
	prices := []float64{100, 93, 108, 102, 95, 111, 99, 104, 97, 113, 101, 90, 116, 103, 98, 107, 94, 109}
	for _, p := range prices {
		rsi.Update(p)
		if !rsi.Ready() {
			continue
		}
		if rsi.Value() < 0 || rsi.Value() > 100 {
			t.Fatalf("RSI out of [0,100]: %f", rsi.Value())
		}
	}
}

// ────────────────────────────────────────────────────────────
// MACD
// ────────────────────────────────────────────────────────────

func TestMACD_Correctness_SmallPeriods(t *testing.T) {
	// MACD(2,3,2) on the linear series 10, 11, 12, 13, 14:
	// EMA2 (mult 2/3, SMA seed 10.5): 11.5, 12.5, 13.5
	// EMA3 (mult 1/2, SMA seed 11):         12,   13
	// line from bar 3: 0.5, 0.5, 0.5
	// signal EMA2 of the line seeds at bar 4: 0.5; stays 0.5
	m := NewMACD(2, 3, 2)
	prices := []float64{10, 11, 12, 13, 14}
	for i, p := range prices {
		m.Update(p)
		wantReady := i >= 3
		if m.Ready() != wantReady {
			t.Errorf("bar %d: Ready()=%v, want %v", i, m.Ready(), wantReady)
		}
	}
	assertClose(t, "MACD line", m.Value(), 0.5, 0.0001)
	assertClose(t, "MACD signal", m.Signal(), 0.5, 0.0001)
	assertClose(t, "MACD hist", m.Hist(), 0.0, 0.0001)
}

func TestMACD_ConstantSeries_IsZero(t *testing.T) {
	m := NewMACD(12, 26, 9)
	for i := 0; i < 60; i++ {
		m.Update(250)
	}
	if !m.Ready() {
		t.Fatal("MACD not ready after 60 bars")
	}
	assertClose(t, "MACD const line", m.Value(), 0, 1e-9)
	assertClose(t, "MACD const signal", m.Signal(), 0, 1e-9)
}

// ────────────────────────────────────────────────────────────
// Bollinger
// ────────────────────────────────────────────────────────────

func TestBollinger_Correctness_Period3(t *testing.T) {
	// Window 10, 12, 14: mean=12, population σ=sqrt(8/3)
	b := NewBollinger(3, 2)
	for _, p := range []float64{10, 12, 14} {
		b.Update(p)
	}
	if !b.Ready() {
		t.Fatal("Bollinger not ready after 3 bars")
	}
	sigma := math.Sqrt(8.0 / 3.0)
	assertClose(t, "BB middle", b.Value(), 12.0, 0.0001)
	assertClose(t, "BB upper", b.Upper(), 12.0+2*sigma, 0.0001)
	assertClose(t, "BB lower", b.Lower(), 12.0-2*sigma, 0.0001)

	// Slide the window: 12, 14, 16 → mean 14, same σ
	b.Update(16)
	assertClose(t, "BB middle slid", b.Value(), 14.0, 0.0001)
	assertClose(t, "BB upper slid", b.Upper(), 14.0+2*sigma, 0.0001)
}

func TestBollinger_BandOrdering(t *testing.T) {
	b := NewBollinger(20, 2)
	prices := []float64{100, 93, 108, 102, 95, 111, 99, 104, 97, 113, 101, 90, 116, 103, 98, 107, 94, 109, 100, 105, 96, 112}
	for _, p := range prices {
		b.Update(p)
		if !b.Ready() {
			continue
		}
		if !(b.Upper() >= b.Value() && b.Value() >= b.Lower()) {
			t.Fatalf("band ordering violated: upper=%f middle=%f lower=%f", b.Upper(), b.Value(), b.Lower())
		}
	}
}

// ────────────────────────────────────────────────────────────
// Extrema
// ────────────────────────────────────────────────────────────

func TestExtrema_Window3(t *testing.T) {
	e := NewExtrema(3)
	values := []float64{5, 3, 4, 2, 6}
	wantMax := []float64{5, 5, 5, 4, 6}
	wantMin := []float64{5, 3, 3, 2, 2}

	for i, v := range values {
		e.Update(v)
		assertClose(t, "rolling max", e.Max(), wantMax[i], 0.0001)
		assertClose(t, "rolling min", e.Min(), wantMin[i], 0.0001)
	}
}

func TestExtrema_PartialWindow(t *testing.T) {
	// Before the window fills the extrema cover what was seen so far.
	e := NewExtrema(365)
	e.Update(50)
	e.Update(40)
	assertClose(t, "partial max", e.Max(), 50, 0.0001)
	assertClose(t, "partial min", e.Min(), 40, 0.0001)
}

func TestAllTime_NeverResets(t *testing.T) {
	a := &AllTime{}
	for _, v := range []float64{100, 300, 50, 200} {
		a.Update(v)
	}
	assertClose(t, "all-time high", a.Max(), 300, 0.0001)
	assertClose(t, "all-time low", a.Min(), 50, 0.0001)
}
