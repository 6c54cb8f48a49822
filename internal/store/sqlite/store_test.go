package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nfo-analytics/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(Config{DBPath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func testRow(token string, date time.Time, sma200 float64) model.IndicatorRow {
	return model.IndicatorRow{
		Token: token, Date: date,
		SMA200: sma200, SMA50: 101, SMA20: 102, PctFromSMA200: 1.5,
		High21D: 110, Low21D: 90, High52W: 120, Low52W: 80,
		AllTimeHigh: 130, AllTimeLow: 70,
		AvgVolume15D: 1000, RSI14: 55,
		MACD: 0.5, MACDSignal: 0.4, MACDHist: 0.1,
		BBUpper: 105, BBMiddle: 100, BBLower: 95,
		Signal: model.SignalNone,
	}
}

func (s *Store) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestReadBars_CutoffAndOrder(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	bars := []model.PriceBar{
		{Token: "A", Date: day(3), Open: 100, High: 110, Low: 95, Close: 105, Volume: 30},
		{Token: "A", Date: day(1), Open: 100, High: 110, Low: 95, Close: 101, Volume: 10},
		{Token: "A", Date: day(2), Open: 100, High: 110, Low: 95, Close: 103, Volume: 20},
		{Token: "B", Date: day(1), Open: 50, High: 55, Low: 48, Close: 52, Volume: 99},
	}
	if err := st.UpsertBars(ctx, bars); err != nil {
		t.Fatalf("upsert bars: %v", err)
	}

	got, err := st.ReadBars(ctx, "A", day(3))
	if err != nil {
		t.Fatalf("read bars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (cutoff is exclusive)", len(got))
	}
	if !got[0].Date.Equal(day(1)) || !got[1].Date.Equal(day(2)) {
		t.Errorf("bars not ascending by date: %v, %v", got[0].Date, got[1].Date)
	}
	if got[1].Close != 103 {
		t.Errorf("close = %d, want 103", got[1].Close)
	}
}

func TestReadBarAt(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	want := model.PriceBar{Token: "A", Date: day(5), Open: 100, High: 110, Low: 95, Close: 105, Volume: 30}
	if err := st.UpsertBars(ctx, []model.PriceBar{want}); err != nil {
		t.Fatalf("upsert bars: %v", err)
	}

	got, ok, err := st.ReadBarAt(ctx, "A", day(5))
	if err != nil || !ok {
		t.Fatalf("read bar: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("bar = %+v, want %+v", got, want)
	}

	_, ok, err = st.ReadBarAt(ctx, "A", day(6))
	if err != nil {
		t.Fatalf("read absent bar: %v", err)
	}
	if ok {
		t.Error("ok = true for absent date")
	}
}

func TestReplaceRows_ReplacesDateRange(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	gen1 := []model.IndicatorRow{
		testRow("A", day(1), 100),
		testRow("A", day(2), 101),
		testRow("A", day(3), 102),
	}
	if err := st.ReplaceRows(ctx, "A", gen1); err != nil {
		t.Fatalf("replace gen1: %v", err)
	}
	if n := st.countRows(t, "indicator_rows"); n != 3 {
		t.Fatalf("rows after gen1 = %d, want 3", n)
	}

	// Second generation recomputes the same range with different values
	// plus one extra day. No duplicates, no stale rows in the range.
	gen2 := []model.IndicatorRow{
		testRow("A", day(1), 200),
		testRow("A", day(2), 201),
		testRow("A", day(3), 202),
		testRow("A", day(4), 203),
	}
	if err := st.ReplaceRows(ctx, "A", gen2); err != nil {
		t.Fatalf("replace gen2: %v", err)
	}
	if n := st.countRows(t, "indicator_rows"); n != 4 {
		t.Fatalf("rows after gen2 = %d, want 4", n)
	}

	row, ok, err := st.LatestRow(ctx, "A")
	if err != nil || !ok {
		t.Fatalf("latest row: ok=%v err=%v", ok, err)
	}
	if !row.Date.Equal(day(4)) || row.SMA200 != 203 {
		t.Errorf("latest row = %+v, want day 4 of gen2", row)
	}

	// Rows of another token are untouched.
	if err := st.ReplaceRows(ctx, "B", []model.IndicatorRow{testRow("B", day(2), 999)}); err != nil {
		t.Fatalf("replace token B: %v", err)
	}
	if err := st.ReplaceRows(ctx, "A", gen2); err != nil {
		t.Fatalf("replace gen2 again: %v", err)
	}
	if _, ok, _ := st.LatestRow(ctx, "B"); !ok {
		t.Error("token B rows lost by token A replace")
	}
}

func TestReplaceRows_EmptyIsNoop(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.ReplaceRows(ctx, "A", []model.IndicatorRow{testRow("A", day(1), 100)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := st.ReplaceRows(ctx, "A", nil); err != nil {
		t.Fatalf("empty replace: %v", err)
	}
	if _, ok, _ := st.LatestRow(ctx, "A"); !ok {
		t.Error("empty replace deleted existing rows")
	}
}

func TestVolumeRatio_NullRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	withNil := testRow("A", day(1), 100)
	ratio := 1.25
	withValue := testRow("A", day(2), 100)
	withValue.VolumeRatio = &ratio

	if err := st.ReplaceRows(ctx, "A", []model.IndicatorRow{withNil, withValue}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	row, ok, err := st.LatestRow(ctx, "A")
	if err != nil || !ok {
		t.Fatalf("latest row: ok=%v err=%v", ok, err)
	}
	if row.VolumeRatio == nil || *row.VolumeRatio != 1.25 {
		t.Errorf("VolumeRatio = %v, want 1.25", row.VolumeRatio)
	}

	if err := st.ReplaceRows(ctx, "A", []model.IndicatorRow{withNil}); err != nil {
		t.Fatalf("replace with nil ratio: %v", err)
	}
	row, _, err = st.LatestRow(ctx, "A")
	if err != nil {
		t.Fatalf("latest row: %v", err)
	}
	if row.VolumeRatio != nil {
		t.Errorf("VolumeRatio = %v, want nil (stored NULL)", *row.VolumeRatio)
	}
}

func TestReplaceSnapshot_ClearThenInsert(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, time.March, 2, 16, 0, 0, 0, time.UTC)
	snap := func(token string) model.Snapshot {
		return model.Snapshot{
			Token: token, Symbol: token + "-EQ", Name: token, LotSize: 1,
			TokenType: model.TokenTypeSpot,
			Date:      day(2), Open: 100, High: 110, Low: 95, Close: 105, Volume: 10,
			Signal: model.SignalNone, UpdatedAt: now,
		}
	}

	if err := st.ReplaceSnapshot(ctx, []model.Snapshot{snap("A"), snap("B")}); err != nil {
		t.Fatalf("replace snapshot: %v", err)
	}
	if n := st.countRows(t, "latest_snapshot"); n != 2 {
		t.Fatalf("snapshot size = %d, want 2", n)
	}

	if err := st.ReplaceSnapshot(ctx, []model.Snapshot{snap("C")}); err != nil {
		t.Fatalf("replace snapshot: %v", err)
	}
	if n := st.countRows(t, "latest_snapshot"); n != 1 {
		t.Errorf("snapshot size after replace = %d, want 1 (delete-all-then-insert)", n)
	}

	// Empty set clears the table.
	if err := st.ReplaceSnapshot(ctx, nil); err != nil {
		t.Fatalf("replace with empty set: %v", err)
	}
	if n := st.countRows(t, "latest_snapshot"); n != 0 {
		t.Errorf("snapshot size after empty replace = %d, want 0", n)
	}
}

func TestGetStrikes_DistinctOptionsOnly(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	instruments := []model.Instrument{
		{Token: "1", Symbol: "SBIN26MAR2000CE", Name: "SBIN", Expiry: "26MAR2026", Strike: 200000, InstrumentType: "OPTSTK", TokenType: model.TokenTypeOptions},
		{Token: "2", Symbol: "SBIN26MAR2000PE", Name: "SBIN", Expiry: "26MAR2026", Strike: 200000, InstrumentType: "OPTSTK", TokenType: model.TokenTypeOptions},
		{Token: "3", Symbol: "SBIN26MAR2050CE", Name: "SBIN", Expiry: "26MAR2026", Strike: 205000, InstrumentType: "OPTSTK", TokenType: model.TokenTypeOptions},
		{Token: "4", Symbol: "SBIN-FUT", Name: "SBIN", Expiry: "26MAR2026", Strike: 0, InstrumentType: "FUTSTK", TokenType: model.TokenTypeFutures},
		{Token: "5", Symbol: "SBIN26APR2100CE", Name: "SBIN", Expiry: "30APR2026", Strike: 210000, InstrumentType: "OPTSTK", TokenType: model.TokenTypeOptions},
	}
	if err := st.UpsertInstruments(ctx, instruments); err != nil {
		t.Fatalf("upsert instruments: %v", err)
	}

	strikes, err := st.GetStrikes(ctx, "SBIN", "26MAR2026")
	if err != nil {
		t.Fatalf("get strikes: %v", err)
	}
	if len(strikes) != 2 {
		t.Fatalf("strikes = %v, want two distinct values", strikes)
	}
	seen := map[int64]bool{}
	for _, s := range strikes {
		seen[s] = true
	}
	if !seen[200000] || !seen[205000] {
		t.Errorf("strikes = %v, want {200000, 205000}", strikes)
	}
}

func TestGetReferencePrice(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.UpsertFuturesQuote(ctx, "SBIN", "57919", 52350, time.Now()); err != nil {
		t.Fatalf("upsert quote: %v", err)
	}

	ltp, ok, err := st.GetReferencePrice(ctx, "SBIN")
	if err != nil || !ok {
		t.Fatalf("reference price: ok=%v err=%v", ok, err)
	}
	if ltp != 52350 {
		t.Errorf("ltp = %d, want 52350", ltp)
	}

	_, ok, err = st.GetReferencePrice(ctx, "NOQUOTE")
	if err != nil {
		t.Fatalf("absent quote: %v", err)
	}
	if ok {
		t.Error("ok = true for underlying without a quote")
	}
}

func TestListByTypeAndMetadata(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	instruments := []model.Instrument{
		{Token: "3045", Symbol: "SBIN-EQ", Name: "SBIN", LotSize: 750, InstrumentType: "EQ", TokenType: model.TokenTypeSpot},
		{Token: "2885", Symbol: "RELIANCE-EQ", Name: "RELIANCE", LotSize: 250, InstrumentType: "EQ", TokenType: model.TokenTypeSpot},
		{Token: "57919", Symbol: "SBIN-FUT", Name: "SBIN", Expiry: "26MAR2026", LotSize: 750, InstrumentType: "FUTSTK", TokenType: model.TokenTypeFutures},
	}
	if err := st.UpsertInstruments(ctx, instruments); err != nil {
		t.Fatalf("upsert instruments: %v", err)
	}

	spots, err := st.ListByType(ctx, model.TokenTypeSpot)
	if err != nil {
		t.Fatalf("list spots: %v", err)
	}
	if len(spots) != 2 {
		t.Fatalf("spots = %d, want 2", len(spots))
	}

	in, err := st.GetMetadata(ctx, "3045")
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if in.Name != "SBIN" || in.LotSize != 750 || in.TokenType != model.TokenTypeSpot {
		t.Errorf("metadata = %+v", in)
	}
}
