package sim

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimasha1228/SignalSim/internal/ledger"
	"github.com/nimasha1228/SignalSim/internal/tape"
)

func event(sec int, bid, ask, qty float64, action tape.Action) tape.Event {
	return tape.Event{
		MarketSnapshot: tape.MarketSnapshot{
			Timestamp: time.Date(2024, 3, 1, 10, 0, sec, 0, time.UTC),
			BidPrice:  bid,
			AskPrice:  ask,
			BidQty:    qty,
			AskQty:    qty,
		},
		Action:   action,
		Strength: float64(action),
	}
}

func runDriver(events []tape.Event, seed int64) []ResultRow {
	tp := tape.New(events)
	fills := NewFillSimulator(testParams, rand.New(rand.NewSource(seed)))
	led := ledger.New(0)
	driver := NewDriver(tp, fills, led, 2, time.Second, nil, zerolog.Nop())
	return driver.Run()
}

func TestDriverSkipsStepsWithoutFutureSnapshot(t *testing.T) {
	events := []tape.Event{
		event(0, 100, 101, 50, tape.Buy),
		event(1, 100, 101, 50, tape.Hold),
		// gap: nothing at +2s, so the step at +1s is cancelled
		event(3, 100, 101, 50, tape.Buy),
		event(4, 100, 101, 50, tape.Hold),
	}
	rows := runDriver(events, 1)

	// steps at 0s, 3s match a future snapshot; 1s and 4s do not
	if len(rows) != 2 {
		t.Fatalf("expected 2 result rows, got %d", len(rows))
	}
	for _, row := range rows {
		if !row.ExchangeTime.Equal(row.OrderSentTime.Add(time.Second)) {
			t.Fatalf("exchange time must be sent time plus latency: %+v", row)
		}
	}
}

func TestDriverCancelledStepLeavesLedgerUntouched(t *testing.T) {
	events := []tape.Event{
		event(0, 100, 101, 50, tape.Hold),
		event(1, 100, 101, 50, tape.Buy), // cancelled: no snapshot at +2s
		event(3, 100, 101, 50, tape.Hold),
		event(4, 100, 101, 50, tape.Hold),
	}
	rows := runDriver(events, 1)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	last := rows[len(rows)-1]
	if last.LongPosition != 0 || last.ShortPosition != 0 || last.GrossPnL != 0 || last.Commission != 0 {
		t.Fatalf("cancelled buy leaked into the ledger: %+v", last)
	}
}

func TestDriverFlipShortToLong(t *testing.T) {
	// Sell opens a short, then Buy covers it and opens a long in one step.
	// Each future snapshot moves through the limit far enough that the
	// clamped aggressiveness pins prob_exec at 1, so fills are certain.
	events := []tape.Event{
		event(0, 100, 101, 50, tape.Sell), // sell limit 100, fills at future bid 105
		event(1, 105, 106, 50, tape.Buy),  // buy limit 106, fills at future ask 100
		event(2, 99.5, 100, 50, tape.Hold),
		event(3, 99.5, 100, 50, tape.Hold),
	}
	tp := tape.New(events)
	fills := NewFillSimulator(testParams, rand.New(rand.NewSource(1)))
	driver := NewDriver(tp, fills, ledger.New(0), 2, time.Second, nil, zerolog.Nop())
	rows := driver.Run()

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].ShortPosition != 2 || rows[0].LongPosition != 0 {
		t.Fatalf("expected short 2 after first step: %+v", rows[0])
	}
	flip := rows[1]
	if flip.OrderKind != KindCloseShortOpenLong {
		t.Fatalf("expected flip intent, got %s", flip.OrderKind)
	}
	if flip.CloseShort.Requested != 2 || flip.OpenLong.Requested != 2 {
		t.Fatalf("flip must request full cover plus order size: %+v", flip)
	}
	if flip.ShortPosition != 0 || flip.LongPosition != 2 {
		t.Fatalf("expected flat short and long 2 after flip: long=%v short=%v", flip.LongPosition, flip.ShortPosition)
	}
}

func TestDriverDeterministicForSeed(t *testing.T) {
	events := make([]tape.Event, 0, 40)
	actions := []tape.Action{tape.Buy, tape.Hold, tape.Sell, tape.Buy, tape.Sell}
	for i := 0; i < 40; i++ {
		px := 100 + float64(i%7)*0.25
		events = append(events, event(i, px, px+0.5, 10, actions[i%len(actions)]))
	}

	first := runDriver(events, 99)
	second := runDriver(events, 99)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical seed produced different result tables")
	}

	third := runDriver(events, 100)
	if len(third) != len(first) {
		t.Fatalf("row count must not depend on the seed: %d vs %d", len(third), len(first))
	}
}

func TestDriverDrawdownMonotonicAcrossRun(t *testing.T) {
	events := make([]tape.Event, 0, 30)
	prices := []float64{100, 105, 95, 110, 90, 115, 85, 120, 80, 125}
	for i := 0; i < 30; i++ {
		px := prices[i%len(prices)]
		action := tape.Hold
		if i%3 == 0 {
			action = tape.Buy
		}
		events = append(events, event(i, px, px+0.5, 10, action))
	}
	rows := runDriver(events, 5)

	prev := 0.0
	for i, row := range rows {
		if row.MaxDrawdown+1e-12 < prev {
			t.Fatalf("max drawdown decreased at row %d: %v -> %v", i, prev, row.MaxDrawdown)
		}
		prev = row.MaxDrawdown
		if row.LongPosition < 0 || row.ShortPosition < 0 {
			t.Fatalf("negative position at row %d: %+v", i, row)
		}
	}
}
