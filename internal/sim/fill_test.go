package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/nimasha1228/SignalSim/internal/tape"
)

var testParams = FillParams{
	CA:                     50,
	CB:                     50,
	MinPriceAggressiveness: 0,
	SpreadPenaltyFactor:    0.5,
}

func snapshot(bid, ask, bidQty, askQty float64, flagged bool) tape.MarketSnapshot {
	return tape.MarketSnapshot{
		Timestamp:  time.Date(2024, 3, 1, 10, 0, 1, 0, time.UTC),
		BidPrice:   bid,
		AskPrice:   ask,
		BidQty:     bidQty,
		AskQty:     askQty,
		SpreadFlag: flagged,
	}
}

func newSim(seed int64) *FillSimulator {
	return NewFillSimulator(testParams, rand.New(rand.NewSource(seed)))
}

func TestMarketabilityGateBlocksUnreachablePrice(t *testing.T) {
	sim := newSim(1)
	// close_long hits the bid: limit above the market bid never reached the book
	intent := OrderIntent{Signal: tape.Sell, CloseLong: 2, OpenShort: 1, LimitPrice: 105}
	set := sim.Attempt(intent, snapshot(100, 101, 50, 50, false))

	if set.CloseLong.Marketable {
		t.Fatalf("limit above market bid must not be marketable")
	}
	if set.CloseLong.Executed || set.CloseLong.FilledSize != 0 {
		t.Fatalf("unmarketable leg must not fill: %+v", set.CloseLong)
	}
	if set.CloseLong.ProbExec != 0 {
		t.Fatalf("prob_exec must not be evaluated for unmarketable legs, got %v", set.CloseLong.ProbExec)
	}
}

func TestDeepCrossAlwaysFills(t *testing.T) {
	sim := newSim(7)
	// buy limit far through the ask: aggressiveness clamps to 1, prob 1
	intent := OrderIntent{Signal: tape.Buy, OpenLong: 2, LimitPrice: 110}
	set := sim.Attempt(intent, snapshot(99, 100, 50, 50, false))

	if !set.OpenLong.Executed {
		t.Fatalf("prob 1 leg must always fill")
	}
	if set.OpenLong.Aggressiveness != 1 || set.OpenLong.ProbExec != 1 {
		t.Fatalf("expected clamped aggressiveness 1, got %+v", set.OpenLong)
	}
	if set.OpenLong.FillPrice != 100 {
		t.Fatalf("buy fills at the market ask, got %v", set.OpenLong.FillPrice)
	}
	if set.OpenLong.Slippage != 10 {
		t.Fatalf("expected favorable slippage +10, got %v", set.OpenLong.Slippage)
	}
}

func TestLiquidityCapping(t *testing.T) {
	sim := newSim(3)
	intent := OrderIntent{Signal: tape.Sell, CloseLong: 10, LimitPrice: 90}
	set := sim.Attempt(intent, snapshot(100, 101, 3, 50, false))

	if !set.CloseLong.Executed {
		t.Fatalf("deeply crossed close_long should fill")
	}
	if set.CloseLong.FilledSize != 3 {
		t.Fatalf("fill must cap at available bid qty 3, got %v", set.CloseLong.FilledSize)
	}
}

func TestSequentialLiquidityDepletion(t *testing.T) {
	sim := newSim(11)
	// flip: close_short then open_long both lift the ask
	intent := OrderIntent{Signal: tape.Buy, CloseShort: 4, OpenLong: 3, LimitPrice: 120}
	set := sim.Attempt(intent, snapshot(99, 100, 50, 5, false))

	if set.CloseShort.FilledSize != 4 {
		t.Fatalf("close_short should fill fully first, got %v", set.CloseShort.FilledSize)
	}
	if set.OpenLong.FilledSize != 1 {
		t.Fatalf("open_long should only see the remaining 1, got %v", set.OpenLong.FilledSize)
	}
}

func TestZeroContraSizeNeverFills(t *testing.T) {
	sim := newSim(5)
	intent := OrderIntent{Signal: tape.Buy, OpenLong: 2, LimitPrice: 120}
	set := sim.Attempt(intent, snapshot(99, 100, 50, 0, false))

	if set.OpenLong.Executed {
		t.Fatalf("leg must not fill against zero contra size")
	}
	if !set.OpenLong.Marketable {
		t.Fatalf("the gate failure here is liquidity, not marketability")
	}
}

func TestSpreadPenaltySuppressesProb(t *testing.T) {
	clean := newSim(9).Attempt(
		OrderIntent{Signal: tape.Buy, OpenLong: 1, LimitPrice: 101},
		snapshot(99.5, 100, 50, 50, false),
	)
	flagged := newSim(9).Attempt(
		OrderIntent{Signal: tape.Buy, OpenLong: 1, LimitPrice: 101},
		snapshot(99.5, 100, 50, 50, true),
	)

	if !flagged.SpreadFlag {
		t.Fatalf("spread flag should propagate from the matched snapshot")
	}
	want := clean.OpenLong.ProbExec * testParams.SpreadPenaltyFactor
	if diff := flagged.OpenLong.ProbExec - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("expected penalized prob %v, got %v", want, flagged.OpenLong.ProbExec)
	}
}

func TestMinAggressivenessFloor(t *testing.T) {
	params := testParams
	params.MinPriceAggressiveness = 0.3
	sim := NewFillSimulator(params, rand.New(rand.NewSource(2)))

	// limit exactly at the ask: zero crossing distance, floored at 0.3
	set := sim.Attempt(
		OrderIntent{Signal: tape.Buy, OpenLong: 1, LimitPrice: 100},
		snapshot(99.5, 100, 50, 50, false),
	)
	if set.OpenLong.Aggressiveness != 0.3 {
		t.Fatalf("expected floored aggressiveness 0.3, got %v", set.OpenLong.Aggressiveness)
	}
}

func TestSellSlippageOrientation(t *testing.T) {
	sim := newSim(4)
	// sell sent at 90 fills at the bid 100: favorable by +10
	set := sim.Attempt(
		OrderIntent{Signal: tape.Sell, OpenShort: 1, LimitPrice: 90},
		snapshot(100, 101, 50, 50, false),
	)
	if !set.OpenShort.Executed {
		t.Fatalf("deeply crossed sell should fill")
	}
	if set.OpenShort.Slippage != 10 {
		t.Fatalf("expected favorable slippage +10, got %v", set.OpenShort.Slippage)
	}
}
