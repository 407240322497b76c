package sim

import (
	"testing"

	"github.com/nimasha1228/SignalSim/internal/tape"
)

func TestGenerateIntentHold(t *testing.T) {
	intent := GenerateIntent(tape.Hold, 100, 101, 3, 0, 2)
	if intent.Kind != KindHold {
		t.Fatalf("expected hold kind, got %s", intent.Kind)
	}
	if intent.OpenLong != 0 || intent.CloseLong != 0 || intent.OpenShort != 0 || intent.CloseShort != 0 {
		t.Fatalf("hold must carry zero sizes: %+v", intent)
	}
	if intent.LimitPrice != 0 {
		t.Fatalf("hold must carry no limit price, got %v", intent.LimitPrice)
	}
}

func TestGenerateIntentBuyFlat(t *testing.T) {
	intent := GenerateIntent(tape.Buy, 100, 101, 0, 0, 2)
	if intent.Kind != KindOpenLong {
		t.Fatalf("expected open_long, got %s", intent.Kind)
	}
	if intent.OpenLong != 2 || intent.CloseShort != 0 {
		t.Fatalf("unexpected sizes: %+v", intent)
	}
	if intent.LimitPrice != 101 {
		t.Fatalf("buy must price at the ask, got %v", intent.LimitPrice)
	}
}

func TestGenerateIntentBuyFlipsShort(t *testing.T) {
	intent := GenerateIntent(tape.Buy, 100, 101, 0, 5, 2)
	if intent.Kind != KindCloseShortOpenLong {
		t.Fatalf("expected flip kind, got %s", intent.Kind)
	}
	if intent.CloseShort != 5 {
		t.Fatalf("expected full cover of 5, got %v", intent.CloseShort)
	}
	if intent.OpenLong != 2 {
		t.Fatalf("expected open of order size 2, got %v", intent.OpenLong)
	}
}

func TestGenerateIntentSellMirrors(t *testing.T) {
	intent := GenerateIntent(tape.Sell, 100, 101, 0, 0, 2)
	if intent.Kind != KindOpenShort || intent.OpenShort != 2 {
		t.Fatalf("unexpected sell-flat intent: %+v", intent)
	}
	if intent.LimitPrice != 100 {
		t.Fatalf("sell must price at the bid, got %v", intent.LimitPrice)
	}

	intent = GenerateIntent(tape.Sell, 100, 101, 4, 0, 2)
	if intent.Kind != KindCloseLongOpenShort {
		t.Fatalf("expected flip kind, got %s", intent.Kind)
	}
	if intent.CloseLong != 4 || intent.OpenShort != 2 {
		t.Fatalf("unexpected flip sizes: %+v", intent)
	}
}

func TestGenerateIntentDeterministic(t *testing.T) {
	a := GenerateIntent(tape.Buy, 100, 101, 1, 3, 2)
	b := GenerateIntent(tape.Buy, 100, 101, 1, 3, 2)
	if a != b {
		t.Fatalf("same inputs produced different intents: %+v vs %+v", a, b)
	}
}
