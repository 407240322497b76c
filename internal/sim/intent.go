// Package sim contains the event simulation core: order intent generation,
// probabilistic fill simulation against a latency-shifted snapshot, and the
// driver loop that folds fills into the ledger.
package sim

import "github.com/nimasha1228/SignalSim/internal/tape"

// Intent kinds as recorded in the result table.
const (
	KindHold               = "hold"
	KindOpenLong           = "open_long"
	KindOpenShort          = "open_short"
	KindCloseShortOpenLong = "close_short and open_long"
	KindCloseLongOpenShort = "close_long and open_short"
)

// OrderIntent is the ephemeral per-step order request: up to two legs sized
// from the current position, priced at the touch on the crossing side.
type OrderIntent struct {
	Signal     tape.Action
	OpenLong   float64
	CloseLong  float64
	OpenShort  float64
	CloseShort float64
	LimitPrice float64
	Kind       string
}

// GenerateIntent maps a signal and the current position onto an order intent.
// A Buy prices at the best ask and either adds to longs or fully covers the
// short side while flipping long in the same step; Sell mirrors it. Pure:
// identical inputs always produce the identical intent.
func GenerateIntent(signal tape.Action, bestBid, bestAsk, longPosition, shortPosition, openOrderSize float64) OrderIntent {
	intent := OrderIntent{Signal: signal, Kind: KindHold}
	netPosition := longPosition - shortPosition

	switch signal {
	case tape.Buy:
		intent.LimitPrice = bestAsk
		if netPosition >= 0 {
			intent.OpenLong = openOrderSize
			intent.Kind = KindOpenLong
		} else {
			intent.CloseShort = shortPosition
			intent.OpenLong = openOrderSize
			intent.Kind = KindCloseShortOpenLong
		}
	case tape.Sell:
		intent.LimitPrice = bestBid
		if netPosition <= 0 {
			intent.OpenShort = openOrderSize
			intent.Kind = KindOpenShort
		} else {
			intent.CloseLong = longPosition
			intent.OpenShort = openOrderSize
			intent.Kind = KindCloseLongOpenShort
		}
	}
	return intent
}
