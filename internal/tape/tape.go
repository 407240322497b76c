// Package tape standardizes the market data payloads shared between the
// validation, integration, and simulation layers, and exposes the replay tape
// the simulator treats as the exchange.
package tape

import "time"

// Action is the discrete trading decision attached to an event.
type Action int

const (
	// Sell indicates a short bias.
	Sell Action = -1
	// Hold indicates no directional bias.
	Hold Action = 0
	// Buy indicates a long bias.
	Buy Action = 1
)

// String returns the label used in the merged table.
func (a Action) String() string {
	switch a {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "Hold"
	}
}

// MarketSnapshot models one timestamped top-of-book quote.
type MarketSnapshot struct {
	Timestamp  time.Time
	BidPrice   float64
	AskPrice   float64
	BidQty     float64
	AskQty     float64
	SpreadFlag bool // outlier-wide spread, set during validation
}

// Mid returns the snapshot midpoint price.
func (s MarketSnapshot) Mid() float64 {
	return (s.BidPrice + s.AskPrice) / 2
}

// SignalEvent models one timestamped continuous signal reading.
type SignalEvent struct {
	Timestamp time.Time
	Strength  float64
}

// Event is one row of the merged event table: a quote joined with the
// discretized signal active at that instant.
type Event struct {
	MarketSnapshot
	Action   Action
	Strength float64
}

// Tape is the immutable, time-ordered event sequence the simulator replays.
// Lookups by exact timestamp stand in for the exchange matching an order that
// arrives after latency.
type Tape struct {
	events []Event
	index  map[int64]int
}

// New builds a tape over the supplied events. The caller guarantees the
// events are already in strictly increasing timestamp order.
func New(events []Event) *Tape {
	index := make(map[int64]int, len(events))
	for i, ev := range events {
		index[ev.Timestamp.UnixNano()] = i
	}
	return &Tape{events: events, index: index}
}

// Len reports the number of events on the tape.
func (t *Tape) Len() int { return len(t.events) }

// Events exposes the underlying ordered sequence for iteration.
func (t *Tape) Events() []Event { return t.events }

// At returns the event carrying the exact timestamp, if one exists. Gaps are
// not bridged: a miss means the order is cancelled.
func (t *Tape) At(ts time.Time) (Event, bool) {
	i, ok := t.index[ts.UnixNano()]
	if !ok {
		return Event{}, false
	}
	return t.events[i], true
}
