// Package integrate joins signal strength onto the cleaned quote table and
// discretizes it into Buy/Sell/Hold actions.
package integrate

import (
	"github.com/rs/zerolog"

	"github.com/nimasha1228/SignalSim/internal/tape"
)

// Classify maps a continuous signal strength onto a discrete action. Strength
// strictly above the threshold is a Buy, strictly below its negation a Sell.
func Classify(strength, threshold float64) tape.Action {
	switch {
	case strength > threshold:
		return tape.Buy
	case strength < -threshold:
		return tape.Sell
	default:
		return tape.Hold
	}
}

// Merge left-joins signals onto quotes by exact timestamp. A quote without a
// matching signal gets strength 0, which classifies as Hold.
func Merge(quotes []tape.MarketSnapshot, signals []tape.SignalEvent, threshold float64, log zerolog.Logger) []tape.Event {
	log.Info().Msg("-------- Signal integration and classification --------")

	byTime := make(map[int64]float64, len(signals))
	for _, s := range signals {
		byTime[s.Timestamp.UnixNano()] = s.Strength
	}

	events := make([]tape.Event, 0, len(quotes))
	matched := 0
	for _, q := range quotes {
		strength, ok := byTime[q.Timestamp.UnixNano()]
		if ok {
			matched++
		} else {
			strength = 0
		}
		events = append(events, tape.Event{
			MarketSnapshot: q,
			Strength:       strength,
			Action:         Classify(strength, threshold),
		})
	}

	log.Info().
		Int("quotes", len(quotes)).
		Int("matched_signals", matched).
		Float64("threshold", threshold).
		Msg("signal integration and classification completed")
	return events
}
