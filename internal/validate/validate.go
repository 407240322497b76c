// Package validate cleans raw quote and signal tables before simulation:
// duplicates, ordering, nulls, crossed books, spread outliers, and volume.
package validate

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/nimasha1228/SignalSim/internal/metrics"
	"github.com/nimasha1228/SignalSim/internal/tape"
)

// Report summarizes one validation pass.
type Report struct {
	Initial int
	Dropped int
	Final   int

	// Spread statistics, populated by the quote pass only.
	SpreadMean      float64
	SpreadStd       float64
	SpreadThreshold float64
	Flagged         int
}

// Quotes runs the full quote cleaning sequence and flags spread outliers
// beyond k standard deviations from the mean relative spread.
func Quotes(quotes []tape.MarketSnapshot, k float64, log zerolog.Logger) ([]tape.MarketSnapshot, Report) {
	log.Info().Msg("-------- Quote Data Validation Report --------")

	report := Report{Initial: len(quotes)}

	quotes = dropDuplicateQuotes(quotes, log)
	quotes = sortQuotes(quotes, log)
	quotes = dropNullQuotes(quotes, log)
	quotes = dropCrossedQuotes(quotes, log)
	quotes, report.SpreadMean, report.SpreadStd, report.SpreadThreshold, report.Flagged = flagSpreadOutliers(quotes, k, log)
	quotes = dropNonPositiveVolume(quotes, log)

	report.Final = len(quotes)
	report.Dropped = report.Initial - report.Final
	metrics.RowsValidated.WithLabelValues("quotes").Add(float64(report.Final))

	log.Info().
		Int("initial", report.Initial).
		Int("dropped", report.Dropped).
		Int("final", report.Final).
		Msg("quote validation summary")
	return quotes, report
}

// Signals drops null signal rows and rows whose timestamp has no counterpart
// in the cleaned quote table.
func Signals(signals []tape.SignalEvent, quotes []tape.MarketSnapshot, log zerolog.Logger) ([]tape.SignalEvent, Report) {
	log.Info().Msg("-------- Signal Data Validation Report --------")

	report := Report{Initial: len(signals)}

	kept := signals[:0]
	nulls := 0
	for _, s := range signals {
		if s.Timestamp.IsZero() || math.IsNaN(s.Strength) {
			nulls++
			continue
		}
		kept = append(kept, s)
	}
	signals = kept
	if nulls > 0 {
		log.Info().Int("rows", nulls).Msg("FLAG: rows with null values found")
		log.Info().Msg("ACTION: dropped all rows containing null values")
		metrics.RowsDropped.WithLabelValues("signals", "null").Add(float64(nulls))
	} else {
		log.Info().Msg("PASS: no null values found")
	}

	known := make(map[int64]struct{}, len(quotes))
	for _, q := range quotes {
		known[q.Timestamp.UnixNano()] = struct{}{}
	}
	kept = signals[:0]
	misaligned := 0
	for _, s := range signals {
		if _, ok := known[s.Timestamp.UnixNano()]; !ok {
			misaligned++
			continue
		}
		kept = append(kept, s)
	}
	signals = kept
	if misaligned > 0 {
		log.Info().Int("rows", misaligned).Msg("FLAG: misaligned signal rows found")
		log.Info().Int("rows", misaligned).Msg("ACTION: removed misaligned signal rows")
		metrics.RowsDropped.WithLabelValues("signals", "misaligned").Add(float64(misaligned))
	} else {
		log.Info().Msg("PASS: all signal timestamps aligned with quotes")
	}

	report.Final = len(signals)
	report.Dropped = report.Initial - report.Final
	metrics.RowsValidated.WithLabelValues("signals").Add(float64(report.Final))

	log.Info().
		Int("initial", report.Initial).
		Int("dropped", report.Dropped).
		Int("final", report.Final).
		Msg("signal validation summary")
	return signals, report
}

func dropDuplicateQuotes(quotes []tape.MarketSnapshot, log zerolog.Logger) []tape.MarketSnapshot {
	seen := make(map[tape.MarketSnapshot]struct{}, len(quotes))
	kept := quotes[:0]
	dropped := 0
	for _, q := range quotes {
		if _, ok := seen[q]; ok {
			dropped++
			continue
		}
		seen[q] = struct{}{}
		kept = append(kept, q)
	}
	if dropped > 0 {
		log.Info().Msg("FLAG: detected duplicate rows")
		log.Info().Int("rows", dropped).Msg("ACTION: removed duplicate rows")
		metrics.RowsDropped.WithLabelValues("quotes", "duplicate").Add(float64(dropped))
	} else {
		log.Info().Msg("PASS: no duplicate rows found")
	}
	return kept
}

func sortQuotes(quotes []tape.MarketSnapshot, log zerolog.Logger) []tape.MarketSnapshot {
	ordered := sort.SliceIsSorted(quotes, func(i, j int) bool {
		return quotes[i].Timestamp.Before(quotes[j].Timestamp)
	})
	if ordered {
		log.Info().Msg("PASS: timestamps are already strictly increasing")
		return quotes
	}
	log.Info().Msg("FLAG: timestamps are not strictly increasing, sorting")
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Timestamp.Before(quotes[j].Timestamp)
	})
	log.Info().Msg("ACTION: sorted timestamps")
	return quotes
}

func dropNullQuotes(quotes []tape.MarketSnapshot, log zerolog.Logger) []tape.MarketSnapshot {
	kept := quotes[:0]
	dropped := 0
	for _, q := range quotes {
		if q.Timestamp.IsZero() ||
			math.IsNaN(q.BidPrice) || math.IsNaN(q.AskPrice) ||
			math.IsNaN(q.BidQty) || math.IsNaN(q.AskQty) {
			dropped++
			continue
		}
		kept = append(kept, q)
	}
	if dropped > 0 {
		log.Info().Int("rows", dropped).Msg("FLAG: rows with null values detected")
		log.Info().Msg("ACTION: removed all rows containing null values")
		metrics.RowsDropped.WithLabelValues("quotes", "null").Add(float64(dropped))
	} else {
		log.Info().Msg("PASS: no null values found")
	}
	return kept
}

func dropCrossedQuotes(quotes []tape.MarketSnapshot, log zerolog.Logger) []tape.MarketSnapshot {
	kept := quotes[:0]
	dropped := 0
	for _, q := range quotes {
		if q.BidPrice > q.AskPrice {
			dropped++
			continue
		}
		kept = append(kept, q)
	}
	if dropped > 0 {
		log.Info().Int("rows", dropped).Msg("FLAG: rows with bid_price > ask_price detected")
		log.Info().Int("rows", dropped).Msg("ACTION: removed crossed rows")
		metrics.RowsDropped.WithLabelValues("quotes", "crossed").Add(float64(dropped))
	} else {
		log.Info().Msg("PASS: no rows with bid_price > ask_price")
	}
	return kept
}

// flagSpreadOutliers marks rows whose relative spread (ask-bid)/bid exceeds
// mean + k*std. Flagged rows stay on the tape; the fill model penalizes them.
func flagSpreadOutliers(quotes []tape.MarketSnapshot, k float64, log zerolog.Logger) ([]tape.MarketSnapshot, float64, float64, float64, int) {
	if len(quotes) == 0 {
		return quotes, 0, 0, 0, 0
	}

	spreads := make([]float64, len(quotes))
	var sum float64
	for i, q := range quotes {
		spreads[i] = (q.AskPrice - q.BidPrice) / q.BidPrice
		sum += spreads[i]
	}
	mean := sum / float64(len(spreads))

	var variance float64
	for _, s := range spreads {
		variance += (s - mean) * (s - mean)
	}
	std := 0.0
	if len(spreads) > 1 {
		// sample standard deviation
		std = math.Sqrt(variance / float64(len(spreads)-1))
	}
	threshold := mean + k*std

	flagged := 0
	for i := range quotes {
		if spreads[i] > threshold {
			quotes[i].SpreadFlag = true
			flagged++
		} else {
			quotes[i].SpreadFlag = false
		}
	}
	if flagged > 0 {
		log.Info().
			Int("rows", flagged).
			Float64("threshold", threshold).
			Msg("FLAG: rows with outlier spread identified and flagged")
	} else {
		log.Info().Float64("threshold", threshold).Msg("PASS: no rows with outlier spread")
	}
	log.Info().
		Float64("mean", mean).
		Float64("std", std).
		Float64("k", k).
		Msg("relative spread distribution")
	return quotes, mean, std, threshold, flagged
}

func dropNonPositiveVolume(quotes []tape.MarketSnapshot, log zerolog.Logger) []tape.MarketSnapshot {
	kept := quotes[:0]
	dropped := 0
	for _, q := range quotes {
		if q.BidQty <= 0 || q.AskQty <= 0 {
			dropped++
			continue
		}
		kept = append(kept, q)
	}
	if dropped > 0 {
		log.Info().Int("rows", dropped).Msg("FLAG: rows with non-positive volume found")
		log.Info().Int("rows", dropped).Msg("ACTION: removed rows with non-positive volume")
		metrics.RowsDropped.WithLabelValues("quotes", "volume").Add(float64(dropped))
	} else {
		log.Info().Msg("PASS: all volume values are positive")
	}
	return kept
}
