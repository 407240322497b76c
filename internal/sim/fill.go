package sim

import (
	"math/rand"

	"github.com/nimasha1228/SignalSim/internal/tape"
)

// Leg names the four order components evaluated within a step.
type Leg string

const (
	LegCloseLong  Leg = "close_long"
	LegCloseShort Leg = "close_short"
	LegOpenShort  Leg = "open_short"
	LegOpenLong   Leg = "open_long"
)

// FillParams are the probabilistic execution knobs.
type FillParams struct {
	CA                     float64 // aggressiveness scale for ask-side legs
	CB                     float64 // aggressiveness scale for bid-side legs
	MinPriceAggressiveness float64
	SpreadPenaltyFactor    float64
}

// LegFill is the outcome of evaluating one leg.
type LegFill struct {
	Requested      float64
	FilledSize     float64
	SentPrice      float64
	FillPrice      float64
	Slippage       float64
	Aggressiveness float64
	ProbExec       float64
	Marketable     bool
	Executed       bool
}

// FillSet carries every leg outcome plus the spread flag of the snapshot the
// order was matched against.
type FillSet struct {
	CloseLong  LegFill
	CloseShort LegFill
	OpenShort  LegFill
	OpenLong   LegFill
	SpreadFlag bool
}

// Executed reports whether any leg traded.
func (f FillSet) Executed() bool {
	return f.CloseLong.Executed || f.CloseShort.Executed || f.OpenShort.Executed || f.OpenLong.Executed
}

// TotalSlippage sums slippage over executed legs.
func (f FillSet) TotalSlippage() float64 {
	var total float64
	for _, leg := range []LegFill{f.CloseLong, f.CloseShort, f.OpenShort, f.OpenLong} {
		if leg.Executed {
			total += leg.Slippage
		}
	}
	return total
}

// FillSimulator decides fills against a future market snapshot using a
// price-aggressiveness model and a seedable random source.
type FillSimulator struct {
	params FillParams
	rng    *rand.Rand
}

// NewFillSimulator wires the execution parameters to an injected generator so
// seeded runs reproduce byte for byte.
func NewFillSimulator(params FillParams, rng *rand.Rand) *FillSimulator {
	return &FillSimulator{params: params, rng: rng}
}

// Attempt evaluates the intent against the snapshot the order reaches after
// latency. Legs run in the fixed order close_long, close_short, open_short,
// open_long; each consumes liquidity the later legs no longer see. Unfilled
// remainders are dropped, never carried to a later step.
func (s *FillSimulator) Attempt(intent OrderIntent, future tape.MarketSnapshot) FillSet {
	availableBid := future.BidQty
	availableAsk := future.AskQty

	set := FillSet{SpreadFlag: future.SpreadFlag}

	set.CloseLong = s.tryBidLeg(intent.CloseLong, intent.LimitPrice, future, &availableBid)
	set.CloseShort = s.tryAskLeg(intent.CloseShort, intent.LimitPrice, future, &availableAsk)
	set.OpenShort = s.tryBidLeg(intent.OpenShort, intent.LimitPrice, future, &availableBid)
	set.OpenLong = s.tryAskLeg(intent.OpenLong, intent.LimitPrice, future, &availableAsk)

	return set
}

// tryBidLeg handles legs that hit the bid (close_long, open_short): sells,
// marketable when the limit sits at or below the market bid.
func (s *FillSimulator) tryBidLeg(requested, sent float64, future tape.MarketSnapshot, available *float64) LegFill {
	fill := LegFill{Requested: requested, SentPrice: sent}
	if requested <= 0 {
		return fill
	}
	if sent > future.BidPrice {
		return fill
	}
	fill.Marketable = true
	fill.Aggressiveness = s.aggressiveness((future.BidPrice-sent)/future.BidPrice, s.params.CB)
	fill.ProbExec = s.probExec(fill.Aggressiveness, future.SpreadFlag)

	if s.rng.Float64() < fill.ProbExec && *available > 0 {
		fill.Executed = true
		fill.FilledSize = minFloat(requested, *available)
		fill.FillPrice = future.BidPrice
		fill.Slippage = fill.FillPrice - sent
		*available -= fill.FilledSize
	}
	return fill
}

// tryAskLeg handles legs that lift the ask (close_short, open_long): buys,
// marketable when the limit sits at or above the market ask.
func (s *FillSimulator) tryAskLeg(requested, sent float64, future tape.MarketSnapshot, available *float64) LegFill {
	fill := LegFill{Requested: requested, SentPrice: sent}
	if requested <= 0 {
		return fill
	}
	if sent < future.AskPrice {
		return fill
	}
	fill.Marketable = true
	fill.Aggressiveness = s.aggressiveness((sent-future.AskPrice)/future.AskPrice, s.params.CA)
	fill.ProbExec = s.probExec(fill.Aggressiveness, future.SpreadFlag)

	if s.rng.Float64() < fill.ProbExec && *available > 0 {
		fill.Executed = true
		fill.FilledSize = minFloat(requested, *available)
		fill.FillPrice = future.AskPrice
		fill.Slippage = sent - fill.FillPrice
		*available -= fill.FilledSize
	}
	return fill
}

// aggressiveness scales the relative crossing distance by the side's bound,
// floors it, and clamps into [0,1].
func (s *FillSimulator) aggressiveness(relativeCross, scale float64) float64 {
	agg := relativeCross * scale
	if agg < s.params.MinPriceAggressiveness {
		agg = s.params.MinPriceAggressiveness
	}
	return clamp(agg, 0, 1)
}

func (s *FillSimulator) probExec(aggressiveness float64, spreadFlag bool) float64 {
	if spreadFlag {
		return aggressiveness * s.params.SpreadPenaltyFactor
	}
	return aggressiveness
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
