// Package ledger tracks running long/short exposure and realized/unrealized
// PnL as fills are applied against the replay tape.
package ledger

import "math"

const epsilon = 1e-6

type sideState struct {
	SpentValue float64 // notional committed at entry
	Size       float64
	AvgEntry   float64
	Realized   float64
	Unrealized float64
}

// Ledger is the single mutable resource of a simulation run. It is owned by
// the driver and updated exactly once per processed step, in timestamp order.
type Ledger struct {
	long  sideState
	short sideState

	commissionPerTrade float64
	commission         float64

	peakNet     float64
	maxDrawdown float64
}

// Snapshot is the immutable per-step view folded into a result row.
type Snapshot struct {
	RealizedPnL   float64
	UnrealizedPnL float64
	GrossPnL      float64
	Commission    float64
	NetPnL        float64
	PeakPnL       float64
	MaxDrawdown   float64
	DrawdownPct   float64

	LongPosition  float64
	ShortPosition float64
	NetPosition   float64
	AvgLongEntry  float64
	AvgShortEntry float64
}

// New constructs a flat ledger charging the given commission per executed leg.
func New(commissionPerTrade float64) *Ledger {
	return &Ledger{commissionPerTrade: commissionPerTrade}
}

// Update applies the step's fills, marks open positions to the supplied touch,
// charges commission per executed leg, and advances the drawdown watermark.
// Longs enter at the ask and exit at the bid; shorts enter at the bid and
// cover at the ask. Closing size is clamped to the held position.
func (l *Ledger) Update(bestBid, bestAsk, openedLong, closedLong, openedShort, closedShort float64) Snapshot {
	legs := 0

	if openedLong > epsilon {
		legs++
		spent := openedLong * bestAsk
		newSpent := l.long.SpentValue + spent
		newSize := l.long.Size + openedLong
		l.long.AvgEntry = newSpent / newSize
		l.long.SpentValue = newSpent
		l.long.Size = newSize
	}

	if closedLong > epsilon {
		legs++
		closed := math.Min(closedLong, l.long.Size)
		spentForClosed := closed * l.long.AvgEntry
		returned := closed * bestBid
		l.long.Realized += returned - spentForClosed
		l.long.SpentValue -= spentForClosed
		l.long.Size -= closed
		if l.long.Size < epsilon {
			l.long.Size = 0
			l.long.SpentValue = 0
			l.long.AvgEntry = 0
		}
	}

	if openedShort > epsilon {
		legs++
		received := openedShort * bestBid
		newSpent := l.short.SpentValue + received
		newSize := l.short.Size + openedShort
		l.short.AvgEntry = newSpent / newSize
		l.short.SpentValue = newSpent
		l.short.Size = newSize
	}

	if closedShort > epsilon {
		legs++
		closed := math.Min(closedShort, l.short.Size)
		receivedAtEntry := closed * l.short.AvgEntry
		costToCover := closed * bestAsk
		l.short.Realized += receivedAtEntry - costToCover
		l.short.SpentValue -= receivedAtEntry
		l.short.Size -= closed
		if l.short.Size < epsilon {
			l.short.Size = 0
			l.short.SpentValue = 0
			l.short.AvgEntry = 0
		}
	}

	// mark to market: longs against the bid, shorts against the ask
	l.long.Unrealized = l.long.Size*bestBid - l.long.SpentValue
	l.short.Unrealized = l.short.SpentValue - l.short.Size*bestAsk

	l.commission += float64(legs) * l.commissionPerTrade

	gross := l.long.Realized + l.short.Realized + l.long.Unrealized + l.short.Unrealized
	net := gross - l.commission
	if net > l.peakNet {
		l.peakNet = net
	}
	if dd := l.peakNet - net; dd > l.maxDrawdown {
		l.maxDrawdown = dd
	}

	ddPct := 0.0
	if l.peakNet > epsilon {
		ddPct = l.maxDrawdown / l.peakNet
	}

	return Snapshot{
		RealizedPnL:   l.long.Realized + l.short.Realized,
		UnrealizedPnL: l.long.Unrealized + l.short.Unrealized,
		GrossPnL:      gross,
		Commission:    l.commission,
		NetPnL:        net,
		PeakPnL:       l.peakNet,
		MaxDrawdown:   l.maxDrawdown,
		DrawdownPct:   ddPct,
		LongPosition:  l.long.Size,
		ShortPosition: l.short.Size,
		NetPosition:   l.long.Size - l.short.Size,
		AvgLongEntry:  l.long.AvgEntry,
		AvgShortEntry: l.short.AvgEntry,
	}
}
