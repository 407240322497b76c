package sim

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/nimasha1228/SignalSim/internal/ledger"
	"github.com/nimasha1228/SignalSim/internal/metrics"
	"github.com/nimasha1228/SignalSim/internal/tape"
)

// ResultRow is the durable audit record for one processed step.
type ResultRow struct {
	Signal           int       `json:"signal"`
	SignalStrength   float64   `json:"signal_strength"`
	OrderKind        string    `json:"order_kind"`
	OrderSentTime    time.Time `json:"order_sent_time"`
	ExchangeTime     time.Time `json:"exchange_time"`
	MidPrice         float64   `json:"mid_price"`
	MarketBid        float64   `json:"market_bid"`
	MarketAsk        float64   `json:"market_ask"`
	SpreadFlag       bool      `json:"spread_flag"`
	TradedOrNot      int       `json:"traded_or_not"`
	ProbExec         float64   `json:"prob_exec"`
	Aggressiveness   float64   `json:"price_aggressiveness"`
	Slippage         float64   `json:"slippage"`
	GrossPnLPerTrade float64   `json:"gross_pnl_per_trade"`

	CloseLong  LegFill `json:"close_long"`
	CloseShort LegFill `json:"close_short"`
	OpenShort  LegFill `json:"open_short"`
	OpenLong   LegFill `json:"open_long"`

	RealizedPnL   float64 `json:"realized_pnl"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	GrossPnL      float64 `json:"gross_pnl"`
	Commission    float64 `json:"commission"`
	NetPnL        float64 `json:"net_pnl"`
	PeakPnL       float64 `json:"peak_pnl"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	LongPosition  float64 `json:"long_position"`
	ShortPosition float64 `json:"short_position"`
}

// Recorder captures result rows as they are committed.
type Recorder interface {
	Record(ResultRow)
}

// Driver replays the merged event tape through the intent generator, fill
// simulator, and ledger, committing one result row per matched step.
type Driver struct {
	tape          *tape.Tape
	fills         *FillSimulator
	ledger        *ledger.Ledger
	openOrderSize float64
	latency       time.Duration
	recorder      Recorder
	log           zerolog.Logger
}

// NewDriver assembles a driver over an immutable tape. The recorder may be nil.
func NewDriver(tp *tape.Tape, fills *FillSimulator, led *ledger.Ledger, openOrderSize float64, latency time.Duration, recorder Recorder, log zerolog.Logger) *Driver {
	return &Driver{
		tape:          tp,
		fills:         fills,
		ledger:        led,
		openOrderSize: openOrderSize,
		latency:       latency,
		recorder:      recorder,
		log:           log,
	}
}

// Run scans the tape left to right. For each event it builds an intent from
// the current signal and position, locates the snapshot the order reaches
// after latency, and either commits the step (fills, ledger update, result
// row) or cancels it when no snapshot exists at that exact instant. Committed
// steps are never revisited.
func (d *Driver) Run() []ResultRow {
	d.log.Info().Msg("-------- Trade Report --------")

	var (
		longPosition  float64
		shortPosition float64
		prevGross     float64
	)
	results := make([]ResultRow, 0, d.tape.Len())

	for _, event := range d.tape.Events() {
		intent := GenerateIntent(event.Action, event.BidPrice, event.AskPrice, longPosition, shortPosition, d.openOrderSize)

		execTime := event.Timestamp.Add(d.latency)
		future, ok := d.tape.At(execTime)
		if !ok {
			// order cancelled: nothing reaches the book, nothing is recorded
			metrics.CancelsTotal.Inc()
			continue
		}

		set := d.fills.Attempt(intent, future.MarketSnapshot)
		snap := d.ledger.Update(
			future.BidPrice, future.AskPrice,
			set.OpenLong.FilledSize, set.CloseLong.FilledSize,
			set.OpenShort.FilledSize, set.CloseShort.FilledSize,
		)
		longPosition = snap.LongPosition
		shortPosition = snap.ShortPosition

		row := buildRow(event, intent, set, snap, future.MarketSnapshot, execTime, prevGross)
		prevGross = snap.GrossPnL
		results = append(results, row)

		metrics.StepsTotal.Inc()
		countFills(set)

		if row.TradedOrNot == 1 {
			d.log.Debug().
				Str("kind", intent.Kind).
				Float64("net_pnl", snap.NetPnL).
				Float64("long", snap.LongPosition).
				Float64("short", snap.ShortPosition).
				Time("ts", event.Timestamp).
				Msg("step traded")
		}
		if d.recorder != nil {
			d.recorder.Record(row)
		}
	}

	d.log.Info().Int("rows", len(results)).Msg("simulation complete")
	return results
}

func buildRow(event tape.Event, intent OrderIntent, set FillSet, snap ledger.Snapshot, future tape.MarketSnapshot, execTime time.Time, prevGross float64) ResultRow {
	traded := 0
	grossPerTrade := 0.0
	if set.Executed() {
		traded = 1
		grossPerTrade = snap.GrossPnL - prevGross
	}

	// the open leg is the one every non-hold intent carries
	prob, agg := 0.0, 0.0
	switch intent.Signal {
	case tape.Buy:
		prob, agg = set.OpenLong.ProbExec, set.OpenLong.Aggressiveness
	case tape.Sell:
		prob, agg = set.OpenShort.ProbExec, set.OpenShort.Aggressiveness
	}

	return ResultRow{
		Signal:           int(intent.Signal),
		SignalStrength:   event.Strength,
		OrderKind:        intent.Kind,
		OrderSentTime:    event.Timestamp,
		ExchangeTime:     execTime,
		MidPrice:         (event.BidPrice + event.AskPrice) / 2,
		MarketBid:        future.BidPrice,
		MarketAsk:        future.AskPrice,
		SpreadFlag:       set.SpreadFlag,
		TradedOrNot:      traded,
		ProbExec:         prob,
		Aggressiveness:   agg,
		Slippage:         set.TotalSlippage(),
		GrossPnLPerTrade: grossPerTrade,
		CloseLong:        set.CloseLong,
		CloseShort:       set.CloseShort,
		OpenShort:        set.OpenShort,
		OpenLong:         set.OpenLong,
		RealizedPnL:      snap.RealizedPnL,
		UnrealizedPnL:    snap.UnrealizedPnL,
		GrossPnL:         snap.GrossPnL,
		Commission:       snap.Commission,
		NetPnL:           snap.NetPnL,
		PeakPnL:          snap.PeakPnL,
		MaxDrawdown:      snap.MaxDrawdown,
		LongPosition:     snap.LongPosition,
		ShortPosition:    snap.ShortPosition,
	}
}

func countFills(set FillSet) {
	if set.CloseLong.Executed {
		metrics.FillsTotal.WithLabelValues(string(LegCloseLong)).Inc()
	}
	if set.CloseShort.Executed {
		metrics.FillsTotal.WithLabelValues(string(LegCloseShort)).Inc()
	}
	if set.OpenShort.Executed {
		metrics.FillsTotal.WithLabelValues(string(LegOpenShort)).Inc()
	}
	if set.OpenLong.Executed {
		metrics.FillsTotal.WithLabelValues(string(LegOpenLong)).Inc()
	}
}
