package report

import (
	"github.com/rs/zerolog"

	"github.com/nimasha1228/SignalSim/internal/sim"
)

// Summary aggregates a finished result table.
type Summary struct {
	Steps        int
	Trades       int
	RealizedPnL  float64
	GrossPnL     float64
	Commission   float64
	NetPnL       float64
	AvgTradePnL  float64
	AvgSlippage  float64
	MaxDrawdown  float64
	DrawdownPct  float64
	FlaggedSteps int
}

// Summarize reduces the table using only its persisted columns, so the same
// numbers are reproducible from a results.csv alone.
func Summarize(rows []sim.ResultRow) Summary {
	s := Summary{Steps: len(rows)}
	if len(rows) == 0 {
		return s
	}

	var tradePnL, slippage float64
	peak := 0.0
	for _, row := range rows {
		if row.SpreadFlag {
			s.FlaggedSteps++
		}
		if row.TradedOrNot != 1 {
			continue
		}
		s.Trades++
		tradePnL += row.GrossPnLPerTrade
		slippage += row.Slippage
	}

	last := rows[len(rows)-1]
	s.RealizedPnL = last.RealizedPnL
	s.GrossPnL = last.GrossPnL
	s.Commission = last.Commission
	s.NetPnL = last.NetPnL

	// recompute drawdown from the net PnL column rather than trusting the
	// ledger's running figure; both must agree
	dd := 0.0
	for _, row := range rows {
		if row.NetPnL > peak {
			peak = row.NetPnL
		}
		if d := peak - row.NetPnL; d > dd {
			dd = d
		}
	}
	s.MaxDrawdown = dd
	if peak > 0 {
		s.DrawdownPct = dd / peak
	}

	if s.Trades > 0 {
		s.AvgTradePnL = tradePnL / float64(s.Trades)
		s.AvgSlippage = slippage / float64(s.Trades)
	}
	return s
}

// Log emits the summary as the end-of-run trade report.
func (s Summary) Log(log zerolog.Logger) {
	log.Info().
		Int("steps", s.Steps).
		Int("trades", s.Trades).
		Float64("realized_pnl", s.RealizedPnL).
		Float64("gross_pnl", s.GrossPnL).
		Float64("commission", s.Commission).
		Float64("net_pnl", s.NetPnL).
		Float64("avg_trade_pnl", s.AvgTradePnL).
		Float64("avg_slippage", s.AvgSlippage).
		Float64("max_drawdown", s.MaxDrawdown).
		Float64("drawdown_pct", s.DrawdownPct).
		Int("flagged_steps", s.FlaggedSteps).
		Msg("backtest summary")
}
