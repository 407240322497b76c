// Package report persists the simulation result table and reduces it into the
// summary statistics downstream consumers need.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nimasha1228/SignalSim/internal/sim"
	"github.com/nimasha1228/SignalSim/internal/tape"
)

var resultHeader = []string{
	"signal", "signal_strength", "order_kind", "order_sent_time", "exchange_time",
	"mid_price", "market_bid", "market_ask", "spread_flag", "traded_or_not",
	"prob_exec", "price_aggressiveness", "slippage", "gross_pnl_per_trade",
	"close_long_requested", "close_long_filled", "close_long_sent_price", "close_long_fill_price",
	"close_short_requested", "close_short_filled", "close_short_sent_price", "close_short_fill_price",
	"open_short_requested", "open_short_filled", "open_short_sent_price", "open_short_fill_price",
	"open_long_requested", "open_long_filled", "open_long_sent_price", "open_long_fill_price",
	"realized_pnl", "unrealized_pnl", "gross_pnl", "commission", "net_pnl",
	"peak_pnl", "max_drawdown", "long_position", "short_position",
}

// WriteCSV persists the ordered result table with the full column contract.
func WriteCSV(path string, rows []sim.ResultRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results csv: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(resultHeader); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(marshalRow(row)); err != nil {
			return fmt.Errorf("write results row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV parses a results table back into rows so every summary metric can be
// recomputed purely from the persisted columns.
func ReadCSV(path string) ([]sim.ResultRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read results csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty results csv: %s", path)
	}
	if len(records[0]) != len(resultHeader) {
		return nil, fmt.Errorf("results csv %s: expected %d columns, got %d", path, len(resultHeader), len(records[0]))
	}

	rows := make([]sim.ResultRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := unmarshalRow(record)
		if err != nil {
			return nil, fmt.Errorf("results row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func marshalRow(r sim.ResultRow) []string {
	out := make([]string, 0, len(resultHeader))
	out = append(out,
		strconv.Itoa(r.Signal),
		f(r.SignalStrength),
		r.OrderKind,
		tape.FormatTimestamp(r.OrderSentTime),
		tape.FormatTimestamp(r.ExchangeTime),
		f(r.MidPrice), f(r.MarketBid), f(r.MarketAsk),
		b(r.SpreadFlag),
		strconv.Itoa(r.TradedOrNot),
		f(r.ProbExec), f(r.Aggressiveness), f(r.Slippage), f(r.GrossPnLPerTrade),
	)
	for _, leg := range []sim.LegFill{r.CloseLong, r.CloseShort, r.OpenShort, r.OpenLong} {
		out = append(out, f(leg.Requested), f(leg.FilledSize), f(leg.SentPrice), f(leg.FillPrice))
	}
	out = append(out,
		f(r.RealizedPnL), f(r.UnrealizedPnL), f(r.GrossPnL), f(r.Commission), f(r.NetPnL),
		f(r.PeakPnL), f(r.MaxDrawdown), f(r.LongPosition), f(r.ShortPosition),
	)
	return out
}

func unmarshalRow(record []string) (sim.ResultRow, error) {
	var row sim.ResultRow
	var err error

	if row.Signal, err = strconv.Atoi(record[0]); err != nil {
		return row, fmt.Errorf("signal: %w", err)
	}
	row.SignalStrength = pf(record[1])
	row.OrderKind = record[2]
	row.OrderSentTime = tape.ParseTimestamp(record[3])
	row.ExchangeTime = tape.ParseTimestamp(record[4])
	row.MidPrice = pf(record[5])
	row.MarketBid = pf(record[6])
	row.MarketAsk = pf(record[7])
	row.SpreadFlag = record[8] == "1"
	if row.TradedOrNot, err = strconv.Atoi(record[9]); err != nil {
		return row, fmt.Errorf("traded_or_not: %w", err)
	}
	row.ProbExec = pf(record[10])
	row.Aggressiveness = pf(record[11])
	row.Slippage = pf(record[12])
	row.GrossPnLPerTrade = pf(record[13])

	legs := []*sim.LegFill{&row.CloseLong, &row.CloseShort, &row.OpenShort, &row.OpenLong}
	col := 14
	for _, leg := range legs {
		leg.Requested = pf(record[col])
		leg.FilledSize = pf(record[col+1])
		leg.SentPrice = pf(record[col+2])
		leg.FillPrice = pf(record[col+3])
		leg.Executed = leg.FilledSize > 0
		col += 4
	}

	row.RealizedPnL = pf(record[col])
	row.UnrealizedPnL = pf(record[col+1])
	row.GrossPnL = pf(record[col+2])
	row.Commission = pf(record[col+3])
	row.NetPnL = pf(record[col+4])
	row.PeakPnL = pf(record[col+5])
	row.MaxDrawdown = pf(record[col+6])
	row.LongPosition = pf(record[col+7])
	row.ShortPosition = pf(record[col+8])
	return row, nil
}

func f(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func b(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func pf(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
