package tape

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts seen in the raw exports. Some feeds emit comma decimal
// separators, normalized before parsing.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// ParseTimestamp normalizes and parses a raw timestamp field. A zero time is
// returned when no layout matches; validation drops such rows.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// FormatTimestamp renders a timestamp the way the output tables expect it.
func FormatTimestamp(ts time.Time) string {
	return ts.Format("2006-01-02 15:04:05.999999999")
}

func parseFloat(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func readTable(path string, want int) ([][]string, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty csv: %s", path)
	}
	header := records[0]
	if len(header) < want {
		return nil, nil, fmt.Errorf("csv %s: expected at least %d columns, got %d", path, want, len(header))
	}
	return records[1:], header, nil
}

// LoadQuotes reads a raw quote table. Unparsable numeric fields become NaN
// and unparsable timestamps become the zero time so the validation stage can
// apply its null policy instead of aborting the load.
func LoadQuotes(path string) ([]MarketSnapshot, error) {
	rows, _, err := readTable(path, 5)
	if err != nil {
		return nil, err
	}
	quotes := make([]MarketSnapshot, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		quotes = append(quotes, MarketSnapshot{
			Timestamp: ParseTimestamp(row[0]),
			BidPrice:  parseFloat(row[1]),
			AskPrice:  parseFloat(row[2]),
			BidQty:    parseFloat(row[3]),
			AskQty:    parseFloat(row[4]),
		})
	}
	return quotes, nil
}

// LoadSignals reads a raw signal table of timestamp and strength columns.
func LoadSignals(path string) ([]SignalEvent, error) {
	rows, _, err := readTable(path, 2)
	if err != nil {
		return nil, err
	}
	signals := make([]SignalEvent, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		signals = append(signals, SignalEvent{
			Timestamp: ParseTimestamp(row[0]),
			Strength:  parseFloat(row[1]),
		})
	}
	return signals, nil
}

// WriteQuotes persists a cleaned quote table including the spread flag.
func WriteQuotes(path string, quotes []MarketSnapshot) error {
	return writeCSV(path, quoteHeader, len(quotes), func(i int) []string {
		q := quotes[i]
		return []string{
			FormatTimestamp(q.Timestamp),
			formatFloat(q.BidPrice),
			formatFloat(q.AskPrice),
			formatFloat(q.BidQty),
			formatFloat(q.AskQty),
			boolToInt(q.SpreadFlag),
		}
	})
}

// WriteSignals persists a cleaned signal table.
func WriteSignals(path string, signals []SignalEvent) error {
	return writeCSV(path, signalHeader, len(signals), func(i int) []string {
		s := signals[i]
		return []string{FormatTimestamp(s.Timestamp), formatFloat(s.Strength)}
	})
}

// WriteEvents persists the merged event table for audit.
func WriteEvents(path string, events []Event) error {
	return writeCSV(path, eventHeader, len(events), func(i int) []string {
		e := events[i]
		return []string{
			FormatTimestamp(e.Timestamp),
			formatFloat(e.BidPrice),
			formatFloat(e.AskPrice),
			formatFloat(e.BidQty),
			formatFloat(e.AskQty),
			boolToInt(e.SpreadFlag),
			formatFloat(e.Strength),
			e.Action.String(),
			strconv.Itoa(int(e.Action)),
		}
	})
}

var (
	quoteHeader  = []string{"timestamp", "bid_price", "ask_price", "bid_qty", "ask_qty", "spread_flag"}
	signalHeader = []string{"timestamp", "signal_strength"}
	eventHeader  = []string{"timestamp", "bid_price", "ask_price", "bid_qty", "ask_qty", "spread_flag", "signal_strength", "action", "action_int"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func boolToInt(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := writer.Write(row(i)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
