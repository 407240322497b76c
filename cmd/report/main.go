// Binary report recomputes the summary metrics from an existing results.csv,
// proving the table carries everything downstream consumers need.
package main

import (
	"flag"

	"github.com/nimasha1228/SignalSim/internal/report"
	"github.com/nimasha1228/SignalSim/internal/util"
)

func main() {
	path := flag.String("results", "output/results.csv", "path to a results.csv produced by signalsim")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := util.NewLogger(*level)

	rows, err := report.ReadCSV(*path)
	if err != nil {
		log.Fatal().Err(err).Str("path", *path).Msg("read results")
	}

	report.Summarize(rows).Log(log)
}
