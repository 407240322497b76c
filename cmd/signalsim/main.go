// Binary signalsim runs the full backtest pipeline: validate the raw quote
// and signal tables, integrate and classify the signals, replay the merged
// tape through the simulator, and persist the result table.
package main

import (
	"math/rand"
	"time"

	"github.com/nimasha1228/SignalSim/internal/config"
	"github.com/nimasha1228/SignalSim/internal/integrate"
	"github.com/nimasha1228/SignalSim/internal/ledger"
	"github.com/nimasha1228/SignalSim/internal/metrics"
	"github.com/nimasha1228/SignalSim/internal/report"
	"github.com/nimasha1228/SignalSim/internal/sim"
	"github.com/nimasha1228/SignalSim/internal/tape"
	"github.com/nimasha1228/SignalSim/internal/util"
	"github.com/nimasha1228/SignalSim/internal/validate"
)

func main() {
	cfgPath := config.Resolve("config/config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := util.NewLogger("info")
		boot.Fatal().Err(err).Str("path", cfgPath).Msg("load config")
	}

	log, closer := util.NewFileLogger(cfg.App.LogLevel, cfg.App.LogFile)
	if closer != nil {
		defer closer.Close()
	}

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	quotes, err := tape.LoadQuotes(cfg.Data.QuotesCSV)
	if err != nil {
		log.Fatal().Err(err).Msg("load quotes")
	}
	signals, err := tape.LoadSignals(cfg.Data.SignalsCSV)
	if err != nil {
		log.Fatal().Err(err).Msg("load signals")
	}

	quotes, _ = validate.Quotes(quotes, cfg.Validation.K, log)
	signals, _ = validate.Signals(signals, quotes, log)

	if cfg.Data.QuotesValidatedCSV != "" {
		if err := tape.WriteQuotes(cfg.Data.QuotesValidatedCSV, quotes); err != nil {
			log.Error().Err(err).Msg("write validated quotes")
		}
	}
	if cfg.Data.SignalsValidatedCSV != "" {
		if err := tape.WriteSignals(cfg.Data.SignalsValidatedCSV, signals); err != nil {
			log.Error().Err(err).Msg("write validated signals")
		}
	}

	events := integrate.Merge(quotes, signals, cfg.Simulation.StrengthThreshold, log)
	if cfg.Data.MatchedCSV != "" {
		if err := tape.WriteEvents(cfg.Data.MatchedCSV, events); err != nil {
			log.Error().Err(err).Msg("write matched events")
		}
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info().Int64("seed", seed).Msg("fill randomness seeded")

	var recorder sim.Recorder
	if cfg.Output.FillsPath != "" {
		jsonl, err := report.NewJSONLRecorder(cfg.Output.FillsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open fills recorder")
		}
		defer jsonl.Close()
		recorder = jsonl
	}

	fills := sim.NewFillSimulator(sim.FillParams{
		CA:                     cfg.Execution.CA,
		CB:                     cfg.Execution.CB,
		MinPriceAggressiveness: cfg.Execution.MinPriceAggressiveness,
		SpreadPenaltyFactor:    cfg.Execution.SpreadPenaltyFactor,
	}, rand.New(rand.NewSource(seed)))

	driver := sim.NewDriver(
		tape.New(events),
		fills,
		ledger.New(cfg.Execution.CommissionPerTrade),
		cfg.Simulation.OpenOrderSize,
		time.Duration(cfg.Simulation.LatencySecs)*time.Second,
		recorder,
		log,
	)
	rows := driver.Run()

	if err := report.WriteCSV(cfg.Output.ResultsCSV, rows); err != nil {
		log.Fatal().Err(err).Msg("write results")
	}
	log.Info().Str("path", cfg.Output.ResultsCSV).Int("rows", len(rows)).Msg("results written")

	report.Summarize(rows).Log(log)
}
