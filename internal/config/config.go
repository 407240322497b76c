// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "SIGNALSIM_CONFIG"

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
}

// Data points at the raw input tables and the locations for cleaned intermediates.
type Data struct {
	QuotesCSV           string `yaml:"quotes_csv"`
	SignalsCSV          string `yaml:"signals_csv"`
	QuotesValidatedCSV  string `yaml:"quotes_validated_csv"`
	SignalsValidatedCSV string `yaml:"signals_validated_csv"`
	MatchedCSV          string `yaml:"matched_csv"`
}

// Validation tunes the quote cleaning stage.
type Validation struct {
	K float64 `yaml:"k"` // spread outlier threshold in standard deviations
}

// Simulation groups the replay knobs consumed by the driver.
type Simulation struct {
	StrengthThreshold float64 `yaml:"strength_threshold"`
	LatencySecs       int     `yaml:"latency_in_secs"`
	OpenOrderSize     float64 `yaml:"open_order_size"`
	Seed              int64   `yaml:"seed"` // 0 means derive from wall clock
}

// Execution tunes the probabilistic fill model.
type Execution struct {
	CA                     float64 `yaml:"c_a"`
	CB                     float64 `yaml:"c_b"`
	MinPriceAggressiveness float64 `yaml:"min_price_aggressiveness"`
	SpreadPenaltyFactor    float64 `yaml:"spread_penalty_factor"`
	CommissionPerTrade     float64 `yaml:"commission_per_trade"`
}

// Output names the durable artifacts produced by a run.
type Output struct {
	ResultsCSV string `yaml:"results_csv"`
	FillsPath  string `yaml:"fills_path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Data       Data       `yaml:"data"`
	Validation Validation `yaml:"validation"`
	Simulation Simulation `yaml:"simulation"`
	Execution  Execution  `yaml:"execution"`
	Output     Output     `yaml:"output"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Resolve returns the config path honoring the SIGNALSIM_CONFIG override.
// A .env file next to the binary is loaded best-effort first.
func Resolve(fallback string) string {
	_ = godotenv.Load()
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return fallback
}

// Validate checks every documented range once at load time.
func (c *Config) Validate() error {
	if c.Simulation.OpenOrderSize <= 0 {
		return fmt.Errorf("simulation.open_order_size must be positive, got %v", c.Simulation.OpenOrderSize)
	}
	if c.Simulation.LatencySecs <= 0 {
		return fmt.Errorf("simulation.latency_in_secs must be positive, got %d", c.Simulation.LatencySecs)
	}
	if c.Simulation.StrengthThreshold < 0 {
		return fmt.Errorf("simulation.strength_threshold must be non-negative, got %v", c.Simulation.StrengthThreshold)
	}
	if c.Execution.SpreadPenaltyFactor <= 0 || c.Execution.SpreadPenaltyFactor > 1 {
		return fmt.Errorf("execution.spread_penalty_factor must be in (0,1], got %v", c.Execution.SpreadPenaltyFactor)
	}
	if c.Execution.CA <= 1 {
		return fmt.Errorf("execution.c_a must be greater than 1, got %v", c.Execution.CA)
	}
	if c.Execution.CB <= 1 {
		return fmt.Errorf("execution.c_b must be greater than 1, got %v", c.Execution.CB)
	}
	if c.Execution.MinPriceAggressiveness < 0 || c.Execution.MinPriceAggressiveness >= 1 {
		return fmt.Errorf("execution.min_price_aggressiveness must be in [0,1), got %v", c.Execution.MinPriceAggressiveness)
	}
	if c.Execution.CommissionPerTrade < 0 {
		return fmt.Errorf("execution.commission_per_trade must be non-negative, got %v", c.Execution.CommissionPerTrade)
	}
	if c.Validation.K <= 0 {
		return fmt.Errorf("validation.k must be positive, got %v", c.Validation.K)
	}
	return nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
