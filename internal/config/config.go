// Package config centralizes runtime configuration for the dlog node. A YAML
// file is loaded with defaults merged over missing fields so the node runs
// with zero configuration in development. The ledger takes its monetary
// parameters from here at construction and never re-reads them.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dlog-universe/dlogd/pkg/logger"
)

// secondsPerYear uses the Julian year, matching the annualized interest math.
const secondsPerYear = 365.25 * 24 * 3600

// Monetary carries the Ω-monetary parameters. Rates are fractional
// (0.618 = 61.8%).
type Monetary struct {
	AnnualHolderInterest   float64 `yaml:"annual_holder_interest" json:"annual_holder_interest"`
	AnnualMinerInflation   float64 `yaml:"annual_miner_inflation" json:"annual_miner_inflation"`
	TargetBlockTimeSeconds float64 `yaml:"target_block_time_seconds" json:"target_block_time_seconds"`
	NumericBase            int     `yaml:"numeric_base" json:"numeric_base"`
}

// GenesisBalance seeds one account at startup.
type GenesisBalance struct {
	Phone  string `yaml:"phone"`
	Label  string `yaml:"label"`
	Amount int64  `yaml:"amount"`
}

// Slide is one entry of the sky slideshow, measured in ledger ticks.
type Slide struct {
	ID            string `yaml:"id"`
	DurationTicks uint64 `yaml:"duration_ticks"`
}

// Sky configures the slideshow scheduler.
type Sky struct {
	Schedule string  `yaml:"schedule"` // cron spec, e.g. "@every 8s"
	Slides   []Slide `yaml:"slides"`
}

// RateLimit bounds request throughput per client.
type RateLimit struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	Burst             int `yaml:"burst"`
}

// Config holds every configurable option of the node.
type Config struct {
	NodeName    string  `yaml:"node_name"`
	BindAddr    string  `yaml:"bind_addr"`
	PublicURL   string  `yaml:"public_url"`
	PhiTickRate float64 `yaml:"phi_tick_rate"`

	Monetary  Monetary         `yaml:"monetary"`
	Genesis   []GenesisBalance `yaml:"genesis"`
	Sky       Sky              `yaml:"sky"`
	RateLimit RateLimit        `yaml:"rate_limit"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	JournalPath        string   `yaml:"journal_path"`

	Logging logger.LoggingConfig `yaml:"logging"`
}

// Default returns the canonical mainnet configuration.
func Default() *Config {
	return &Config{
		NodeName:    "dlog-node-default",
		BindAddr:    "0.0.0.0:8080",
		PhiTickRate: 1000.0,
		Monetary: Monetary{
			AnnualHolderInterest:   0.618,
			AnnualMinerInflation:   0.088248,
			TargetBlockTimeSeconds: 8.0,
			NumericBase:            8,
		},
		Genesis: []GenesisBalance{
			{Phone: "TEST", Label: "genesis", Amount: 1_000_000},
		},
		Sky: Sky{
			Schedule: "@every 8s",
			Slides: []Slide{
				{ID: "dawn", DurationTicks: 8},
				{ID: "noon", DurationTicks: 8},
				{ID: "dusk", DurationTicks: 8},
				{ID: "void", DurationTicks: 8},
			},
		},
		RateLimit: RateLimit{RequestsPerSecond: 50, Burst: 100},
		Logging:   logger.LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML file and merges defaults over zero-valued fields. A
// missing file yields defaults without error; a malformed file is an error.
func Load(path string) (*Config, error) {
	def := Default()
	if path == "" {
		return def, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.merge(def)
	return cfg, nil
}

// LoadOrDefault is Load with parse failures downgraded to defaults, for
// development friction-free startup paths.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// merge backfills zero-valued fields from defaults after unmarshalling.
func (c *Config) merge(def *Config) {
	if c.NodeName == "" {
		c.NodeName = def.NodeName
	}
	if c.BindAddr == "" {
		c.BindAddr = def.BindAddr
	}
	if c.PhiTickRate <= 0 {
		c.PhiTickRate = def.PhiTickRate
	}
	if c.Monetary.TargetBlockTimeSeconds <= 0 {
		c.Monetary.TargetBlockTimeSeconds = def.Monetary.TargetBlockTimeSeconds
	}
	if c.Monetary.NumericBase == 0 {
		c.Monetary.NumericBase = def.Monetary.NumericBase
	}
	if c.Sky.Schedule == "" {
		c.Sky.Schedule = def.Sky.Schedule
	}
	if len(c.Sky.Slides) == 0 {
		c.Sky.Slides = def.Sky.Slides
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = def.RateLimit.RequestsPerSecond
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = def.RateLimit.Burst
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
}

// BlockInterval is the cadence of the background ticker.
func (c *Config) BlockInterval() time.Duration {
	return time.Duration(c.Monetary.TargetBlockTimeSeconds * float64(time.Second))
}

// TicksPerYear converts the block time into the compounding divisor used by
// the ledger. Doubling the tick frequency halves the per-tick exponent, so
// the annualized rate is cadence-independent.
func (c *Config) TicksPerYear() float64 {
	return secondsPerYear / c.Monetary.TargetBlockTimeSeconds
}

// View is the sanitized shape served on /config.
type View struct {
	NodeName    string   `json:"node_name"`
	BindAddr    string   `json:"bind_addr"`
	PublicURL   string   `json:"public_url,omitempty"`
	PhiTickRate float64  `json:"phi_tick_rate"`
	Monetary    Monetary `json:"monetary"`
}

// View returns the publicly visible configuration.
func (c *Config) View() View {
	return View{
		NodeName:    c.NodeName,
		BindAddr:    c.BindAddr,
		PublicURL:   c.PublicURL,
		PhiTickRate: c.PhiTickRate,
		Monetary:    c.Monetary,
	}
}
