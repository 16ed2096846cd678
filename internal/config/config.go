// Package config loads monitor settings from an optional YAML file
// and applies defaults. Flags on the CLI override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPollInterval   = time.Second
	DefaultCycleBudget    = 2 * time.Second
	DefaultWindow         = 60 * time.Second
	DefaultEnumerateEvery = 1
)

// Config holds everything the monitor consumes. The core engine does
// not own configuration; it receives these values at construction.
type Config struct {
	// PollInterval is the cadence of collection cycles.
	PollInterval time.Duration
	// CycleBudget bounds the wall-clock time of one cycle. Interfaces
	// still pending at expiry are recorded as timeouts.
	CycleBudget time.Duration
	// Window is the span of history to retain per interface.
	Window time.Duration
	// Parallel toggles concurrent per-interface collection.
	Parallel bool
	// EnumerateEvery re-lists interfaces every N cycles. 1 = every
	// cycle.
	EnumerateEvery int
	// SmoothingAlpha is the EWMA factor applied to rates. 0 disables
	// smoothing.
	SmoothingAlpha float64
	// LatencyTargets are probed on a slow cadence for the latency
	// panel. Empty disables probing.
	LatencyTargets []string
	// PublicIP toggles the public address lookup in the header.
	PublicIP bool
	// LogLevel and LogFile configure logging. The TUI owns the
	// terminal, so logs default to a file.
	LogLevel string
	LogFile  string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		PollInterval:   DefaultPollInterval,
		CycleBudget:    DefaultCycleBudget,
		Window:         DefaultWindow,
		Parallel:       true,
		EnumerateEvery: DefaultEnumerateEvery,
		SmoothingAlpha: 0,
		LatencyTargets: []string{"1.1.1.1", "8.8.8.8"},
		PublicIP:       true,
		LogLevel:       "info",
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nbmon.yaml"
	}
	return filepath.Join(home, ".config", "nbmon", "config.yaml")
}

// Load reads path on top of defaults. A missing file is not an error;
// the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UnmarshalYAML overlays file values onto the existing config.
// Durations are written as Go duration strings ("1s", "500ms"); a
// key that is absent keeps its current value.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type shadow struct {
		PollInterval   *string  `yaml:"poll_interval"`
		CycleBudget    *string  `yaml:"cycle_budget"`
		Window         *string  `yaml:"window"`
		Parallel       *bool    `yaml:"parallel"`
		EnumerateEvery *int     `yaml:"enumerate_every"`
		SmoothingAlpha *float64 `yaml:"smoothing_alpha"`
		LatencyTargets []string `yaml:"latency_targets"`
		PublicIP       *bool    `yaml:"public_ip"`
		LogLevel       *string  `yaml:"log_level"`
		LogFile        *string  `yaml:"log_file"`
	}

	var s shadow
	if err := node.Decode(&s); err != nil {
		return err
	}

	setDuration := func(dst *time.Duration, src *string, key string) error {
		if src == nil {
			return nil
		}
		d, err := time.ParseDuration(*src)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	if err := setDuration(&c.PollInterval, s.PollInterval, "poll_interval"); err != nil {
		return err
	}
	if err := setDuration(&c.CycleBudget, s.CycleBudget, "cycle_budget"); err != nil {
		return err
	}
	if err := setDuration(&c.Window, s.Window, "window"); err != nil {
		return err
	}
	if s.Parallel != nil {
		c.Parallel = *s.Parallel
	}
	if s.EnumerateEvery != nil {
		c.EnumerateEvery = *s.EnumerateEvery
	}
	if s.SmoothingAlpha != nil {
		c.SmoothingAlpha = *s.SmoothingAlpha
	}
	if s.LatencyTargets != nil {
		c.LatencyTargets = s.LatencyTargets
	}
	if s.PublicIP != nil {
		c.PublicIP = *s.PublicIP
	}
	if s.LogLevel != nil {
		c.LogLevel = *s.LogLevel
	}
	if s.LogFile != nil {
		c.LogFile = *s.LogFile
	}
	return nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.CycleBudget <= 0 {
		return fmt.Errorf("cycle_budget must be positive, got %s", c.CycleBudget)
	}
	if c.Window < c.PollInterval {
		return fmt.Errorf("window %s is shorter than poll_interval %s", c.Window, c.PollInterval)
	}
	if c.EnumerateEvery < 1 {
		return fmt.Errorf("enumerate_every must be >= 1, got %d", c.EnumerateEvery)
	}
	if c.SmoothingAlpha < 0 || c.SmoothingAlpha > 1 {
		return fmt.Errorf("smoothing_alpha must be in [0,1], got %g", c.SmoothingAlpha)
	}
	return nil
}

// HistoryCapacity converts the window span into a sample count at the
// configured poll interval.
func (c *Config) HistoryCapacity() int {
	n := int(c.Window / c.PollInterval)
	if n < 1 {
		n = 1
	}
	return n
}
