package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tuning thresholds for the analysis engine. Defaults match
// the behavior the reminder service was calibrated against; deployments can
// override individual values from a YAML file.
type Config struct {
	// RecurringMissWeeks is how many distinct weeks the same weekday must show
	// a miss before the slot is flagged as recurring
	RecurringMissWeeks int `yaml:"recurring_miss_weeks"`

	// ConsistentDelayStdDevMax is the delay standard deviation (minutes) below
	// which a slot counts as consistently delayed
	ConsistentDelayStdDevMax float64 `yaml:"consistent_delay_stddev_max"`

	// MinDelaySamples is the minimum number of taken doses required before the
	// delay consistency flag can be set
	MinDelaySamples int `yaml:"min_delay_samples"`

	// ConfidenceSaturation is the dose count at which aggregation confidence
	// reaches 1.0
	ConfidenceSaturation int `yaml:"confidence_saturation"`
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		RecurringMissWeeks:       3,
		ConsistentDelayStdDevMax: 10.0,
		MinDelaySamples:          3,
		ConfidenceSaturation:     20,
	}
}

// LoadConfig reads tuning overrides from a YAML file on top of the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read analysis config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse analysis config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("analysis config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the thresholds are usable
func (c *Config) Validate() error {
	if c.RecurringMissWeeks < 1 {
		return fmt.Errorf("recurring_miss_weeks must be at least 1")
	}
	if c.ConsistentDelayStdDevMax <= 0 {
		return fmt.Errorf("consistent_delay_stddev_max must be positive")
	}
	if c.MinDelaySamples < 2 {
		return fmt.Errorf("min_delay_samples must be at least 2")
	}
	if c.ConfidenceSaturation < 1 {
		return fmt.Errorf("confidence_saturation must be at least 1")
	}
	return nil
}
