// Package configs loads the YAML configuration that controls every tunable
// named in the fingerprinting and matching pipeline. The same file governs
// both ingestion and query, per the invariant that a catalogue and its
// queries must share one fixed configuration.
package configs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig selects and configures the postings store.
type DatabaseConfig struct {
	// Type is "mysql" or "postgres".
	Type string `yaml:"type"`
	// DSN is the driver-specific data source name.
	DSN string `yaml:"dsn"`
}

// FingerprintConfig holds every parameter that affects hash derivation.
// Changing any of these values invalidates an existing catalogue.
type FingerprintConfig struct {
	SampleRate             int     `yaml:"sample_rate"`
	NFFT                   int     `yaml:"n_fft"`
	HopLength              int     `yaml:"hop_length"`
	PeakNeighborhoodRadius int     `yaml:"peak_neighborhood_radius"`
	MinAmplitude           float64 `yaml:"min_amplitude"`
	FanValue               int     `yaml:"fan_value"`
	TimeWindow             int     `yaml:"time_window"`
	AlignmentBucket        int     `yaml:"alignment_bucket"`
	MinConfidence          int     `yaml:"min_confidence"`
}

// Config is the top-level configuration document.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
}

// Default returns the configuration defaults from the spec's §6 table.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Type: "postgres",
		},
		Fingerprint: FingerprintConfig{
			SampleRate:             22050,
			NFFT:                   2048,
			HopLength:              512,
			PeakNeighborhoodRadius: 20,
			MinAmplitude:           10.0,
			FanValue:               5,
			TimeWindow:             200,
			AlignmentBucket:        10,
			MinConfidence:          5,
		},
	}
}

// LoadConfig reads and parses a YAML configuration file over the package
// defaults: fields the file omits keep their default value, while a field
// the file sets explicitly (even to zero) takes the file's value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configuration that would produce a meaningless or
// unusable catalogue.
func (c Config) Validate() error {
	switch c.Database.Type {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database type: %q", c.Database.Type)
	}
	if c.Fingerprint.NFFT <= 0 || c.Fingerprint.NFFT&(c.Fingerprint.NFFT-1) != 0 {
		return fmt.Errorf("n_fft must be a positive power of two, got %d", c.Fingerprint.NFFT)
	}
	if c.Fingerprint.HopLength <= 0 {
		return fmt.Errorf("hop_length must be positive")
	}
	if c.Fingerprint.FanValue <= 0 {
		return fmt.Errorf("fan_value must be positive")
	}
	return nil
}
