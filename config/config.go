// Package config loads and validates ValidatorConfig, the tolerance and
// output settings for a subway-validator run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gotidy/ptr"
	"gopkg.in/yaml.v3"
)

// ValidatorConfig is the complete validator configuration.
type ValidatorConfig struct {
	Tolerances ToleranceConfig `yaml:"tolerances"`
	Modes      ModeConfig      `yaml:"modes"`
	Output     OutputConfig    `yaml:"output"`
}

// ToleranceConfig carries the numeric tolerances used across city
// validation and route/station geometry checks (spec.md §4.1, §4.6).
type ToleranceConfig struct {
	// AllowedStationsMismatch is the fraction of a city's expected
	// station count that StationsFound may fall short by before the
	// city is marked bad.
	AllowedStationsMismatch float64 `yaml:"allowedStationsMismatch"`
	// AllowedTransfersMismatch is the same tolerance, as a fraction of
	// expected interchange count, for transfers.
	AllowedTransfersMismatch float64 `yaml:"allowedTransfersMismatch"`
	// MaxDistanceStopToLine is the maximum distance, in meters, a stop
	// may sit from its route's line. Only Validate checks it; the model
	// package uses its own fixed constant and does not read this field.
	MaxDistanceStopToLine float64 `yaml:"maxDistanceStopToLine"`
	// MaxDistanceToEntrances is the maximum distance, in meters, an
	// entrance may sit from its station. Only Validate checks it; the
	// model package uses its own fixed constant and does not read this
	// field.
	MaxDistanceToEntrances float64 `yaml:"maxDistanceToEntrances"`
	// DisplacementTolerance is the maximum distance, in meters, an
	// object may have moved since a previous run and still be
	// considered the same object, for recovery-data matching. Only
	// Validate checks it; the model package uses its own fixed constant
	// and does not read this field.
	DisplacementTolerance float64 `yaml:"displacementTolerance"`
}

// ModeConfig holds the default accepted transport modes, split between
// the rapid-transit modes the core pipeline targets and the overground
// modes used by the optional overground validation branch.
type ModeConfig struct {
	RapidTransit []string `yaml:"rapidTransit"`
	Overground   []string `yaml:"overground"`
}

// OutputConfig configures output settings.
type OutputConfig struct {
	Format                 string `yaml:"format"` // json, gtfs, routing, html
	IncludeDetails         bool   `yaml:"includeDetails"`
	GroupBySeverity        bool   `yaml:"groupBySeverity"`
	MaxEntries             int    `yaml:"maxEntries"` // 0 = unlimited
	UnusedEntrancesGeoJSON bool   `yaml:"unusedEntrancesGeoJSON"`
}

// ValidationOptions carries per-run overrides, using optional pointer
// fields the way the teacher's options type does, via gotidy/ptr.
type ValidationOptions struct {
	ConcurrentCities *int
	Overground       *bool
	RecoveryDataPath *string
}

// ConcurrentCitiesOrDefault returns ConcurrentCities, or 4 when unset.
func (o *ValidationOptions) ConcurrentCitiesOrDefault() int {
	if o.ConcurrentCities == nil {
		return *ptr.Of(4)
	}
	return *o.ConcurrentCities
}

// DefaultConfig returns the default configuration, mirroring the
// organicmaps/subways defaults (subways/consts.py).
func DefaultConfig() *ValidatorConfig {
	return &ValidatorConfig{
		Tolerances: ToleranceConfig{
			AllowedStationsMismatch:  0.02,
			AllowedTransfersMismatch: 0.07,
			MaxDistanceStopToLine:    50.0,
			MaxDistanceToEntrances:   300.0,
			DisplacementTolerance:    300.0,
		},
		Modes: ModeConfig{
			RapidTransit: []string{"subway", "light_rail"},
			Overground:   []string{"tram"},
		},
		Output: OutputConfig{
			Format:                 "json",
			IncludeDetails:         true,
			GroupBySeverity:        true,
			MaxEntries:             0,
			UnusedEntrancesGeoJSON: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to
// DefaultConfig when configPath is empty.
func LoadConfig(configPath string) (*ValidatorConfig, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	if !filepath.IsAbs(configPath) && strings.Contains(configPath, "..") {
		return nil, fmt.Errorf("invalid config file path: %s", configPath)
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file.
func (c *ValidatorConfig) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

// Validate checks the configuration for internal consistency.
func (c *ValidatorConfig) Validate() error {
	if c.Tolerances.AllowedStationsMismatch < 0 {
		return fmt.Errorf("allowedStationsMismatch cannot be negative")
	}
	if c.Tolerances.AllowedTransfersMismatch < 0 {
		return fmt.Errorf("allowedTransfersMismatch cannot be negative")
	}
	if c.Tolerances.MaxDistanceStopToLine <= 0 {
		return fmt.Errorf("maxDistanceStopToLine must be positive")
	}
	if c.Tolerances.MaxDistanceToEntrances <= 0 {
		return fmt.Errorf("maxDistanceToEntrances must be positive")
	}
	if c.Tolerances.DisplacementTolerance <= 0 {
		return fmt.Errorf("displacementTolerance must be positive")
	}

	validFormats := map[string]bool{"json": true, "gtfs": true, "routing": true, "html": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output format: %s (valid: json, gtfs, routing, html)", c.Output.Format)
	}

	if len(c.Modes.RapidTransit) == 0 {
		return fmt.Errorf("modes.rapidTransit cannot be empty")
	}

	return nil
}

// GenerateDefaultConfigFile writes the default configuration to configPath.
func GenerateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return cfg.SaveConfig(configPath)
}
