// Package config loads sampling run configuration from JSON. Fields are
// pointer-optional so a partial file is safe: anything omitted falls back to
// the Get* defaults, and CLI flags may override individual values on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// OverrideConfig is the manual-intervention block of a run config. Coverage
// and Adjustments are keyed by the stratum's comma-joined values in
// stratify-field order (e.g. "EU,High").
type OverrideConfig struct {
	Justification string         `json:"justification,omitempty"`
	Coverage      map[string]int `json:"coverage,omitempty"`
	Adjustments   map[string]int `json:"adjustments,omitempty"`
}

// RunConfig mirrors the sampling engine's parameters as an on-disk JSON
// document.
type RunConfig struct {
	Method                *string  `json:"method,omitempty"`
	Confidence            *float64 `json:"confidence,omitempty"`
	TolerableErrorRate    *float64 `json:"tolerable_error_rate,omitempty"`
	ExpectedErrorRate     *float64 `json:"expected_error_rate,omitempty"`
	SampleSize            *int     `json:"sample_size,omitempty"`
	SamplePercentage      *float64 `json:"sample_percentage,omitempty"`
	SystematicStep        *int     `json:"systematic_step,omitempty"`
	PopulationSize        *int     `json:"population_size,omitempty"`
	Stratify              []string `json:"stratify,omitempty"`
	IDColumn              *string  `json:"id_column,omitempty"`
	Seed                  *int64   `json:"seed,omitempty"`
	SystematicRandomStart *bool    `json:"systematic_random_start,omitempty"`

	Overrides *OverrideConfig `json:"overrides,omitempty"`
}

// Load reads and validates a RunConfig from a JSON file. The path must have
// a .json extension and stay under the size cap.
func Load(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RunConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the shape-level constraints; the engine re-validates the
// statistical domain when it runs.
func (c *RunConfig) Validate() error {
	if c.Confidence != nil && (*c.Confidence <= 0 || *c.Confidence >= 1) {
		return fmt.Errorf("confidence must be in (0,1) exclusive, got %v", *c.Confidence)
	}
	if c.TolerableErrorRate != nil && (*c.TolerableErrorRate <= 0 || *c.TolerableErrorRate >= 1) {
		return fmt.Errorf("tolerable_error_rate must be in (0,1) exclusive, got %v", *c.TolerableErrorRate)
	}
	if c.ExpectedErrorRate != nil && (*c.ExpectedErrorRate < 0 || *c.ExpectedErrorRate >= 1) {
		return fmt.Errorf("expected_error_rate must be in [0,1), got %v", *c.ExpectedErrorRate)
	}
	if c.SampleSize != nil && *c.SampleSize < 0 {
		return fmt.Errorf("sample_size must be non-negative, got %d", *c.SampleSize)
	}
	if c.SamplePercentage != nil && (*c.SamplePercentage <= 0 || *c.SamplePercentage > 100) {
		return fmt.Errorf("sample_percentage must be in (0,100], got %v", *c.SamplePercentage)
	}
	if c.SystematicStep != nil && *c.SystematicStep < 1 {
		return fmt.Errorf("systematic_step must be at least 1, got %d", *c.SystematicStep)
	}
	return nil
}

// GetMethod returns the configured method or the default.
func (c *RunConfig) GetMethod() string {
	if c.Method == nil || *c.Method == "" {
		return "statistical"
	}
	return *c.Method
}

// GetConfidence returns the confidence level or the default.
func (c *RunConfig) GetConfidence() float64 {
	if c.Confidence == nil {
		return 0.99
	}
	return *c.Confidence
}

// GetTolerableErrorRate returns the TER or the default.
func (c *RunConfig) GetTolerableErrorRate() float64 {
	if c.TolerableErrorRate == nil {
		return 0.05
	}
	return *c.TolerableErrorRate
}

// GetExpectedErrorRate returns the EER or the default.
func (c *RunConfig) GetExpectedErrorRate() float64 {
	if c.ExpectedErrorRate == nil {
		return 0.01
	}
	return *c.ExpectedErrorRate
}

// GetIDColumn returns the id column name, empty when unset.
func (c *RunConfig) GetIDColumn() string {
	if c.IDColumn == nil {
		return ""
	}
	return *c.IDColumn
}

// GetSeed returns the random seed or the default.
func (c *RunConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 42
	}
	return *c.Seed
}

// GetSystematicRandomStart reports whether systematic selection draws a
// random start offset; defaults to true.
func (c *RunConfig) GetSystematicRandomStart() bool {
	if c.SystematicRandomStart == nil {
		return true
	}
	return *c.SystematicRandomStart
}
