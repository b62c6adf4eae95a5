// Package sampling implements deterministic audit sample selection: sizing a
// sample against a one-sided confidence bound, stratifying the population,
// allocating the sample across strata, and drawing concrete rows with a
// seeded random source. Given the same population, configuration and seed,
// a run reproduces the same sample bit for bit.
package sampling

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/banshee-data/sample.report/internal/population"
)

// Method is the closed set of selection strategies.
type Method string

const (
	MethodStatistical  Method = "statistical"
	MethodSimpleRandom Method = "simple_random"
	MethodPercentage   Method = "percentage"
	MethodSystematic   Method = "systematic"
)

// ParseMethod validates and normalises a method name.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(s)) {
	case MethodStatistical:
		return MethodStatistical, nil
	case MethodSimpleRandom:
		return MethodSimpleRandom, nil
	case MethodPercentage:
		return MethodPercentage, nil
	case MethodSystematic:
		return MethodSystematic, nil
	}
	return "", fmt.Errorf("%w: unsupported method %q (choose statistical, simple_random, percentage or systematic)", ErrInvalidParameters, s)
}

// UnspecifiedValue is the stable stratum key for a missing cell. It is its
// own stratum: never dropped and never merged with a concrete value.
const UnspecifiedValue = "<unspecified>"

// Stratum identifies one partition of the population: the stratify fields
// and the row's values for them, in field order.
type Stratum struct {
	Fields []string
	Values []string
}

// ID is the compact stratum identity used for coverage overrides and
// allocation adjustments: the values joined with commas, in field order.
func (s Stratum) ID() string { return strings.Join(s.Values, ",") }

// Label renders the stratum for logs and chart axes.
func (s Stratum) Label() string {
	if len(s.Fields) == 0 {
		return "(unstratified)"
	}
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f + "=" + s.Values[i]
	}
	return strings.Join(parts, ", ")
}

// Less orders strata lexicographically over their values. All enumeration
// of strata in output happens in this order.
func (s Stratum) Less(o Stratum) bool {
	for i := range s.Values {
		if i >= len(o.Values) {
			return false
		}
		if s.Values[i] != o.Values[i] {
			return s.Values[i] < o.Values[i]
		}
	}
	return len(s.Values) < len(o.Values)
}

// MarshalJSON renders the stratum as a field-to-value object.
func (s Stratum) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(s.Fields))
	for i, f := range s.Fields {
		m[f] = s.Values[i]
	}
	return json.Marshal(m)
}

// Bucket is a stratum plus the population rows that belong to it, in source
// order.
type Bucket struct {
	Stratum Stratum
	Rows    []population.Row
}

// Count returns the bucket's population count.
func (b Bucket) Count() int { return len(b.Rows) }

// Overrides carries the manual interventions an auditor may apply to a run.
// Coverage and Adjustments are keyed by Stratum.ID().
type Overrides struct {
	Justification string
	// Coverage sets a minimum sample count per stratum, applied before
	// proportional distribution and capped at the stratum's population.
	Coverage map[string]int
	// Adjustments force a stratum's final sample count after allocation.
	Adjustments map[string]int
}

// Empty reports whether no override of any kind is present.
func (o Overrides) Empty() bool {
	return o.Justification == "" && len(o.Coverage) == 0 && len(o.Adjustments) == 0
}

// Config is the full parameter set for one sampling run.
type Config struct {
	Method             Method
	Confidence         float64
	TolerableErrorRate float64
	ExpectedErrorRate  float64

	// Explicit parameters; nil means derived.
	SampleSize       *int
	SamplePercentage *float64
	SystematicStep   *int
	PopulationSize   *int // overrides N for statistical sizing only

	StratifyFields []string
	IDColumn       string
	Seed           int64
	RandomStart    bool // random start offset for systematic selection

	Overrides Overrides
}

// needsStatisticalSizing reports whether the run will hit the statistical
// size search, which is when the confidence/TER/EER domain matters.
func (c Config) needsStatisticalSizing() bool {
	switch c.Method {
	case MethodStatistical:
		return true
	case MethodSystematic:
		return c.SampleSize == nil && c.SamplePercentage == nil
	}
	return false
}

// Validate fails fast on out-of-domain parameters.
func (c Config) Validate() error {
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if c.needsStatisticalSizing() {
		if err := validateStatisticalParams(c.Confidence, c.TolerableErrorRate, c.ExpectedErrorRate); err != nil {
			return err
		}
	}
	if c.Method == MethodPercentage && c.SamplePercentage == nil {
		return fmt.Errorf("%w: sample percentage is required for percentage sampling", ErrInvalidParameters)
	}
	if c.Method == MethodSimpleRandom && c.SampleSize == nil && c.SamplePercentage == nil {
		return fmt.Errorf("%w: provide a sample size or percentage for simple_random sampling", ErrInvalidParameters)
	}
	if c.SamplePercentage != nil && (*c.SamplePercentage <= 0 || *c.SamplePercentage > 100) {
		return fmt.Errorf("%w: sample percentage must be in (0,100], got %v", ErrInvalidParameters, *c.SamplePercentage)
	}
	if c.SampleSize != nil && *c.SampleSize < 0 {
		return fmt.Errorf("%w: sample size must be non-negative, got %d", ErrInvalidParameters, *c.SampleSize)
	}
	if c.SystematicStep != nil && *c.SystematicStep < 1 {
		return fmt.Errorf("%w: systematic step must be at least 1, got %d", ErrInvalidParameters, *c.SystematicStep)
	}
	if c.PopulationSize != nil && *c.PopulationSize < 1 {
		return fmt.Errorf("%w: population size override must be positive, got %d", ErrInvalidParameters, *c.PopulationSize)
	}
	for id, n := range c.Overrides.Coverage {
		if n < 0 {
			return fmt.Errorf("%w: coverage override for %q must be non-negative, got %d", ErrInvalidParameters, id, n)
		}
	}
	for id, n := range c.Overrides.Adjustments {
		if n < 0 {
			return fmt.Errorf("%w: allocation adjustment for %q must be non-negative, got %d", ErrInvalidParameters, id, n)
		}
	}
	return nil
}

// sortBuckets orders buckets by stratum key for deterministic traversal.
func sortBuckets(buckets []Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Stratum.Less(buckets[j].Stratum)
	})
}
