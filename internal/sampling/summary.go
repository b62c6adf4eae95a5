package sampling

import (
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/sample.report/internal/population"
)

// Methodology records how the sample size was determined and drawn.
type Methodology struct {
	Method                    Method   `json:"method"`
	Confidence                float64  `json:"confidence"`
	TolerableErrorRate        float64  `json:"tolerable_error_rate"`
	ExpectedErrorRate         float64  `json:"expected_error_rate"`
	SampleSizeParameter       *int     `json:"sample_size_parameter"`
	SamplePercentageParameter *float64 `json:"sample_percentage_parameter"`
	SystematicStepParameter   *int     `json:"systematic_step_parameter"`
	Seed                      int64    `json:"seed"`
	SystematicRandomStart     bool     `json:"systematic_random_start"`
	PlannedSampleSize         int      `json:"planned_sample_size"`
}

// DistributionEntry is one stratum's count and share within a cohort.
type DistributionEntry struct {
	Stratum Stratum `json:"stratum"`
	Count   int     `json:"count"`
	Share   float64 `json:"share"`
}

// Cohort describes either the population or the drawn sample.
type Cohort struct {
	Size         int                 `json:"size"`
	Distribution []DistributionEntry `json:"distribution"`
}

// OverrideRecord reports every manual intervention applied to the run.
type OverrideRecord struct {
	HasOverrides          bool                   `json:"has_overrides"`
	Justification         string                 `json:"justification,omitempty"`
	ParameterOverrides    map[string]interface{} `json:"parameter_overrides,omitempty"`
	CoverageOverrides     map[string]int         `json:"coverage_overrides,omitempty"`
	AllocationAdjustments map[string]int         `json:"allocation_adjustments,omitempty"`
}

// Summary is the single externally-visible artifact of a run: a reconciled
// record of the methodology, both distributions, the allocation plan and the
// selected row identifiers. Downstream writers and report generators treat
// it as read-only; every number they surface must be traceable to it.
type Summary struct {
	RunID               string         `json:"run_id"`
	GeneratedAtUTC      string         `json:"generated_at_utc"`
	Methodology         Methodology    `json:"methodology"`
	StratifyFields      []string       `json:"stratify_fields"`
	Population          Cohort         `json:"population"`
	Sample              Cohort         `json:"sample"`
	Allocations         []Allocation   `json:"allocations"`
	AllocationShortfall int            `json:"allocation_shortfall"`
	Overrides           OverrideRecord `json:"overrides"`
	SampleIDs           []string       `json:"sample_ids"`
}

// BuildSummary reconciles a run's intermediate products into the summary.
// Pure aggregation: no randomness, no I/O. Sample identifiers appear in
// stratum order, then selection order within each stratum.
func BuildSummary(cfg Config, t *population.Table, buckets []Bucket, plan Plan, selections []Selection) *Summary {
	s := &Summary{
		RunID:          uuid.NewString(),
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Methodology: Methodology{
			Method:                    cfg.Method,
			Confidence:                cfg.Confidence,
			TolerableErrorRate:        cfg.TolerableErrorRate,
			ExpectedErrorRate:         cfg.ExpectedErrorRate,
			SampleSizeParameter:       cfg.SampleSize,
			SamplePercentageParameter: cfg.SamplePercentage,
			SystematicStepParameter:   cfg.SystematicStep,
			Seed:                      cfg.Seed,
			SystematicRandomStart:     cfg.RandomStart,
			PlannedSampleSize:         plan.Requested,
		},
		StratifyFields:      append([]string{}, cfg.StratifyFields...),
		Allocations:         plan.Entries,
		AllocationShortfall: plan.Shortfall,
		SampleIDs:           []string{},
	}

	s.Population.Size = t.Size()
	s.Sample.Size = plan.Achieved

	if len(cfg.StratifyFields) > 0 {
		s.Population.Distribution = make([]DistributionEntry, 0, len(buckets))
		s.Sample.Distribution = make([]DistributionEntry, 0, len(buckets))
		for i, b := range buckets {
			popShare := 0.0
			if t.Size() > 0 {
				popShare = float64(b.Count()) / float64(t.Size())
			}
			s.Population.Distribution = append(s.Population.Distribution, DistributionEntry{
				Stratum: b.Stratum, Count: b.Count(), Share: popShare,
			})
			picked := len(selections[i].Positions)
			sampleShare := 0.0
			if plan.Achieved > 0 {
				sampleShare = float64(picked) / float64(plan.Achieved)
			}
			s.Sample.Distribution = append(s.Sample.Distribution, DistributionEntry{
				Stratum: b.Stratum, Count: picked, Share: sampleShare,
			})
		}
	} else {
		s.Population.Distribution = []DistributionEntry{}
		s.Sample.Distribution = []DistributionEntry{}
	}

	for i, b := range buckets {
		for _, pos := range selections[i].Positions {
			s.SampleIDs = append(s.SampleIDs, t.Identifier(b.Rows[pos], cfg.IDColumn))
		}
	}

	s.Overrides = buildOverrideRecord(cfg)
	return s
}

func buildOverrideRecord(cfg Config) OverrideRecord {
	rec := OverrideRecord{
		Justification:         cfg.Overrides.Justification,
		CoverageOverrides:     cfg.Overrides.Coverage,
		AllocationAdjustments: cfg.Overrides.Adjustments,
	}

	params := map[string]interface{}{}
	if cfg.PopulationSize != nil {
		params["population_size"] = *cfg.PopulationSize
	}
	if cfg.SampleSize != nil {
		params["sample_size"] = *cfg.SampleSize
	}
	if cfg.SamplePercentage != nil {
		params["sample_percentage"] = *cfg.SamplePercentage
	}
	if cfg.SystematicStep != nil {
		params["systematic_step"] = *cfg.SystematicStep
	}
	if len(params) > 0 {
		rec.ParameterOverrides = params
	}

	rec.HasOverrides = rec.Justification != "" ||
		len(rec.ParameterOverrides) > 0 ||
		len(rec.CoverageOverrides) > 0 ||
		len(rec.AllocationAdjustments) > 0
	return rec
}
