package sampling

import (
	"fmt"
	"math/rand"

	"github.com/banshee-data/sample.report/internal/population"
)

// Result is everything one run produces: the selected rows in output order
// (stratum order, then ascending source order within a stratum) and the
// reconciled summary.
type Result struct {
	Rows    []population.Row
	Summary *Summary
	Plan    Plan
}

// Run executes the full pipeline over an in-memory population: partition,
// size, allocate, select, summarise. The only state threaded between stages
// is the seeded random source, consumed in stratum-key order, which is what
// makes identical inputs reproduce identical samples.
func Run(t *population.Table, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.IDColumn != "" && !t.HasColumn(cfg.IDColumn) {
		return nil, fmt.Errorf("%w: id column %q not found in input", ErrUnknownColumn, cfg.IDColumn)
	}

	buckets, err := Partition(t, cfg.StratifyFields)
	if err != nil {
		return nil, err
	}

	planned, err := ResolveSampleSize(t.Size(), cfg)
	if err != nil {
		return nil, err
	}
	if planned <= 0 && t.Size() > 0 {
		return nil, fmt.Errorf("%w: calculated sample size is 0; adjust parameters to select at least one record", ErrInvalidParameters)
	}

	plan, err := Allocate(buckets, planned, cfg.Overrides)
	if err != nil {
		return nil, err
	}

	step := 0
	if cfg.SystematicStep != nil {
		step = *cfg.SystematicStep
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	selections := make([]Selection, len(buckets))
	var rows []population.Row
	for i, b := range buckets {
		sel, err := Select(b, plan.Entries[i].SampleCount, cfg.Method, rng, step, cfg.RandomStart)
		if err != nil {
			return nil, err
		}
		selections[i] = sel
		plan.Entries[i].Systematic = sel.Systematic
		for _, pos := range sel.Positions {
			rows = append(rows, b.Rows[pos])
		}
	}

	return &Result{
		Rows:    rows,
		Summary: BuildSummary(cfg, t, buckets, plan, selections),
		Plan:    plan,
	}, nil
}
