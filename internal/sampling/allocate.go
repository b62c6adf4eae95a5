package sampling

import (
	"math"

	"github.com/banshee-data/sample.report/internal/monitoring"
)

// SystematicDraw records the computed step and drawn start offset for a
// systematic selection, for the audit trail.
type SystematicDraw struct {
	Step  int `json:"step"`
	Start int `json:"start"`
}

// Allocation is one stratum's line in the allocation plan.
type Allocation struct {
	Stratum           Stratum         `json:"stratum"`
	PopulationCount   int             `json:"population_count"`
	Proportional      float64         `json:"proportional_allocation"`
	SampleCount       int             `json:"sample_count"`
	ShareOfPopulation float64         `json:"share_of_population"`
	ShareOfSample     float64         `json:"share_of_sample"`
	Difference        float64         `json:"allocation_difference"`
	Systematic        *SystematicDraw `json:"systematic,omitempty"`
}

// Plan is the full allocation of a requested sample size across strata.
// Entries are in stratum-key order, matching the bucket order.
type Plan struct {
	Requested int
	Achieved  int
	// Shortfall is the number of requested units that could not be placed
	// because every stratum was saturated. Reported, never hidden.
	Shortfall int
	Entries   []Allocation
}

// Allocate distributes a total sample size across stratum buckets.
//
// Stratified allocation is proportional with largest-remainder rounding:
// each stratum's ideal is its coverage floor plus its population share of
// the remaining units; integer units are assigned by floor, then one at a
// time to the stratum currently furthest below its ideal, ties going to the
// lexicographically earlier stratum key. Counts are capped at the stratum
// population and capped units flow to the next-largest deficit among
// unsaturated strata. When the requested total covers every non-empty
// stratum, each gets at least one unit.
func Allocate(buckets []Bucket, total int, ov Overrides) (Plan, error) {
	plan := Plan{Requested: total, Entries: make([]Allocation, len(buckets))}

	populationSize := 0
	for _, b := range buckets {
		populationSize += b.Count()
	}
	for i, b := range buckets {
		e := &plan.Entries[i]
		e.Stratum = b.Stratum
		e.PopulationCount = b.Count()
		if populationSize > 0 {
			e.ShareOfPopulation = float64(b.Count()) / float64(populationSize)
			e.Proportional = float64(total) * e.ShareOfPopulation
		}
	}
	if total <= 0 || populationSize == 0 {
		plan.reconcile()
		return plan, nil
	}

	warnUnknownOverrides(buckets, ov)

	// Unstratified population: a single bucket with an empty stratum key.
	if len(buckets) == 1 && len(buckets[0].Stratum.Fields) == 0 {
		n := total
		if n > buckets[0].Count() {
			n = buckets[0].Count()
		}
		plan.Entries[0].SampleCount = n
		plan.reconcile()
		return plan, nil
	}

	// Coverage floors come first, capped at each stratum's population.
	floors := make([]int, len(buckets))
	floorTotal := 0
	for i, b := range buckets {
		if want, ok := ov.Coverage[b.Stratum.ID()]; ok {
			if want > b.Count() {
				want = b.Count()
			}
			floors[i] = want
			floorTotal += want
		}
	}
	remaining := total - floorTotal
	if remaining < 0 {
		remaining = 0
	}

	ideal := make([]float64, len(buckets))
	alloc := make([]int, len(buckets))
	for i, b := range buckets {
		ideal[i] = float64(floors[i]) + float64(remaining)*float64(b.Count())/float64(populationSize)
		alloc[i] = int(math.Floor(ideal[i] + 1e-9))
		if alloc[i] < floors[i] {
			alloc[i] = floors[i]
		}
		if alloc[i] > b.Count() {
			alloc[i] = b.Count()
		}
	}

	// Hand out the remaining units one at a time to the largest deficit.
	// This is largest-remainder rounding on the first pass and cap
	// redistribution on later passes; strict > makes ties favour the
	// earlier stratum key.
	for sum(alloc) < total {
		best := -1
		bestDeficit := 0.0
		for i, b := range buckets {
			if alloc[i] >= b.Count() {
				continue
			}
			if d := ideal[i] - float64(alloc[i]); best == -1 || d > bestDeficit {
				best = i
				bestDeficit = d
			}
		}
		if best == -1 {
			break // every stratum saturated
		}
		alloc[best]++
	}

	// Minimum-coverage floor: when the total can cover every non-empty
	// stratum, none is left out entirely.
	nonEmpty := 0
	for _, b := range buckets {
		if b.Count() > 0 {
			nonEmpty++
		}
	}
	if total >= nonEmpty {
		for i, b := range buckets {
			if b.Count() > 0 && alloc[i] == 0 {
				alloc[i] = 1
			}
		}
	}

	// Trim any overshoot the floor raise introduced, largest count first,
	// never below a coverage floor or the one-unit minimum.
	for sum(alloc) > total {
		best := -1
		for i := range buckets {
			low := floors[i]
			if low < 1 {
				low = 1
			}
			if alloc[i] <= low {
				continue
			}
			if best == -1 || alloc[i] > alloc[best] {
				best = i
			}
		}
		if best == -1 {
			break // floors alone exceed the request; overrides win
		}
		alloc[best]--
	}

	if achieved := sum(alloc); achieved < total {
		plan.Shortfall = total - achieved
		monitoring.Logf("WARNING: allocation shortfall: requested %d, population caps allow %d", total, achieved)
	}

	// Manual post-hoc adjustments replace a stratum's final count.
	for i, b := range buckets {
		if adj, ok := ov.Adjustments[b.Stratum.ID()]; ok {
			if adj > b.Count() {
				adj = b.Count()
			}
			alloc[i] = adj
		}
	}

	for i := range plan.Entries {
		plan.Entries[i].SampleCount = alloc[i]
	}
	plan.reconcile()
	return plan, nil
}

// reconcile recomputes the achieved total and the per-stratum derived fields.
func (p *Plan) reconcile() {
	p.Achieved = 0
	for i := range p.Entries {
		p.Achieved += p.Entries[i].SampleCount
	}
	for i := range p.Entries {
		e := &p.Entries[i]
		e.Difference = float64(e.SampleCount) - e.Proportional
		if p.Achieved > 0 {
			e.ShareOfSample = float64(e.SampleCount) / float64(p.Achieved)
		} else {
			e.ShareOfSample = 0
		}
	}
}

func warnUnknownOverrides(buckets []Bucket, ov Overrides) {
	known := make(map[string]bool, len(buckets))
	for _, b := range buckets {
		known[b.Stratum.ID()] = true
	}
	for id := range ov.Coverage {
		if !known[id] {
			monitoring.Logf("WARNING: coverage override for unknown stratum %q ignored", id)
		}
	}
	for id := range ov.Adjustments {
		if !known[id] {
			monitoring.Logf("WARNING: allocation adjustment for unknown stratum %q ignored", id)
		}
	}
}

func sum(xs []int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}
