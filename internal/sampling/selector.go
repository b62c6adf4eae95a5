package sampling

import (
	"fmt"
	"math/rand"
	"sort"
)

// Selection holds the chosen positions within one bucket, always in
// ascending source order, plus the systematic draw when that method ran.
type Selection struct {
	Positions  []int
	Systematic *SystematicDraw
}

// Select picks k of the bucket's n rows using the given method. The rng is
// the run's single seeded stream; callers must invoke Select in stratum-key
// order so identical seeds reproduce identical samples. Positions come back
// sorted ascending, so a full selection is the bucket in source order.
//
// step only applies to systematic selection; zero means derive it from n/k.
// randomStart=false pins the systematic start offset to zero.
func Select(b Bucket, k int, method Method, rng *rand.Rand, step int, randomStart bool) (Selection, error) {
	n := b.Count()
	if k > n {
		return Selection{}, fmt.Errorf("%w: stratum %s allocated %d of %d rows", ErrInsufficientPopulation, b.Stratum.Label(), k, n)
	}
	if k <= 0 {
		return Selection{Positions: []int{}}, nil
	}

	switch method {
	case MethodStatistical, MethodSimpleRandom, MethodPercentage:
		// Percentage differs from simple_random only in how k was derived.
		return Selection{Positions: drawWithoutReplacement(n, k, rng)}, nil
	case MethodSystematic:
		return systematicDraw(n, k, step, rng, randomStart), nil
	}
	return Selection{}, fmt.Errorf("%w: unsupported method %q", ErrInvalidParameters, method)
}

// drawWithoutReplacement picks k distinct positions from [0,n) uniformly,
// via a partial Fisher-Yates shuffle, and returns them sorted ascending.
func drawWithoutReplacement(n, k int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	picked := idx[:k]
	sort.Ints(picked)
	return picked
}

// systematicDraw selects every step-th position from a drawn start offset.
// If the walk exhausts the bucket before k positions are collected, the
// shortfall is filled from the unused positions in ascending order; no
// position is ever revisited and at most n are selected.
func systematicDraw(n, k, step int, rng *rand.Rand, randomStart bool) Selection {
	if step <= 0 {
		step = n / k
	}
	if step < 1 {
		step = 1
	}
	start := 0
	if randomStart && step > 1 {
		start = rng.Intn(step)
	}

	taken := make([]bool, n)
	positions := make([]int, 0, k)
	for pos := start; pos < n && len(positions) < k; pos += step {
		taken[pos] = true
		positions = append(positions, pos)
	}
	for pos := 0; pos < n && len(positions) < k; pos++ {
		if !taken[pos] {
			taken[pos] = true
			positions = append(positions, pos)
		}
	}
	sort.Ints(positions)
	return Selection{Positions: positions, Systematic: &SystematicDraw{Step: step, Start: start}}
}
