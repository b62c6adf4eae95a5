package sampling

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDeterministicForSeed(t *testing.T) {
	table := regionTable(t)
	cfg := Config{
		Method:         MethodSimpleRandom,
		SampleSize:     intPtr(5),
		StratifyFields: []string{"region"},
		IDColumn:       "id",
		Seed:           42,
		RandomStart:    true,
	}

	first, err := Run(table, cfg)
	require.NoError(t, err)
	second, err := Run(table, cfg)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Summary.SampleIDs, second.Summary.SampleIDs); diff != "" {
		t.Errorf("same seed produced different samples (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Rows, second.Rows); diff != "" {
		t.Errorf("selected rows differ between identical runs:\n%s", diff)
	}
	if diff := cmp.Diff(first.Plan, second.Plan); diff != "" {
		t.Errorf("allocation plans differ between identical runs:\n%s", diff)
	}
	assert.Equal(t, first.Summary.Allocations, second.Summary.Allocations)
}

func TestRunPercentageFullPopulationRoundTrip(t *testing.T) {
	table := regionTable(t)
	result, err := Run(table, Config{
		Method:           MethodPercentage,
		SamplePercentage: floatPtr(100),
		Seed:             42,
	})
	require.NoError(t, err)

	require.Len(t, result.Rows, table.Size())
	for i, row := range result.Rows {
		assert.Equal(t, i, row.Index, "row %d out of source order", i)
	}
	want := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	assert.Equal(t, want, result.Summary.SampleIDs, "positional identifiers without an id column")
}

func TestRunStratifiedAllocationAndOrdering(t *testing.T) {
	table := regionTable(t)
	result, err := Run(table, Config{
		Method:         MethodSimpleRandom,
		SampleSize:     intPtr(5),
		StratifyFields: []string{"region"},
		IDColumn:       "id",
		Seed:           42,
	})
	require.NoError(t, err)

	require.Len(t, result.Plan.Entries, 2)
	assert.Equal(t, 4, result.Plan.Entries[0].SampleCount, "stratum A")
	assert.Equal(t, 1, result.Plan.Entries[1].SampleCount, "stratum B")
	require.Len(t, result.Rows, 5)
	require.Len(t, result.Summary.SampleIDs, 5)

	// Output order is stratum order, ascending source order within each.
	aIDs := map[string]bool{"1": true, "2": true, "4": true, "5": true, "7": true, "8": true, "10": true}
	for _, id := range result.Summary.SampleIDs[:4] {
		assert.True(t, aIDs[id], "first four ids must come from stratum A, got %q", id)
	}
	bIDs := map[string]bool{"3": true, "6": true, "9": true}
	assert.True(t, bIDs[result.Summary.SampleIDs[4]], "last id must come from stratum B")

	prev := -1
	for _, row := range result.Rows[:4] {
		assert.Greater(t, row.Index, prev, "stratum A rows must stay in source order")
		prev = row.Index
	}
}

func TestRunStatisticalEndToEnd(t *testing.T) {
	rows := make([][]string, 200)
	for i := range rows {
		rows[i] = []string{"r"}
	}
	table := makeTable(t, []string{"k"}, rows)

	result, err := Run(table, Config{
		Method:             MethodStatistical,
		Confidence:         0.99,
		TolerableErrorRate: 0.05,
		ExpectedErrorRate:  0.01,
		Seed:               42,
	})
	require.NoError(t, err)
	assert.Equal(t, 67, result.Summary.Methodology.PlannedSampleSize)
	assert.Len(t, result.Rows, 67)
	assert.Equal(t, 67, result.Summary.Sample.Size)
	assert.Equal(t, 200, result.Summary.Population.Size)
}

func TestRunSystematicRecordsDraw(t *testing.T) {
	table := regionTable(t)
	result, err := Run(table, Config{
		Method:      MethodSystematic,
		SampleSize:  intPtr(5),
		Seed:        42,
		RandomStart: true,
	})
	require.NoError(t, err)

	require.Len(t, result.Plan.Entries, 1)
	draw := result.Plan.Entries[0].Systematic
	require.NotNil(t, draw, "systematic runs must record step and start")
	assert.Equal(t, 2, draw.Step, "floor(10/5)")
	assert.GreaterOrEqual(t, draw.Start, 0)
	assert.Less(t, draw.Start, draw.Step)
}

func TestRunUnknownIDColumn(t *testing.T) {
	table := regionTable(t)
	_, err := Run(table, Config{
		Method:     MethodSimpleRandom,
		SampleSize: intPtr(3),
		IDColumn:   "account_no",
		Seed:       42,
	})
	assert.True(t, errors.Is(err, ErrUnknownColumn), "got %v", err)
}

func TestRunZeroPlannedSizeFails(t *testing.T) {
	table := regionTable(t)
	_, err := Run(table, Config{
		Method:     MethodSimpleRandom,
		SampleSize: intPtr(0),
		Seed:       42,
	})
	assert.True(t, errors.Is(err, ErrInvalidParameters), "got %v", err)
}

func TestRunInvalidMethod(t *testing.T) {
	table := regionTable(t)
	_, err := Run(table, Config{Method: "cluster", Seed: 42})
	assert.True(t, errors.Is(err, ErrInvalidParameters), "got %v", err)
}
