package sampling

import (
	"testing"

	"github.com/banshee-data/sample.report/internal/population"
)

// makeTable builds a population table for tests.
func makeTable(t *testing.T, columns []string, rows [][]string) *population.Table {
	t.Helper()
	table, err := population.NewTable(columns)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	for _, r := range rows {
		table.Append(r)
	}
	return table
}

// regionTable is a 10-row population with strata A (7 rows) and B (3 rows).
func regionTable(t *testing.T) *population.Table {
	t.Helper()
	rows := [][]string{
		{"1", "A"}, {"2", "A"}, {"3", "B"}, {"4", "A"}, {"5", "A"},
		{"6", "B"}, {"7", "A"}, {"8", "A"}, {"9", "B"}, {"10", "A"},
	}
	return makeTable(t, []string{"id", "region"}, rows)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
