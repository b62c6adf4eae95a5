package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sample.report/internal/population"
	"github.com/banshee-data/sample.report/internal/sampling"
)

func runFixture(t *testing.T) (*population.Table, *sampling.Result) {
	t.Helper()
	table, err := population.ReadCSV(strings.NewReader(
		"id,region\n1,A\n2,A\n3,B\n4,A\n5,A\n6,B\n7,A\n8,A\n9,B\n10,A\n"))
	require.NoError(t, err)

	size := 5
	result, err := sampling.Run(table, sampling.Config{
		Method:         sampling.MethodSimpleRandom,
		SampleSize:     &size,
		StratifyFields: []string{"region"},
		IDColumn:       "id",
		Seed:           42,
	})
	require.NoError(t, err)
	return table, result
}

func TestWriteSampleCSV(t *testing.T) {
	table, result := runFixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSampleCSV(&buf, table, result.Rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "id,region", lines[0])
	assert.Len(t, lines, 6, "header plus five selected rows")

	// Row order in the file matches the engine's output order.
	for i, row := range result.Rows {
		id, _ := table.Value(row, "id")
		assert.True(t, strings.HasPrefix(lines[i+1], id+","), "line %d should start with id %s: %q", i+1, id, lines[i+1])
	}
}

func TestWriteSummaryJSON(t *testing.T) {
	_, result := runFixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryJSON(&buf, result.Summary))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "methodology")
	assert.Contains(t, decoded, "allocations")
	assert.Contains(t, decoded, "sample_ids")

	ids := decoded["sample_ids"].([]interface{})
	assert.Len(t, ids, 5)
}

func TestWriteSummaryJSONDeterministic(t *testing.T) {
	// Two encodings of the same summary are byte-identical; run-to-run the
	// only variation is the run id and timestamp.
	_, result := runFixture(t)

	var a, b bytes.Buffer
	require.NoError(t, WriteSummaryJSON(&a, result.Summary))
	require.NoError(t, WriteSummaryJSON(&b, result.Summary))
	assert.Equal(t, a.String(), b.String())
}

func TestRenderDistributionChart(t *testing.T) {
	_, result := runFixture(t)

	var buf bytes.Buffer
	require.NoError(t, RenderDistributionChart(&buf, result.Summary))
	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "region=A")
	assert.Contains(t, html, "region=B")
}

func TestRenderDistributionChartUnstratified(t *testing.T) {
	table, err := population.ReadCSV(strings.NewReader("id\n1\n2\n3\n"))
	require.NoError(t, err)
	pct := 100.0
	result, err := sampling.Run(table, sampling.Config{
		Method:           sampling.MethodPercentage,
		SamplePercentage: &pct,
		Seed:             42,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = RenderDistributionChart(&buf, result.Summary)
	assert.Error(t, err, "nothing to chart without strata")
}
