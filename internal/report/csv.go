// Package report writes a sampling run's outputs: the selected rows as CSV,
// the summary as JSON, and an optional distribution chart as offline HTML.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/sample.report/internal/population"
)

// WriteSampleCSV writes the selected rows as delimited text, header first,
// in the exact order the engine produced them.
func WriteSampleCSV(w io.Writer, t *population.Table, rows []population.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveSampleCSV writes the selected rows to a file.
func SaveSampleCSV(path string, t *population.Table, rows []population.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create sample file: %w", err)
	}
	defer f.Close()

	if err := WriteSampleCSV(f, t, rows); err != nil {
		return err
	}
	return f.Close()
}
