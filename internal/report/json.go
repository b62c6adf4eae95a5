package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/sample.report/internal/sampling"
)

// WriteSummaryJSON renders the sampling summary as indented JSON. Encoding
// is deterministic: struct fields keep declaration order and map keys are
// sorted, so identical runs produce byte-identical documents apart from the
// run id and timestamp.
func WriteSummaryJSON(w io.Writer, s *sampling.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// SaveSummaryJSON writes the summary to a file.
func SaveSummaryJSON(path string, s *sampling.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	if err := WriteSummaryJSON(f, s); err != nil {
		return err
	}
	return f.Close()
}
