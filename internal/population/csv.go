package population

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSV parses a population from delimited text. The first record is the
// header. Records shorter than the header are padded with missing values;
// longer records are an error (csv.Reader enforces the field count).
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input is empty: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		// Strip a UTF-8 BOM exported by spreadsheet tools.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	table, err := NewTable(header)
	if err != nil {
		return nil, err
	}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", len(table.Rows)+2, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", len(table.Rows)+2, len(record), len(header))
		}
		table.Append(record)
	}
	return table, nil
}

// LoadCSV reads a population from a CSV file on disk.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open population file: %w", err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
