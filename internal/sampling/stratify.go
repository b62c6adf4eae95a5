package sampling

import (
	"fmt"
	"strings"

	"github.com/banshee-data/sample.report/internal/population"
)

// Partition groups population rows into stratum buckets keyed by the given
// columns. With no stratify fields the whole population lands in one bucket
// with an empty stratum. Rows keep their source order within a bucket, and
// buckets are returned in stratum-key order regardless of input row order.
// A missing cell maps to UnspecifiedValue and forms its own stratum.
func Partition(t *population.Table, fields []string) ([]Bucket, error) {
	if len(fields) == 0 {
		return []Bucket{{Stratum: Stratum{}, Rows: t.Rows}}, nil
	}
	for _, f := range fields {
		if !t.HasColumn(f) {
			return nil, fmt.Errorf("%w: stratify column %q not found in input", ErrUnknownColumn, f)
		}
	}

	byKey := make(map[string]*Bucket)
	for _, row := range t.Rows {
		values := make([]string, len(fields))
		for i, f := range fields {
			v, _ := t.Value(row, f)
			if v == "" {
				v = UnspecifiedValue
			}
			values[i] = v
		}
		key := strings.Join(values, "\x1f")
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Stratum: Stratum{Fields: fields, Values: values}}
			byKey[key] = b
		}
		b.Rows = append(b.Rows, row)
	}

	buckets := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sortBuckets(buckets)
	return buckets, nil
}
