package population

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// LoadSQLite reads a population from a SQLite database. Either a table name
// or a full SELECT query must be supplied; with a table name every column is
// read in rowid order so repeated loads see the same row ordering.
func LoadSQLite(path, table, query string) (*Table, error) {
	if table == "" && query == "" {
		return nil, fmt.Errorf("sqlite source needs a table name or a query")
	}
	if query == "" {
		if strings.ContainsAny(table, `"';`) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
		query = fmt.Sprintf(`SELECT * FROM "%s" ORDER BY rowid`, table)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("population query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	t, err := NewTable(columns)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	scan := make([]interface{}, len(columns))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(t.Rows)+1, err)
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = renderValue(v)
		}
		t.Append(record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("population query failed: %w", err)
	}
	return t, nil
}

// renderValue normalises driver values to the table's string cells.
// NULL becomes the missing value ("").
func renderValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
