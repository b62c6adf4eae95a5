package population

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "population.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE accounts (
			id TEXT,
			region TEXT,
			balance REAL
		);
		INSERT INTO accounts (id, region, balance) VALUES
			('ACC-1', 'EU', 100.5),
			('ACC-2', 'US', 250),
			('ACC-3', NULL, 75);
	`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return path
}

func TestLoadSQLiteTable(t *testing.T) {
	path := seedDatabase(t)

	table, err := LoadSQLite(path, "accounts", "")
	if err != nil {
		t.Fatalf("LoadSQLite: %v", err)
	}
	if diff := cmp.Diff([]string{"id", "region", "balance"}, table.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if table.Size() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Size())
	}

	// Insert order is preserved via rowid ordering.
	if got := table.Identifier(table.Rows[0], "id"); got != "ACC-1" {
		t.Errorf("expected ACC-1 first, got %q", got)
	}
	// NULL maps to the missing value.
	v, ok := table.Value(table.Rows[2], "region")
	if !ok || v != "" {
		t.Errorf("NULL should read as missing, got %q ok=%v", v, ok)
	}
}

func TestLoadSQLiteQuery(t *testing.T) {
	path := seedDatabase(t)

	table, err := LoadSQLite(path, "", "SELECT id, region FROM accounts WHERE region IS NOT NULL ORDER BY id")
	if err != nil {
		t.Fatalf("LoadSQLite: %v", err)
	}
	if table.Size() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Size())
	}
	if len(table.Columns) != 2 {
		t.Errorf("expected the query's 2 columns, got %v", table.Columns)
	}
}

func TestLoadSQLiteValidation(t *testing.T) {
	path := seedDatabase(t)

	if _, err := LoadSQLite(path, "", ""); err == nil {
		t.Error("missing table and query should fail")
	}
	if _, err := LoadSQLite(path, `accounts"; DROP TABLE accounts`, ""); err == nil {
		t.Error("hostile table name should fail")
	}
	if _, err := LoadSQLite(path, "no_such_table", ""); err == nil {
		t.Error("unknown table should fail")
	}
}
