package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteTestHelper inspects a SQLite database written by the code under test
type SQLiteTestHelper struct {
	DB     *sql.DB
	DBPath string
}

// NewSQLiteTestHelper opens the database at dbPath and closes it when the test ends
func NewSQLiteTestHelper(t *testing.T, dbPath string) *SQLiteTestHelper {
	t.Helper()

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	helper := &SQLiteTestHelper{
		DB:     db,
		DBPath: dbPath,
	}

	t.Cleanup(func() {
		_ = helper.DB.Close()
	})

	return helper
}

// RowExists checks if a row exists
func (h *SQLiteTestHelper) RowExists(t *testing.T, table string, where string, args ...interface{}) bool {
	t.Helper()

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where)
	err := h.DB.QueryRow(query, args...).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check existence: %v", err)
	}
	return count > 0
}

// Count returns the count of rows in a table
func (h *SQLiteTestHelper) Count(t *testing.T, table string) int {
	t.Helper()

	var count int
	err := h.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	return count
}
