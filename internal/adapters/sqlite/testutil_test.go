// Package sqlite_test contains integration tests for the SQLite store.
//
// Test databases are always created from db.GetSchemaSQL(), never from
// hardcoded CREATE TABLE statements, so any drift between repository code and
// the authoritative schema fails here first.
package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/fieldforms/internal/db"
	"github.com/example/fieldforms/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// openFileDB opens a file-backed database so persistence across reopen can be
// exercised.
func openFileDB(t *testing.T, dir string) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", filepath.Join(dir, "fieldforms.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return testDB
}

func testRecord(id, createdAt string) *secondary.SubmissionRecord {
	return &secondary.SubmissionRecord{
		SubmissionID: id,
		PageType:     "Leak Repair",
		Op:           secondary.OpSubmit,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
		Payload:      []byte(`{"submissionId":"` + id + `"}`),
	}
}
