package db

// SchemaSQL is the complete schema for fresh fieldforms installs.
//
// This is the single source of truth for the database schema. Tests use it
// via GetSchemaSQL() instead of hardcoding CREATE TABLE statements, so any
// drift between repository code and schema fails immediately with
// "no such column" at test time.
//
// The store is deliberately a key-value layout: two logical collections
// (drafts, queue) keyed by submission id, the full normalized submission as a
// JSON blob, plus scalar columns for ordering and listings. Records are only
// ever upserted or deleted whole, never partially updated in place, which
// avoids lost-update races between a draft save and a queue save for the
// same id.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS submissions (
	collection TEXT NOT NULL CHECK(collection IN ('drafts', 'queue')),
	submission_id TEXT NOT NULL,
	page_type TEXT NOT NULL,
	op TEXT NOT NULL DEFAULT 'submit' CHECK(op IN ('submit', 'update')),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (collection, submission_id)
);

CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(collection, created_at);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the schema for use in tests.
func GetSchemaSQL() string {
	return SchemaSQL
}

// InitSchema creates all tables and applies pending migrations.
func InitSchema() error {
	database, err := GetDB()
	if err != nil {
		return err
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return err
	}

	return RunMigrations(database)
}
