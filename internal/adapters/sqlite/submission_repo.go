// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/fieldforms/internal/ports/secondary"
)

// SubmissionRepository implements secondary.SubmissionRepository with SQLite.
// Both collections live in one table keyed by (collection, submission_id).
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new SQLite submission repository.
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Put upserts a record. Writing the same id twice overwrites the whole
// record, never duplicates it.
func (r *SubmissionRepository) Put(ctx context.Context, collection secondary.Collection, record *secondary.SubmissionRecord) error {
	op := record.Op
	if op == "" {
		op = secondary.OpSubmit
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO submissions (collection, submission_id, page_type, op, created_at, updated_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(collection, submission_id) DO UPDATE SET
		   page_type = excluded.page_type,
		   op = excluded.op,
		   created_at = excluded.created_at,
		   updated_at = excluded.updated_at,
		   payload = excluded.payload`,
		string(collection), record.SubmissionID, record.PageType, string(op),
		record.CreatedAt, record.UpdatedAt, record.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to write submission %s to %s: %w", record.SubmissionID, collection, err)
	}

	return nil
}

// Get retrieves a record by its id. A missing record is (nil, nil).
func (r *SubmissionRepository) Get(ctx context.Context, collection secondary.Collection, id string) (*secondary.SubmissionRecord, error) {
	record := &secondary.SubmissionRecord{}
	var op string
	err := r.db.QueryRowContext(ctx,
		"SELECT submission_id, page_type, op, created_at, updated_at, payload FROM submissions WHERE collection = ? AND submission_id = ?",
		string(collection), id,
	).Scan(&record.SubmissionID, &record.PageType, &op, &record.CreatedAt, &record.UpdatedAt, &record.Payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %s from %s: %w", id, collection, err)
	}

	record.Op = secondary.Op(op)
	return record, nil
}

// GetAll retrieves every record in a collection. The store makes no ordering
// guarantee; callers order for replay themselves.
func (r *SubmissionRepository) GetAll(ctx context.Context, collection secondary.Collection) ([]*secondary.SubmissionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT submission_id, page_type, op, created_at, updated_at, payload FROM submissions WHERE collection = ?",
		string(collection),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var records []*secondary.SubmissionRecord
	for rows.Next() {
		record := &secondary.SubmissionRecord{}
		var op string
		if err := rows.Scan(&record.SubmissionID, &record.PageType, &op, &record.CreatedAt, &record.UpdatedAt, &record.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		record.Op = secondary.Op(op)
		records = append(records, record)
	}

	return records, rows.Err()
}

// Delete removes a record by id. Deleting an absent id is a no-op: removal
// after delivery must succeed even when the record only ever lived in one of
// the two collections.
func (r *SubmissionRepository) Delete(ctx context.Context, collection secondary.Collection, id string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM submissions WHERE collection = ? AND submission_id = ?",
		string(collection), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete submission %s from %s: %w", id, collection, err)
	}
	return nil
}

// Ensure SubmissionRepository implements the interface
var _ secondary.SubmissionRepository = (*SubmissionRepository)(nil)
