// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems: durable local storage, the remote record store, and the
// connectivity probe.
package secondary

import "context"

// Collection names the two logical collections of the local durable store.
type Collection string

const (
	// CollectionDrafts holds submissions saved locally but not yet delivered.
	CollectionDrafts Collection = "drafts"
	// CollectionQueue holds submissions awaiting delivery to the record store.
	CollectionQueue Collection = "queue"
)

// Op is the delivery intent recorded when a submission is queued.
type Op string

const (
	OpSubmit Op = "submit"
	OpUpdate Op = "update"
)

// SubmissionRecord represents a submission as stored in persistence. Payload
// is the full normalized submission JSON; the scalar columns exist for
// ordering and listings only.
type SubmissionRecord struct {
	SubmissionID string
	PageType     string
	Op           Op
	CreatedAt    string
	UpdatedAt    string
	Payload      []byte
}

// SubmissionRepository defines the secondary port for the local durable
// store. Both collections are keyed by submission id and mutated only by
// whole-record upsert or delete, never by partial in-place update.
type SubmissionRepository interface {
	// Put upserts a record: writing the same id twice overwrites, never
	// duplicates. A write failure is surfaced, never swallowed; a dropped
	// write means a technician's work is lost.
	Put(ctx context.Context, collection Collection, record *SubmissionRecord) error

	// Get retrieves a record by id. A missing record is (nil, nil).
	Get(ctx context.Context, collection Collection, id string) (*SubmissionRecord, error)

	// GetAll retrieves every record in a collection. The store guarantees no
	// ordering; replay ordering is the caller's responsibility.
	GetAll(ctx context.Context, collection Collection) ([]*SubmissionRecord, error)

	// Delete removes a record by id. Deleting an absent id is a no-op.
	Delete(ctx context.Context, collection Collection, id string) error
}
