package primary

import "context"

// StoredSubmission is a listing view of a locally stored submission.
type StoredSubmission struct {
	SubmissionID string
	PageType     string
	Op           string
	CreatedAt    string
	UpdatedAt    string
}

// SyncResult reports one replay pass over the queue.
type SyncResult struct {
	Online    bool
	Attempted int
	Delivered int
	Remaining int
	// FailedID is the submission whose delivery stopped the pass, empty when
	// the pass ran to completion.
	FailedID string
	Status   string
}

// SyncService is the caller-facing surface of the synchronization engine.
type SyncService interface {
	// TrySync replays queued submissions oldest-first, strictly sequentially,
	// stopping at the first delivery failure. Being offline is a no-op, not
	// an error.
	TrySync(ctx context.Context) (*SyncResult, error)

	// ListQueue lists submissions awaiting delivery, oldest first.
	ListQueue(ctx context.Context) ([]*StoredSubmission, error)

	// ListDrafts lists locally saved drafts, oldest first.
	ListDrafts(ctx context.Context) ([]*StoredSubmission, error)
}
