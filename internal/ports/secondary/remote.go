package secondary

import "context"

// SubmitResult carries what the record store reported for a delivery.
type SubmitResult struct {
	// SubmissionID is the id the store echoed back, empty when the store
	// did not echo one.
	SubmissionID string
}

// FetchResult carries a fetched record payload as raw JSON.
type FetchResult struct {
	Payload []byte
}

// RecordStoreClient defines the secondary port for the remote record store.
// The client is the source of truth for intent: create vs update comes from
// the record's Op, never from probing whether the store already has the id.
type RecordStoreClient interface {
	// Submit delivers a normalized submission. A non-2xx transport status or
	// an unreachable store yields an ordinary (retryable) error; a well-formed
	// ok:false response yields a *StoreRejection.
	Submit(ctx context.Context, record *SubmissionRecord) (*SubmitResult, error)

	// FetchByID retrieves an existing record for editing.
	FetchByID(ctx context.Context, id string) (*FetchResult, error)
}

// StoreRejection is an application-level rejection: the store answered with a
// well-formed response reporting ok:false. It is recoverable; the caller
// decides whether to requeue.
type StoreRejection struct {
	Message string
}

func (e *StoreRejection) Error() string {
	if e.Message == "" {
		return "record store rejected the request"
	}
	return "record store rejected the request: " + e.Message
}
