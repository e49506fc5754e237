// Package primary defines the primary ports (driving interfaces) consumed by
// the UI layer. Every operation returns a human-readable status string next
// to its structured result; failures surface as errors, never as process
// exits.
package primary

import "context"

// StartNewRequest begins a fresh submission session.
type StartNewRequest struct {
	PageType string
}

// StartNewResponse reports the freshly allocated identity.
type StartNewResponse struct {
	SubmissionID string
	PageType     string
	Status       string
}

// LoadForEditRequest fetches an existing record and seeds capture state.
type LoadForEditRequest struct {
	SubmissionID string
}

// LoadForEditResponse reports the outcome of an edit load. Loaded is false
// when the request was debounced because a load was already in flight.
type LoadForEditResponse struct {
	SubmissionID string
	PageType     string
	Loaded       bool
	Status       string
}

// SetFieldRequest writes one scalar field on the active submission.
type SetFieldRequest struct {
	Name  string
	Value any
}

// AddRowRequest appends a row to a repeater group.
type AddRowRequest struct {
	Group string
}

// AddRowResponse reports the stable id of the created row.
type AddRowResponse struct {
	RowID  string
	Status string
}

// SetRowValueRequest writes one cell of a repeater row. The row is addressed
// by id when RowID is set, otherwise by zero-based Index.
type SetRowValueRequest struct {
	Group string
	RowID string
	Index int
	Key   string
	Value any
}

// RemoveRowRequest deletes a repeater row by id or index.
type RemoveRowRequest struct {
	Group string
	RowID string
	Index int
}

// AttachPhotoRequest adds an already-compressed photo.
type AttachPhotoRequest struct {
	Filename string
	DataURL  string
}

// SetSketchRequest replaces the sketch with a freshly drawn image.
type SetSketchRequest struct {
	Filename string
	DataURL  string
}

// MutateResponse is the common result of capture mutations.
type MutateResponse struct {
	SubmissionID string
	Status       string
}

// BuildPayloadResponse carries the normalized outgoing payload.
type BuildPayloadResponse struct {
	SubmissionID string
	PageType     string
	JSON         []byte
	Status       string
}

// SubmitNowResponse reports the outcome of an explicit submit. Exactly one of
// Delivered or Queued is true on success; Drained counts queued submissions
// delivered by the follow-up sync pass.
type SubmitNowResponse struct {
	SubmissionID string
	Delivered    bool
	Queued       bool
	Drained      int
	Status       string
}

// SaveResponse reports a local save (draft or queue).
type SaveResponse struct {
	SubmissionID string
	Status       string
}

// FormService is the caller-facing surface for the capture lifecycle of the
// single active submission.
type FormService interface {
	// StartNew allocates a new identity, clears carried-forward attachment
	// state, and starts a blank capture session.
	StartNew(ctx context.Context, req StartNewRequest) (*StartNewResponse, error)

	// LoadForEdit fetches an existing record and merges it into capture
	// state. A load already in progress makes this a silent no-op. On
	// failure capture state is left untouched.
	LoadForEdit(ctx context.Context, req LoadForEditRequest) (*LoadForEditResponse, error)

	// SetField writes one scalar field.
	SetField(ctx context.Context, req SetFieldRequest) (*MutateResponse, error)

	// AddRow appends a repeater row.
	AddRow(ctx context.Context, req AddRowRequest) (*AddRowResponse, error)

	// SetRowValue writes one repeater cell.
	SetRowValue(ctx context.Context, req SetRowValueRequest) (*MutateResponse, error)

	// RemoveRow deletes a repeater row.
	RemoveRow(ctx context.Context, req RemoveRowRequest) (*MutateResponse, error)

	// AttachPhoto adds a photo attachment (at most five).
	AttachPhoto(ctx context.Context, req AttachPhotoRequest) (*MutateResponse, error)

	// SetSketch replaces the sketch and marks it dirty.
	SetSketch(ctx context.Context, req SetSketchRequest) (*MutateResponse, error)

	// ClearSketch wipes the drawing surface.
	ClearSketch(ctx context.Context) (*MutateResponse, error)

	// BuildPayload normalizes the capture state into the outgoing payload
	// without transmitting it.
	BuildPayload(ctx context.Context) (*BuildPayloadResponse, error)

	// SubmitNow delivers immediately when online, queues when offline or on
	// delivery failure, and drains the queue after a successful delivery.
	SubmitNow(ctx context.Context) (*SubmitNowResponse, error)

	// SaveDraft persists the capture state to the drafts collection.
	SaveDraft(ctx context.Context) (*SaveResponse, error)

	// QueueForSync persists the capture state to the queue collection for
	// later replay.
	QueueForSync(ctx context.Context) (*SaveResponse, error)
}
