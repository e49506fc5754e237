// Package app implements the primary ports: the capture lifecycle, the edit
// loader, and the synchronization engine.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/fieldforms/internal/core/capture"
	"github.com/example/fieldforms/internal/core/identity"
	"github.com/example/fieldforms/internal/core/payload"
	"github.com/example/fieldforms/internal/ports/primary"
	"github.com/example/fieldforms/internal/ports/secondary"
)

// FormServiceImpl implements the FormService interface. It owns the single
// active capture session and drives all saves through the identity session's
// guards.
type FormServiceImpl struct {
	session *identity.Session
	capture *capture.Session

	repo    secondary.SubmissionRepository
	client  secondary.RecordStoreClient
	checker secondary.ConnectivityChecker
	sync    primary.SyncService

	deviceID string
	now      func() time.Time
}

// NewFormService creates a new FormService with injected dependencies.
// syncService may be nil; then a successful submit does not drain the queue.
func NewFormService(
	session *identity.Session,
	repo secondary.SubmissionRepository,
	client secondary.RecordStoreClient,
	checker secondary.ConnectivityChecker,
	syncService primary.SyncService,
	deviceID string,
) *FormServiceImpl {
	return &FormServiceImpl{
		session:  session,
		repo:     repo,
		client:   client,
		checker:  checker,
		sync:     syncService,
		deviceID: deviceID,
		now:      time.Now,
	}
}

// ResumeActive rebuilds the capture session from the locally stored draft of
// the active submission. Returns false when no draft exists locally; an edit
// session then needs LoadForEdit to continue.
func (s *FormServiceImpl) ResumeActive(ctx context.Context) (bool, error) {
	ident := s.session.Current()
	record, err := s.repo.Get(ctx, secondary.CollectionDrafts, ident.SubmissionID)
	if err != nil {
		return false, fmt.Errorf("failed to load active draft: %w", err)
	}
	if record == nil {
		return false, nil
	}

	var sub payload.Submission
	if err := json.Unmarshal(record.Payload, &sub); err != nil {
		return false, fmt.Errorf("failed to decode active draft: %w", err)
	}

	sess := capture.NewSession(payload.DefaultPageType)
	sess.Populate(&sub)
	s.capture = sess
	s.session.LockCreatedAt(sub.CreatedAt)
	return true, nil
}

// StartNew allocates a new identity and a blank capture session. Any
// carried-forward attachment state belongs to the previous record and is
// discarded with the old session.
func (s *FormServiceImpl) StartNew(ctx context.Context, req primary.StartNewRequest) (*primary.StartNewResponse, error) {
	pt := payload.DefaultPageType
	if req.PageType != "" {
		parsed, ok := payload.ParsePageType(req.PageType)
		if !ok {
			return nil, fmt.Errorf("unknown page type %q", req.PageType)
		}
		pt = parsed
	}

	ident := s.session.StartNew()
	s.session.LockCreatedAt(s.timestamp())
	s.capture = capture.NewSession(pt)

	if err := s.persistDraft(ctx); err != nil {
		return nil, err
	}

	return &primary.StartNewResponse{
		SubmissionID: ident.SubmissionID,
		PageType:     string(pt),
		Status:       fmt.Sprintf("Started new %s form %s", pt, ident.SubmissionID),
	}, nil
}

// LoadForEdit fetches an existing record and merges it into capture state.
func (s *FormServiceImpl) LoadForEdit(ctx context.Context, req primary.LoadForEditRequest) (*primary.LoadForEditResponse, error) {
	// A load already in flight suppresses this trigger entirely; the UI event
	// behind it can fire more than once for one user action.
	if !s.session.BeginLoad() {
		return &primary.LoadForEditResponse{
			SubmissionID: req.SubmissionID,
			Loaded:       false,
			Status:       "Edit load already in progress",
		}, nil
	}
	defer s.session.EndLoad()

	res, err := s.client.FetchByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("edit load failed: %w", err)
	}

	var sub payload.Submission
	if err := json.Unmarshal(res.Payload, &sub); err != nil {
		return nil, fmt.Errorf("edit load failed: malformed record payload: %w", err)
	}

	// Populate into a fresh session; nothing the service owns changes until
	// the draft is durably stored.
	sess := capture.NewSession(payload.DefaultPageType)
	sess.Populate(&sub)

	createdAt := sub.CreatedAt
	if createdAt == "" {
		createdAt = s.timestamp()
	}

	record, err := s.recordFrom(sess, req.SubmissionID, identity.ModeEdit, createdAt)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, secondary.CollectionDrafts, record); err != nil {
		return nil, fmt.Errorf("edit load failed: %w", err)
	}

	// Commit identity and capture together only after the draft write
	// succeeded; an error return never coincides with changed state.
	s.session.BeginEdit(req.SubmissionID)
	s.session.LockCreatedAt(createdAt)
	s.capture = sess

	return &primary.LoadForEditResponse{
		SubmissionID: req.SubmissionID,
		PageType:     string(sess.PageType()),
		Loaded:       true,
		Status:       fmt.Sprintf("Edit mode ready for %s", req.SubmissionID),
	}, nil
}

// SetField writes one scalar field and autosaves the draft.
func (s *FormServiceImpl) SetField(ctx context.Context, req primary.SetFieldRequest) (*primary.MutateResponse, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	if err := s.capture.SetField(req.Name, req.Value); err != nil {
		return nil, err
	}
	return s.mutated(ctx, fmt.Sprintf("Set %s", req.Name))
}

// AddRow appends a repeater row and autosaves the draft.
func (s *FormServiceImpl) AddRow(ctx context.Context, req primary.AddRowRequest) (*primary.AddRowResponse, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	row, err := s.capture.AddRow(req.Group)
	if err != nil {
		return nil, err
	}
	if err := s.persistDraft(ctx); err != nil {
		return nil, err
	}
	return &primary.AddRowResponse{
		RowID:  row.ID,
		Status: fmt.Sprintf("Added %s row %s", req.Group, row.ID),
	}, nil
}

// SetRowValue writes one repeater cell and autosaves the draft.
func (s *FormServiceImpl) SetRowValue(ctx context.Context, req primary.SetRowValueRequest) (*primary.MutateResponse, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	rowID, err := s.resolveRowID(req.Group, req.RowID, req.Index)
	if err != nil {
		return nil, err
	}
	if err := s.capture.SetRowValue(req.Group, rowID, req.Key, req.Value); err != nil {
		return nil, err
	}
	return s.mutated(ctx, fmt.Sprintf("Set %s.%s", req.Group, req.Key))
}

// RemoveRow deletes a repeater row and autosaves the draft.
func (s *FormServiceImpl) RemoveRow(ctx context.Context, req primary.RemoveRowRequest) (*primary.MutateResponse, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	rowID, err := s.resolveRowID(req.Group, req.RowID, req.Index)
	if err != nil {
		return nil, err
	}
	if err := s.capture.RemoveRow(req.Group, rowID); err != nil {
		return nil, err
	}
	return s.mutated(ctx, fmt.Sprintf("Removed %s row", req.Group))
}

// AttachPhoto adds an already-compressed photo attachment.
func (s *FormServiceImpl) AttachPhoto(ctx context.Context, req primary.AttachPhotoRequest) (*primary.MutateResponse, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	if err := s.capture.AddPhoto(payload.Attachment{Filename: req.Filename, DataURL: req.DataURL}); err != nil {
		return nil, err
	}
	return s.mutated(ctx, fmt.Sprintf("Attached photo %s", req.Filename))
}

// SetSketch replaces the sketch with a freshly drawn image.
func (s *FormServiceImpl) SetSketch(ctx context.Context, req primary.SetSketchRequest) (*primary.MutateResponse, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	s.capture.SetSketch(payload.Attachment{Filename: req.Filename, DataURL: req.DataURL})
	return s.mutated(ctx, "Sketch updated")
}

// ClearSketch wipes the drawing surface.
func (s *FormServiceImpl) ClearSketch(ctx context.Context) (*primary.MutateResponse, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	s.capture.ClearSketch()
	return s.mutated(ctx, "Sketch cleared")
}

// BuildPayload normalizes the capture state without transmitting it.
func (s *FormServiceImpl) BuildPayload(ctx context.Context) (*primary.BuildPayloadResponse, error) {
	record, err := s.buildRecord()
	if err != nil {
		return nil, err
	}
	return &primary.BuildPayloadResponse{
		SubmissionID: record.SubmissionID,
		PageType:     record.PageType,
		JSON:         record.Payload,
		Status:       fmt.Sprintf("Payload ready for %s", record.SubmissionID),
	}, nil
}

// SubmitNow delivers immediately when online. Offline or failed deliveries
// fall back to the queue; the queue is the cancellation-safe recovery path.
func (s *FormServiceImpl) SubmitNow(ctx context.Context) (*primary.SubmitNowResponse, error) {
	record, err := s.buildRecord()
	if err != nil {
		return nil, err
	}
	ident := s.session.Current()

	if !s.checker.Online(ctx) {
		if err := s.repo.Put(ctx, secondary.CollectionQueue, record); err != nil {
			return nil, err
		}
		return &primary.SubmitNowResponse{
			SubmissionID: record.SubmissionID,
			Queued:       true,
			Status:       "Offline: queued for sync",
		}, nil
	}

	res, err := s.client.Submit(ctx, record)
	if err != nil {
		// Transient transport failures and application-level rejections are
		// both recoverable: requeue and retry on the next sync trigger.
		if putErr := s.repo.Put(ctx, secondary.CollectionQueue, record); putErr != nil {
			return nil, putErr
		}
		return &primary.SubmitNowResponse{
			SubmissionID: record.SubmissionID,
			Queued:       true,
			Status:       fmt.Sprintf("Save failed, queued for retry: %v", err),
		}, nil
	}

	// An update response naming a different record is fatal: requeueing
	// blindly could write a technician's edits into the wrong record.
	if guard := identity.CanAcceptResponse(identity.ResponseContext{
		Mode:       ident.Mode,
		LockedID:   ident.SubmissionID,
		ResponseID: res.SubmissionID,
	}); !guard.Allowed {
		return nil, fmt.Errorf("save aborted: %s", guard.Reason)
	}

	wasNew := ident.Mode == identity.ModeNew
	s.session.LockAfterFirstSave(ident.SubmissionID)

	// A delivered record is no longer resumable as a draft and no longer
	// pending in the queue.
	if err := s.repo.Delete(ctx, secondary.CollectionQueue, record.SubmissionID); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, secondary.CollectionDrafts, record.SubmissionID); err != nil {
		return nil, err
	}

	resp := &primary.SubmitNowResponse{
		SubmissionID: record.SubmissionID,
		Delivered:    true,
	}
	if wasNew {
		resp.Status = fmt.Sprintf("Submitted %s; further saves will update it", record.SubmissionID)
	} else {
		resp.Status = fmt.Sprintf("Updated %s", record.SubmissionID)
	}

	// A successful manual submission triggers a sync pass while other items
	// remain queued.
	if s.sync != nil {
		if syncRes, err := s.sync.TrySync(ctx); err == nil && syncRes != nil {
			resp.Drained = syncRes.Delivered
		}
	}

	return resp, nil
}

// SaveDraft persists the capture state to the drafts collection.
func (s *FormServiceImpl) SaveDraft(ctx context.Context) (*primary.SaveResponse, error) {
	record, err := s.buildRecord()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, secondary.CollectionDrafts, record); err != nil {
		return nil, err
	}
	return &primary.SaveResponse{
		SubmissionID: record.SubmissionID,
		Status:       fmt.Sprintf("Draft saved for %s", record.SubmissionID),
	}, nil
}

// QueueForSync persists the capture state to the queue collection.
func (s *FormServiceImpl) QueueForSync(ctx context.Context) (*primary.SaveResponse, error) {
	record, err := s.buildRecord()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, secondary.CollectionQueue, record); err != nil {
		return nil, err
	}
	return &primary.SaveResponse{
		SubmissionID: record.SubmissionID,
		Status:       fmt.Sprintf("Queued %s for sync", record.SubmissionID),
	}, nil
}

// buildRecord normalizes the active capture state into a storable,
// transmittable record under the current identity.
func (s *FormServiceImpl) buildRecord() (*secondary.SubmissionRecord, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}

	ident := s.session.Current()
	createdAt := ident.CreatedAt
	if createdAt == "" {
		createdAt = s.timestamp()
	}
	return s.recordFrom(s.capture, ident.SubmissionID, ident.Mode, createdAt)
}

// recordFrom normalizes a capture session into a record under the given
// identity and runs the pre-transmit identity guard.
func (s *FormServiceImpl) recordFrom(sess *capture.Session, id string, mode identity.Mode, createdAt string) (*secondary.SubmissionRecord, error) {
	sub := payload.Normalize(sess.Raw(), payload.Identity{
		SubmissionID: id,
		DeviceID:     s.deviceID,
		CreatedAt:    createdAt,
		UpdatedAt:    s.timestamp(),
	}, sess.PageType())

	op := secondary.OpSubmit
	if mode == identity.ModeEdit {
		op = secondary.OpUpdate
		sub.Action = "update"
	}

	// The guard aborts the save before anything is transmitted or stored.
	if guard := identity.CanSave(identity.SaveContext{
		Mode:      mode,
		LockedID:  id,
		PayloadID: sub.SubmissionID,
	}); !guard.Allowed {
		return nil, guard.Error()
	}

	data, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	return &secondary.SubmissionRecord{
		SubmissionID: sub.SubmissionID,
		PageType:     sub.PageType,
		Op:           op,
		CreatedAt:    sub.CreatedAt,
		UpdatedAt:    sub.UpdatedAt,
		Payload:      data,
	}, nil
}

func (s *FormServiceImpl) requireActive() error {
	if s.capture == nil {
		return fmt.Errorf("no active submission; start a new form or load one for editing")
	}
	return nil
}

func (s *FormServiceImpl) resolveRowID(group, rowID string, index int) (string, error) {
	if rowID != "" {
		return rowID, nil
	}
	rows := s.capture.Rows(group)
	if index < 0 || index >= len(rows) {
		return "", fmt.Errorf("row index %d out of range for group %s (%d rows)", index, group, len(rows))
	}
	return rows[index].ID, nil
}

func (s *FormServiceImpl) mutated(ctx context.Context, status string) (*primary.MutateResponse, error) {
	if err := s.persistDraft(ctx); err != nil {
		return nil, err
	}
	return &primary.MutateResponse{
		SubmissionID: s.session.Current().SubmissionID,
		Status:       status,
	}, nil
}

func (s *FormServiceImpl) persistDraft(ctx context.Context) error {
	record, err := s.buildRecord()
	if err != nil {
		return err
	}
	return s.repo.Put(ctx, secondary.CollectionDrafts, record)
}

func (s *FormServiceImpl) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Ensure FormServiceImpl implements the interface
var _ primary.FormService = (*FormServiceImpl)(nil)
