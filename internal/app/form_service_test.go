package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/fieldforms/internal/core/identity"
	"github.com/example/fieldforms/internal/core/payload"
	"github.com/example/fieldforms/internal/ports/primary"
	"github.com/example/fieldforms/internal/ports/secondary"
)

func newTestFormService() (*FormServiceImpl, *mockSubmissionRepository, *mockRecordStoreClient, *mockConnectivityChecker) {
	repo := newMockSubmissionRepository()
	client := newMockRecordStoreClient()
	checker := &mockConnectivityChecker{online: true}
	svc := NewFormService(identity.NewSession(), repo, client, checker, nil, "device-1")
	svc.now = fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), time.Minute)
	return svc, repo, client, checker
}

func TestStartNewPersistsDraft(t *testing.T) {
	svc, repo, _, _ := newTestFormService()
	ctx := context.Background()

	resp, err := svc.StartNew(ctx, primary.StartNewRequest{})
	if err != nil {
		t.Fatalf("StartNew failed: %v", err)
	}
	if resp.SubmissionID == "" {
		t.Error("expected a submission id to be allocated")
	}
	if resp.PageType != string(payload.PageLeakRepair) {
		t.Errorf("expected default page type %s, got %s", payload.PageLeakRepair, resp.PageType)
	}

	record, err := repo.Get(ctx, secondary.CollectionDrafts, resp.SubmissionID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected a draft to be persisted on start")
	}
	if record.Op != secondary.OpSubmit {
		t.Errorf("expected op submit for a new record, got %s", record.Op)
	}
	if record.CreatedAt == "" {
		t.Error("expected createdAt to be locked on start")
	}
}

func TestStartNewRejectsUnknownPageType(t *testing.T) {
	svc, _, _, _ := newTestFormService()

	if _, err := svc.StartNew(context.Background(), primary.StartNewRequest{PageType: "Inspections"}); err == nil {
		t.Error("expected error for unknown page type")
	}
}

func TestCreatedAtStableAcrossSaves(t *testing.T) {
	svc, repo, _, _ := newTestFormService()
	ctx := context.Background()

	resp, err := svc.StartNew(ctx, primary.StartNewRequest{})
	if err != nil {
		t.Fatalf("StartNew failed: %v", err)
	}
	first, err := repo.Get(ctx, secondary.CollectionDrafts, resp.SubmissionID)
	if err != nil || first == nil {
		t.Fatalf("expected initial draft, got %v, %v", first, err)
	}

	if _, err := svc.SetField(ctx, primary.SetFieldRequest{Name: "Address", Value: "12 Oak St"}); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	if _, err := svc.SaveDraft(ctx); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	second, err := repo.Get(ctx, secondary.CollectionDrafts, resp.SubmissionID)
	if err != nil || second == nil {
		t.Fatalf("expected saved draft, got %v, %v", second, err)
	}
	if second.CreatedAt != first.CreatedAt {
		t.Errorf("createdAt changed across saves: %s -> %s", first.CreatedAt, second.CreatedAt)
	}
	if second.UpdatedAt == first.UpdatedAt {
		t.Error("expected updatedAt to advance on save")
	}
}

func TestMutationsRequireActiveSubmission(t *testing.T) {
	svc, _, _, _ := newTestFormService()

	if _, err := svc.SetField(context.Background(), primary.SetFieldRequest{Name: "Address", Value: "x"}); err == nil {
		t.Error("expected error when no submission is active")
	}
	if _, err := svc.BuildPayload(context.Background()); err == nil {
		t.Error("expected error when no submission is active")
	}
}

func TestSetFieldAutosavesDraft(t *testing.T) {
	svc, repo, _, _ := newTestFormService()
	ctx := context.Background()

	resp, _ := svc.StartNew(ctx, primary.StartNewRequest{})
	if _, err := svc.SetField(ctx, primary.SetFieldRequest{Name: "Work Order #", Value: "WO-77"}); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	record, _ := repo.Get(ctx, secondary.CollectionDrafts, resp.SubmissionID)
	if record == nil {
		t.Fatal("expected autosaved draft")
	}
	var sub payload.Submission
	if err := json.Unmarshal(record.Payload, &sub); err != nil {
		t.Fatalf("failed to decode draft payload: %v", err)
	}
	if sub.Fields["Work Order #"] != "WO-77" {
		t.Errorf("expected field in draft, got %v", sub.Fields["Work Order #"])
	}
}

func TestRowAddressingByIndex(t *testing.T) {
	svc, _, _, _ := newTestFormService()
	ctx := context.Background()

	svc.StartNew(ctx, primary.StartNewRequest{})

	// The starter row is index 0.
	if _, err := svc.SetRowValue(ctx, primary.SetRowValueRequest{
		Group: "pipeMaterials", Index: 0, Key: "Size", Value: "2\"",
	}); err != nil {
		t.Fatalf("SetRowValue by index failed: %v", err)
	}

	added, err := svc.AddRow(ctx, primary.AddRowRequest{Group: "pipeMaterials"})
	if err != nil {
		t.Fatalf("AddRow failed: %v", err)
	}
	if _, err := svc.SetRowValue(ctx, primary.SetRowValueRequest{
		Group: "pipeMaterials", RowID: added.RowID, Key: "Material", Value: "PE",
	}); err != nil {
		t.Fatalf("SetRowValue by id failed: %v", err)
	}

	if _, err := svc.SetRowValue(ctx, primary.SetRowValueRequest{
		Group: "pipeMaterials", Index: 5, Key: "Size", Value: "x",
	}); err == nil {
		t.Error("expected error for out-of-range row index")
	}
}

func TestSubmitNowOfflineQueues(t *testing.T) {
	svc, repo, client, checker := newTestFormService()
	checker.online = false
	ctx := context.Background()

	resp, _ := svc.StartNew(ctx, primary.StartNewRequest{})
	result, err := svc.SubmitNow(ctx)
	if err != nil {
		t.Fatalf("SubmitNow failed: %v", err)
	}
	if result.Delivered {
		t.Error("expected no delivery while offline")
	}
	if !result.Queued {
		t.Error("expected submission to be queued while offline")
	}
	if len(client.submitted) != 0 {
		t.Errorf("expected no transmission attempt, got %d", len(client.submitted))
	}
	if !repo.has(secondary.CollectionQueue, resp.SubmissionID) {
		t.Error("expected record in the sync queue")
	}
}

func TestSubmitNowDeliversAndFlipsToEdit(t *testing.T) {
	svc, repo, client, _ := newTestFormService()
	ctx := context.Background()

	resp, _ := svc.StartNew(ctx, primary.StartNewRequest{})
	result, err := svc.SubmitNow(ctx)
	if err != nil {
		t.Fatalf("SubmitNow failed: %v", err)
	}
	if !result.Delivered {
		t.Fatalf("expected delivery, got status %s", result.Status)
	}
	if repo.has(secondary.CollectionDrafts, resp.SubmissionID) || repo.has(secondary.CollectionQueue, resp.SubmissionID) {
		t.Error("expected delivered record removed from both collections")
	}
	if len(client.submitted) != 1 || client.submitted[0].Op != secondary.OpSubmit {
		t.Fatalf("expected one create delivery, got %+v", client.submitted)
	}

	// The second save on the same session must be an update of the same id,
	// never a second create.
	result2, err := svc.SubmitNow(ctx)
	if err != nil {
		t.Fatalf("second SubmitNow failed: %v", err)
	}
	if result2.SubmissionID != resp.SubmissionID {
		t.Errorf("expected same id on second save, got %s", result2.SubmissionID)
	}
	if len(client.submitted) != 2 || client.submitted[1].Op != secondary.OpUpdate {
		t.Fatalf("expected second delivery as update, got %+v", client.submitted[1])
	}

	var sub payload.Submission
	if err := json.Unmarshal(client.submitted[1].Payload, &sub); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if sub.Action != "update" {
		t.Errorf("expected action update in payload, got %q", sub.Action)
	}
}

func TestSubmitNowFailureRequeues(t *testing.T) {
	svc, repo, client, _ := newTestFormService()
	ctx := context.Background()

	resp, _ := svc.StartNew(ctx, primary.StartNewRequest{})
	client.submitErr[resp.SubmissionID] = errors.New("connection reset")

	result, err := svc.SubmitNow(ctx)
	if err != nil {
		t.Fatalf("SubmitNow returned hard error for recoverable failure: %v", err)
	}
	if result.Delivered {
		t.Error("expected no delivery")
	}
	if !result.Queued {
		t.Error("expected failed submission to be requeued")
	}
	if !repo.has(secondary.CollectionQueue, resp.SubmissionID) {
		t.Error("expected record in the sync queue after failure")
	}
	if got := svc.session.Current().Mode; got != identity.ModeNew {
		t.Errorf("expected mode to stay new after failed delivery, got %s", got)
	}
}

func TestSubmitNowIdentityMismatchIsFatal(t *testing.T) {
	svc, repo, client, _ := newTestFormService()
	ctx := context.Background()

	resp, _ := svc.StartNew(ctx, primary.StartNewRequest{})
	if _, err := svc.SubmitNow(ctx); err != nil {
		t.Fatalf("first SubmitNow failed: %v", err)
	}

	// Now in edit mode; the store answering for a different record must abort
	// without requeueing.
	client.echoIDs[resp.SubmissionID] = "someone-elses-record"
	if _, err := svc.SubmitNow(ctx); err == nil {
		t.Fatal("expected fatal error on identity mismatch")
	}
	if repo.has(secondary.CollectionQueue, resp.SubmissionID) {
		t.Error("mismatched save must not be requeued")
	}
}

func TestLoadForEditPopulatesAndLocksIdentity(t *testing.T) {
	svc, repo, client, _ := newTestFormService()
	ctx := context.Background()

	stored := payload.Submission{
		SubmissionID: "rec-42",
		PageType:     string(payload.PageMains),
		CreatedAt:    "2025-01-05T08:00:00Z",
		UpdatedAt:    "2025-01-06T08:00:00Z",
		Fields: map[string]any{
			"Main Size": "6\"",
			"Address":   "Bridge Rd",
		},
		Repeaters: map[string][]payload.Row{
			"mainsMaterials": {{"Size": "6\"", "Material": "Steel"}},
		},
		Sketch: &payload.Attachment{Filename: "sketch.png", DataURL: "data:image/png;base64,aGk="},
	}
	raw, _ := json.Marshal(stored)
	client.fetchRes = &secondary.FetchResult{Payload: raw}

	resp, err := svc.LoadForEdit(ctx, primary.LoadForEditRequest{SubmissionID: "rec-42"})
	if err != nil {
		t.Fatalf("LoadForEdit failed: %v", err)
	}
	if !resp.Loaded {
		t.Fatalf("expected load to complete, status %s", resp.Status)
	}
	if resp.PageType != string(payload.PageMains) {
		t.Errorf("expected page type restored, got %s", resp.PageType)
	}

	ident := svc.session.Current()
	if ident.Mode != identity.ModeEdit || ident.SubmissionID != "rec-42" {
		t.Errorf("expected locked edit identity, got %+v", ident)
	}
	if ident.CreatedAt != "2025-01-05T08:00:00Z" {
		t.Errorf("expected createdAt locked from the record, got %s", ident.CreatedAt)
	}

	// A save that never touched the drawing surface carries the stored sketch
	// forward unchanged.
	built, err := svc.BuildPayload(ctx)
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}
	var sub payload.Submission
	if err := json.Unmarshal(built.JSON, &sub); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if sub.Sketch == nil || sub.Sketch.Filename != "sketch.png" {
		t.Error("expected existing sketch carried forward on edit")
	}
	if sub.CreatedAt != "2025-01-05T08:00:00Z" {
		t.Errorf("expected original createdAt preserved, got %s", sub.CreatedAt)
	}
	if sub.Action != "update" {
		t.Errorf("expected action update in edit mode, got %q", sub.Action)
	}
	if sub.Fields["Main Size"] != "6\"" {
		t.Errorf("expected restored field, got %v", sub.Fields["Main Size"])
	}

	if !repo.has(secondary.CollectionDrafts, "rec-42") {
		t.Error("expected loaded record persisted as resumable draft")
	}
}

func TestLoadForEditDebounced(t *testing.T) {
	svc, _, client, _ := newTestFormService()

	// A load already in flight suppresses the trigger entirely.
	svc.session.BeginLoad()
	defer svc.session.EndLoad()

	resp, err := svc.LoadForEdit(context.Background(), primary.LoadForEditRequest{SubmissionID: "rec-42"})
	if err != nil {
		t.Fatalf("debounced load must not fail: %v", err)
	}
	if resp.Loaded {
		t.Error("expected debounced load to be a no-op")
	}
	if client.fetchCalls != 0 {
		t.Errorf("expected no fetch, got %d", client.fetchCalls)
	}
}

func TestLoadForEditFailureLeavesCaptureUntouched(t *testing.T) {
	svc, _, client, _ := newTestFormService()
	ctx := context.Background()

	resp, _ := svc.StartNew(ctx, primary.StartNewRequest{})
	svc.SetField(ctx, primary.SetFieldRequest{Name: "Notes", Value: "half-finished"})

	client.fetchErr = errors.New("store unreachable")
	if _, err := svc.LoadForEdit(ctx, primary.LoadForEditRequest{SubmissionID: "rec-42"}); err == nil {
		t.Fatal("expected load failure to surface")
	}

	built, err := svc.BuildPayload(ctx)
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}
	if built.SubmissionID != resp.SubmissionID {
		t.Errorf("expected identity unchanged after failed load, got %s", built.SubmissionID)
	}
	if !strings.Contains(string(built.JSON), "half-finished") {
		t.Error("expected capture state unchanged after failed load")
	}
}

func TestLoadForEditDraftWriteFailureLeavesStateUntouched(t *testing.T) {
	svc, repo, client, _ := newTestFormService()
	ctx := context.Background()

	resp, _ := svc.StartNew(ctx, primary.StartNewRequest{})
	svc.SetField(ctx, primary.SetFieldRequest{Name: "Notes", Value: "half-finished"})

	stored := payload.Submission{
		SubmissionID: "rec-42",
		PageType:     string(payload.PageMains),
		CreatedAt:    "2025-03-01T08:00:00Z",
	}
	raw, _ := json.Marshal(stored)
	client.fetchRes = &secondary.FetchResult{Payload: raw}
	repo.putErr = errors.New("disk full")

	if _, err := svc.LoadForEdit(ctx, primary.LoadForEditRequest{SubmissionID: "rec-42"}); err == nil {
		t.Fatal("expected draft write failure to surface")
	}

	// The error return must not coincide with moved state: the session still
	// owns the record that was active before the load.
	ident := svc.session.Current()
	if ident.SubmissionID != resp.SubmissionID || ident.Mode != identity.ModeNew {
		t.Errorf("expected identity unchanged after failed draft write, got %+v", ident)
	}
	if got := svc.capture.Raw().Fields["Notes"]; got != "half-finished" {
		t.Errorf("expected capture state unchanged after failed draft write, got %v", got)
	}
}

func TestSketchClearTransmitsBlank(t *testing.T) {
	svc, _, client, _ := newTestFormService()
	ctx := context.Background()

	svc.StartNew(ctx, primary.StartNewRequest{})
	svc.SetSketch(ctx, primary.SetSketchRequest{Filename: "sketch.png", DataURL: "data:image/png;base64,aGk="})
	svc.ClearSketch(ctx)

	if _, err := svc.SubmitNow(ctx); err != nil {
		t.Fatalf("SubmitNow failed: %v", err)
	}
	var sub payload.Submission
	if err := json.Unmarshal(client.submitted[0].Payload, &sub); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if sub.Sketch != nil {
		t.Error("expected cleared sketch to transmit as absent")
	}
}

func TestQueueForSyncRecordsDeliveryIntent(t *testing.T) {
	svc, repo, client, _ := newTestFormService()
	ctx := context.Background()

	resp, _ := svc.StartNew(ctx, primary.StartNewRequest{})
	if _, err := svc.SubmitNow(ctx); err != nil {
		t.Fatalf("SubmitNow failed: %v", err)
	}

	// Queued after the first delivery: the replay must be an update even when
	// it runs from a fresh process with no session.
	client.submitErr[resp.SubmissionID] = errors.New("down")
	if _, err := svc.SubmitNow(ctx); err != nil {
		t.Fatalf("SubmitNow failed: %v", err)
	}

	record, _ := repo.Get(ctx, secondary.CollectionQueue, resp.SubmissionID)
	if record == nil {
		t.Fatal("expected requeued record")
	}
	if record.Op != secondary.OpUpdate {
		t.Errorf("expected queued op update, got %s", record.Op)
	}
}
