package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/fieldforms/internal/ports/secondary"
)

func queuedRecord(id, createdAt string) *secondary.SubmissionRecord {
	return &secondary.SubmissionRecord{
		SubmissionID: id,
		PageType:     "Leak Repair",
		Op:           secondary.OpSubmit,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
		Payload:      []byte(`{"submissionId":"` + id + `"}`),
	}
}

func TestTrySyncOffline(t *testing.T) {
	repo := newMockSubmissionRepository()
	client := newMockRecordStoreClient()
	svc := NewSyncService(repo, client, &mockConnectivityChecker{online: false})
	ctx := context.Background()

	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("a", "2025-03-01T10:00:00Z"))

	result, err := svc.TrySync(ctx)
	if err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}
	if result.Online {
		t.Error("expected offline result")
	}
	if result.Attempted != 0 || len(client.submitted) != 0 {
		t.Error("expected no delivery attempts while offline")
	}
	if !repo.has(secondary.CollectionQueue, "a") {
		t.Error("expected queue untouched while offline")
	}
}

func TestTrySyncEmptyQueue(t *testing.T) {
	repo := newMockSubmissionRepository()
	client := newMockRecordStoreClient()
	svc := NewSyncService(repo, client, &mockConnectivityChecker{online: true})

	result, err := svc.TrySync(context.Background())
	if err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}
	if !result.Online || result.Attempted != 0 || result.Delivered != 0 {
		t.Errorf("expected clean no-op, got %+v", result)
	}
}

func TestTrySyncDeliversOldestFirst(t *testing.T) {
	repo := newMockSubmissionRepository()
	client := newMockRecordStoreClient()
	svc := NewSyncService(repo, client, &mockConnectivityChecker{online: true})
	ctx := context.Background()

	// Inserted out of order; replay must follow creation order.
	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("c", "2025-03-01T12:00:00Z"))
	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("a", "2025-03-01T10:00:00Z"))
	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("b", "2025-03-01T11:00:00Z"))
	repo.Put(ctx, secondary.CollectionDrafts, queuedRecord("a", "2025-03-01T10:00:00Z"))

	result, err := svc.TrySync(ctx)
	if err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}
	if result.Delivered != 3 || result.Remaining != 0 {
		t.Fatalf("expected full drain, got %+v", result)
	}

	var order []string
	for _, record := range client.submitted {
		order = append(order, record.SubmissionID)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("expected delivery order a,b,c, got %v", order)
	}

	if repo.count(secondary.CollectionQueue) != 0 {
		t.Error("expected queue emptied after drain")
	}
	if repo.has(secondary.CollectionDrafts, "a") {
		t.Error("expected delivered record removed from drafts too")
	}
}

func TestTrySyncStopsAtFirstFailure(t *testing.T) {
	repo := newMockSubmissionRepository()
	client := newMockRecordStoreClient()
	svc := NewSyncService(repo, client, &mockConnectivityChecker{online: true})
	ctx := context.Background()

	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("a", "2025-03-01T10:00:00Z"))
	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("b", "2025-03-01T11:00:00Z"))
	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("c", "2025-03-01T12:00:00Z"))
	client.submitErr["b"] = errors.New("store rejected payload")

	result, err := svc.TrySync(ctx)
	if err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}
	if result.Delivered != 1 {
		t.Errorf("expected 1 delivered before the failure, got %d", result.Delivered)
	}
	if result.FailedID != "b" {
		t.Errorf("expected failure at b, got %s", result.FailedID)
	}
	if result.Remaining != 2 {
		t.Errorf("expected 2 remaining, got %d", result.Remaining)
	}

	// The failed record and everything younger stay queued; only the
	// delivered record is removed.
	if repo.has(secondary.CollectionQueue, "a") {
		t.Error("expected delivered record removed from queue")
	}
	if !repo.has(secondary.CollectionQueue, "b") || !repo.has(secondary.CollectionQueue, "c") {
		t.Error("expected failed and younger records to stay queued")
	}

	// Nothing after the failure may be attempted.
	for _, record := range client.submitted {
		if record.SubmissionID == "c" {
			t.Error("expected no attempt past the first failure")
		}
	}
}

func TestTrySyncStopsOnEchoMismatch(t *testing.T) {
	repo := newMockSubmissionRepository()
	client := newMockRecordStoreClient()
	svc := NewSyncService(repo, client, &mockConnectivityChecker{online: true})
	ctx := context.Background()

	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("a", "2025-03-01T10:00:00Z"))
	client.echoIDs["a"] = "z"

	result, err := svc.TrySync(ctx)
	if err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}
	if result.Delivered != 0 || result.FailedID != "a" {
		t.Errorf("expected mismatch to count as failure, got %+v", result)
	}
	if !repo.has(secondary.CollectionQueue, "a") {
		t.Error("mismatched record must stay queued, not be deleted")
	}
}

func TestListQueueOrderedByCreation(t *testing.T) {
	repo := newMockSubmissionRepository()
	svc := NewSyncService(repo, newMockRecordStoreClient(), &mockConnectivityChecker{online: true})
	ctx := context.Background()

	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("b", "2025-03-01T11:00:00Z"))
	repo.Put(ctx, secondary.CollectionQueue, queuedRecord("a", "2025-03-01T10:00:00Z"))

	stored, err := svc.ListQueue(ctx)
	if err != nil {
		t.Fatalf("ListQueue failed: %v", err)
	}
	if len(stored) != 2 || stored[0].SubmissionID != "a" || stored[1].SubmissionID != "b" {
		t.Errorf("expected oldest first, got %+v", stored)
	}
}
