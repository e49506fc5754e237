package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/fieldforms/internal/ports/primary"
	"github.com/example/fieldforms/internal/ports/secondary"
)

// SyncServiceImpl implements the SyncService interface. It replays the queue
// oldest first and stops at the first failure so records never land out of
// order.
type SyncServiceImpl struct {
	repo    secondary.SubmissionRepository
	client  secondary.RecordStoreClient
	checker secondary.ConnectivityChecker
}

// NewSyncService creates a new SyncService with injected dependencies.
func NewSyncService(
	repo secondary.SubmissionRepository,
	client secondary.RecordStoreClient,
	checker secondary.ConnectivityChecker,
) *SyncServiceImpl {
	return &SyncServiceImpl{
		repo:    repo,
		client:  client,
		checker: checker,
	}
}

// TrySync drains the queue sequentially, oldest creation first. Each success
// removes the record from both collections before the next is attempted, so
// an interruption at any point leaves only undelivered work behind. The first
// failure stops the pass; the failed record and everything younger stay
// queued for the next trigger.
func (s *SyncServiceImpl) TrySync(ctx context.Context) (*primary.SyncResult, error) {
	if !s.checker.Online(ctx) {
		return &primary.SyncResult{Status: "Offline: sync skipped"}, nil
	}

	records, err := s.repo.GetAll(ctx, secondary.CollectionQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync queue: %w", err)
	}
	if len(records) == 0 {
		return &primary.SyncResult{Online: true, Status: "Queue empty"}, nil
	}

	sortByCreatedAt(records)

	result := &primary.SyncResult{Online: true, Attempted: len(records)}
	for _, record := range records {
		res, err := s.client.Submit(ctx, record)
		if err != nil {
			result.FailedID = record.SubmissionID
			result.Remaining = len(records) - result.Delivered
			result.Status = fmt.Sprintf("Sync stopped at %s: %v (%d delivered, %d remaining)",
				record.SubmissionID, err, result.Delivered, result.Remaining)
			return result, nil
		}
		// A store echoing back a different id than the one it was asked to
		// write is a fatal mismatch; deleting our copy would lose the record.
		if res.SubmissionID != "" && res.SubmissionID != record.SubmissionID {
			result.FailedID = record.SubmissionID
			result.Remaining = len(records) - result.Delivered
			result.Status = fmt.Sprintf("Sync stopped at %s: store answered for record %s",
				record.SubmissionID, res.SubmissionID)
			return result, nil
		}

		if err := s.repo.Delete(ctx, secondary.CollectionQueue, record.SubmissionID); err != nil {
			return nil, fmt.Errorf("failed to remove delivered record %s from queue: %w", record.SubmissionID, err)
		}
		if err := s.repo.Delete(ctx, secondary.CollectionDrafts, record.SubmissionID); err != nil {
			return nil, fmt.Errorf("failed to remove delivered record %s from drafts: %w", record.SubmissionID, err)
		}
		result.Delivered++
	}

	result.Status = fmt.Sprintf("Synced %d record(s)", result.Delivered)
	return result, nil
}

// ListQueue returns pending queue entries, oldest creation first.
func (s *SyncServiceImpl) ListQueue(ctx context.Context) ([]*primary.StoredSubmission, error) {
	return s.list(ctx, secondary.CollectionQueue)
}

// ListDrafts returns resumable drafts, oldest creation first.
func (s *SyncServiceImpl) ListDrafts(ctx context.Context) ([]*primary.StoredSubmission, error) {
	return s.list(ctx, secondary.CollectionDrafts)
}

func (s *SyncServiceImpl) list(ctx context.Context, collection secondary.Collection) ([]*primary.StoredSubmission, error) {
	records, err := s.repo.GetAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	sortByCreatedAt(records)

	stored := make([]*primary.StoredSubmission, 0, len(records))
	for _, record := range records {
		stored = append(stored, &primary.StoredSubmission{
			SubmissionID: record.SubmissionID,
			PageType:     record.PageType,
			Op:           string(record.Op),
			CreatedAt:    record.CreatedAt,
			UpdatedAt:    record.UpdatedAt,
		})
	}
	return stored, nil
}

// sortByCreatedAt orders records by creation timestamp ascending. Timestamps
// are RFC 3339 strings, so lexicographic order is chronological order.
func sortByCreatedAt(records []*secondary.SubmissionRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt < records[j].CreatedAt
		}
		return records[i].SubmissionID < records[j].SubmissionID
	})
}

// Ensure SyncServiceImpl implements the interface
var _ primary.SyncService = (*SyncServiceImpl)(nil)
