package app

import (
	"context"
	"sync"
	"time"

	"github.com/example/fieldforms/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockSubmissionRepository implements secondary.SubmissionRepository in memory.
type mockSubmissionRepository struct {
	mu      sync.Mutex
	records map[secondary.Collection]map[string]*secondary.SubmissionRecord

	putErr    error
	getErr    error
	getAllErr error
	deleteErr error
}

func newMockSubmissionRepository() *mockSubmissionRepository {
	return &mockSubmissionRepository{
		records: map[secondary.Collection]map[string]*secondary.SubmissionRecord{
			secondary.CollectionDrafts: {},
			secondary.CollectionQueue:  {},
		},
	}
}

func (m *mockSubmissionRepository) Put(ctx context.Context, collection secondary.Collection, record *secondary.SubmissionRecord) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.records[collection][record.SubmissionID] = &cp
	return nil
}

func (m *mockSubmissionRepository) Get(ctx context.Context, collection secondary.Collection, id string) (*secondary.SubmissionRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[collection][id]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (m *mockSubmissionRepository) GetAll(ctx context.Context, collection secondary.Collection) ([]*secondary.SubmissionRecord, error) {
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.SubmissionRecord
	for _, record := range m.records[collection] {
		cp := *record
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockSubmissionRepository) Delete(ctx context.Context, collection secondary.Collection, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records[collection], id)
	return nil
}

func (m *mockSubmissionRepository) count(collection secondary.Collection) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[collection])
}

func (m *mockSubmissionRepository) has(collection secondary.Collection, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[collection][id]
	return ok
}

// mockRecordStoreClient implements secondary.RecordStoreClient for testing.
type mockRecordStoreClient struct {
	submitted  []*secondary.SubmissionRecord
	submitErr  map[string]error // per submission id
	echoIDs    map[string]string
	fetchCalls int
	fetchRes   *secondary.FetchResult
	fetchErr   error
}

func newMockRecordStoreClient() *mockRecordStoreClient {
	return &mockRecordStoreClient{
		submitErr: make(map[string]error),
		echoIDs:   make(map[string]string),
	}
}

func (m *mockRecordStoreClient) Submit(ctx context.Context, record *secondary.SubmissionRecord) (*secondary.SubmitResult, error) {
	if err := m.submitErr[record.SubmissionID]; err != nil {
		return nil, err
	}
	m.submitted = append(m.submitted, record)
	echo, ok := m.echoIDs[record.SubmissionID]
	if !ok {
		echo = record.SubmissionID
	}
	return &secondary.SubmitResult{SubmissionID: echo}, nil
}

func (m *mockRecordStoreClient) FetchByID(ctx context.Context, id string) (*secondary.FetchResult, error) {
	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.fetchRes, nil
}

// mockConnectivityChecker implements secondary.ConnectivityChecker for testing.
type mockConnectivityChecker struct {
	online bool
}

func (m *mockConnectivityChecker) Online(ctx context.Context) bool {
	return m.online
}

// ============================================================================
// Helpers
// ============================================================================

// fixedClock returns a deterministic clock advancing by step on each call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(step)
		return t
	}
}
