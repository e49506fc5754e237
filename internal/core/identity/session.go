// Package identity owns the active record's identity: its submission id, its
// lifecycle mode (new vs edit), and the locked creation timestamp. All state
// transitions go through the Session API; nothing else assigns identity.
package identity

import (
	"sync"

	"github.com/google/uuid"
)

// Mode is the lifecycle mode of the active submission.
type Mode string

const (
	ModeNew  Mode = "new"
	ModeEdit Mode = "edit"
)

// Identity is a snapshot of the current record identity.
type Identity struct {
	SubmissionID string
	Mode         Mode
	// CreatedAt is the locked creation timestamp. Empty until the record is
	// first saved or loaded; once set it never changes for this record.
	CreatedAt string
}

// Session is the single owner of identity state for the active capture
// session. At most one record is active at a time.
type Session struct {
	mu        sync.Mutex
	id        string
	mode      Mode
	createdAt string
	loading   bool

	// newID is injectable for deterministic tests.
	newID func() string
}

// NewSession returns a session with a freshly allocated identity in mode new.
func NewSession() *Session {
	s := &Session{newID: uuid.NewString}
	s.StartNew()
	return s
}

// Restore rebuilds a session from persisted state (the resumable reference).
// An empty id behaves like StartNew.
func Restore(id string, mode Mode, createdAt string) *Session {
	s := &Session{newID: uuid.NewString}
	if id == "" {
		s.StartNew()
		return s
	}
	s.id = id
	s.mode = mode
	if s.mode != ModeEdit {
		s.mode = ModeNew
	}
	s.createdAt = createdAt
	return s
}

// StartNew allocates a new unique id, sets mode to new, and clears the locked
// creation timestamp.
func (s *Session) StartNew() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = s.newID()
	s.mode = ModeNew
	s.createdAt = ""
	return s.snapshot()
}

// BeginEdit locks the identity to an existing record and flips mode to edit.
// The caller must supply the fetched creation timestamp via LockCreatedAt.
func (s *Session) BeginEdit(existingID string) Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = existingID
	s.mode = ModeEdit
	s.createdAt = ""
	return s.snapshot()
}

// LockCreatedAt fixes the creation timestamp for the active record. Once
// locked it is never overwritten for the same record.
func (s *Session) LockCreatedAt(ts string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createdAt == "" {
		s.createdAt = ts
	}
}

// LockAfterFirstSave flips mode to edit after the first successful delivery,
// so a second save on the same session performs an update, not a second
// create.
func (s *Session) LockAfterFirstSave(id string) Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.mode = ModeEdit
	return s.snapshot()
}

// Current returns the identity snapshot.
func (s *Session) Current() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// BeginLoad marks an edit load as in flight. It returns false when a load is
// already running; the second trigger must be ignored, not queued, so a
// double-fired UI event cannot interleave half-applied state.
func (s *Session) BeginLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

// EndLoad clears the in-flight load marker.
func (s *Session) EndLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

func (s *Session) snapshot() Identity {
	return Identity{SubmissionID: s.id, Mode: s.mode, CreatedAt: s.createdAt}
}
