package review

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/resume-review/internal/diff"
	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/types"
)

// Snapshot is the persisted state of an in-flight session. Records are kept
// so that ids stay stable between requests.
type Snapshot struct {
	ID          string                          `json:"id"`
	Mode        types.Mode                      `json:"mode"`
	Previous    resume.Document                 `json:"previous"`
	Current     resume.Document                 `json:"current"`
	ChangesMade []types.ChangeDescriptor        `json:"changes_made,omitempty"`
	Records     []types.ChangeRecord            `json:"records"`
	Decisions   types.DecisionMap               `json:"decisions"`
	ReviewedAt  map[types.DecisionKey]time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time                       `json:"created_at"`
}

// Snapshot captures the session state.
func (s *Session) Snapshot() *Snapshot {
	reviewedAt := make(map[types.DecisionKey]time.Time, len(s.tracker.reviewedAt))
	for k, v := range s.tracker.reviewedAt {
		reviewedAt[k] = v
	}
	records := make([]types.ChangeRecord, len(s.records))
	copy(records, s.records)
	return &Snapshot{
		ID:          s.id,
		Mode:        s.mode,
		Previous:    s.previous,
		Current:     s.current,
		ChangesMade: s.supplied,
		Records:     records,
		Decisions:   s.tracker.Decisions(),
		ReviewedAt:  reviewedAt,
		CreatedAt:   s.createdAt,
	}
}

// Restore rebuilds a session from a snapshot without recomputing its records.
func Restore(snap *Snapshot, opts diff.Options) *Session {
	tracker := NewTracker(snap.Decisions)
	for k, v := range snap.ReviewedAt {
		if _, decided := tracker.decisions[k]; decided {
			tracker.reviewedAt[k] = v
		}
	}
	records := make([]types.ChangeRecord, len(snap.Records))
	copy(records, snap.Records)
	return &Session{
		id:        snap.ID,
		mode:      snap.Mode,
		previous:  snap.Previous,
		current:   snap.Current,
		supplied:  snap.ChangesMade,
		diffOpts:  opts,
		records:   records,
		tracker:   tracker,
		createdAt: snap.CreatedAt,
	}
}

// UpdateFunc mutates a snapshot in place. It may be called more than once
// when a store retries after a concurrent write.
type UpdateFunc func(snap *Snapshot) error

// Store persists session snapshots between requests.
type Store interface {
	Get(ctx context.Context, id string) (*Snapshot, error)
	Put(ctx context.Context, snap *Snapshot) error
	Delete(ctx context.Context, id string) error
	// Update runs a read-modify-write of one snapshot atomically. Nothing is
	// written when fn returns an error.
	Update(ctx context.Context, id string, fn UpdateFunc) (*Snapshot, error)
}

// MemoryStore keeps snapshots in process memory. Snapshots are stored as
// JSON so callers never share mutable state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

// Get returns a copy of the snapshot, or ErrSessionNotFound.
func (m *MemoryStore) Get(_ context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	data, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSnapshot(data)
}

// Put stores a copy of the snapshot.
func (m *MemoryStore) Put(_ context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}
	m.mu.Lock()
	m.items[snap.ID] = data
	m.mu.Unlock()
	return nil
}

// Update holds the store lock across the read, fn and the write.
func (m *MemoryStore) Update(_ context.Context, id string, fn UpdateFunc) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	if err := fn(snap); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session snapshot: %w", err)
	}
	m.items[id] = encoded
	return snap, nil
}

// Delete removes a snapshot. Deleting a missing id is not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	return &snap, nil
}
