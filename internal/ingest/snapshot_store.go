package ingest

import (
	"sync"
	"time"

	"trainmap.dev/internal/models"
)

// Snapshot is the outcome of one ingestion cycle. Exactly one of Positions
// and Err is meaningful: a failed cycle carries no positions.
type Snapshot struct {
	FeedID      string
	Positions   []models.VehiclePosition
	Err         error
	CompletedAt time.Time
}

// SnapshotStore holds the latest cycle outcome and is safe for concurrent use.
type SnapshotStore struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Set replaces the stored snapshot.
func (s *SnapshotStore) Set(snapshot *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}

// Get returns the latest snapshot, or nil if no cycle has completed.
// Callers must not modify the returned positions.
func (s *SnapshotStore) Get() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}
