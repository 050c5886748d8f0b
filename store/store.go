// Package store persists run records, one summary row per orchestrated
// task. The in-memory implementation backs development and tests; the
// sqlite subpackage provides durable storage for embedding applications.
package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound indicates no run record exists for the requested id.
var ErrNotFound = errors.New("run record not found")

// RunRecord summarizes one orchestrated task submission.
type RunRecord struct {
	ID           string
	TaskID       string
	Operation    string
	Status       string
	SubtaskCount int
	SuccessRate  float64
	Duration     time.Duration
	CreatedAt    time.Time
}

// Store persists run records.
type Store interface {
	// SaveRun inserts one run record.
	SaveRun(ctx context.Context, rec RunRecord) error
	// GetRun fetches the record with the given id, or ErrNotFound.
	GetRun(ctx context.Context, id string) (RunRecord, error)
	// ListRuns returns up to limit records, most recent first. A limit of
	// zero or less returns all records.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	// Close releases any underlying resources.
	Close() error
}

// InMemoryStore keeps run records in process memory. Safe for concurrent
// use.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]RunRecord
	order   []string
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]RunRecord)}
}

// SaveRun implements Store.
func (s *InMemoryStore) SaveRun(_ context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec
	return nil
}

// GetRun implements Store.
func (s *InMemoryStore) GetRun(_ context.Context, id string) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return RunRecord{}, ErrNotFound
	}
	return rec, nil
}

// ListRuns implements Store.
func (s *InMemoryStore) ListRuns(_ context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]RunRecord, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		records = append(records, s.records[s.order[i]])
		if limit > 0 && len(records) == limit {
			break
		}
	}
	return records, nil
}

// Close implements Store. It is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
