package eventstore

import (
	"context"
	"errors"
	"sync"
)

// ErrConcurrencyConflict is returned when Append's expected version does
// not match the stream's current version.
var ErrConcurrencyConflict = errors.New("eventstore: stream version conflict")

// Store is an append-only event journal with optimistic concurrency.
type Store interface {
	// Append adds events to a stream. expectedVersion is the current
	// version of the stream (-1 for a new stream); a mismatch fails with
	// ErrConcurrencyConflict. Returns the stream's new version.
	Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error)

	// Read returns events in a stream with Version >= fromVersion, in
	// order. A missing stream yields an empty slice.
	Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error)

	// StreamVersion returns the current version of a stream, or -1 if
	// the stream does not exist.
	StreamVersion(ctx context.Context, stream string) (int, error)

	// Close releases backing resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and ephemeral embedders.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]*Event)}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.streams[stream]
	current := len(existing) - 1
	if expectedVersion != current {
		return 0, ErrConcurrencyConflict
	}

	for i, e := range events {
		clone := *e
		clone.Stream = stream
		clone.Version = current + 1 + i
		existing = append(existing, &clone)
	}
	s.streams[stream] = existing
	return len(existing) - 1, nil
}

// Read implements Store.
func (s *MemoryStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.streams[stream] {
		if e.Version >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// StreamVersion implements Store.
func (s *MemoryStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[stream]) - 1, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
