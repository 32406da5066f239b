package eventstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pflow-xyz/go-registry/eventstore"
)

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func() eventstore.Store {
		return eventstore.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func() eventstore.Store {
		store, err := eventstore.NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("failed to create sqlite store: %v", err)
		}
		return store
	})
}

func runStoreTests(t *testing.T, newStore func() eventstore.Store) {
	t.Run("AppendAndRead", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		event1, _ := eventstore.NewEvent("registry-1", "TokenTransferred", map[string]string{"token_id": "0x1"})
		event2, _ := eventstore.NewEvent("registry-1", "TokenApproved", map[string]string{"token_id": "0x1"})

		version, err := store.Append(ctx, "registry-1", -1, []*eventstore.Event{event1})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0, got %d", version)
		}

		version, err = store.Append(ctx, "registry-1", 0, []*eventstore.Event{event2})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if version != 1 {
			t.Errorf("expected version 1, got %d", version)
		}

		events, err := store.Read(ctx, "registry-1", 0)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Type != "TokenTransferred" {
			t.Errorf("expected type TokenTransferred, got %s", events[0].Type)
		}
		if events[1].Type != "TokenApproved" {
			t.Errorf("expected type TokenApproved, got %s", events[1].Type)
		}

		var payload map[string]string
		if err := events[0].Decode(&payload); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if payload["token_id"] != "0x1" {
			t.Errorf("payload round trip failed: %v", payload)
		}
	})

	t.Run("ConcurrencyConflict", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		event1, _ := eventstore.NewEvent("registry-1", "TokenTransferred", nil)
		event2, _ := eventstore.NewEvent("registry-1", "TokenApproved", nil)

		if _, err := store.Append(ctx, "registry-1", -1, []*eventstore.Event{event1}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		// Wrong expected version must conflict.
		if _, err := store.Append(ctx, "registry-1", 5, []*eventstore.Event{event2}); !errors.Is(err, eventstore.ErrConcurrencyConflict) {
			t.Errorf("expected concurrency conflict, got: %v", err)
		}

		if _, err := store.Append(ctx, "registry-1", 0, []*eventstore.Event{event2}); err != nil {
			t.Errorf("append with correct version failed: %v", err)
		}
	})

	t.Run("StreamVersion", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		version, err := store.StreamVersion(ctx, "registry-1")
		if err != nil {
			t.Fatalf("stream version failed: %v", err)
		}
		if version != -1 {
			t.Errorf("expected version -1 for non-existent stream, got %d", version)
		}

		event, _ := eventstore.NewEvent("registry-1", "TokenTransferred", nil)
		if _, err := store.Append(ctx, "registry-1", -1, []*eventstore.Event{event}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		version, err = store.StreamVersion(ctx, "registry-1")
		if err != nil {
			t.Fatalf("stream version failed: %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0, got %d", version)
		}
	})

	t.Run("ReadFromVersion", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		var batch []*eventstore.Event
		for i := 0; i < 5; i++ {
			e, _ := eventstore.NewEvent("registry-1", "TokenTransferred", nil)
			batch = append(batch, e)
		}
		if _, err := store.Append(ctx, "registry-1", -1, batch); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		events, err := store.Read(ctx, "registry-1", 3)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events from version 3, got %d", len(events))
		}
		if events[0].Version != 3 || events[1].Version != 4 {
			t.Errorf("unexpected versions: %d, %d", events[0].Version, events[1].Version)
		}
	})

	t.Run("StreamIsolation", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		e1, _ := eventstore.NewEvent("registry-1", "TokenTransferred", nil)
		e2, _ := eventstore.NewEvent("registry-2", "TokenTransferred", nil)
		if _, err := store.Append(ctx, "registry-1", -1, []*eventstore.Event{e1}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if _, err := store.Append(ctx, "registry-2", -1, []*eventstore.Event{e2}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		events, err := store.Read(ctx, "registry-1", 0)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(events) != 1 {
			t.Errorf("expected 1 event in registry-1, got %d", len(events))
		}
	})
}
