// Package eventstore provides an append-only, versioned journal for
// registry notifications, with in-memory and SQLite backends.
package eventstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a single journal entry within a stream.
type Event struct {
	// ID is a globally unique event identifier.
	ID string `json:"id"`

	// Stream groups events belonging to one registry instance.
	Stream string `json:"stream"`

	// Type is the event type name (e.g. "TokenTransferred").
	Type string `json:"type"`

	// Version is the event's zero-based position in its stream. It is
	// assigned by the store on append.
	Version int `json:"version"`

	// Data is the JSON-encoded payload.
	Data json.RawMessage `json:"data,omitempty"`

	// Timestamp records when the event was created.
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event with a fresh ID and JSON-encoded payload.
func NewEvent(stream, eventType string, payload any) (*Event, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("eventstore: encode %s payload: %w", eventType, err)
		}
		data = b
	}
	return &Event{
		ID:        uuid.New().String(),
		Stream:    stream,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("eventstore: event %s has no payload", e.ID)
	}
	return json.Unmarshal(e.Data, v)
}
