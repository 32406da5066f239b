// Package journal records registry notifications as an event-sourced
// history and rebuilds registries by replaying it.
package journal

import (
	"context"
	"fmt"

	"github.com/pflow-xyz/go-registry/eventstore"
	"github.com/pflow-xyz/go-registry/registry"
)

// Event type names used in the journal.
const (
	TypeTransfer = "TokenTransferred"
	TypeApproval = "TokenApproved"
	TypeOperator = "OperatorSet"
)

// TransferPayload records an ownership change. The zero address as From
// marks a mint, as To a burn.
type TransferPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	TokenID string `json:"token_id"`
}

// ApprovalPayload records a delegate change for one token.
type ApprovalPayload struct {
	Owner    string `json:"owner"`
	Delegate string `json:"delegate"`
	TokenID  string `json:"token_id"`
}

// OperatorPayload records a blanket operator grant or revocation.
type OperatorPayload struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

// Recorder is a registry.Emitter that buffers notifications as journal
// events. Mutations emit only after they commit, so flushing the buffer
// after a successful operation persists exactly that operation's events;
// after a failed operation the buffer is empty.
type Recorder struct {
	stream  string
	pending []*eventstore.Event
	err     error
}

// NewRecorder creates a recorder for the given stream.
func NewRecorder(stream string) *Recorder {
	return &Recorder{stream: stream}
}

func (rec *Recorder) record(eventType string, payload any) {
	e, err := eventstore.NewEvent(rec.stream, eventType, payload)
	if err != nil {
		if rec.err == nil {
			rec.err = err
		}
		return
	}
	rec.pending = append(rec.pending, e)
}

// OwnershipChanged implements registry.Emitter.
func (rec *Recorder) OwnershipChanged(from, to registry.Address, tokenID *registry.TokenID) {
	rec.record(TypeTransfer, TransferPayload{
		From:    from.Hex(),
		To:      to.Hex(),
		TokenID: tokenID.Hex(),
	})
}

// ApprovalChanged implements registry.Emitter.
func (rec *Recorder) ApprovalChanged(owner, delegate registry.Address, tokenID *registry.TokenID) {
	rec.record(TypeApproval, ApprovalPayload{
		Owner:    owner.Hex(),
		Delegate: delegate.Hex(),
		TokenID:  tokenID.Hex(),
	})
}

// OperatorApprovalChanged implements registry.Emitter.
func (rec *Recorder) OperatorApprovalChanged(owner, operator registry.Address, approved bool) {
	rec.record(TypeOperator, OperatorPayload{
		Owner:    owner.Hex(),
		Operator: operator.Hex(),
		Approved: approved,
	})
}

// Pending returns the buffered, not-yet-flushed events.
func (rec *Recorder) Pending() []*eventstore.Event {
	return rec.pending
}

// Flush appends the buffered events to store at the stream's current
// version and clears the buffer. With nothing buffered it is a no-op.
func (rec *Recorder) Flush(ctx context.Context, store eventstore.Store) error {
	if rec.err != nil {
		return rec.err
	}
	if len(rec.pending) == 0 {
		return nil
	}
	version, err := store.StreamVersion(ctx, rec.stream)
	if err != nil {
		return err
	}
	if _, err := store.Append(ctx, rec.stream, version, rec.pending); err != nil {
		return fmt.Errorf("journal: flush %d events: %w", len(rec.pending), err)
	}
	rec.pending = nil
	return nil
}

// Reset drops buffered events without persisting them.
func (rec *Recorder) Reset() {
	rec.pending = nil
	rec.err = nil
}

var _ registry.Emitter = (*Recorder)(nil)
