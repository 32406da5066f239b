package journal

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-registry/eventstore"
	"github.com/pflow-xyz/go-registry/registry"
)

// Replay rebuilds a registry by folding every event in the stream into a
// snapshot. It returns the registry and the stream version it reflects
// (-1 for an empty stream). oracle and emitter are attached to the
// rebuilt registry; replay itself emits nothing.
func Replay(ctx context.Context, store eventstore.Store, stream string, oracle registry.RecipientOracle, emitter registry.Emitter) (*registry.Registry, int, error) {
	events, err := store.Read(ctx, stream, 0)
	if err != nil {
		return nil, 0, err
	}

	snap := registry.NewSnapshot()
	version := -1
	for _, e := range events {
		if err := apply(snap, e); err != nil {
			return nil, 0, fmt.Errorf("journal: replay %s at version %d: %w", stream, e.Version, err)
		}
		version = e.Version
	}
	return registry.FromSnapshot(snap, oracle, emitter), version, nil
}

func apply(snap *registry.Snapshot, e *eventstore.Event) error {
	switch e.Type {
	case TypeTransfer:
		var p TransferPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		from, to, id, err := transferFields(p)
		if err != nil {
			return err
		}
		delete(snap.Approved, *id)
		if !from.IsZero() {
			snap.Balances[from]--
			if snap.Balances[from] == 0 {
				delete(snap.Balances, from)
			}
		}
		if to.IsZero() {
			delete(snap.Owners, *id)
		} else {
			snap.Owners[*id] = to
			snap.Balances[to]++
		}
		return nil

	case TypeApproval:
		var p ApprovalPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		delegate, err := registry.ParseAddress(p.Delegate)
		if err != nil {
			return err
		}
		id, err := uint256.FromHex(p.TokenID)
		if err != nil {
			return fmt.Errorf("journal: token id %q: %w", p.TokenID, err)
		}
		if delegate.IsZero() {
			delete(snap.Approved, *id)
		} else {
			snap.Approved[*id] = delegate
		}
		return nil

	case TypeOperator:
		var p OperatorPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		owner, err := registry.ParseAddress(p.Owner)
		if err != nil {
			return err
		}
		operator, err := registry.ParseAddress(p.Operator)
		if err != nil {
			return err
		}
		ops := snap.Operators[owner]
		if ops == nil {
			ops = make(map[registry.Address]bool)
			snap.Operators[owner] = ops
		}
		ops[operator] = p.Approved
		return nil

	default:
		return fmt.Errorf("journal: unknown event type %q", e.Type)
	}
}

func transferFields(p TransferPayload) (from, to registry.Address, id *registry.TokenID, err error) {
	if from, err = registry.ParseAddress(p.From); err != nil {
		return
	}
	if to, err = registry.ParseAddress(p.To); err != nil {
		return
	}
	id, err = uint256.FromHex(p.TokenID)
	if err != nil {
		err = fmt.Errorf("journal: token id %q: %w", p.TokenID, err)
	}
	return
}
