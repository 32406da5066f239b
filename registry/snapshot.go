package registry

// Snapshot is a deep copy of the ledger state at a point in time. It
// feeds commitment hashing, journal replay, and invariant checks without
// exposing the registry's live maps.
type Snapshot struct {
	// Owners maps every existing token to its holder.
	Owners map[TokenID]Address `json:"owners,omitempty"`

	// Balances maps each holder to its token count.
	Balances map[Address]uint64 `json:"balances,omitempty"`

	// Approved maps tokens to their current delegate, if any.
	Approved map[TokenID]Address `json:"approved,omitempty"`

	// Operators holds the blanket owner → operator grants.
	Operators map[Address]map[Address]bool `json:"operators,omitempty"`
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Owners:    make(map[TokenID]Address),
		Balances:  make(map[Address]uint64),
		Approved:  make(map[TokenID]Address),
		Operators: make(map[Address]map[Address]bool),
	}
}

// Snapshot returns a deep copy of the current ledger state.
func (r *Registry) Snapshot() *Snapshot {
	snap := NewSnapshot()
	for id, owner := range r.owners {
		snap.Owners[id] = owner
	}
	for owner, n := range r.balances {
		snap.Balances[owner] = n
	}
	for id, delegate := range r.approved {
		snap.Approved[id] = delegate
	}
	for owner, ops := range r.operators {
		clone := make(map[Address]bool, len(ops))
		for op, ok := range ops {
			clone[op] = ok
		}
		snap.Operators[owner] = clone
	}
	return snap
}

// FromSnapshot creates a registry initialized to a previously captured
// (or replayed) state. The snapshot is copied, not aliased.
func FromSnapshot(snap *Snapshot, oracle RecipientOracle, emitter Emitter) *Registry {
	r := New(oracle, emitter)
	for id, owner := range snap.Owners {
		r.owners[id] = owner
	}
	for owner, n := range snap.Balances {
		r.balances[owner] = n
	}
	for id, delegate := range snap.Approved {
		r.approved[id] = delegate
	}
	for owner, ops := range snap.Operators {
		clone := make(map[Address]bool, len(ops))
		for op, ok := range ops {
			clone[op] = ok
		}
		r.operators[owner] = clone
	}
	return r
}
