package registry

import "fmt"

// Registry is the authoritative ownership ledger plus approval store. It
// is an explicit object: all state lives here, never in package globals.
//
// The registry has no internal locking. Every mutating operation
// (Approve, SetApprovalForAll, TransferFrom, SafeTransferFrom, Mint,
// Burn) must be serialized by the embedding environment, because a
// transfer touches multiple keyed records (two balances, one owner slot,
// one approval slot) that change as one unit.
type Registry struct {
	owners    map[TokenID]Address
	balances  map[Address]uint64
	approved  map[TokenID]Address
	operators map[Address]map[Address]bool

	oracle  RecipientOracle
	emitter Emitter
}

// New creates an empty registry. A nil oracle makes every recipient a
// plain account; a nil emitter drops notifications.
func New(oracle RecipientOracle, emitter Emitter) *Registry {
	return &Registry{
		owners:    make(map[TokenID]Address),
		balances:  make(map[Address]uint64),
		approved:  make(map[TokenID]Address),
		operators: make(map[Address]map[Address]bool),
		oracle:    oracle,
		emitter:   emitter,
	}
}

// OwnerOf returns the current owner of tokenID, or the zero address if
// the token was never minted or has been burned. It never fails.
func (r *Registry) OwnerOf(tokenID *TokenID) Address {
	return r.owners[*tokenID]
}

// Exists reports whether tokenID currently has an owner.
func (r *Registry) Exists(tokenID *TokenID) bool {
	return !r.owners[*tokenID].IsZero()
}

// BalanceOf returns the number of tokens held by owner. Querying the
// null identity is an error; never-seen owners hold zero.
func (r *Registry) BalanceOf(owner Address) (uint64, error) {
	if owner.IsZero() {
		return 0, fmt.Errorf("%w: balance query for the null identity", ErrInvalidArgument)
	}
	return r.balances[owner], nil
}

// Approved returns the delegate for tokenID, or the zero address if none
// is set. Querying a nonexistent token is an error.
func (r *Registry) Approved(tokenID *TokenID) (Address, error) {
	if !r.Exists(tokenID) {
		return ZeroAddress, fmt.Errorf("%w: token %s", ErrNotFound, tokenID.Dec())
	}
	return r.approved[*tokenID], nil
}

// Approve sets delegate as the single identity authorized to transfer
// tokenID, overwriting any previous delegate. The caller must be the
// token's owner or an approved operator for that owner.
func (r *Registry) Approve(caller, delegate Address, tokenID *TokenID) error {
	owner := r.OwnerOf(tokenID)
	if caller.IsZero() || (caller != owner && !r.IsApprovedForAll(owner, caller)) {
		return fmt.Errorf("%w: %s cannot approve token %s", ErrUnauthorized, caller, tokenID.Dec())
	}
	r.approved[*tokenID] = delegate
	if r.emitter != nil {
		r.emitter.ApprovalChanged(owner, delegate, tokenID)
	}
	return nil
}

// SetApprovalForAll grants or revokes operator's blanket transfer rights
// over every token the caller owns, now or later. It always succeeds.
func (r *Registry) SetApprovalForAll(caller, operator Address, approved bool) {
	ops := r.operators[caller]
	if ops == nil {
		ops = make(map[Address]bool)
		r.operators[caller] = ops
	}
	ops[operator] = approved
	if r.emitter != nil {
		r.emitter.OperatorApprovalChanged(caller, operator, approved)
	}
}

// IsApprovedForAll reports whether owner granted blanket rights to
// operator. It defaults to false and persists across transfers.
func (r *Registry) IsApprovedForAll(owner, operator Address) bool {
	return r.operators[owner][operator]
}

// isApprovedOrOwner is the single authorization predicate behind every
// mutating entry point: spender must be the owner, the per-token
// delegate, or a blanket operator for the owner.
func (r *Registry) isApprovedOrOwner(owner, spender Address, tokenID *TokenID) bool {
	if spender.IsZero() {
		return false
	}
	return spender == owner || spender == r.approved[*tokenID] || r.IsApprovedForAll(owner, spender)
}

// checkTransfer runs the authorization and validation steps shared by
// plain and safe transfers. It mutates nothing.
func (r *Registry) checkTransfer(caller, from, to Address, tokenID *TokenID) error {
	owner := r.OwnerOf(tokenID)
	if !r.isApprovedOrOwner(owner, caller, tokenID) {
		return fmt.Errorf("%w: %s cannot transfer token %s", ErrUnauthorized, caller, tokenID.Dec())
	}
	if from != owner {
		return fmt.Errorf("%w: token %s is owned by %s, not %s", ErrInvalidOwner, tokenID.Dec(), owner, from)
	}
	if to.IsZero() {
		return fmt.Errorf("%w: transfer of token %s", ErrInvalidRecipient, tokenID.Dec())
	}
	return nil
}

// move commits an already-validated transfer: clears the delegate,
// adjusts both balances, and reassigns the owner slot as one unit, then
// notifies subscribers.
func (r *Registry) move(from, to Address, tokenID *TokenID) {
	owner := r.owners[*tokenID]
	delete(r.approved, *tokenID)
	if r.emitter != nil {
		r.emitter.ApprovalChanged(owner, ZeroAddress, tokenID)
	}
	r.balances[from]--
	r.balances[to]++
	r.owners[*tokenID] = to
	if r.emitter != nil {
		r.emitter.OwnershipChanged(from, to, tokenID)
	}
}

// TransferFrom moves tokenID from from to to. The caller must pass the
// authorization predicate; from must be the actual owner; to must not be
// the null identity. Any failed check leaves the ledger untouched.
func (r *Registry) TransferFrom(caller, from, to Address, tokenID *TokenID) error {
	if err := r.checkTransfer(caller, from, to, tokenID); err != nil {
		return err
	}
	r.move(from, to, tokenID)
	return nil
}

// SafeTransferFrom is TransferFrom with a recipient-readiness gate and no
// extra payload. See SafeTransferFromData.
func (r *Registry) SafeTransferFrom(caller, from, to Address, tokenID *TokenID) error {
	return r.SafeTransferFromData(caller, from, to, tokenID, nil)
}

// SafeTransferFromData transfers tokenID and additionally requires a
// callable recipient to acknowledge the transfer. The acknowledgement
// hook runs after all checks and strictly before any mutation
// (checks-then-effects): the callee may re-enter the registry, so it must
// never observe partially-moved state. Because the callee can itself
// mutate the ledger before returning, ownership and authority are
// verified again after the hook; a stale transfer fails rather than
// committing over the callee's changes.
func (r *Registry) SafeTransferFromData(caller, from, to Address, tokenID *TokenID, data []byte) error {
	if err := r.checkTransfer(caller, from, to, tokenID); err != nil {
		return err
	}
	if r.oracle != nil && r.oracle.IsCallable(to) {
		recv := r.oracle.ReceiverAt(to)
		if recv == nil {
			return fmt.Errorf("%w: %s exposes no acknowledgement hook", ErrRecipientRejected, to)
		}
		ack, err := recv.OnTokenReceived(caller, from, tokenID, data)
		if err != nil {
			return fmt.Errorf("%w: hook failed: %v", ErrRecipientRejected, err)
		}
		if ack != AckTransferReceived {
			return fmt.Errorf("%w: unexpected sentinel %x from %s", ErrRecipientRejected, ack, to)
		}
		// The hook may have re-entered and changed the ledger.
		if err := r.checkTransfer(caller, from, to, tokenID); err != nil {
			return err
		}
	}
	r.move(from, to, tokenID)
	return nil
}

// SupportsInterface reports whether the registry implements the given
// capability set. It is a static table with no state access.
func (r *Registry) SupportsInterface(id InterfaceID) bool {
	switch id {
	case IDCapabilityQuery, IDOwnershipRegistry:
		return true
	}
	return false
}
