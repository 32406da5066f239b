package registry

import "fmt"

// Mint creates tokenID owned by to. It performs no authorization check:
// it is a low-level primitive, and embedders are expected to guard
// minting with their own access control.
func (r *Registry) Mint(to Address, tokenID *TokenID) error {
	if to.IsZero() {
		return fmt.Errorf("%w: mint of token %s", ErrInvalidRecipient, tokenID.Dec())
	}
	if r.Exists(tokenID) {
		return fmt.Errorf("%w: token %s", ErrAlreadyExists, tokenID.Dec())
	}
	r.balances[to]++
	r.owners[*tokenID] = to
	if r.emitter != nil {
		r.emitter.OwnershipChanged(ZeroAddress, to, tokenID)
	}
	return nil
}

// Burn destroys tokenID: the delegate is cleared, the owner's balance
// decremented, and the ownership record removed. Burning a token that
// does not exist fails with ErrNotFound rather than silently touching an
// empty balance. Like Mint, Burn performs no authorization check.
func (r *Registry) Burn(tokenID *TokenID) error {
	owner := r.OwnerOf(tokenID)
	if owner.IsZero() {
		return fmt.Errorf("%w: burn of token %s", ErrNotFound, tokenID.Dec())
	}
	delete(r.approved, *tokenID)
	r.balances[owner]--
	if r.balances[owner] == 0 {
		delete(r.balances, owner)
	}
	delete(r.owners, *tokenID)
	if r.emitter != nil {
		r.emitter.OwnershipChanged(owner, ZeroAddress, tokenID)
	}
	return nil
}
