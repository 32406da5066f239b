package registry

// Emitter receives change notifications from the registry. Notifications
// are broadcast after a mutation commits; a failed operation emits nothing.
// Delivery is fire-and-forget: the registry does not await subscribers.
type Emitter interface {
	// OwnershipChanged fires on every transfer. Mint reports the zero
	// address as from; burn reports the zero address as to.
	OwnershipChanged(from, to Address, tokenID *TokenID)

	// ApprovalChanged fires when a token's delegate is set or cleared.
	ApprovalChanged(owner, delegate Address, tokenID *TokenID)

	// OperatorApprovalChanged fires when an owner grants or revokes
	// blanket operator rights.
	OperatorApprovalChanged(owner, operator Address, approved bool)
}

// Emitters fans a notification out to multiple subscribers in order.
type Emitters []Emitter

func (e Emitters) OwnershipChanged(from, to Address, tokenID *TokenID) {
	for _, sub := range e {
		sub.OwnershipChanged(from, to, tokenID)
	}
}

func (e Emitters) ApprovalChanged(owner, delegate Address, tokenID *TokenID) {
	for _, sub := range e {
		sub.ApprovalChanged(owner, delegate, tokenID)
	}
}

func (e Emitters) OperatorApprovalChanged(owner, operator Address, approved bool) {
	for _, sub := range e {
		sub.OperatorApprovalChanged(owner, operator, approved)
	}
}
