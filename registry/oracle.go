package registry

// Receiver is the acknowledgement hook implemented by callable recipients.
// A safe transfer to a callable address commits only if the hook returns
// AckTransferReceived. The hook runs before the ledger mutation and may
// re-enter the registry; see SafeTransferFrom.
type Receiver interface {
	OnTokenReceived(operator, from Address, tokenID *TokenID, data []byte) (Ack, error)
}

// RecipientOracle answers whether an address is callable code and, if so,
// resolves its acknowledgement hook. It is the environment-specific
// collaborator behind safe transfers: the registry never inspects
// addresses itself.
type RecipientOracle interface {
	// IsCallable reports whether addr hosts executable code.
	IsCallable(addr Address) bool

	// ReceiverAt returns the hook for a callable address, or nil if the
	// address exposes none. It is consulted only when IsCallable is true.
	ReceiverAt(addr Address) Receiver
}

// StaticOracle is a map-backed RecipientOracle for embedders and tests.
// Addresses registered with a nil Receiver count as callable but expose
// no hook, so safe transfers to them fail.
type StaticOracle struct {
	receivers map[Address]Receiver
}

// NewStaticOracle creates an empty oracle; every address is a plain
// account until registered.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{receivers: make(map[Address]Receiver)}
}

// Register marks addr as callable with the given hook.
func (o *StaticOracle) Register(addr Address, r Receiver) {
	o.receivers[addr] = r
}

// IsCallable reports whether addr was registered.
func (o *StaticOracle) IsCallable(addr Address) bool {
	_, ok := o.receivers[addr]
	return ok
}

// ReceiverAt returns the registered hook, or nil.
func (o *StaticOracle) ReceiverAt(addr Address) Receiver {
	return o.receivers[addr]
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(operator, from Address, tokenID *TokenID, data []byte) (Ack, error)

func (f ReceiverFunc) OnTokenReceived(operator, from Address, tokenID *TokenID, data []byte) (Ack, error) {
	return f(operator, from, tokenID, data)
}
