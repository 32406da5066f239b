// Package registry tracks exclusive ownership of non-fungible tokens
// together with a delegated-authority layer (per-token approval and
// per-owner operator approval) and a transfer protocol that enforces
// ownership, authority, and recipient-readiness invariants atomically.
package registry

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// TokenID is a 256-bit token identifier.
type TokenID = uint256.Int

// Address identifies an owner, delegate, or operator. The zero value is
// the null identity: it never owns tokens, and a token whose owner is the
// zero address does not exist.
type Address [20]byte

// ZeroAddress is the null identity.
var ZeroAddress Address

// IsZero reports whether a is the null identity.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Hex returns the 0x-prefixed hex encoding of the address.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// ParseAddress decodes a 0x-prefixed or bare 40-digit hex address.
func ParseAddress(s string) (Address, error) {
	var a Address
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(h) != 2*len(a) {
		return a, fmt.Errorf("registry: address must be %d hex digits, got %q", 2*len(a), s)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return a, fmt.Errorf("registry: invalid address %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is ParseAddress that panics on error, for fixtures.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Ack is the 4-byte acknowledgement sentinel returned by a recipient hook.
type Ack [4]byte

// AckTransferReceived is the sentinel a callable recipient must return to
// accept a safe transfer.
var AckTransferReceived = Ack{0x15, 0x0b, 0x7a, 0x02}

// InterfaceID identifies a capability set in the advertisement table.
type InterfaceID [4]byte

var (
	// IDCapabilityQuery is the capability-advertisement interface itself.
	IDCapabilityQuery = InterfaceID{0x01, 0xff, 0xc9, 0xa7}

	// IDOwnershipRegistry is the non-fungible ownership registry interface.
	IDOwnershipRegistry = InterfaceID{0x80, 0xac, 0x58, 0xcd}
)
