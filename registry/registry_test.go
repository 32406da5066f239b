package registry_test

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-registry/registry"
)

var (
	alice     = registry.MustParseAddress("0x00000000000000000000000000000000000a11ce")
	bob       = registry.MustParseAddress("0x0000000000000000000000000000000000000b0b")
	carol     = registry.MustParseAddress("0x000000000000000000000000000000000000ca01")
	contractX = registry.MustParseAddress("0x00000000000000000000000000000000000c0dec")
)

// recorder captures notifications for assertions.
type recorder struct {
	transfers []string
	approvals []string
	operators []string
}

func (rec *recorder) OwnershipChanged(from, to registry.Address, tokenID *registry.TokenID) {
	rec.transfers = append(rec.transfers, from.Hex()+">"+to.Hex()+"#"+tokenID.Dec())
}

func (rec *recorder) ApprovalChanged(owner, delegate registry.Address, tokenID *registry.TokenID) {
	rec.approvals = append(rec.approvals, owner.Hex()+">"+delegate.Hex()+"#"+tokenID.Dec())
}

func (rec *recorder) OperatorApprovalChanged(owner, operator registry.Address, approved bool) {
	rec.operators = append(rec.operators, owner.Hex()+">"+operator.Hex())
}

// checkBalances verifies that every balance equals the number of tokens
// actually owned, and that no existing token has a zero owner.
func checkBalances(t *testing.T, r *registry.Registry) {
	t.Helper()
	snap := r.Snapshot()
	counts := make(map[registry.Address]uint64)
	for id, owner := range snap.Owners {
		if owner.IsZero() {
			t.Fatalf("token %s exists with null owner", id.Dec())
		}
		counts[owner]++
	}
	for owner, n := range snap.Balances {
		if counts[owner] != n {
			t.Fatalf("balance of %s is %d but owns %d tokens", owner, n, counts[owner])
		}
	}
	for owner, n := range counts {
		if snap.Balances[owner] != n {
			t.Fatalf("owner %s holds %d tokens but balance reads %d", owner, n, snap.Balances[owner])
		}
	}
}

func mustBalance(t *testing.T, r *registry.Registry, owner registry.Address) uint64 {
	t.Helper()
	n, err := r.BalanceOf(owner)
	if err != nil {
		t.Fatalf("balance of %s: %v", owner, err)
	}
	return n
}

func TestMint(t *testing.T) {
	id := uint256.NewInt(1)

	t.Run("AssignsOwnership", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if got := r.OwnerOf(id); got != alice {
			t.Errorf("owner = %s, want %s", got, alice)
		}
		if n := mustBalance(t, r, alice); n != 1 {
			t.Errorf("balance = %d, want 1", n)
		}
		checkBalances(t, r)
	})

	t.Run("NullRecipient", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(registry.ZeroAddress, id); !errors.Is(err, registry.ErrInvalidRecipient) {
			t.Errorf("expected ErrInvalidRecipient, got %v", err)
		}
	})

	t.Run("Collision", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.Mint(bob, id); !errors.Is(err, registry.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
		if got := r.OwnerOf(id); got != alice {
			t.Errorf("owner changed on failed mint: %s", got)
		}
	})

	t.Run("FromZeroNotification", func(t *testing.T) {
		rec := &recorder{}
		r := registry.New(nil, rec)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		want := registry.ZeroAddress.Hex() + ">" + alice.Hex() + "#1"
		if len(rec.transfers) != 1 || rec.transfers[0] != want {
			t.Errorf("transfers = %v, want [%s]", rec.transfers, want)
		}
	})
}

func TestBalanceOf(t *testing.T) {
	r := registry.New(nil, nil)

	t.Run("NullIdentity", func(t *testing.T) {
		if _, err := r.BalanceOf(registry.ZeroAddress); !errors.Is(err, registry.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("NeverSeenOwner", func(t *testing.T) {
		if n := mustBalance(t, r, carol); n != 0 {
			t.Errorf("balance = %d, want 0", n)
		}
	})
}

func TestOwnerOf(t *testing.T) {
	r := registry.New(nil, nil)
	id := uint256.NewInt(7)

	if got := r.OwnerOf(id); !got.IsZero() {
		t.Errorf("unminted token has owner %s", got)
	}

	if err := r.Mint(alice, id); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := r.Burn(id); err != nil {
		t.Fatalf("burn failed: %v", err)
	}
	if got := r.OwnerOf(id); !got.IsZero() {
		t.Errorf("burned token has owner %s", got)
	}
}

func TestApprove(t *testing.T) {
	id := uint256.NewInt(1)

	t.Run("ByOwner", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.Approve(alice, bob, id); err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		got, err := r.Approved(id)
		if err != nil {
			t.Fatalf("approved query failed: %v", err)
		}
		if got != bob {
			t.Errorf("delegate = %s, want %s", got, bob)
		}
	})

	t.Run("ByOperator", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		r.SetApprovalForAll(alice, carol, true)
		if err := r.Approve(carol, bob, id); err != nil {
			t.Fatalf("operator approve failed: %v", err)
		}
	})

	t.Run("ByStranger", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.Approve(carol, bob, id); !errors.Is(err, registry.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("OverwritesDelegate", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.Approve(alice, bob, id); err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		if err := r.Approve(alice, carol, id); err != nil {
			t.Fatalf("re-approve failed: %v", err)
		}
		got, _ := r.Approved(id)
		if got != carol {
			t.Errorf("delegate = %s, want %s (overwrite, not merge)", got, carol)
		}
	})

	t.Run("QueryNonexistentToken", func(t *testing.T) {
		r := registry.New(nil, nil)
		if _, err := r.Approved(uint256.NewInt(99)); !errors.Is(err, registry.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSetApprovalForAll(t *testing.T) {
	r := registry.New(nil, nil)

	if r.IsApprovedForAll(alice, bob) {
		t.Fatal("operator approval should default to false")
	}

	r.SetApprovalForAll(alice, bob, true)
	if !r.IsApprovedForAll(alice, bob) {
		t.Fatal("operator approval not recorded")
	}

	// Keyed by owner, not token: survives transfers of individual tokens.
	id := uint256.NewInt(1)
	if err := r.Mint(alice, id); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := r.TransferFrom(bob, alice, carol, id); err != nil {
		t.Fatalf("operator transfer failed: %v", err)
	}
	if !r.IsApprovedForAll(alice, bob) {
		t.Error("operator approval cleared by transfer")
	}

	r.SetApprovalForAll(alice, bob, false)
	if r.IsApprovedForAll(alice, bob) {
		t.Error("operator approval not revoked")
	}
}

func TestTransferFrom(t *testing.T) {
	id := uint256.NewInt(1)

	t.Run("ByDelegate", func(t *testing.T) {
		// mint(Alice,1); approve Bob; Bob moves it to Carol.
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.Approve(alice, bob, id); err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		if err := r.TransferFrom(bob, alice, carol, id); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if got := r.OwnerOf(id); got != carol {
			t.Errorf("owner = %s, want %s", got, carol)
		}
		delegate, err := r.Approved(id)
		if err != nil {
			t.Fatalf("approved query failed: %v", err)
		}
		if !delegate.IsZero() {
			t.Errorf("delegate not cleared: %s", delegate)
		}
		if n := mustBalance(t, r, alice); n != 0 {
			t.Errorf("alice balance = %d, want 0", n)
		}
		if n := mustBalance(t, r, carol); n != 1 {
			t.Errorf("carol balance = %d, want 1", n)
		}
		checkBalances(t, r)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		before := r.Snapshot()
		if err := r.TransferFrom(carol, alice, bob, id); !errors.Is(err, registry.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		after := r.Snapshot()
		if r.OwnerOf(id) != alice {
			t.Error("owner changed on failed transfer")
		}
		if len(after.Owners) != len(before.Owners) || len(after.Balances) != len(before.Balances) {
			t.Error("ledger mutated on failed transfer")
		}
	})

	t.Run("WrongFrom", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.TransferFrom(alice, bob, carol, id); !errors.Is(err, registry.ErrInvalidOwner) {
			t.Errorf("expected ErrInvalidOwner, got %v", err)
		}
	})

	t.Run("NullRecipient", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.TransferFrom(alice, alice, registry.ZeroAddress, id); !errors.Is(err, registry.ErrInvalidRecipient) {
			t.Errorf("expected ErrInvalidRecipient, got %v", err)
		}
	})

	t.Run("NotIdempotent", func(t *testing.T) {
		// The second identical call must fail: the caller no longer
		// owns the token.
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.TransferFrom(alice, alice, bob, id); err != nil {
			t.Fatalf("first transfer failed: %v", err)
		}
		if err := r.TransferFrom(alice, alice, bob, id); !errors.Is(err, registry.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized on replay, got %v", err)
		}
	})

	t.Run("NonexistentToken", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.TransferFrom(alice, alice, bob, uint256.NewInt(42)); !errors.Is(err, registry.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestSafeTransferFrom(t *testing.T) {
	id := uint256.NewInt(1)

	accepting := registry.ReceiverFunc(func(operator, from registry.Address, tokenID *registry.TokenID, data []byte) (registry.Ack, error) {
		return registry.AckTransferReceived, nil
	})
	rejecting := registry.ReceiverFunc(func(operator, from registry.Address, tokenID *registry.TokenID, data []byte) (registry.Ack, error) {
		return registry.Ack{0xde, 0xad, 0xbe, 0xef}, nil
	})

	t.Run("PlainAccount", func(t *testing.T) {
		// Not callable: acknowledgement is trivially granted.
		r := registry.New(registry.NewStaticOracle(), nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.SafeTransferFrom(alice, alice, bob, id); err != nil {
			t.Fatalf("safe transfer failed: %v", err)
		}
		if got := r.OwnerOf(id); got != bob {
			t.Errorf("owner = %s, want %s", got, bob)
		}
	})

	t.Run("AcceptingRecipient", func(t *testing.T) {
		oracle := registry.NewStaticOracle()
		oracle.Register(contractX, accepting)
		r := registry.New(oracle, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.SafeTransferFromData(alice, alice, contractX, id, []byte("hello")); err != nil {
			t.Fatalf("safe transfer failed: %v", err)
		}
		if got := r.OwnerOf(id); got != contractX {
			t.Errorf("owner = %s, want %s", got, contractX)
		}
		checkBalances(t, r)
	})

	t.Run("WrongSentinel", func(t *testing.T) {
		oracle := registry.NewStaticOracle()
		oracle.Register(contractX, rejecting)
		r := registry.New(oracle, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.SafeTransferFrom(alice, alice, contractX, id); !errors.Is(err, registry.ErrRecipientRejected) {
			t.Fatalf("expected ErrRecipientRejected, got %v", err)
		}
		if got := r.OwnerOf(id); got != alice {
			t.Errorf("owner = %s after rejected transfer, want %s", got, alice)
		}
		checkBalances(t, r)
	})

	t.Run("MissingHook", func(t *testing.T) {
		oracle := registry.NewStaticOracle()
		oracle.Register(contractX, nil) // callable, no hook
		r := registry.New(oracle, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.SafeTransferFrom(alice, alice, contractX, id); !errors.Is(err, registry.ErrRecipientRejected) {
			t.Errorf("expected ErrRecipientRejected, got %v", err)
		}
	})

	t.Run("HookError", func(t *testing.T) {
		oracle := registry.NewStaticOracle()
		oracle.Register(contractX, registry.ReceiverFunc(func(operator, from registry.Address, tokenID *registry.TokenID, data []byte) (registry.Ack, error) {
			return registry.Ack{}, errors.New("boom")
		}))
		r := registry.New(oracle, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.SafeTransferFrom(alice, alice, contractX, id); !errors.Is(err, registry.ErrRecipientRejected) {
			t.Errorf("expected ErrRecipientRejected, got %v", err)
		}
	})

	t.Run("ReentrantHookSeesNoPartialState", func(t *testing.T) {
		// The hook fires before any mutation: from must still own the
		// token, balances must still be consistent.
		oracle := registry.NewStaticOracle()
		var r *registry.Registry
		oracle.Register(contractX, registry.ReceiverFunc(func(operator, from registry.Address, tokenID *registry.TokenID, data []byte) (registry.Ack, error) {
			if got := r.OwnerOf(tokenID); got != alice {
				t.Errorf("hook observed owner %s, want %s", got, alice)
			}
			checkBalances(t, r)
			return registry.AckTransferReceived, nil
		}))
		r = registry.New(oracle, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.SafeTransferFrom(alice, alice, contractX, id); err != nil {
			t.Fatalf("safe transfer failed: %v", err)
		}
	})

	t.Run("ReentrantMoveDetected", func(t *testing.T) {
		// The hook transfers the token away before acknowledging; the
		// outer transfer must not commit over it.
		oracle := registry.NewStaticOracle()
		var r *registry.Registry
		oracle.Register(contractX, registry.ReceiverFunc(func(operator, from registry.Address, tokenID *registry.TokenID, data []byte) (registry.Ack, error) {
			if err := r.TransferFrom(alice, alice, bob, tokenID); err != nil {
				t.Errorf("re-entrant transfer failed: %v", err)
			}
			return registry.AckTransferReceived, nil
		}))
		r = registry.New(oracle, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.SafeTransferFrom(alice, alice, contractX, id); err == nil {
			t.Fatal("stale safe transfer committed after re-entrant move")
		}
		if got := r.OwnerOf(id); got != bob {
			t.Errorf("owner = %s, want %s (re-entrant move wins)", got, bob)
		}
		checkBalances(t, r)
	})
}

func TestBurn(t *testing.T) {
	id := uint256.NewInt(1)

	t.Run("RemovesOwnership", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.Approve(alice, bob, id); err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		if err := r.Burn(id); err != nil {
			t.Fatalf("burn failed: %v", err)
		}
		if got := r.OwnerOf(id); !got.IsZero() {
			t.Errorf("owner = %s after burn, want none", got)
		}
		if n := mustBalance(t, r, alice); n != 0 {
			t.Errorf("alice balance = %d, want 0", n)
		}
		if _, err := r.Approved(id); !errors.Is(err, registry.ErrNotFound) {
			t.Errorf("approval query on burned token: %v", err)
		}
		checkBalances(t, r)
	})

	t.Run("NonexistentToken", func(t *testing.T) {
		r := registry.New(nil, nil)
		if err := r.Burn(id); !errors.Is(err, registry.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ToZeroNotification", func(t *testing.T) {
		rec := &recorder{}
		r := registry.New(nil, rec)
		if err := r.Mint(alice, id); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := r.Burn(id); err != nil {
			t.Fatalf("burn failed: %v", err)
		}
		want := alice.Hex() + ">" + registry.ZeroAddress.Hex() + "#1"
		if len(rec.transfers) != 2 || rec.transfers[1] != want {
			t.Errorf("transfers = %v, want burn notification %s", rec.transfers, want)
		}
	})
}

func TestNotifications(t *testing.T) {
	id := uint256.NewInt(1)
	rec := &recorder{}
	r := registry.New(nil, rec)

	if err := r.Mint(alice, id); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := r.Approve(alice, bob, id); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	r.SetApprovalForAll(alice, carol, true)
	if err := r.TransferFrom(bob, alice, bob, id); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if len(rec.transfers) != 2 {
		t.Errorf("transfers = %v, want 2 entries", rec.transfers)
	}
	// Approve by alice, then the clear to none during transfer.
	if len(rec.approvals) != 2 {
		t.Errorf("approvals = %v, want 2 entries", rec.approvals)
	}
	if len(rec.operators) != 1 {
		t.Errorf("operators = %v, want 1 entry", rec.operators)
	}

	// Failed calls emit nothing.
	before := len(rec.transfers) + len(rec.approvals)
	if err := r.TransferFrom(carol, alice, bob, id); err == nil {
		t.Fatal("expected failure")
	}
	if after := len(rec.transfers) + len(rec.approvals); after != before {
		t.Error("failed transfer emitted notifications")
	}
}

func TestSupportsInterface(t *testing.T) {
	r := registry.New(nil, nil)
	if !r.SupportsInterface(registry.IDOwnershipRegistry) {
		t.Error("ownership registry capability not advertised")
	}
	if !r.SupportsInterface(registry.IDCapabilityQuery) {
		t.Error("capability query capability not advertised")
	}
	if r.SupportsInterface(registry.InterfaceID{0xff, 0xff, 0xff, 0xff}) {
		t.Error("unknown capability advertised")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	r := registry.New(nil, nil)
	for i := uint64(1); i <= 5; i++ {
		if err := r.Mint(alice, uint256.NewInt(i)); err != nil {
			t.Fatalf("mint %d failed: %v", i, err)
		}
	}
	if err := r.Approve(alice, bob, uint256.NewInt(3)); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	r.SetApprovalForAll(alice, carol, true)

	snap := r.Snapshot()
	clone := registry.FromSnapshot(snap, nil, nil)

	if got := clone.OwnerOf(uint256.NewInt(3)); got != alice {
		t.Errorf("restored owner = %s, want %s", got, alice)
	}
	delegate, err := clone.Approved(uint256.NewInt(3))
	if err != nil || delegate != bob {
		t.Errorf("restored delegate = %s (%v), want %s", delegate, err, bob)
	}
	if !clone.IsApprovedForAll(alice, carol) {
		t.Error("restored operator approval missing")
	}

	// The snapshot must not alias live state.
	if err := r.Burn(uint256.NewInt(3)); err != nil {
		t.Fatalf("burn failed: %v", err)
	}
	if got := clone.OwnerOf(uint256.NewInt(3)); got != alice {
		t.Error("snapshot aliased live registry state")
	}
}

func TestParseAddress(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		a, err := registry.ParseAddress(alice.Hex())
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if a != alice {
			t.Errorf("round trip mismatch: %s", a)
		}
	})

	t.Run("BadLength", func(t *testing.T) {
		if _, err := registry.ParseAddress("0x1234"); err == nil {
			t.Error("expected error for short address")
		}
	})

	t.Run("BadDigits", func(t *testing.T) {
		if _, err := registry.ParseAddress("0xzz000000000000000000000000000000000000zz"); err == nil {
			t.Error("expected error for non-hex address")
		}
	})
}
