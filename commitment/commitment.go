// Package commitment produces Merkle commitments over registry ledger
// snapshots. Leaves are MiMC(tokenID, owner) over the BN254 scalar
// field, so a committed root can be verified both natively and inside a
// zero-knowledge circuit.
package commitment

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/pflow-xyz/go-registry/registry"
)

// Depth is the fixed tree depth. 2^16 leaves bounds the committed
// ledger at 65536 tokens; absent slots hash as zero subtrees.
const Depth = 16

var (
	ErrTokenAbsent = errors.New("commitment: token not in snapshot")
	ErrTreeFull    = errors.New("commitment: snapshot exceeds tree capacity")
)

// Digest is a 32-byte big-endian field element.
type Digest [32]byte

// Hex returns the 0x-prefixed hex encoding of the digest.
func (d Digest) Hex() string {
	return "0x" + hex.EncodeToString(d[:])
}

// BigInt returns the digest as a big integer, for circuit assignments.
func (d Digest) BigInt() *big.Int {
	return new(big.Int).SetBytes(d[:])
}

// Proof is a Merkle path from one leaf to the committed root.
type Proof struct {
	// Index is the leaf position; bit l of Index is the direction at
	// level l (0 = current node on the left).
	Index int

	// Siblings holds the sibling digest at each level, leaf first.
	Siblings [Depth]Digest
}

// zeroHashes[l] is the digest of an empty subtree of height l.
var zeroHashes = func() [Depth + 1]fr.Element {
	var zh [Depth + 1]fr.Element
	for l := 0; l < Depth; l++ {
		zh[l+1] = hashPair(zh[l], zh[l])
	}
	return zh
}()

func hashPair(left, right fr.Element) fr.Element {
	h := mimc.NewMiMC()
	lb := left.Bytes()
	rb := right.Bytes()
	h.Write(lb[:])
	h.Write(rb[:])
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

func tokenElement(id *registry.TokenID) fr.Element {
	var e fr.Element
	b := id.Bytes32()
	e.SetBytes(b[:])
	return e
}

func ownerElement(owner registry.Address) fr.Element {
	var e fr.Element
	e.SetBytes(owner[:])
	return e
}

// LeafDigest returns MiMC(tokenID, owner), the leaf commitment for one
// ownership record.
func LeafDigest(id *registry.TokenID, owner registry.Address) Digest {
	leaf := hashPair(tokenElement(id), ownerElement(owner))
	return digestOf(leaf)
}

func digestOf(e fr.Element) Digest {
	return Digest(e.Bytes())
}

// sortedTokens returns the snapshot's token IDs in ascending order,
// fixing each token's leaf index deterministically.
func sortedTokens(snap *registry.Snapshot) []registry.TokenID {
	ids := make([]registry.TokenID, 0, len(snap.Owners))
	for id := range snap.Owners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Cmp(&ids[j]) < 0
	})
	return ids
}

// levels computes every populated tree level, leaves first. Nodes past
// the populated prefix of a level are empty subtrees and never
// materialized.
func levels(snap *registry.Snapshot) ([][]fr.Element, error) {
	ids := sortedTokens(snap)
	if len(ids) > 1<<Depth {
		return nil, fmt.Errorf("%w: %d tokens", ErrTreeFull, len(ids))
	}

	leaves := make([]fr.Element, len(ids))
	for i := range ids {
		leaves[i] = hashPair(tokenElement(&ids[i]), ownerElement(snap.Owners[ids[i]]))
	}

	all := make([][]fr.Element, Depth+1)
	all[0] = leaves
	for l := 0; l < Depth; l++ {
		cur := all[l]
		next := make([]fr.Element, (len(cur)+1)/2)
		for i := range next {
			left := cur[2*i]
			right := zeroHashes[l]
			if 2*i+1 < len(cur) {
				right = cur[2*i+1]
			}
			next[i] = hashPair(left, right)
		}
		all[l+1] = next
	}
	return all, nil
}

// Commit returns the Merkle root of the snapshot's ownership records.
// An empty ledger commits to the empty-tree digest.
func Commit(snap *registry.Snapshot) (Digest, error) {
	all, err := levels(snap)
	if err != nil {
		return Digest{}, err
	}
	root := zeroHashes[Depth]
	if len(all[Depth]) > 0 {
		root = all[Depth][0]
	}
	return digestOf(root), nil
}

// Prove returns the Merkle path for tokenID within the snapshot.
func Prove(snap *registry.Snapshot, id *registry.TokenID) (Proof, error) {
	ids := sortedTokens(snap)
	index := -1
	for i := range ids {
		if ids[i].Eq(id) {
			index = i
			break
		}
	}
	if index < 0 {
		return Proof{}, fmt.Errorf("%w: %s", ErrTokenAbsent, id.Dec())
	}

	all, err := levels(snap)
	if err != nil {
		return Proof{}, err
	}

	proof := Proof{Index: index}
	pos := index
	for l := 0; l < Depth; l++ {
		sibling := zeroHashes[l]
		if s := pos ^ 1; s < len(all[l]) {
			sibling = all[l][s]
		}
		proof.Siblings[l] = digestOf(sibling)
		pos >>= 1
	}
	return proof, nil
}

// VerifyProof recomputes the path from (tokenID, owner) and reports
// whether it reaches root.
func VerifyProof(root Digest, id *registry.TokenID, owner registry.Address, proof Proof) bool {
	cur := hashPair(tokenElement(id), ownerElement(owner))
	pos := proof.Index
	for l := 0; l < Depth; l++ {
		var sibling fr.Element
		sibling.SetBytes(proof.Siblings[l][:])
		if pos&1 == 0 {
			cur = hashPair(cur, sibling)
		} else {
			cur = hashPair(sibling, cur)
		}
		pos >>= 1
	}
	return digestOf(cur) == root
}
