// Package proof generates zero-knowledge ownership proofs: a Groth16
// proof that a (tokenID, owner) record is included in a committed ledger
// root, without revealing the rest of the ledger.
package proof

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/pflow-xyz/go-registry/commitment"
	"github.com/pflow-xyz/go-registry/registry"
)

// OwnershipCircuit proves that leaf MiMC(TokenID, Owner) is included in
// the Merkle tree committed to by Root. The path is private; root, token
// and owner are public inputs.
type OwnershipCircuit struct {
	Root    frontend.Variable `gnark:",public"`
	TokenID frontend.Variable `gnark:",public"`
	Owner   frontend.Variable `gnark:",public"`

	// Merkle path, leaf first. PathBits[i] is the direction at level i
	// (1 = current node on the right).
	Siblings [commitment.Depth]frontend.Variable
	PathBits [commitment.Depth]frontend.Variable
}

func mimcHash(api frontend.API, left, right frontend.Variable) frontend.Variable {
	h, _ := mimc.NewMiMC(api)
	h.Write(left)
	h.Write(right)
	return h.Sum()
}

// Define implements frontend.Circuit. The in-circuit MiMC matches the
// out-of-circuit hashing in the commitment package, so a native
// commitment.Proof satisfies the circuit.
func (c *OwnershipCircuit) Define(api frontend.API) error {
	cur := mimcHash(api, c.TokenID, c.Owner)
	for i := 0; i < commitment.Depth; i++ {
		api.AssertIsBoolean(c.PathBits[i])
		left := api.Select(c.PathBits[i], c.Siblings[i], cur)
		right := api.Select(c.PathBits[i], cur, c.Siblings[i])
		cur = mimcHash(api, left, right)
	}
	api.AssertIsEqual(cur, c.Root)
	return nil
}

// NewAssignment builds a witness assignment from a native Merkle proof.
func NewAssignment(root commitment.Digest, id *registry.TokenID, owner registry.Address, p commitment.Proof) *OwnershipCircuit {
	a := &OwnershipCircuit{
		Root:    root.BigInt(),
		TokenID: id.ToBig(),
		Owner:   new(big.Int).SetBytes(owner[:]),
	}
	for i := 0; i < commitment.Depth; i++ {
		a.Siblings[i] = p.Siblings[i].BigInt()
		a.PathBits[i] = (p.Index >> i) & 1
	}
	return a
}
