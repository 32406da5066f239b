package proof

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// OwnershipCircuitName is the registered name of the ownership circuit.
const OwnershipCircuitName = "ownership"

// Prover manages circuit compilation, setup, and proof generation.
type Prover struct {
	mu       sync.RWMutex
	circuits map[string]*CompiledCircuit
	curve    ecc.ID
}

// CompiledCircuit holds a compiled circuit and its keys.
type CompiledCircuit struct {
	Name         string
	CS           constraint.ConstraintSystem
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
	Constraints  int
}

// NewProver creates a prover on BN254.
func NewProver() *Prover {
	return &Prover{
		circuits: make(map[string]*CompiledCircuit),
		curve:    ecc.BN254,
	}
}

// RegisterCircuit compiles a circuit and runs trusted setup.
// In production, replace the setup with a ceremony.
func (p *Prover) RegisterCircuit(name string, circuit frontend.Circuit) error {
	cs, err := frontend.Compile(p.curve.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return fmt.Errorf("proof: circuit compilation failed: %w", err)
	}

	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return fmt.Errorf("proof: setup failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.circuits[name] = &CompiledCircuit{
		Name:         name,
		CS:           cs,
		ProvingKey:   pk,
		VerifyingKey: vk,
		Constraints:  cs.GetNbConstraints(),
	}
	return nil
}

// RegisterOwnershipCircuit registers the standard ownership circuit.
func (p *Prover) RegisterOwnershipCircuit() error {
	var circuit OwnershipCircuit
	return p.RegisterCircuit(OwnershipCircuitName, &circuit)
}

// Circuit returns a compiled circuit by name.
func (p *Prover) Circuit(name string) (*CompiledCircuit, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cc, ok := p.circuits[name]
	return cc, ok
}

// Prove generates a Groth16 proof for the named circuit and returns it
// together with the public witness needed for verification.
func (p *Prover) Prove(name string, assignment frontend.Circuit) (groth16.Proof, witness.Witness, error) {
	cc, ok := p.Circuit(name)
	if !ok {
		return nil, nil, fmt.Errorf("proof: circuit %q not registered", name)
	}

	full, err := frontend.NewWitness(assignment, p.curve.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("proof: witness creation failed: %w", err)
	}

	prf, err := groth16.Prove(cc.CS, cc.ProvingKey, full)
	if err != nil {
		return nil, nil, fmt.Errorf("proof: proving failed: %w", err)
	}

	public, err := full.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("proof: public witness extraction failed: %w", err)
	}
	return prf, public, nil
}

// Verify checks a proof against the named circuit's verifying key.
func (p *Prover) Verify(name string, prf groth16.Proof, public witness.Witness) error {
	cc, ok := p.Circuit(name)
	if !ok {
		return fmt.Errorf("proof: circuit %q not registered", name)
	}
	if err := groth16.Verify(prf, cc.VerifyingKey, public); err != nil {
		return fmt.Errorf("proof: verification failed: %w", err)
	}
	return nil
}
