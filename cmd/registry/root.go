package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-registry/commitment"
)

func root(args []string) error {
	fs := flag.NewFlagSet("root", flag.ExitOnError)
	jf := addJournalFlags(fs)
	prove := fs.String("prove", "", "also print a verified Merkle proof for this token id")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry root [options]

Show the Merkle commitment root of the current ledger state.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  registry root
  registry root --prove 1
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	reg, _, store, err := loadRegistry(ctx, jf)
	if err != nil {
		return err
	}
	defer store.Close()

	snap := reg.Snapshot()
	rootDigest, err := commitment.Commit(snap)
	if err != nil {
		return err
	}
	fmt.Printf("root: %s (%d tokens)\n", rootDigest.Hex(), len(snap.Owners))

	if *prove != "" {
		id, err := parseTokenID(*prove)
		if err != nil {
			return err
		}
		path, err := commitment.Prove(snap, id)
		if err != nil {
			return err
		}
		ownerAddr := snap.Owners[*id]
		if !commitment.VerifyProof(rootDigest, id, ownerAddr, path) {
			return fmt.Errorf("proof for token %s does not verify", id.Dec())
		}
		fmt.Printf("token %s: owner %s, leaf index %d, proof verified\n", id.Dec(), ownerAddr, path.Index)
		for l, sib := range path.Siblings {
			fmt.Printf("  level %2d sibling %s\n", l, sib.Hex())
		}
	}
	return nil
}
