package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-registry/registry"
)

func mint(args []string) error {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	jf := addJournalFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry mint <token-id> <to> [options]

Create a token owned by an address. Minting is unguarded: access
control is the embedder's responsibility.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  registry mint 1 0x00000000000000000000000000000000000a11ce
  registry mint 0xdeadbeef 0x00000000000000000000000000000000000a11ce --db tokens.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("token id and recipient required")
	}

	id, err := parseTokenID(fs.Arg(0))
	if err != nil {
		return err
	}
	to, err := registry.ParseAddress(fs.Arg(1))
	if err != nil {
		return err
	}

	ctx := context.Background()
	reg, rec, store, err := loadRegistry(ctx, jf)
	if err != nil {
		return err
	}

	if err := reg.Mint(to, id); err != nil {
		store.Close()
		return err
	}
	if err := commit(ctx, rec, store); err != nil {
		return err
	}

	fmt.Printf("minted token %s to %s\n", id.Dec(), to)
	return nil
}
