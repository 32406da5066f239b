package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-registry/registry"
)

func transfer(args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	jf := addJournalFlags(fs)
	caller := fs.String("caller", "", "calling address (default: from)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry transfer <token-id> <from> <to> [options]

Move a token between owners. The caller must be the owner, the token's
delegate, or an approved operator for the owner.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Owner moves their own token
  registry transfer 1 0x...a11ce 0x...0b0b

  # Delegate moves it on the owner's behalf
  registry transfer 1 0x...a11ce 0x...ca01 --caller 0x...0b0b
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		fs.Usage()
		return fmt.Errorf("token id, from, and to required")
	}

	id, err := parseTokenID(fs.Arg(0))
	if err != nil {
		return err
	}
	from, err := registry.ParseAddress(fs.Arg(1))
	if err != nil {
		return err
	}
	to, err := registry.ParseAddress(fs.Arg(2))
	if err != nil {
		return err
	}
	callerAddr := from
	if *caller != "" {
		if callerAddr, err = registry.ParseAddress(*caller); err != nil {
			return err
		}
	}

	ctx := context.Background()
	reg, rec, store, err := loadRegistry(ctx, jf)
	if err != nil {
		return err
	}

	if err := reg.TransferFrom(callerAddr, from, to, id); err != nil {
		store.Close()
		return err
	}
	if err := commit(ctx, rec, store); err != nil {
		return err
	}

	fmt.Printf("transferred token %s: %s -> %s\n", id.Dec(), from, to)
	return nil
}
