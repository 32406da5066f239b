package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func burn(args []string) error {
	fs := flag.NewFlagSet("burn", flag.ExitOnError)
	jf := addJournalFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry burn <token-id> [options]

Destroy a token. The delegate is cleared and the ownership record
removed. Burning is unguarded, like mint.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("token id required")
	}

	id, err := parseTokenID(fs.Arg(0))
	if err != nil {
		return err
	}

	ctx := context.Background()
	reg, rec, store, err := loadRegistry(ctx, jf)
	if err != nil {
		return err
	}

	if err := reg.Burn(id); err != nil {
		store.Close()
		return err
	}
	if err := commit(ctx, rec, store); err != nil {
		return err
	}

	fmt.Printf("burned token %s\n", id.Dec())
	return nil
}
