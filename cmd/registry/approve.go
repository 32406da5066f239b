package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-registry/registry"
)

func approve(args []string) error {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	jf := addJournalFlags(fs)
	caller := fs.String("caller", "", "calling address (default: token owner)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry approve <token-id> <delegate> [options]

Set the single delegate authorized to transfer a token. Overwrites any
previous delegate; pass the zero address to clear.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("token id and delegate required")
	}

	id, err := parseTokenID(fs.Arg(0))
	if err != nil {
		return err
	}
	delegate, err := registry.ParseAddress(fs.Arg(1))
	if err != nil {
		return err
	}

	ctx := context.Background()
	reg, rec, store, err := loadRegistry(ctx, jf)
	if err != nil {
		return err
	}

	callerAddr := reg.OwnerOf(id)
	if *caller != "" {
		if callerAddr, err = registry.ParseAddress(*caller); err != nil {
			store.Close()
			return err
		}
	}

	if err := reg.Approve(callerAddr, delegate, id); err != nil {
		store.Close()
		return err
	}
	if err := commit(ctx, rec, store); err != nil {
		return err
	}

	fmt.Printf("approved %s for token %s\n", delegate, id.Dec())
	return nil
}
