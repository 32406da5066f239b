package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/pflow-xyz/go-registry/registry"
)

func operator(args []string) error {
	fs := flag.NewFlagSet("operator", flag.ExitOnError)
	jf := addJournalFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry operator <owner> <operator> <true|false> [options]

Grant or revoke an operator's blanket transfer rights over every token
the owner holds, now or later.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		fs.Usage()
		return fmt.Errorf("owner, operator, and true|false required")
	}

	ownerAddr, err := registry.ParseAddress(fs.Arg(0))
	if err != nil {
		return err
	}
	operatorAddr, err := registry.ParseAddress(fs.Arg(1))
	if err != nil {
		return err
	}
	grant, err := strconv.ParseBool(fs.Arg(2))
	if err != nil {
		return fmt.Errorf("invalid approval flag %q: %w", fs.Arg(2), err)
	}

	ctx := context.Background()
	reg, rec, store, err := loadRegistry(ctx, jf)
	if err != nil {
		return err
	}

	reg.SetApprovalForAll(ownerAddr, operatorAddr, grant)
	if err := commit(ctx, rec, store); err != nil {
		return err
	}

	if grant {
		fmt.Printf("granted operator %s for %s\n", operatorAddr, ownerAddr)
	} else {
		fmt.Printf("revoked operator %s for %s\n", operatorAddr, ownerAddr)
	}
	return nil
}
