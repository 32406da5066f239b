package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-registry/registry"
)

func owner(args []string) error {
	fs := flag.NewFlagSet("owner", flag.ExitOnError)
	jf := addJournalFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: registry owner <token-id> [options]\n\nShow a token's current owner.\n\nOptions:\n")
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
	reg, _, store, err := loadRegistry(ctx, jf)
	if err != nil {
		return err
	}
	defer store.Close()

	ownerAddr := reg.OwnerOf(id)
	if ownerAddr.IsZero() {
		fmt.Printf("token %s does not exist\n", id.Dec())
		return nil
	}
	fmt.Println(ownerAddr)
	return nil
}

func balance(args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	jf := addJournalFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: registry balance <address> [options]\n\nShow how many tokens an address owns.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("address required")
	}

	addr, err := registry.ParseAddress(fs.Arg(0))
	if err != nil {
		return err
	}

	ctx := context.Background()
	reg, _, store, err := loadRegistry(ctx, jf)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := reg.BalanceOf(addr)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func approved(args []string) error {
	fs := flag.NewFlagSet("approved", flag.ExitOnError)
	jf := addJournalFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: registry approved <token-id> [options]\n\nShow a token's delegate, if any.\n\nOptions:\n")
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
	reg, _, store, err := loadRegistry(ctx, jf)
	if err != nil {
		return err
	}
	defer store.Close()

	delegate, err := reg.Approved(id)
	if err != nil {
		return err
	}
	if delegate.IsZero() {
		fmt.Printf("token %s has no delegate\n", id.Dec())
		return nil
	}
	fmt.Println(delegate)
	return nil
}
