package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-registry/eventstore"
	"github.com/pflow-xyz/go-registry/journal"
	"github.com/pflow-xyz/go-registry/registry"
)

// journalFlags are shared by every subcommand: where the journal lives
// and which stream within it holds this registry.
type journalFlags struct {
	db     *string
	stream *string
}

func addJournalFlags(fs *flag.FlagSet) journalFlags {
	return journalFlags{
		db:     fs.String("db", "registry.db", "SQLite journal file"),
		stream: fs.String("stream", "registry", "journal stream name"),
	}
}

// loadRegistry replays the journal into a live registry with a recorder
// attached, so subsequent mutations can be flushed back.
func loadRegistry(ctx context.Context, jf journalFlags) (*registry.Registry, *journal.Recorder, eventstore.Store, error) {
	store, err := eventstore.NewSQLiteStore(*jf.db)
	if err != nil {
		return nil, nil, nil, err
	}

	rec := journal.NewRecorder(*jf.stream)
	reg, _, err := journal.Replay(ctx, store, *jf.stream, nil, rec)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return reg, rec, store, nil
}

// commit flushes recorded events and closes the store.
func commit(ctx context.Context, rec *journal.Recorder, store eventstore.Store) error {
	defer store.Close()
	return rec.Flush(ctx, store)
}

func parseTokenID(s string) (*registry.TokenID, error) {
	var (
		id  *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		id, err = uint256.FromHex(s)
	} else {
		id, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	return id, nil
}
