package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-registry/eventstore"
	"github.com/pflow-xyz/go-registry/export"
	"github.com/pflow-xyz/go-registry/journal"
)

func readHistory(ctx context.Context, jf journalFlags) ([]*eventstore.Event, error) {
	store, err := eventstore.NewSQLiteStore(*jf.db)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Read(ctx, *jf.stream, 0)
}

func history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	jf := addJournalFlags(fs)
	typeFilter := fs.String("type", "", "filter by event type")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry history [options]

Show the registry's event history.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Show all events
  registry history

  # Only ownership changes
  registry history --type %s
`, journal.TypeTransfer)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	events, err := readHistory(context.Background(), jf)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events recorded")
		return nil
	}

	rows, err := export.Flatten(events)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if *typeFilter != "" && row.Type != *typeFilter {
			continue
		}
		switch {
		case row.Approved != nil:
			fmt.Printf("%4d  %s  %-18s %s -> %s approved=%t\n",
				row.Version, row.Timestamp.Format("2006-01-02 15:04:05"), row.Type, row.From, row.To, *row.Approved)
		default:
			fmt.Printf("%4d  %s  %-18s %s -> %s token=%s\n",
				row.Version, row.Timestamp.Format("2006-01-02 15:04:05"), row.Type, row.From, row.To, row.TokenID)
		}
	}
	return nil
}

func exportCmd(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	jf := addJournalFlags(fs)
	format := fs.String("format", "csv", "output format: csv or jsonl")
	out := fs.String("out", "", "output file (default: stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry export [options]

Export the event history for downstream analysis.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  registry export --format csv --out history.csv
  registry export --format jsonl
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	events, err := readHistory(context.Background(), jf)
	if err != nil {
		return err
	}

	if *out != "" {
		switch *format {
		case "csv":
			return export.WriteCSVFile(*out, events)
		case "jsonl":
			return export.WriteJSONLFile(*out, events)
		default:
			return fmt.Errorf("unknown format %q", *format)
		}
	}

	switch *format {
	case "csv":
		return export.WriteCSV(os.Stdout, events)
	case "jsonl":
		return export.WriteJSONL(os.Stdout, events)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}
