// Package export renders a registry's journal history to CSV and JSONL
// for downstream analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pflow-xyz/go-registry/eventstore"
	"github.com/pflow-xyz/go-registry/journal"
)

// Row is one flattened history entry. Transfer rows carry from/to;
// approval rows carry the owner as from and the delegate as to; operator
// rows carry the owner as from, the operator as to, and Approved.
type Row struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	TokenID   string    `json:"token_id,omitempty"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Approved  *bool     `json:"approved,omitempty"`
}

// Flatten converts journal events to rows.
func Flatten(events []*eventstore.Event) ([]Row, error) {
	rows := make([]Row, 0, len(events))
	for _, e := range events {
		row := Row{
			Version:   e.Version,
			Timestamp: e.Timestamp,
			Type:      e.Type,
		}
		switch e.Type {
		case journal.TypeTransfer:
			var p journal.TransferPayload
			if err := e.Decode(&p); err != nil {
				return nil, fmt.Errorf("export: event %s: %w", e.ID, err)
			}
			row.TokenID = p.TokenID
			row.From = p.From
			row.To = p.To
		case journal.TypeApproval:
			var p journal.ApprovalPayload
			if err := e.Decode(&p); err != nil {
				return nil, fmt.Errorf("export: event %s: %w", e.ID, err)
			}
			row.TokenID = p.TokenID
			row.From = p.Owner
			row.To = p.Delegate
		case journal.TypeOperator:
			var p journal.OperatorPayload
			if err := e.Decode(&p); err != nil {
				return nil, fmt.Errorf("export: event %s: %w", e.ID, err)
			}
			row.From = p.Owner
			row.To = p.Operator
			row.Approved = &p.Approved
		default:
			return nil, fmt.Errorf("export: unknown event type %q", e.Type)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes events as CSV with a header row.
func WriteCSV(w io.Writer, events []*eventstore.Event) error {
	rows, err := Flatten(events)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"version", "timestamp", "type", "token_id", "from", "to", "approved"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, row := range rows {
		approved := ""
		if row.Approved != nil {
			approved = strconv.FormatBool(*row.Approved)
		}
		record := []string{
			strconv.Itoa(row.Version),
			row.Timestamp.Format(time.RFC3339Nano),
			row.Type,
			row.TokenID,
			row.From,
			row.To,
			approved,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write row %d: %w", row.Version, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSONL writes events as JSON Lines, one row per event.
func WriteJSONL(w io.Writer, events []*eventstore.Event) error {
	rows, err := Flatten(events)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("export: encode row %d: %w", row.Version, err)
		}
	}
	return nil
}

// WriteCSVFile writes events as CSV to a file.
func WriteCSVFile(filename string, events []*eventstore.Event) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("export: creating file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, events)
}

// WriteJSONLFile writes events as JSONL to a file.
func WriteJSONLFile(filename string, events []*eventstore.Event) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("export: creating file: %w", err)
	}
	defer f.Close()
	return WriteJSONL(f, events)
}
