package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists events in a SQLite database. The driver is pure
// Go (modernc.org/sqlite), so the store builds without cgo.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) a SQLite-backed store at
// path. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("eventstore: open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id        TEXT NOT NULL,
		stream    TEXT NOT NULL,
		type      TEXT NOT NULL,
		version   INTEGER NOT NULL,
		data      BLOB,
		timestamp TEXT NOT NULL,
		UNIQUE(stream, version)
	);
	CREATE INDEX IF NOT EXISTS idx_events_stream ON events(stream, version);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("eventstore: migrate: %w", err)
	}
	return nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("eventstore: begin append: %w", err)
	}
	defer tx.Rollback()

	current, err := streamVersionTx(ctx, tx, stream)
	if err != nil {
		return 0, err
	}
	if expectedVersion != current {
		return 0, ErrConcurrencyConflict
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (id, stream, type, version, data, timestamp) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("eventstore: prepare insert: %w", err)
	}
	defer stmt.Close()

	version := current
	for _, e := range events {
		version++
		_, err := stmt.ExecContext(ctx, e.ID, stream, e.Type, version, []byte(e.Data), e.Timestamp.Format(time.RFC3339Nano))
		if err != nil {
			return 0, fmt.Errorf("eventstore: insert event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("eventstore: commit append: %w", err)
	}
	return version, nil
}

// Read implements Store.
func (s *SQLiteStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stream, type, version, data, timestamp FROM events
		 WHERE stream = ? AND version >= ? ORDER BY version`,
		stream, fromVersion)
	if err != nil {
		return nil, fmt.Errorf("eventstore: read stream %s: %w", stream, err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var data []byte
		var ts string
		if err := rows.Scan(&e.ID, &e.Stream, &e.Type, &e.Version, &data, &ts); err != nil {
			return nil, fmt.Errorf("eventstore: scan event: %w", err)
		}
		if len(data) > 0 {
			e.Data = data
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("eventstore: parse timestamp: %w", err)
		}
		e.Timestamp = t
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventstore: read stream %s: %w", stream, err)
	}
	return events, nil
}

// StreamVersion implements Store.
func (s *SQLiteStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return 0, fmt.Errorf("eventstore: begin read: %w", err)
	}
	defer tx.Rollback()
	return streamVersionTx(ctx, tx, stream)
}

func streamVersionTx(ctx context.Context, tx *sql.Tx, stream string) (int, error) {
	var version sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream = ?`, stream).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("eventstore: stream version: %w", err)
	}
	if !version.Valid {
		return -1, nil
	}
	return int(version.Int64), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
