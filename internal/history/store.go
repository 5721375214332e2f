// Package history keeps a local record of finished transfers.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nearshare/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS transfers (
		id          TEXT PRIMARY KEY,
		device_id   TEXT NOT NULL,
		device_name TEXT NOT NULL,
		kind        TEXT NOT NULL,
		items       TEXT NOT NULL,
		bytes       INTEGER NOT NULL,
		status      TEXT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		started_at  INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS transfers_started ON transfers (started_at);
`

// Store is a SQLite-backed transfer history
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", path, err)
	}
	// One connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores a finished transfer, replacing an earlier record with the same id
func (s *Store) Record(t domain.Transfer) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO transfers
			(id, device_id, device_name, kind, items, bytes, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.DeviceID, t.DeviceName, string(t.Kind), strings.Join(t.Items, "\n"),
		t.Bytes, t.Status.String(), t.Error, t.StartedAt.UnixNano(), t.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record transfer %s: %w", t.ID, err)
	}
	return nil
}

// Recent returns up to limit transfers, newest first
func (s *Store) Recent(limit int) ([]domain.Transfer, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, device_id, device_name, kind, items, bytes, status, error, started_at, finished_at
		FROM transfers ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []domain.Transfer
	for rows.Next() {
		var (
			t                 domain.Transfer
			kind, items, stat string
			started, finished int64
		)
		if err := rows.Scan(&t.ID, &t.DeviceID, &t.DeviceName, &kind, &items, &t.Bytes, &stat, &t.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		t.Kind = domain.TransferKind(kind)
		if items != "" {
			t.Items = strings.Split(items, "\n")
		}
		if t.Status, err = domain.ParseTransferStatus(stat); err != nil {
			return nil, err
		}
		t.StartedAt = time.Unix(0, started)
		t.FinishedAt = time.Unix(0, finished)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
