// Package oplog implements the durable offline operation log.
//
// Write operations against the remote store that fail due to
// connectivity are persisted here and replayed when connectivity
// returns. Replay is at-least-once: a crash between remote success and
// the local mark-synced can produce a duplicate remote append. That is
// an accepted tradeoff for append-only registration/attendance data.
package oplog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sundaykids/rollcall/internal/sheets"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added drain index on (synced, created_at, id)
const currentSchemaVersion = 1

// Log provides durable storage for pending remote write operations.
// Uses SQLite with WAL mode for concurrent read access.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

// Operation is one persisted write intent.
type Operation struct {
	ID        int64
	OpID      string
	Kind      sheets.OpKind
	Sheet     string
	Range     string
	Rows      [][]string
	CreatedAt time.Time
	Synced    bool
}

// Open creates or opens the log database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Log{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Enqueue durably persists a write intent. Implements sheets.Queue.
func (l *Log) Enqueue(ctx context.Context, op sheets.QueuedOp) error {
	payload, err := json.Marshal(op.Rows)
	if err != nil {
		return fmt.Errorf("enqueue: marshal payload: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO operations
		(op_id, kind, sheet, target_range, payload, created_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`,
		uuid.NewString(),
		string(op.Kind),
		op.Sheet,
		op.Range,
		string(payload),
		l.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}

// Pending returns unsynced operations in enqueue order.
// Returns an empty slice (not nil) if there is nothing pending.
func (l *Log) Pending(ctx context.Context) ([]Operation, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, op_id, kind, sheet, target_range, payload, created_at, synced
		FROM operations
		WHERE synced = 0
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending: %w", err)
	}

	if ops == nil {
		ops = []Operation{}
	}
	return ops, nil
}

// MarkSynced marks one operation as successfully replayed.
// The entry is retained, not deleted, to preserve the audit trail.
func (l *Log) MarkSynced(ctx context.Context, id int64) error {
	_, err := l.db.ExecContext(ctx, `UPDATE operations SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// CountPending returns the number of unsynced operations.
func (l *Log) CountPending(ctx context.Context) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operations WHERE synced = 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

func scanOperation(rows *sql.Rows) (Operation, error) {
	var op Operation
	var kind, payload, createdAt string
	var synced int

	if err := rows.Scan(
		&op.ID, &op.OpID, &kind, &op.Sheet, &op.Range, &payload, &createdAt, &synced,
	); err != nil {
		return Operation{}, fmt.Errorf("scan operation: %w", err)
	}

	op.Kind = sheets.OpKind(kind)
	op.Synced = synced != 0

	if err := json.Unmarshal([]byte(payload), &op.Rows); err != nil {
		return Operation{}, fmt.Errorf("unmarshal payload: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Operation{}, fmt.Errorf("parse created_at: %w", err)
	}
	op.CreatedAt = ts

	return op, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	// v1 is covered by schema.sql's CREATE INDEX IF NOT EXISTS; older
	// databases only need the version stamp updated.
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}
