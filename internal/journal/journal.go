// Package journal keeps a history of sync passes in an embedded SQLite
// database next to the board.
//
// Every pull, push and remove pass, dry runs included, is appended with its
// counts and per-record messages. The journal is advisory: sync never reads
// it to make decisions, so losing it loses history and nothing else.
//
// Schema:
//   - passes:   one row per pass (id, kind, timestamps, counts, fatal error)
//   - messages: per-record errors and warnings of a pass
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrPassNotFound is returned by GetPass for an unknown id.
var ErrPassNotFound = errors.New("pass not found")

// Fixed-width timestamps keep started_at sortable as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps the journal database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates the journal at path and ensures its schema exists.
//
// The caller must call Close() when done.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	// One writer per process; the board itself is single-writer.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if err := db.InitSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close checkpoints the WAL and closes the connection. It is safe to call
// more than once.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint journal WAL: %v\n", err)
	}
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}
	db.conn = nil
	return nil
}

// InitSchema creates the journal tables if they don't exist.
func (db *DB) InitSchema() error {
	return db.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the journal tables with context support.
func (db *DB) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS passes (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,          -- pull, push, remove
		dry_run INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		created INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		deleted INTEGER NOT NULL DEFAULT 0,
		fatal TEXT
	);

	CREATE TABLE IF NOT EXISTS messages (
		pass_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		level TEXT NOT NULL,         -- error, warning
		text TEXT NOT NULL,
		PRIMARY KEY (pass_id, seq),
		FOREIGN KEY (pass_id) REFERENCES passes(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_passes_started ON passes(started_at);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return nil
}

// Record appends a finished pass.
func (db *DB) Record(p *Pass) error {
	return db.RecordContext(context.Background(), p)
}

// RecordContext appends a finished pass with context support.
func (db *DB) RecordContext(ctx context.Context, p *Pass) error {
	if p.ID == "" || p.Kind == "" {
		return fmt.Errorf("invalid pass: id and kind are required")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO passes (id, kind, dry_run, started_at, finished_at, created, updated, skipped, deleted, fatal)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		string(p.Kind),
		boolToInt(p.DryRun),
		p.StartedAt.UTC().Format(timeFormat),
		p.FinishedAt.UTC().Format(timeFormat),
		p.Created,
		p.Updated,
		p.Skipped,
		p.Deleted,
		stringToNull(p.Fatal),
	)
	if err != nil {
		return fmt.Errorf("failed to record pass %s: %w", p.ID, err)
	}

	seq := 0
	insert := func(level string, msgs []string) error {
		for _, m := range msgs {
			seq++
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO messages (pass_id, seq, level, text) VALUES (?, ?, ?, ?)`,
				p.ID, seq, level, m); err != nil {
				return fmt.Errorf("failed to record message for pass %s: %w", p.ID, err)
			}
		}
		return nil
	}
	if err := insert(levelError, p.Errors); err != nil {
		return err
	}
	if err := insert(levelWarning, p.Warnings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pass %s: %w", p.ID, err)
	}
	return nil
}

// ListPasses returns the most recent passes, newest first, without their
// messages. A limit of zero or less returns every pass.
func (db *DB) ListPasses(limit int) ([]*Pass, error) {
	return db.ListPassesContext(context.Background(), limit)
}

// ListPassesContext lists passes with context support.
func (db *DB) ListPassesContext(ctx context.Context, limit int) ([]*Pass, error) {
	query := `
	SELECT p.id, p.kind, p.dry_run, p.started_at, p.finished_at,
	       p.created, p.updated, p.skipped, p.deleted, p.fatal,
	       (SELECT COUNT(*) FROM messages m WHERE m.pass_id = p.id AND m.level = 'error'),
	       (SELECT COUNT(*) FROM messages m WHERE m.pass_id = p.id AND m.level = 'warning')
	FROM passes p
	ORDER BY p.started_at DESC, p.rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list passes: %w", err)
	}
	defer rows.Close()

	var passes []*Pass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate passes: %w", err)
	}
	return passes, nil
}

// GetPass returns one pass with its messages. The id may be a unique
// prefix of the full id.
func (db *DB) GetPass(id string) (*Pass, error) {
	return db.GetPassContext(context.Background(), id)
}

// GetPassContext returns one pass with context support.
func (db *DB) GetPassContext(ctx context.Context, id string) (*Pass, error) {
	rows, err := db.conn.QueryContext(ctx, `
	SELECT p.id, p.kind, p.dry_run, p.started_at, p.finished_at,
	       p.created, p.updated, p.skipped, p.deleted, p.fatal, 0, 0
	FROM passes p
	WHERE p.id = ? OR p.id LIKE ? || '%'
	LIMIT 2`, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query pass %s: %w", id, err)
	}
	var found []*Pass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query pass %s: %w", id, err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrPassNotFound, id)
	case 1:
	default:
		return nil, fmt.Errorf("pass id %q is ambiguous", id)
	}
	p := found[0]

	msgs, err := db.conn.QueryContext(ctx,
		`SELECT level, text FROM messages WHERE pass_id = ? ORDER BY seq`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for %s: %w", p.ID, err)
	}
	defer msgs.Close()
	for msgs.Next() {
		var level, text string
		if err := msgs.Scan(&level, &text); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if level == levelError {
			p.Errors = append(p.Errors, text)
		} else {
			p.Warnings = append(p.Warnings, text)
		}
	}
	if err := msgs.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	p.ErrorCount, p.WarningCount = len(p.Errors), len(p.Warnings)
	return p, nil
}

// Prune deletes all but the newest keep passes and returns how many were
// removed.
func (db *DB) Prune(keep int) (int, error) {
	return db.PruneContext(context.Background(), keep)
}

// PruneContext prunes old passes with context support.
func (db *DB) PruneContext(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := db.conn.ExecContext(ctx, `
	DELETE FROM passes WHERE id NOT IN (
		SELECT id FROM passes ORDER BY started_at DESC, rowid DESC LIMIT ?
	)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned passes: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPass(s scanner) (*Pass, error) {
	var (
		p                 Pass
		kind              string
		dryRun            int
		started, finished string
		fatal             sql.NullString
	)
	if err := s.Scan(&p.ID, &kind, &dryRun, &started, &finished,
		&p.Created, &p.Updated, &p.Skipped, &p.Deleted, &fatal,
		&p.ErrorCount, &p.WarningCount); err != nil {
		return nil, fmt.Errorf("failed to scan pass: %w", err)
	}

	p.Kind = Kind(kind)
	p.DryRun = dryRun != 0
	p.Fatal = fatal.String

	var err error
	if p.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("invalid started_at for pass %s: %w", p.ID, err)
	}
	if p.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("invalid finished_at for pass %s: %w", p.ID, err)
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
