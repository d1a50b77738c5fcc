// Package sqlite provides a SQLite-backed implementation of the split
// journal ports.
//
// WAL mode is enabled on Open so readers never block writers — the
// checkout path appends rows while the reconciler reads.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/selliq/order-engine/internal/coordinator/splitlog"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids
	// CGO, keeping the binary trivially cross-compilable.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is
// append-only: each row is an immutable event in a split's lifecycle.
const schema = `
CREATE TABLE IF NOT EXISTS split_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- One split execution per checkout. Not UNIQUE: one row per transition.
    split_id        TEXT        NOT NULL,

    -- Lifecycle state at the time this row was written.
    status          TEXT        NOT NULL,

    -- Name of the step that just executed.
    current_step    TEXT        NOT NULL DEFAULT '',

    -- Order document created by the step, when applicable.
    order_id        TEXT        NOT NULL DEFAULT '',

    -- JSON checkout payload. Written once on STARTED, NULL after.
    payload         TEXT,

    -- JSON array of error strings accumulated during failure/compensation.
    error_messages  TEXT        NOT NULL DEFAULT '[]',

    -- W3C trace/span ids of the active OTel span.
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT, SQLite idiom.
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_split_logs_split_id ON split_logs(split_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_split_logs_trace_id ON split_logs(trace_id);
`

// Repository is the SQLite implementation of splitlog.Repository and
// splitlog.Reader.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at path and applies the
// schema.
func Open(path string) (*Repository, error) {
	// busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("splitlog: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("splitlog: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends a journal row. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, e *splitlog.Entry) error {
	const q = `
		INSERT INTO split_logs
			(split_id, status, current_step, order_id, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		e.SplitID,
		string(e.Status),
		e.CurrentStep,
		e.OrderID,
		nullableString(e.Payload),
		e.ErrorMessages,
		e.TraceID,
		e.SpanID,
		e.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("splitlog: save entry for %q: %w", e.SplitID, err)
	}
	return nil
}

// ListStale returns the newest entry of every split whose latest state
// is STARTED, STEP_DONE or COMPENSATING and older than the cutoff —
// splits abandoned mid-flight by a crash or a failed compensation.
func (r *Repository) ListStale(ctx context.Context, before time.Time) ([]splitlog.Entry, error) {
	const q = `
		SELECT split_id, status, current_step, order_id, COALESCE(payload,''),
		       error_messages, trace_id, span_id, updated_at
		FROM   split_logs
		WHERE  id IN (SELECT MAX(id) FROM split_logs GROUP BY split_id)
		AND    status IN ('STARTED', 'STEP_DONE', 'COMPENSATING')
		AND    updated_at < ?
		ORDER  BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, q, before.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("splitlog: list stale: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Entries returns all journal rows for one split, oldest first.
func (r *Repository) Entries(ctx context.Context, splitID string) ([]splitlog.Entry, error) {
	const q = `
		SELECT split_id, status, current_step, order_id, COALESCE(payload,''),
		       error_messages, trace_id, span_id, updated_at
		FROM   split_logs
		WHERE  split_id = ?
		ORDER  BY updated_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, splitID)
	if err != nil {
		return nil, fmt.Errorf("splitlog: entries for %q: %w", splitID, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]splitlog.Entry, error) {
	var out []splitlog.Entry
	for rows.Next() {
		var e splitlog.Entry
		var updatedAt string
		if err := rows.Scan(
			&e.SplitID,
			&e.Status,
			&e.CurrentStep,
			&e.OrderID,
			&e.Payload,
			&e.ErrorMessages,
			&e.TraceID,
			&e.SpanID,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("splitlog: scan: %w", err)
		}
		t, err := parseRFC3339(updatedAt)
		if err != nil {
			return nil, err
		}
		e.UpdatedAt = t
		out = append(out, e)
	}
	return out, rows.Err()
}

// nullableString returns nil for empty strings so SQLite stores NULL
// instead of empty TEXT on non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
