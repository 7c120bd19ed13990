package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore is a Store backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in the given database
// and returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS step_snapshots (
			id TEXT PRIMARY KEY,
			workflow TEXT NOT NULL,
			taken_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS step_snapshots_workflow
			ON step_snapshots (workflow, taken_at);
		CREATE TABLE IF NOT EXISTS step_entries (
			snapshot_id TEXT NOT NULL REFERENCES step_snapshots (id),
			position INTEGER NOT NULL,
			step TEXT NOT NULL,
			event_name TEXT NOT NULL,
			accepted_events TEXT NOT NULL,
			return_types TEXT NOT NULL,
			pass_context INTEGER NOT NULL,
			num_workers INTEGER NOT NULL,
			method INTEGER NOT NULL,
			PRIMARY KEY (snapshot_id, position)
		);`,
	)
	return err
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO step_snapshots (id, workflow, taken_at)
		VALUES (?, ?, ?)`,
		snap.ID,
		snap.Workflow,
		snap.TakenAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", snap.ID, err)
	}

	for i, e := range snap.Entries {
		accepted, err := encodeNames(e.AcceptedEvents)
		if err != nil {
			return err
		}
		returns, err := encodeNames(e.ReturnTypes)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO step_entries (snapshot_id, position, step, event_name, accepted_events, return_types, pass_context, num_workers, method)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.ID,
			i,
			e.Step,
			e.EventName,
			accepted,
			returns,
			e.PassContext,
			e.NumWorkers,
			e.Method,
		); err != nil {
			return fmt.Errorf("insert step %s: %w", e.Step, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context, workflow string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, workflow, taken_at
		FROM step_snapshots
		WHERE workflow = ?
		ORDER BY taken_at DESC, rowid DESC
		LIMIT 1`,
		workflow,
	)

	var snap Snapshot
	var takenAt int64
	if err := row.Scan(&snap.ID, &snap.Workflow, &takenAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, err
	}
	snap.TakenAt = time.Unix(0, takenAt).UTC()

	entries, err := s.entries(ctx, snap.ID)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Entries = entries
	return snap, nil
}

func (s *SQLiteStore) entries(ctx context.Context, snapshotID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, event_name, accepted_events, return_types, pass_context, num_workers, method
		FROM step_entries
		WHERE snapshot_id = ?
		ORDER BY position`,
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var accepted, returns string
		if err := rows.Scan(&e.Step, &e.EventName, &accepted, &returns, &e.PassContext, &e.NumWorkers, &e.Method); err != nil {
			return nil, err
		}
		if e.AcceptedEvents, err = decodeNames(accepted); err != nil {
			return nil, err
		}
		if e.ReturnTypes, err = decodeNames(returns); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *SQLiteStore) ListWorkflows(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT workflow
		FROM step_snapshots
		ORDER BY workflow`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
