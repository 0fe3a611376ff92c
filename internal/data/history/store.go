// Package history persists per-run scan snapshots to a local SQLite
// database, giving successive runs a trend line to compare against.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gauge/internal/core/analyze"
	"gauge/internal/core/errors"
	"gauge/internal/engine/visitor"
	"gauge/internal/shared/util"

	_ "modernc.org/sqlite"
)

const maxRetries = 5

// Snapshot is the persisted summary of one finalized scan run.
type Snapshot struct {
	RunID              string
	RecordedAt         time.Time
	Files              int
	Functions          int
	Failures           int
	Lines              visitor.LineTally
	AvgMaintainability float64
}

// SnapshotOf condenses a finalized aggregate into its persisted form.
func SnapshotOf(agg *analyze.Aggregate) Snapshot {
	return Snapshot{
		RunID:              agg.RunID,
		RecordedAt:         agg.FinishedAt,
		Files:              agg.Totals.Files,
		Functions:          agg.Totals.Functions,
		Failures:           len(agg.Failures),
		Lines:              agg.Totals.Lines,
		AvgMaintainability: agg.Totals.AvgMaintainability,
	}
}

// Store wraps the snapshot database. A single connection plus WAL keeps
// concurrent access simple; writes retry briefly on lock contention.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, fmt.Sprintf("opening history database %q", path))
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, logger: logger}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return errors.Wrap(err, errors.CodeIO, "creating schema_migrations table")
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return errors.Wrap(err, errors.CodeIO, "reading schema version")
	}

	for version := current + 1; version <= len(migrations); version++ {
		stmt := migrations[version-1]
		err := s.withRetry(ctx, func() error {
			tx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				return err
			}
			defer tx.Rollback()
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
				version, time.Now().UTC().Format(time.RFC3339)); err != nil {
				return err
			}
			return tx.Commit()
		})
		if err != nil {
			return errors.Wrap(err, errors.CodeIO,
				fmt.Sprintf("applying history migration %d", version))
		}
		s.logger.Debug("applied history migration", "version", version)
	}
	return nil
}

// SaveSnapshot upserts one run snapshot keyed by run id.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	err := s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO snapshots (
				run_id, recorded_at, files, functions, failures,
				physical_lines, logical_lines, comment_lines, blank_lines,
				avg_maintainability
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id) DO UPDATE SET
				recorded_at         = excluded.recorded_at,
				files               = excluded.files,
				functions           = excluded.functions,
				failures            = excluded.failures,
				physical_lines      = excluded.physical_lines,
				logical_lines       = excluded.logical_lines,
				comment_lines       = excluded.comment_lines,
				blank_lines         = excluded.blank_lines,
				avg_maintainability = excluded.avg_maintainability`,
			snap.RunID, snap.RecordedAt.UTC().Format(time.RFC3339Nano),
			snap.Files, snap.Functions, snap.Failures,
			snap.Lines.Physical, snap.Lines.Logical, snap.Lines.Comment, snap.Lines.Blank,
			snap.AvgMaintainability,
		)
		return err
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeIO,
			fmt.Sprintf("saving snapshot %s", snap.RunID))
	}
	return nil
}

// Recent returns up to n snapshots, newest first. n is bounded to keep a
// fat-fingered limit from dragging the whole table into memory.
func (s *Store) Recent(ctx context.Context, n int) ([]Snapshot, error) {
	n = util.ClampInt(n, 1, 1000)
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, recorded_at, files, functions, failures,
		       physical_lines, logical_lines, comment_lines, blank_lines,
		       avg_maintainability
		FROM snapshots
		ORDER BY recorded_at DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "querying snapshots")
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var recorded string
		if err := rows.Scan(
			&snap.RunID, &recorded, &snap.Files, &snap.Functions, &snap.Failures,
			&snap.Lines.Physical, &snap.Lines.Logical, &snap.Lines.Comment, &snap.Lines.Blank,
			&snap.AvgMaintainability,
		); err != nil {
			return nil, errors.Wrap(err, errors.CodeIO, "scanning snapshot row")
		}
		if ts, err := time.Parse(time.RFC3339Nano, recorded); err == nil {
			snap.RecordedAt = ts
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "iterating snapshot rows")
	}
	return snaps, nil
}

func (s *Store) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !isLockError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 25 * time.Millisecond):
		}
	}
	return err
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
