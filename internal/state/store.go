package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"showdown/internal/config"
	"showdown/internal/rotation"
	"showdown/internal/services"
)

// Store manages rotation state persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the rotation database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.StateDatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location on disk.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Meta is the bookkeeping recorded alongside the last persisted run.
type Meta struct {
	RunCounter   int64
	SnapshotHash string
	CompletedAt  time.Time
}

// Load returns the persisted rotation state. A database that has never
// recorded a run yields the empty state. Any other failure is fatal for the
// run: starting a fresh rotation against an unreadable state could orphan
// collections that are still visible on the server.
func (s *Store) Load(ctx context.Context) (rotation.State, error) {
	loaded := rotation.Empty()

	meta, ok, err := s.readMeta(ctx)
	if err != nil {
		return rotation.State{}, services.Wrap(services.ErrStateLoad, "state", "load", "read rotation meta", err)
	}
	if ok {
		loaded.RunCounter = meta.RunCounter
		loaded.SnapshotHash = meta.SnapshotHash
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT slug, title, stage, rank, entered_at, stage_since, match_count
         FROM rotation_entries ORDER BY position`,
	)
	if err != nil {
		return rotation.State{}, services.Wrap(services.ErrStateLoad, "state", "load", "query rotation entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry    rotation.Entry
			stageRaw string
		)
		if err := rows.Scan(&entry.Slug, &entry.Title, &stageRaw, &entry.Rank, &entry.EnteredAt, &entry.StageSince, &entry.MatchCount); err != nil {
			return rotation.State{}, services.Wrap(services.ErrStateLoad, "state", "load", "scan rotation entry", err)
		}
		stage, known := rotation.ParseStage(stageRaw)
		if !known {
			return rotation.State{}, services.Wrap(
				services.ErrStateLoad,
				"state",
				"load",
				fmt.Sprintf("entry %q carries unknown stage %q", entry.Slug, stageRaw),
				nil,
			)
		}
		entry.Stage = stage
		loaded.Entries = append(loaded.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return rotation.State{}, services.Wrap(services.ErrStateLoad, "state", "load", "iterate rotation entries", err)
	}
	return loaded, nil
}

// Save replaces the persisted window with the post-transition state in one
// transaction, so a crash mid-save leaves the previous run's state intact.
func (s *Store) Save(ctx context.Context, st rotation.State) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrStateSave, "state", "save", "begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rotation_entries`); err != nil {
		return services.Wrap(services.ErrStateSave, "state", "save", "clear previous window", err)
	}
	for position, entry := range st.Entries {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO rotation_entries (
                slug, title, stage, rank, entered_at, stage_since, match_count, position, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.Slug,
			entry.Title,
			string(entry.Stage),
			entry.Rank,
			entry.EnteredAt,
			entry.StageSince,
			entry.MatchCount,
			position,
			now,
		); err != nil {
			return services.Wrap(services.ErrStateSave, "state", "save", fmt.Sprintf("insert entry %q", entry.Slug), err)
		}
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO rotation_meta (id, run_counter, snapshot_hash, completed_at)
         VALUES (1, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             run_counter = excluded.run_counter,
             snapshot_hash = excluded.snapshot_hash,
             completed_at = excluded.completed_at`,
		st.RunCounter,
		st.SnapshotHash,
		now,
	); err != nil {
		return services.Wrap(services.ErrStateSave, "state", "save", "write rotation meta", err)
	}

	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrStateSave, "state", "save", "commit transaction", err)
	}
	return nil
}

// LastRun returns metadata for the most recent completed run, when one exists.
func (s *Store) LastRun(ctx context.Context) (Meta, bool, error) {
	meta, ok, err := s.readMeta(ctx)
	if err != nil {
		return Meta{}, false, services.Wrap(services.ErrStateLoad, "state", "meta", "read rotation meta", err)
	}
	return meta, ok, nil
}

// Reset clears all persisted rotation state. The next run starts cold.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rotation_entries`); err != nil {
		return fmt.Errorf("clear rotation entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rotation_meta`); err != nil {
		return fmt.Errorf("clear rotation meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func (s *Store) readMeta(ctx context.Context) (Meta, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_counter, snapshot_hash, completed_at FROM rotation_meta WHERE id = 1`)

	var (
		meta         Meta
		completedRaw string
	)
	if err := row.Scan(&meta.RunCounter, &meta.SnapshotHash, &completedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Meta{}, false, nil
		}
		return Meta{}, false, err
	}
	if completedRaw != "" {
		if completed, err := time.Parse(time.RFC3339Nano, completedRaw); err == nil {
			meta.CompletedAt = completed
		}
	}
	return meta, true, nil
}
