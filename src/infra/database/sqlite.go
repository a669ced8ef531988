package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ytdlsync/src/features/syncing"
)

// RunHistory is a SQLite store of past sync runs and their per-file results.
type RunHistory struct {
	db *sql.DB
}

// NewRunHistory opens (and if needed creates) the history database at path.
func NewRunHistory(path string) (*RunHistory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &RunHistory{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			listed INTEGER NOT NULL,
			placed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			plex_notified INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS run_files (
			run_id TEXT NOT NULL REFERENCES runs(id),
			uid TEXT NOT NULL,
			filename TEXT,
			status TEXT NOT NULL,
			dest_path TEXT,
			error TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id);
	`)
	return err
}

// SaveRun persists a run summary and its per-file results.
func (h *RunHistory) SaveRun(ctx context.Context, summary *syncing.RunSummary) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, listed, placed, failed, plex_notified)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.ID,
		summary.StartedAt.Format(time.RFC3339),
		summary.FinishedAt.Format(time.RFC3339),
		summary.Listed,
		summary.Placed(),
		summary.Failed(),
		summary.PlexNotified,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range summary.Files {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, uid, filename, status, dest_path, error)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			summary.ID, f.UID, f.Filename, string(f.Status), f.DestPath, f.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run file %s: %w", f.UID, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (h *RunHistory) Close() error {
	return h.db.Close()
}
