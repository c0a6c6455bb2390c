// Package sqlite records sync runs in a local SQLite database so past
// runs can be inspected without re-reading the journal or the vault.
package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zotsync/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// History implements ports.RunHistory using SQLite.
type History struct {
	db     *sql.DB
	dbPath string
}

var _ ports.RunHistory = (*History)(nil)

// Open creates the run-history database for the given vault path. Each
// vault gets its own database file under the XDG data directory.
func Open(vaultPath string) (*History, error) {
	dbPath := databasePath(vaultPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER,
			matched INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL DEFAULT 0,
			notes_created INTEGER NOT NULL DEFAULT 0,
			duplicates INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS run_documents (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			title TEXT NOT NULL,
			state TEXT NOT NULL,
			notes_created INTEGER NOT NULL DEFAULT 0,
			duplicates INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_run_documents_run ON run_documents(run_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)",
		schemaVersion,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return &History{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (h *History) Path() string {
	return h.dbPath
}

// BeginRun inserts a run row and returns its ID.
func (h *History) BeginRun(mode string, startedAt time.Time) (int64, error) {
	res, err := h.db.Exec(
		"INSERT INTO runs (mode, started_at) VALUES (?, ?)",
		mode, startedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to begin run: %w", err)
	}
	return res.LastInsertId()
}

// RecordDocument stores one document's terminal state for a run.
func (h *History) RecordDocument(runID int64, doc ports.RunDocument) error {
	_, err := h.db.Exec(
		"INSERT INTO run_documents (run_id, title, state, notes_created, duplicates) VALUES (?, ?, ?, ?, ?)",
		runID, doc.Title, doc.State, doc.NotesCreated, doc.Duplicates,
	)
	if err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}
	return nil
}

// FinishRun fills in the totals for a run started with BeginRun.
func (h *History) FinishRun(summary ports.RunSummary) error {
	_, err := h.db.Exec(
		`UPDATE runs SET finished_at = ?, matched = ?, processed = ?,
			notes_created = ?, duplicates = ?, failed = ?
		WHERE id = ?`,
		summary.FinishedAt.Unix(), summary.Matched, summary.Processed,
		summary.NotesCreated, summary.Duplicates, summary.Failed,
		summary.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (h *History) RecentRuns(limit int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.Query(
		`SELECT id, mode, started_at, COALESCE(finished_at, 0),
			matched, processed, notes_created, duplicates, failed
		FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []ports.RunSummary
	for rows.Next() {
		var r ports.RunSummary
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Mode, &started, &finished,
			&r.Matched, &r.Processed, &r.NotesCreated, &r.Duplicates, &r.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		if finished > 0 {
			r.FinishedAt = time.Unix(finished, 0)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunDocuments returns the per-document records for a run.
func (h *History) RunDocuments(runID int64) ([]ports.RunDocument, error) {
	rows, err := h.db.Query(
		"SELECT title, state, notes_created, duplicates FROM run_documents WHERE run_id = ? ORDER BY rowid",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run documents: %w", err)
	}
	defer rows.Close()

	var docs []ports.RunDocument
	for rows.Next() {
		var d ports.RunDocument
		if err := rows.Scan(&d.Title, &d.State, &d.NotesCreated, &d.Duplicates); err != nil {
			return nil, fmt.Errorf("failed to scan run document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// databasePath returns the history database location for a vault.
func databasePath(vaultPath string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "zotsync", "history-"+hashVaultPath(vaultPath)+".db")
}

// hashVaultPath produces a short stable identifier for a vault path.
func hashVaultPath(vaultPath string) string {
	sum := sha256.Sum256([]byte(vaultPath))
	return hex.EncodeToString(sum[:8])
}
