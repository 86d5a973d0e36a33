package export

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/iksnae/flow-analyzer/internal"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS flows(
  run_id           TEXT PRIMARY KEY,
  name             TEXT    NOT NULL,
  use_case         TEXT    NOT NULL,
  source           TEXT,
  total_steps      INTEGER NOT NULL,
  captured_events  INTEGER NOT NULL,
  summary          TEXT,
  summary_key      TEXT,
  exported_at      TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS step_types(
  run_id  TEXT    NOT NULL REFERENCES flows(run_id),
  type    TEXT    NOT NULL,
  count   INTEGER NOT NULL,
  PRIMARY KEY (run_id, type)
);
CREATE TABLE IF NOT EXISTS interactions(
  run_id    TEXT    NOT NULL REFERENCES flows(run_id),
  position  INTEGER NOT NULL,
  type      TEXT    NOT NULL,
  action    TEXT    NOT NULL,
  details   TEXT,
  url       TEXT,
  PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_interactions_type ON interactions(type);
`

// SQLiteExporter writes a report into a SQLite database file
type SQLiteExporter struct {
	newRunID func() string
	now      func() time.Time
}

// NewSQLiteExporter creates a SQLiteExporter
func NewSQLiteExporter() *SQLiteExporter {
	return &SQLiteExporter{
		newRunID: func() string { return uuid.New().String() },
		now:      time.Now,
	}
}

// Export builds the database in a temporary file and copies it to w
func (e *SQLiteExporter) Export(report *internal.Report, w io.Writer) error {
	dir, err := os.MkdirTemp("", "flow-analyzer-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	dbPath := filepath.Join(dir, "report.db")
	if err := e.WriteFile(report, dbPath); err != nil {
		return err
	}

	f, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to copy database: %w", err)
	}
	return nil
}

// WriteFile stores report in the database at path, creating the schema if
// needed. Each call adds a new run.
func (e *SQLiteExporter) WriteFile(report *internal.Report, path string) error {
	db, err := internal.OpenDatabase(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}

	runID := e.newRunID()
	if err := e.insertReport(db, runID, report); err != nil {
		return err
	}

	internal.LogDebug("Wrote run %s with %d interaction(s) to %s", runID, len(report.Interactions), path)
	return nil
}

func (e *SQLiteExporter) insertReport(db *sql.DB, runID string, report *internal.Report) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stats := report.Statistics
	var summary, summaryKey sql.NullString
	if report.Summary != nil {
		summary = sql.NullString{String: report.Summary.Text, Valid: true}
		summaryKey = sql.NullString{String: report.Summary.CacheKey, Valid: true}
	}

	if _, err := tx.Exec(
		`INSERT INTO flows(run_id, name, use_case, source, total_steps, captured_events, summary, summary_key, exported_at) VALUES(?,?,?,?,?,?,?,?,?)`,
		runID, stats.Name, stats.UseCase, report.Source, stats.TotalSteps, stats.CapturedEvents, summary, summaryKey,
		e.now().UTC().Format(time.RFC3339),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert flow: %w", err)
	}

	for _, c := range stats.StepTypeCounts() {
		if _, err := tx.Exec(`INSERT INTO step_types(run_id, type, count) VALUES(?,?,?)`, runID, c.Type, c.Count); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert step type: %w", err)
		}
	}

	statement, err := tx.Prepare(`INSERT INTO interactions(run_id, position, type, action, details, url) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = statement.Close() }()

	for i, interaction := range report.Interactions {
		if _, err := statement.Exec(runID, i+1, interaction.Type, interaction.Action, interaction.Details, interaction.URL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert interaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountRuns reports how many runs the database at path holds. The file is
// opened read-only and must already exist.
func CountRuns(path string) (int, error) {
	db, err := internal.OpenDatabaseReadOnly(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	var runs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM flows`).Scan(&runs); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return runs, nil
}

// Extension returns the file extension for this format
func (e *SQLiteExporter) Extension() string {
	return "db"
}
