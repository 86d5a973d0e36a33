package export

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/flow-analyzer/internal"
	"github.com/iksnae/flow-analyzer/testutil"
)

func openExportedDB(t *testing.T, data []byte) *sql.DB {
	t.Helper()
	path := filepath.Join(testutil.CreateTempDir(t), "out.db")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write database: %v", err)
	}
	db, err := internal.OpenDatabaseReadOnly(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteExporter_Export(t *testing.T) {
	report := internal.CreateTestReport("Buy a Gift Card", "The user bought a gift card.")

	exporter := NewSQLiteExporter()
	exporter.newRunID = func() string { return "run-1" }
	exporter.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	var buf bytes.Buffer
	if err := exporter.Export(report, &buf); err != nil {
		t.Fatalf("SQLiteExporter.Export() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("Export() wrote no bytes")
	}

	db := openExportedDB(t, buf.Bytes())

	var name, useCase, summary, exportedAt string
	var totalSteps int
	err := db.QueryRow(`SELECT name, use_case, total_steps, summary, exported_at FROM flows WHERE run_id = ?`, "run-1").
		Scan(&name, &useCase, &totalSteps, &summary, &exportedAt)
	if err != nil {
		t.Fatalf("failed to query flows: %v", err)
	}
	if name != "Buy a Gift Card" || useCase != "Checkout" || totalSteps != 4 {
		t.Errorf("flow row = (%q, %q, %d)", name, useCase, totalSteps)
	}
	if summary != "The user bought a gift card." {
		t.Errorf("summary = %q", summary)
	}
	if exportedAt != "2024-01-02T03:04:05Z" {
		t.Errorf("exported_at = %q", exportedAt)
	}

	var chapterCount int
	if err := db.QueryRow(`SELECT count FROM step_types WHERE run_id = ? AND type = ?`, "run-1", "CHAPTER").Scan(&chapterCount); err != nil {
		t.Fatalf("failed to query step_types: %v", err)
	}
	if chapterCount != 2 {
		t.Errorf("CHAPTER count = %d, want 2", chapterCount)
	}

	rows, err := db.Query(`SELECT position, action FROM interactions WHERE run_id = ? ORDER BY position`, "run-1")
	if err != nil {
		t.Fatalf("failed to query interactions: %v", err)
	}
	defer func() { _ = rows.Close() }()

	i := 0
	for rows.Next() {
		var position int
		var action string
		if err := rows.Scan(&position, &action); err != nil {
			t.Fatalf("scan error: %v", err)
		}
		if position != i+1 || action != report.Interactions[i].Action {
			t.Errorf("row %d = (%d, %q), want (%d, %q)", i, position, action, i+1, report.Interactions[i].Action)
		}
		i++
	}
	if i != len(report.Interactions) {
		t.Errorf("got %d interaction rows, want %d", i, len(report.Interactions))
	}
}

func TestSQLiteExporter_WriteFileAppendsRuns(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "flows.db")
	exporter := NewSQLiteExporter()

	report := internal.CreateTestReport("Buy a Gift Card", "")
	for i := 0; i < 2; i++ {
		if err := exporter.WriteFile(report, path); err != nil {
			t.Fatalf("WriteFile() run %d error = %v", i, err)
		}
	}

	db, err := internal.OpenDatabaseReadOnly(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	var runs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM flows`).Scan(&runs); err != nil {
		t.Fatalf("failed to count runs: %v", err)
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}

	var summary sql.NullString
	if err := db.QueryRow(`SELECT summary FROM flows LIMIT 1`).Scan(&summary); err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}
	if summary.Valid {
		t.Errorf("summary should be NULL without a summary, got %q", summary.String)
	}
}

func TestCountRuns(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "flows.db")
	exporter := NewSQLiteExporter()
	report := internal.CreateTestReport("Buy a Gift Card", "")

	for want := 1; want <= 3; want++ {
		if err := exporter.WriteFile(report, path); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		runs, err := CountRuns(path)
		if err != nil {
			t.Fatalf("CountRuns() error = %v", err)
		}
		if runs != want {
			t.Errorf("CountRuns() = %d, want %d", runs, want)
		}
	}

	missing := filepath.Join(dir, "missing.db")
	if _, err := CountRuns(missing); err == nil {
		t.Error("CountRuns() should fail for a missing database")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("CountRuns() must not create the database")
	}
}

func TestSQLiteExporter_Extension(t *testing.T) {
	if got := NewSQLiteExporter().Extension(); got != "db" {
		t.Errorf("SQLiteExporter.Extension() = %v, want db", got)
	}
}
