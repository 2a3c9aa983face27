package sqlite

import (
	"path/filepath"
	"testing"
)

func TestDriverInfo(t *testing.T) {
	info := GetInfo()

	if info.DriverName == "" {
		t.Error("DriverName should not be empty")
	}

	if info.DriverType == "" {
		t.Error("DriverType should not be empty")
	}

	if info.Package == "" {
		t.Error("Package should not be empty")
	}

	// Verify consistency
	if info.DriverName != DriverName() {
		t.Errorf("DriverName mismatch: info=%s, func=%s", info.DriverName, DriverName())
	}

	if info.DriverType != DriverType() {
		t.Errorf("DriverType mismatch: info=%s, func=%s", info.DriverType, DriverType())
	}

	if info.IsCGO != IsCGO() {
		t.Errorf("IsCGO mismatch: info=%v, func=%v", info.IsCGO, IsCGO())
	}

	t.Logf("SQLite driver: %s (%s) from %s", info.DriverName, info.DriverType, info.Package)
}

// createPages creates a database holding a small page table.
func createPages(t *testing.T, path string) {
	t.Helper()
	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE pages (id INTEGER PRIMARY KEY, title TEXT NOT NULL)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	for id, title := range map[int]string{1: "Bank (Geldinstitut)", 2: "Bank (Möbel)"} {
		if _, err := db.Exec(`INSERT INTO pages (id, title) VALUES (?, ?)`, id, title); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}
}

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "corpus.db")
	createPages(t, dbPath)

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	var title string
	if err := db.QueryRow(`SELECT title FROM pages WHERE id = 2`).Scan(&title); err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if title != "Bank (Möbel)" {
		t.Errorf("title = %q, want %q", title, "Bank (Möbel)")
	}
}

func TestOpenReadOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "corpus.db")
	createPages(t, dbPath)

	rodb, err := OpenReadOnly(dbPath)
	if err != nil {
		t.Fatalf("failed to open read-only: %v", err)
	}
	defer rodb.Close()

	var n int
	if err := rodb.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if n != 2 {
		t.Errorf("pages = %d, want 2", n)
	}

	if _, err := rodb.Exec(`INSERT INTO pages (id, title) VALUES (3, 'Fluss')`); err == nil {
		t.Error("expected write to a read-only database to fail")
	}
}

func TestDriverTypeConsistency(t *testing.T) {
	driverType := DriverType()

	switch driverType {
	case "purego":
		if IsCGO() {
			t.Error("IsCGO() should be false for purego driver")
		}
		if DriverName() != "sqlite" {
			t.Errorf("purego driver should use 'sqlite' name, got '%s'", DriverName())
		}
	case "cgo":
		if !IsCGO() {
			t.Error("IsCGO() should be true for cgo driver")
		}
		if DriverName() != "sqlite3" {
			t.Errorf("cgo driver should use 'sqlite3' name, got '%s'", DriverName())
		}
	default:
		t.Errorf("unknown driver type: %s", driverType)
	}
}

func TestOpenWriter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "writer.db")

	db, err := OpenWriter(dbPath)
	if err != nil {
		t.Fatalf("OpenWriter() error = %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var fk int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("failed to query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}
