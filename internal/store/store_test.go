package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/fieldquery/internal/querysql"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open("", path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Driver() != DefaultDriver {
		t.Errorf("Driver() = %q, want %q", s.Driver(), DefaultDriver)
	}
	if s.Dialect() != querysql.SQLite {
		t.Errorf("Dialect() = %v, want sqlite", s.Dialect())
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t, "sqlite3")

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestOpen_InMemorySkipsWAL(t *testing.T) {
	s, err := Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("journal_mode", "memory"); err != nil {
		t.Error(err)
	}
}

func TestOpen_ModerncDriver(t *testing.T) {
	s := createTestStore(t, "sqlite")
	if s.Dialect() != querysql.SQLite {
		t.Errorf("Dialect() = %v, want sqlite", s.Dialect())
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("sqlite3", "/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	if err == nil {
		t.Error("expected error for unknown driver, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t, "sqlite3")

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM us_user").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}
