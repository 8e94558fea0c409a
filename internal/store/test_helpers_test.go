package store

import (
	"context"
	"path/filepath"
	"testing"
)

const testSchema = `
CREATE TABLE us_user (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	age        INTEGER,
	score      REAL,
	active     BOOLEAN,
	created_at DATETIME
);
INSERT INTO us_user VALUES (1, 'alice', 30, 1.5, 1, '2024-01-10 09:00:00.000');
INSERT INTO us_user VALUES (2, 'bob; the builder', 17, NULL, 0, '2024-02-10 09:00:00.000');
INSERT INTO us_user VALUES (3, 'o''hara', NULL, 2.0, 1, NULL);
`

// createTestStore creates a seeded store in a temp directory.
func createTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(driver, path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.ExecScript(context.Background(), testSchema); err != nil {
		t.Fatalf("ExecScript() failed: %v", err)
	}
	return s
}
