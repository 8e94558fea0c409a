// Package testutil provides the User/Role/Ticket fixture domain shared by
// package tests: typed entities with accessor bindings, a CUE schema and a
// seeded SQLite database.
package testutil

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/fieldquery/internal/schema"
	"github.com/roach88/fieldquery/internal/schemasrc"
	"github.com/roach88/fieldquery/internal/store"
)

// SchemaCUE is the CUE source of the fixture schema.
//
//go:embed schema.cue
var SchemaCUE string

// SeedSQL creates and fills the fixture tables.
//
//go:embed seed.sql
var SeedSQL string

// Defs returns the fixture entity definitions.
func Defs(t testing.TB) []schema.EntityDef {
	t.Helper()
	defs, err := schemasrc.CompileCUE(SchemaCUE, "schema.cue")
	if err != nil {
		t.Fatalf("compile fixture schema: %v", err)
	}
	return defs
}

// Catalog builds the fixture catalog with typed bindings.
func Catalog(t testing.TB) *schema.Catalog {
	t.Helper()
	c, err := schema.New(Defs(t), Bindings()...)
	if err != nil {
		t.Fatalf("build fixture catalog: %v", err)
	}
	return c
}

// RecordCatalog builds the fixture catalog without bindings, so every
// entity is materialized as *schema.Record.
func RecordCatalog(t testing.TB) *schema.Catalog {
	t.Helper()
	c, err := schema.New(Defs(t))
	if err != nil {
		t.Fatalf("build fixture catalog: %v", err)
	}
	return c
}

// Store opens a seeded SQLite store in a temp directory. It is closed when
// the test ends.
func Store(t testing.TB) *store.Store {
	t.Helper()
	return StoreWithDriver(t, store.DefaultDriver)
}

// StoreWithDriver is Store for a specific SQLite driver.
func StoreWithDriver(t testing.TB, driver string) *store.Store {
	t.Helper()
	s, err := store.Open(driver, filepath.Join(t.TempDir(), "fixture.db"))
	if err != nil {
		t.Fatalf("open fixture store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.ExecScript(context.Background(), SeedSQL); err != nil {
		t.Fatalf("seed fixture store: %v", err)
	}
	return s
}

// WriteFixtures writes the schema and a seeded database into dir and
// returns their paths.
func WriteFixtures(t testing.TB, dir string) (schemaPath, dbPath string) {
	t.Helper()
	schemaPath = filepath.Join(dir, "schema.cue")
	if err := os.WriteFile(schemaPath, []byte(SchemaCUE), 0o644); err != nil {
		t.Fatalf("write fixture schema: %v", err)
	}

	dbPath = filepath.Join(dir, "fixture.db")
	s, err := store.Open(store.DefaultDriver, dbPath)
	if err != nil {
		t.Fatalf("open fixture store: %v", err)
	}
	defer s.Close()
	if err := s.ExecScript(context.Background(), SeedSQL); err != nil {
		t.Fatalf("seed fixture store: %v", err)
	}
	return schemaPath, dbPath
}
