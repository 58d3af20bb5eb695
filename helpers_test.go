package paraffin

import (
	"context"
	"testing"

	migrate "github.com/rubenv/sql-migrate"
)

var testMigrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1_users",
			Up: []string{`CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name VARCHAR(255),
				created_at DATETIME,
				updated_at DATETIME
			)`},
			Down: []string{"DROP TABLE users"},
		},
		{
			Id:   "2_vehicles",
			Up:   []string{"CREATE TABLE vehicles (vin VARCHAR(17) PRIMARY KEY, make VARCHAR(255), model VARCHAR(255))"},
			Down: []string{"DROP TABLE vehicles"},
		},
		{
			Id:   "3_users_archive",
			Up:   []string{"CREATE TABLE users_archive (id INTEGER PRIMARY KEY AUTOINCREMENT, name VARCHAR(255), created_at DATETIME, updated_at DATETIME)"},
			Down: []string{"DROP TABLE users_archive"},
		},
	},
}

var (
	usersTable    = TableDef{Name: "users"}
	vehiclesTable = TableDef{Name: "vehicles", KeyField: "vin"}
)

// newTestSession opens an in-memory SQLite database with the test schema
// applied.
func newTestSession(t *testing.T, options ...SessionOption) *Session {
	t.Helper()

	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("ConnectSQLite() failed: %v", err)
	}

	if _, err := migrate.Exec(db.DB, "sqlite3", testMigrations, migrate.Up); err != nil {
		t.Fatalf("Error migrating up: %v", err)
	}

	s, err := NewSession(db, options...)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})

	return s
}

func mustCreate(t *testing.T, repo *Repository, values map[string]any, options ...CreateOption) *Record {
	t.Helper()

	rec, err := repo.Create(context.Background(), values, options...)
	if err != nil {
		t.Fatalf("Create(%v) failed: %v", values, err)
	}
	return rec
}

type countingCatalog struct {
	calls int
	cols  map[string][]string
	err   error
}

func (c *countingCatalog) Columns(_ context.Context, _, table string) ([]string, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.cols[table], nil
}
