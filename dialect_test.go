package paraffin

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"mysql", "mysql"},
		{"pgx", "pgx"},
		{"postgres", "postgres"},
		{"sqlite", "sqlite"},
		{"sqlite3", "sqlite3"},
	}

	for _, tt := range tests {
		d, err := DialectFor(tt.driver)
		if err != nil {
			t.Errorf("DialectFor(%q) failed: %v", tt.driver, err)
			continue
		}
		if d.DriverName() != tt.want {
			t.Errorf("DialectFor(%q).DriverName() = %q, want %q", tt.driver, d.DriverName(), tt.want)
		}
	}

	if _, err := DialectFor("oracle"); !errors.Is(err, ErrUnknownDialect) {
		t.Errorf("expected ErrUnknownDialect, got %v", err)
	}
}

func TestQuote(t *testing.T) {
	if got := (MySQL{}).Quote("we`ird"); got != "`we``ird`" {
		t.Errorf("MySQL quote = %s", got)
	}

	if got := (Postgres{}).Quote(`a"b`); got != `"a""b"` {
		t.Errorf("Postgres quote = %s", got)
	}

	td := TableDef{Schema: "app", Name: "users"}
	if got := quoteTable(SQLite{}, td); got != `"app"."users"` {
		t.Errorf("quoteTable = %s", got)
	}
}

func TestMySQLConstraintViolation(t *testing.T) {
	d := MySQL{}

	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"}
	if !d.IsConstraintViolation(dup) {
		t.Error("duplicate entry should be a constraint violation")
	}

	if !d.IsConstraintViolation(fmt.Errorf("insert failed: %w", dup)) {
		t.Error("wrapped duplicate entry should be a constraint violation")
	}

	state := &mysql.MySQLError{Number: 9999, SQLState: [5]byte{'2', '3', '0', '0', '0'}}
	if !d.IsConstraintViolation(state) {
		t.Error("SQLSTATE 23000 should be a constraint violation")
	}

	if d.IsConstraintViolation(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}) {
		t.Error("missing table is not a constraint violation")
	}

	if d.IsConstraintViolation(errors.New("1062")) {
		t.Error("plain errors are not constraint violations")
	}
}

func TestPostgresConstraintViolation(t *testing.T) {
	d := Postgres{}

	if !d.IsConstraintViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}) {
		t.Error("pgx unique violation should be a constraint violation")
	}

	if !d.IsConstraintViolation(&pq.Error{Code: "23503"}) {
		t.Error("pq foreign key violation should be a constraint violation")
	}

	if d.IsConstraintViolation(&pgconn.PgError{Code: pgerrcode.UndefinedTable}) {
		t.Error("undefined table is not a constraint violation")
	}

	if d.IsConstraintViolation(&pq.Error{Code: "42601"}) {
		t.Error("syntax error is not a constraint violation")
	}
}

func TestSQLiteConstraintViolation(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	if _, err := s.DB().ExecContext(ctx, "INSERT INTO vehicles (vin, make) VALUES ('A', 'Ford')"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	_, err := s.DB().ExecContext(ctx, "INSERT INTO vehicles (vin, make) VALUES ('A', 'Ford')")
	if err == nil {
		t.Fatal("expected duplicate key error")
	}

	if !(SQLite{}).IsConstraintViolation(err) {
		t.Errorf("expected %v to be a constraint violation", err)
	}

	_, err = s.DB().ExecContext(ctx, "INSERT INTO no_such_table (x) VALUES (1)")
	if err == nil || (SQLite{}).IsConstraintViolation(err) {
		t.Errorf("expected a non constraint error, got %v", err)
	}
}
