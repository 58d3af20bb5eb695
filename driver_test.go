package paraffin

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
)

var errRowsAffected = errors.New("rows affected unavailable")

// brokenResultConn accepts every statement and returns a result whose row
// count cannot be read.
type brokenResultConn struct{}

func (brokenResultConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (brokenResultConn) Close() error { return nil }

func (brokenResultConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (brokenResultConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	return brokenResult{}, nil
}

type brokenResult struct{}

func (brokenResult) LastInsertId() (int64, error) { return 1, nil }
func (brokenResult) RowsAffected() (int64, error) { return 0, errRowsAffected }

type brokenResultConnector struct{}

func (brokenResultConnector) Connect(context.Context) (driver.Conn, error) {
	return brokenResultConn{}, nil
}

func (brokenResultConnector) Driver() driver.Driver { return brokenResultDriver{} }

type brokenResultDriver struct{}

func (brokenResultDriver) Open(string) (driver.Conn, error) { return brokenResultConn{}, nil }

func TestInsertRowsAffectedError(t *testing.T) {
	db := sqlx.NewDb(sql.OpenDB(brokenResultConnector{}), "sqlite")
	defer db.Close()

	s, err := NewSession(db, WithCatalog(&countingCatalog{cols: map[string][]string{"users": userColumns}}))
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}

	_, err = s.Table(usersTable).Create(context.Background(), map[string]any{"name": "Derek"})
	if !errors.Is(err, errRowsAffected) {
		t.Fatalf("expected the driver error, got %v", err)
	}

	if errors.Is(err, ErrNoRow) {
		t.Error("a driver failure should not be reported as ErrNoRow")
	}

	var se *StatementError
	if !errors.As(err, &se) || se.Query == "" {
		t.Errorf("expected a StatementError carrying the query, got %v", err)
	}
}
