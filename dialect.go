package paraffin

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect isolates what differs between database products: identifier
// quoting, the catalog lookup, the write-time generation expression and how
// integrity failures are signalled.
type Dialect interface {
	DriverName() string
	Quote(ident string) string
	CurrentDatabase(ctx context.Context, q sqlx.QueryerContext) (string, error)
	// ColumnsQuery returns a query listing the column names of table in
	// ordinal order, with ? placeholders.
	ColumnsQuery(schema, table string) (string, []any)
	// GenerateExpr is written in place of a placeholder for generate-at-write
	// columns.
	GenerateExpr() string
	TruncateStatement(table string) string
	// ReturningClause is appended to an INSERT to read back the generated
	// key. Dialects returning "" rely on sql.Result.LastInsertId.
	ReturningClause(keyField string) string
	IsConstraintViolation(err error) bool
}

// DialectFor picks the dialect for a database/sql driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch strings.ToLower(driverName) {
	case "mysql":
		return MySQL{}, nil
	case "pgx", "postgres", "postgresql":
		return Postgres{driver: driverName}, nil
	case "sqlite", "sqlite3":
		return SQLite{driver: driverName}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, driverName)
	}
}

func quoteTable(d Dialect, td TableDef) string {
	if td.Schema != "" {
		return d.Quote(td.Schema) + "." + d.Quote(td.Name)
	}
	return d.Quote(td.Name)
}

func quoteWith(q string, ident string) string {
	return q + strings.ReplaceAll(ident, q, q+q) + q
}
