package paraffin

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite is the dialect for modernc.org/sqlite. It has no TRUNCATE, so
// tables are emptied with DELETE.
type SQLite struct {
	driver string
}

func (s SQLite) DriverName() string {
	if s.driver == "" {
		return "sqlite"
	}
	return s.driver
}

func (SQLite) Quote(ident string) string {
	return quoteWith(`"`, ident)
}

func (SQLite) CurrentDatabase(context.Context, sqlx.QueryerContext) (string, error) {
	return "main", nil
}

func (SQLite) ColumnsQuery(schema, table string) (string, []any) {
	return "SELECT name FROM pragma_table_info(?, ?) ORDER BY cid", []any{table, schema}
}

func (SQLite) GenerateExpr() string {
	return "CURRENT_TIMESTAMP"
}

func (SQLite) TruncateStatement(table string) string {
	return "DELETE FROM " + table
}

func (SQLite) ReturningClause(string) string {
	return ""
}

func (SQLite) IsConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}

	// extended result codes keep the primary code in the low byte
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
