package paraffin

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres is the dialect for PostgreSQL through either pgx/stdlib ("pgx")
// or lib/pq ("postgres").
type Postgres struct {
	driver string
}

func (p Postgres) DriverName() string {
	if p.driver == "" {
		return "pgx"
	}
	return p.driver
}

func (Postgres) Quote(ident string) string {
	return quoteWith(`"`, ident)
}

// CurrentDatabase returns the current schema, which is what
// information_schema.columns.table_schema is matched against.
func (Postgres) CurrentDatabase(ctx context.Context, q sqlx.QueryerContext) (string, error) {
	var name string
	if err := sqlx.GetContext(ctx, q, &name, "SELECT current_schema()"); err != nil {
		return "", err
	}

	return name, nil
}

func (Postgres) ColumnsQuery(schema, table string) (string, []any) {
	qry := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = ?
		ORDER BY ordinal_position`
	return qry, []any{table, schema}
}

func (Postgres) GenerateExpr() string {
	return "NOW()"
}

func (Postgres) TruncateStatement(table string) string {
	return "TRUNCATE TABLE " + table
}

// pgx/stdlib does not implement LastInsertId.
func (p Postgres) ReturningClause(keyField string) string {
	return " RETURNING " + p.Quote(keyField)
}

func (Postgres) IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23"
	}

	return false
}
