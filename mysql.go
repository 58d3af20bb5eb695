package paraffin

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// MySQL is the dialect for github.com/go-sql-driver/mysql.
type MySQL struct{}

// server error numbers reported with SQLSTATE 23000 or raised by
// foreign key and unique checks
var mysqlIntegrityErrors = map[uint16]bool{
	1022: true, // ER_DUP_KEY
	1048: true, // ER_BAD_NULL_ERROR
	1062: true, // ER_DUP_ENTRY
	1169: true, // ER_DUP_UNIQUE
	1216: true, // ER_NO_REFERENCED_ROW
	1217: true, // ER_ROW_IS_REFERENCED
	1451: true, // ER_ROW_IS_REFERENCED_2
	1452: true, // ER_NO_REFERENCED_ROW_2
	1557: true, // ER_FOREIGN_DUPLICATE_KEY
	1586: true, // ER_DUP_ENTRY_WITH_KEY_NAME
	1761: true, // ER_FOREIGN_DUPLICATE_KEY_WITH_CHILD_INFO
	1762: true, // ER_FOREIGN_DUPLICATE_KEY_WITHOUT_CHILD_INFO
}

func (MySQL) DriverName() string {
	return "mysql"
}

func (MySQL) Quote(ident string) string {
	return quoteWith("`", ident)
}

func (MySQL) CurrentDatabase(ctx context.Context, q sqlx.QueryerContext) (string, error) {
	var name null.String
	if err := sqlx.GetContext(ctx, q, &name, "SELECT DATABASE()"); err != nil {
		return "", err
	}

	if !name.Valid {
		return "", fmt.Errorf("%w: no database selected", ErrNotConfigured)
	}

	return name.String, nil
}

func (MySQL) ColumnsQuery(schema, table string) (string, []any) {
	qry := `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = ?
		AND TABLE_SCHEMA = ?
		ORDER BY ORDINAL_POSITION`
	return qry, []any{table, schema}
}

func (MySQL) GenerateExpr() string {
	return "NOW()"
}

func (MySQL) TruncateStatement(table string) string {
	return "TRUNCATE TABLE " + table
}

func (MySQL) ReturningClause(string) string {
	return ""
}

func (MySQL) IsConstraintViolation(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}

	return string(me.SQLState[:]) == "23000" || mysqlIntegrityErrors[me.Number]
}
