package paraffin

import (
	"fmt"
	"strings"
)

type statement struct {
	query string
	args  []any
}

// orderedKeys returns the keys of values in table column order.
func orderedKeys(columns []string, values map[string]Value) []string {
	keys := make([]string, 0, len(values))
	for _, c := range columns {
		if _, ok := values[c]; ok {
			keys = append(keys, c)
		}
	}
	return keys
}

// buildInsert writes a placeholder for every column except the generated
// ones, which get the dialect's generation expression and no argument.
func buildInsert(d Dialect, table string, keyField string, columns []string, values map[string]Value, generate ColumnSet) statement {
	var names, placeholders []string
	var args []any
	for _, col := range orderedKeys(columns, values) {
		names = append(names, d.Quote(col))
		if generate.Has(col) {
			placeholders = append(placeholders, d.GenerateExpr())
			continue
		}

		placeholders = append(placeholders, "?")
		args = append(args, values[col])
	}

	qry := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ","), strings.Join(placeholders, ","))
	qry += d.ReturningClause(keyField)

	return statement{query: qry, args: args}
}

// buildUpdate sets each column to its value or generation expression. The
// key argument always comes last.
func buildUpdate(d Dialect, table string, keyField string, columns []string, values map[string]Value, generate ColumnSet, id Value) statement {
	var sets []string
	var args []any
	for _, col := range orderedKeys(columns, values) {
		if generate.Has(col) {
			sets = append(sets, fmt.Sprintf("%s = %s", d.Quote(col), d.GenerateExpr()))
			continue
		}

		sets = append(sets, fmt.Sprintf("%s = ?", d.Quote(col)))
		args = append(args, values[col])
	}

	qry := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table, strings.Join(sets, ","), d.Quote(keyField))
	args = append(args, id)

	return statement{query: qry, args: args}
}

func buildSelectByKey(d Dialect, table string, keyField string, id any) statement {
	return statement{
		query: fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", table, d.Quote(keyField)),
		args:  []any{id},
	}
}

func buildDeleteByKey(d Dialect, table string, keyField string, id any) statement {
	return statement{
		query: fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, d.Quote(keyField)),
		args:  []any{id},
	}
}

func buildCountByKey(d Dialect, table string, keyField string, id any) statement {
	return statement{
		query: fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", table, d.Quote(keyField)),
		args:  []any{id},
	}
}

func toValues(values map[string]any) (map[string]Value, error) {
	result := make(map[string]Value, len(values))
	for k, v := range values {
		val, err := ValueOf(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", k, err)
		}
		result[k] = val
	}
	return result, nil
}
