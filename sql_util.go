package paraffin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// parseFilterMapIntoWhereClause joins one equality test per key with AND.
// Keys are sorted so the statement text is stable. A nil value matches
// NULL.
func parseFilterMapIntoWhereClause(d Dialect, filterMap map[string]any) (string, []any, error) {
	keys := make([]string, 0, len(filterMap))
	for k := range filterMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var where []string
	var args []any
	for _, k := range keys {
		val, err := ValueOf(filterMap[k])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", k, err)
		}

		if val.IsNull() {
			where = append(where, fmt.Sprintf("%s IS NULL", d.Quote(k)))
			continue
		}

		where = append(where, fmt.Sprintf("%s = ?", d.Quote(k)))
		args = append(args, val)
	}

	return strings.Join(where, " AND "), args, nil
}

// parameterizedInClause expands "key IN (?)" over ids with sqlx.In.
func parameterizedInClause(d Dialect, table, keyField string, ids []int64) (string, []any, error) {
	qry := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (?)", table, d.Quote(keyField))
	return sqlx.In(qry, ids)
}

func deleteInClause(d Dialect, table, keyField string, ids []any) (string, []any, error) {
	qry := fmt.Sprintf("DELETE FROM %s WHERE %s IN (?)", table, d.Quote(keyField))
	return sqlx.In(qry, ids)
}
