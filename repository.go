package paraffin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository is the generic CRUD surface of one table. It is obtained from
// Session.Table or Session.For and shares the session's schema cache.
type Repository struct {
	session  *Session
	tableDef TableDef
}

func (r *Repository) GetTableDef() TableDef {
	return r.tableDef
}

// Columns returns the table's column names in ordinal order, reading the
// catalog on first use.
func (r *Repository) Columns(ctx context.Context) ([]string, error) {
	return r.session.cache.Columns(ctx, r.tableDef)
}

// Filter drops every key of values that is not a column of the table.
func (r *Repository) Filter(ctx context.Context, values map[string]any) (map[string]any, error) {
	cols, err := r.Columns(ctx)
	if err != nil {
		return nil, err
	}

	filtered, err := FilterColumns(values, cols)
	if err != nil {
		return nil, fmt.Errorf("%w for %s", err, r.tableDef.FullTableName())
	}

	return filtered, nil
}

// New returns an empty transient record.
func (r *Repository) New() *Record {
	return newRecord(r)
}

func (r *Repository) table() string {
	return quoteTable(r.session.dialect, r.tableDef)
}

func (r *Repository) Exists(ctx context.Context, id any) (bool, error) {
	var n int64
	stmt := buildCountByKey(r.session.dialect, r.table(), r.tableDef.KeyField, id)
	if err := r.session.queryRow(ctx, &n, stmt); err != nil {
		return false, err
	}

	return n > 0, nil
}

// Get returns the row with the given key or ErrKeyNotFound.
func (r *Repository) Get(ctx context.Context, id any) (*Record, error) {
	return r.fetch(ctx, r.tableDef, id)
}

func (r *Repository) fetch(ctx context.Context, td TableDef, id any) (*Record, error) {
	d := r.session.dialect
	records, err := r.queryRecords(ctx, buildSelectByKey(d, quoteTable(d, td), td.KeyField, id))
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s %v", ErrKeyNotFound, td.FullTableName(), id)
	}

	return records[0], nil
}

// GetMany returns the rows whose key is one of ids. Keys are coerced to
// integers, so tables with non-numeric keys cannot use it.
func (r *Repository) GetMany(ctx context.Context, ids ...any) ([]*Record, error) {
	keys := make([]int64, 0, len(ids))
	for _, id := range ids {
		k, err := toInt64(id)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}

	result := []*Record{}
	for _, batch := range SplitBatch(keys, 125) {
		qry, args, err := parameterizedInClause(r.session.dialect, r.table(), r.tableDef.KeyField, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to expand select query. %w", err)
		}

		records, err := r.queryRecords(ctx, statement{query: qry, args: args})
		if err != nil {
			return nil, err
		}
		result = append(result, records...)
	}

	return result, nil
}

// Where returns the rows matching every key/value pair of filter. Keys are
// used as column names without checking them against the catalog.
func (r *Repository) Where(ctx context.Context, filter map[string]any) ([]*Record, error) {
	stmt, err := r.selectWhere(filter)
	if err != nil {
		return nil, err
	}

	return r.queryRecords(ctx, stmt)
}

// First is Where limited to one row; it returns ErrNoRow when nothing
// matches.
func (r *Repository) First(ctx context.Context, filter map[string]any) (*Record, error) {
	stmt, err := r.selectWhere(filter)
	if err != nil {
		return nil, err
	}
	stmt.query += " LIMIT 1"

	records, err := r.queryRecords(ctx, stmt)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrNoRow
	}

	return records[0], nil
}

func (r *Repository) selectWhere(filter map[string]any) (statement, error) {
	where, args, err := parseFilterMapIntoWhereClause(r.session.dialect, filter)
	if err != nil {
		return statement{}, err
	}

	qry := "SELECT * FROM " + r.table()
	if where != "" {
		qry += " WHERE " + where
	}

	return statement{query: qry, args: args}, nil
}

func (r *Repository) All(ctx context.Context) ([]*Record, error) {
	return r.queryRecords(ctx, statement{query: "SELECT * FROM " + r.table()})
}

// Raw runs an arbitrary query written with ? placeholders and hydrates the
// rows it returns.
func (r *Repository) Raw(ctx context.Context, query string, args ...any) ([]*Record, error) {
	return r.queryRecords(ctx, statement{query: query, args: args})
}

// Create filters values against the table's columns and inserts them,
// returning the row as stored. Columns named by WithGenerateAtWrite are
// added when missing and written with the generation expression. With
// WithoutSave nothing is written and an unsaved record is returned.
func (r *Repository) Create(ctx context.Context, values map[string]any, options ...CreateOption) (*Record, error) {
	opt := &createOption{}
	for _, op := range options {
		op(opt)
	}

	merged := make(map[string]any, len(values)+len(opt.generate))
	for k, v := range values {
		merged[k] = v
	}

	for _, col := range opt.generate {
		if _, ok := merged[col]; !ok {
			merged[col] = nil
		}
	}

	filtered, err := r.Filter(ctx, merged)
	if err != nil {
		return nil, err
	}

	generate := newColumnSet(opt.generate...)

	if opt.noSave {
		return r.detached(ctx, filtered, generate)
	}

	td := r.tableDef
	if opt.table != "" {
		td = td.withName(opt.table)
	}

	return r.insert(ctx, td, filtered, generate)
}

func (r *Repository) detached(ctx context.Context, filtered map[string]any, generate ColumnSet) (*Record, error) {
	cols, err := r.Columns(ctx)
	if err != nil {
		return nil, err
	}

	vals, err := toValues(filtered)
	if err != nil {
		return nil, err
	}

	rec := newRecord(r)
	for _, col := range orderedKeys(cols, vals) {
		rec.setValue(col, vals[col])
	}

	known := newColumnSet(cols...)
	for col := range generate {
		if known.Has(col) {
			rec.generate.Add(col)
		}
	}

	return rec, nil
}

// insert writes one row into td and reads it back by key: the key given in
// filtered if any, the generated one otherwise.
func (r *Repository) insert(ctx context.Context, td TableDef, filtered map[string]any, generate ColumnSet) (*Record, error) {
	d := r.session.dialect

	cols, err := r.Columns(ctx)
	if err != nil {
		return nil, err
	}

	vals, err := toValues(filtered)
	if err != nil {
		return nil, err
	}

	known := newColumnSet(cols...)
	for col := range generate {
		if _, ok := vals[col]; !ok && known.Has(col) {
			vals[col] = Null()
		}
	}

	// a null key is left to the database
	if v, ok := vals[td.KeyField]; ok && v.IsNull() {
		delete(vals, td.KeyField)
	}

	if len(vals) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoValidColumns, td.FullTableName())
	}

	stmt := buildInsert(d, quoteTable(d, td), td.KeyField, cols, vals, generate)

	var id any
	if d.ReturningClause(td.KeyField) != "" {
		if err := r.session.queryRow(ctx, &id, stmt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNoRow
			}
			return nil, err
		}
	} else {
		res, err := r.session.execResult(ctx, stmt)
		if err != nil {
			return nil, err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, r.session.wrapError(stmt.query, err)
		}
		if n != 1 {
			return nil, ErrNoRow
		}

		if v, ok := vals[td.KeyField]; ok {
			id = v
		} else {
			lastID, err := res.LastInsertId()
			if err != nil {
				return nil, r.session.wrapError(stmt.query, err)
			}
			id = lastID
		}
	}

	return r.fetch(ctx, td, id)
}

// Upsert creates the row, and when that fails on a constraint violation
// updates the existing row with the same key instead. The key itself is
// never rewritten. Any other failure is returned unchanged.
func (r *Repository) Upsert(ctx context.Context, values map[string]any) (*Record, error) {
	rec, err := r.Create(ctx, values)
	switch {
	case err == nil:
		return rec, nil
	case !IsConstraintViolation(err):
		return nil, err
	}

	keyField := r.tableDef.KeyField
	id, ok := values[keyField]
	if !ok || id == nil {
		return nil, err
	}

	r.session.logger.InfoContext(ctx, "upsert falling back to update", "table", r.tableDef.FullTableName(), "id", id)

	existing, gerr := r.Get(ctx, id)
	if gerr != nil {
		return nil, fmt.Errorf("upsert fallback: %w", gerr)
	}

	rest := make(map[string]any, len(values))
	for k, v := range values {
		if k != keyField {
			rest[k] = v
		}
	}

	if _, err := existing.Update(ctx, rest); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete removes the rows with the given keys and returns how many were
// deleted.
func (r *Repository) Delete(ctx context.Context, ids ...any) (int64, error) {
	var total int64
	for _, batch := range SplitBatch(ids, 125) {
		qry, args, err := deleteInClause(r.session.dialect, r.table(), r.tableDef.KeyField, batch)
		if err != nil {
			return total, fmt.Errorf("failed to expand delete query. %w", err)
		}

		n, err := r.session.exec(ctx, statement{query: qry, args: args})
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

// Truncate empties the table.
func (r *Repository) Truncate(ctx context.Context) error {
	_, err := r.session.exec(ctx, statement{query: r.session.dialect.TruncateStatement(r.table())})
	return err
}

func (r *Repository) queryRecords(ctx context.Context, stmt statement) ([]*Record, error) {
	rows, cols, err := r.session.query(ctx, stmt)
	if err != nil {
		return nil, err
	}

	return Map(rows, func(row map[string]any) *Record {
		rec := newRecord(r)
		for _, col := range cols {
			rec.setValue(col, valueFromDriver(row[col]))
		}
		return rec
	}), nil
}
