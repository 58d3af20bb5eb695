package paraffin

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/guregu/null.v4"
)

// Record is one row of a repository's table. It is Transient until its key
// column holds a non-null value and Persisted afterwards; the state is read
// from the key, there is no separate flag.
type Record struct {
	repo     *Repository
	columns  []string
	fields   map[string]Value
	generate ColumnSet
}

func newRecord(repo *Repository) *Record {
	return &Record{
		repo:     repo,
		fields:   make(map[string]Value),
		generate: make(ColumnSet),
	}
}

func (r *Record) Repository() *Repository {
	return r.repo
}

// Columns lists the fields held by the record in the order they were set
// or fetched.
func (r *Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

func (r *Record) Has(col string) bool {
	_, ok := r.fields[col]
	return ok
}

// Get returns the value of col, null when the record does not hold it.
func (r *Record) Get(col string) Value {
	return r.fields[col]
}

func (r *Record) Set(col string, value any) error {
	v, err := ValueOf(value)
	if err != nil {
		return fmt.Errorf("column %s: %w", col, err)
	}

	r.setValue(col, v)
	return nil
}

func (r *Record) setValue(col string, v Value) {
	if _, ok := r.fields[col]; !ok {
		r.columns = append(r.columns, col)
	}
	r.fields[col] = v
}

func (r *Record) ID() Value {
	return r.fields[r.repo.tableDef.KeyField]
}

func (r *Record) IsPersisted() bool {
	return !r.ID().IsNull()
}

// Map returns a copy of the fields as plain Go values.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		m[k] = v.Interface()
	}
	return m
}

func (r *Record) String(col string) null.String {
	s, ok := r.fields[col].Str()
	return null.NewString(s, ok)
}

func (r *Record) Int(col string) null.Int {
	i, ok := r.fields[col].Int64()
	return null.NewInt(i, ok)
}

func (r *Record) Float(col string) null.Float {
	f, ok := r.fields[col].Float64()
	return null.NewFloat(f, ok)
}

func (r *Record) Bool(col string) null.Bool {
	b, ok := r.fields[col].Bool()
	return null.NewBool(b, ok)
}

func (r *Record) Time(col string) null.Time {
	t, ok := r.fields[col].Time()
	return null.NewTime(t, ok)
}

// GenerateAtWrite makes col take the database's generation expression
// (current timestamp) on every following write of this record, until
// cleared. It reports false when col is not a column of the table.
func (r *Record) GenerateAtWrite(ctx context.Context, col string) (bool, error) {
	cols, err := r.repo.Columns(ctx)
	if err != nil {
		return false, err
	}

	known := newColumnSet(cols...)
	if !known.Has(col) {
		return false, nil
	}

	r.generate.Add(col)
	return true, nil
}

// ClearGenerated removes cols from the generate-at-write set, or empties
// it when called without arguments.
func (r *Record) ClearGenerated(cols ...string) {
	if len(cols) == 0 {
		r.generate = make(ColumnSet)
		return
	}
	r.generate.Remove(cols...)
}

// Update writes values to the database. A transient record is inserted and
// refreshed from the stored row, which makes it persisted; the result is
// true in that case. A persisted record is updated by key: on success the
// values are copied into the record and the result is true, when no row
// matched the result is false and the record is left as it was.
func (r *Record) Update(ctx context.Context, values map[string]any) (bool, error) {
	filtered, err := r.repo.Filter(ctx, values)
	if err != nil {
		return false, err
	}

	if !r.IsPersisted() {
		row, err := r.repo.insert(ctx, r.repo.tableDef, filtered, r.generate)
		if err != nil {
			return false, err
		}

		for _, col := range row.columns {
			r.setValue(col, row.fields[col])
		}
		return true, nil
	}

	return r.updatePersisted(ctx, filtered)
}

func (r *Record) updatePersisted(ctx context.Context, filtered map[string]any) (bool, error) {
	repo := r.repo
	keyField := repo.tableDef.KeyField
	id := r.ID()

	vals, err := toValues(filtered)
	if err != nil {
		return false, err
	}

	// rewriting the key with its own value is a no-op
	if v, ok := vals[keyField]; ok && v.Equal(id) {
		delete(vals, keyField)
	}

	if len(vals) == 0 {
		return false, ErrNoValidColumns
	}

	cols, err := repo.Columns(ctx)
	if err != nil {
		return false, err
	}

	table := quoteTable(repo.session.dialect, repo.tableDef)
	stmt := buildUpdate(repo.session.dialect, table, keyField, cols, vals, r.generate, id)
	n, err := repo.session.exec(ctx, stmt)
	if err != nil {
		return false, err
	}

	if n == 0 {
		return false, nil
	}

	var generated []string
	for _, col := range orderedKeys(cols, vals) {
		if r.generate.Has(col) {
			generated = append(generated, col)
			continue
		}
		r.setValue(col, vals[col])
	}

	if len(generated) > 0 {
		if err := r.reload(ctx, generated); err != nil {
			return true, err
		}
	}

	return true, nil
}

// reload refreshes cols from the stored row.
func (r *Record) reload(ctx context.Context, cols []string) error {
	row, err := r.repo.Get(ctx, r.ID())
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", strings.Join(cols, ","), err)
	}

	for _, col := range cols {
		r.setValue(col, row.fields[col])
	}
	return nil
}

// Save writes every table column the record holds through Update. This is
// how fields changed with Set reach the database.
func (r *Record) Save(ctx context.Context) (bool, error) {
	cols, err := r.repo.Columns(ctx)
	if err != nil {
		return false, err
	}

	values := make(map[string]any)
	for _, col := range Filter(cols, r.Has) {
		values[col] = r.fields[col]
	}

	return r.Update(ctx, values)
}

// Delete removes the stored row by key. The record itself is unchanged.
func (r *Record) Delete(ctx context.Context) (bool, error) {
	repo := r.repo
	table := quoteTable(repo.session.dialect, repo.tableDef)
	n, err := repo.session.exec(ctx, buildDeleteByKey(repo.session.dialect, table, repo.tableDef.KeyField, r.ID()))
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
