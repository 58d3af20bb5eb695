package paraffin

// FilterColumns keeps the entries of values whose key is one of columns.
// It fails with ErrNoValidColumns when nothing survives, so no statement is
// ever built from an empty column list.
func FilterColumns(values map[string]any, columns []string) (map[string]any, error) {
	known := newColumnSet(columns...)

	result := make(map[string]any, len(values))
	for k, v := range values {
		if known.Has(k) {
			result[k] = v
		}
	}

	if len(result) == 0 {
		return nil, ErrNoValidColumns
	}

	return result, nil
}

// ColumnSet is a set of column names.
type ColumnSet map[string]struct{}

func newColumnSet(cols ...string) ColumnSet {
	cs := make(ColumnSet, len(cols))
	for _, c := range cols {
		cs[c] = struct{}{}
	}
	return cs
}

func (cs ColumnSet) Has(col string) bool {
	_, ok := cs[col]
	return ok
}

func (cs ColumnSet) Add(cols ...string) {
	for _, c := range cols {
		cs[c] = struct{}{}
	}
}

func (cs ColumnSet) Remove(cols ...string) {
	for _, c := range cols {
		delete(cs, c)
	}
}
