package paraffin

import "log/slog"

type SessionOption func(o *sessionOption)

type sessionOption struct {
	dialect   Dialect
	catalog   Catalog
	logger    *slog.Logger
	cacheSize int
}

// WithDialect overrides the dialect derived from the driver name.
func WithDialect(d Dialect) SessionOption {
	return func(o *sessionOption) {
		o.dialect = d
	}
}

// WithCatalog replaces the information schema lookup used to fill the
// schema cache.
func WithCatalog(c Catalog) SessionOption {
	return func(o *sessionOption) {
		o.catalog = c
	}
}

// WithSchemaCacheSize bounds the number of tables whose columns are kept.
func WithSchemaCacheSize(n int) SessionOption {
	return func(o *sessionOption) {
		o.cacheSize = n
	}
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(o *sessionOption) {
		o.logger = l
	}
}

type CreateOption func(o *createOption)

type createOption struct {
	noSave   bool
	generate []string
	table    string
}

// WithGenerateAtWrite marks columns whose value is produced by the database
// when the row is written. Missing columns are added to the values as nulls.
func WithGenerateAtWrite(cols ...string) CreateOption {
	return func(o *createOption) {
		o.generate = append(o.generate, cols...)
	}
}

// WithoutSave makes Create return an unsaved record instead of inserting.
func WithoutSave() CreateOption {
	return func(o *createOption) {
		o.noSave = true
	}
}

// WithTable inserts into, and reads back from, another table than the
// repository's. Values are still filtered against the repository's columns.
func WithTable(name string) CreateOption {
	return func(o *createOption) {
		o.table = name
	}
}
