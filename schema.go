package paraffin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/jmoiron/sqlx"
)

// Catalog lists the columns of a table in ordinal order. An unknown table
// yields an empty list, not an error.
type Catalog interface {
	Columns(ctx context.Context, schema, table string) ([]string, error)
}

type sqlCatalog struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewSQLCatalog returns a Catalog that queries the information schema of db
// through the given dialect. When no schema is requested the connection's
// current database is used.
func NewSQLCatalog(db *sqlx.DB, dialect Dialect) Catalog {
	return &sqlCatalog{db: db, dialect: dialect}
}

func (c *sqlCatalog) Columns(ctx context.Context, schema, table string) ([]string, error) {
	if schema == "" {
		db, err := c.dialect.CurrentDatabase(ctx, c.db)
		if err != nil {
			return nil, fmt.Errorf("failed to get current database. %w", err)
		}
		schema = db
	}

	qry, args := c.dialect.ColumnsQuery(schema, table)
	qry = c.db.Rebind(qry)

	var cols []string
	if err := c.db.SelectContext(ctx, &cols, qry, args...); err != nil {
		return nil, err
	}

	return cols, nil
}

// SchemaCache memoizes column lists per table until Reset is called.
// Two callers missing at once may both hit the catalog; the last result
// stored wins.
type SchemaCache struct {
	catalog Catalog
	logger  *slog.Logger
	mu      sync.Mutex
	entries *lru.Cache
}

// NewSchemaCache returns an unbounded cache over catalog.
func NewSchemaCache(catalog Catalog) *SchemaCache {
	return NewSchemaCacheSize(catalog, 0)
}

// NewSchemaCacheSize returns a cache holding at most maxTables column
// lists, evicting the least recently used. Zero means no limit.
func NewSchemaCacheSize(catalog Catalog, maxTables int) *SchemaCache {
	return &SchemaCache{
		catalog: catalog,
		entries: lru.New(maxTables),
	}
}

func (sc *SchemaCache) Columns(ctx context.Context, td TableDef) ([]string, error) {
	key := td.FullTableName()

	// lru.Get reorders entries, so reads take the write lock too.
	sc.mu.Lock()
	cached, ok := sc.entries.Get(key)
	sc.mu.Unlock()
	if ok {
		return append([]string{}, cached.([]string)...), nil
	}

	if sc.logger != nil {
		sc.logger.DebugContext(ctx, "fetching columns", "table", key)
	}

	cols, err := sc.catalog.Columns(ctx, td.Schema, td.Name)
	if err != nil {
		return nil, &CatalogError{Table: key, Err: err}
	}

	if cols == nil {
		cols = []string{}
	}

	sc.mu.Lock()
	sc.entries.Add(key, cols)
	sc.mu.Unlock()

	return append([]string{}, cols...), nil
}

// Reset drops every cached entry so the next lookup re-reads the catalog.
func (sc *SchemaCache) Reset() {
	sc.mu.Lock()
	sc.entries.Clear()
	sc.mu.Unlock()
}
