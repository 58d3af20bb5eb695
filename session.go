package paraffin

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Session holds a connection, its dialect and the schema cache shared by
// the repositories it creates. Calls are synchronous and a Session must not
// be used from several goroutines at once without external locking.
type Session struct {
	db      *sqlx.DB
	dialect Dialect
	cache   *SchemaCache
	logger  *slog.Logger
}

func NewSession(db *sqlx.DB, options ...SessionOption) (*Session, error) {
	if db == nil {
		return nil, ErrNotConfigured
	}

	opt := &sessionOption{}
	for _, op := range options {
		op(opt)
	}

	if opt.dialect == nil {
		d, err := DialectFor(db.DriverName())
		if err != nil {
			return nil, err
		}
		opt.dialect = d
	}

	if opt.catalog == nil {
		opt.catalog = NewSQLCatalog(db, opt.dialect)
	}

	if opt.logger == nil {
		opt.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cache := NewSchemaCacheSize(opt.catalog, opt.cacheSize)
	cache.logger = opt.logger

	return &Session{
		db:      db,
		dialect: opt.dialect,
		cache:   cache,
		logger:  opt.logger,
	}, nil
}

func (s *Session) DB() *sqlx.DB {
	return s.db
}

func (s *Session) Dialect() Dialect {
	return s.dialect
}

// ResetCache forgets every cached column list.
func (s *Session) ResetCache() {
	s.cache.Reset()
	s.logger.Debug("schema cache reset")
}

func (s *Session) Close() error {
	return s.db.Close()
}

// Table returns the repository for td.
func (s *Session) Table(td TableDef) *Repository {
	td.KeyField = td.keyField()

	return &Repository{
		session:  s,
		tableDef: td,
	}
}

// For returns the repository for the table an entity type describes.
func (s *Session) For(model Model) *Repository {
	return s.Table(model.GetTableDef())
}

func (s *Session) exec(ctx context.Context, stmt statement) (int64, error) {
	res, err := s.execResult(ctx, stmt)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.wrapError(stmt.query, err)
	}

	return n, nil
}

func (s *Session) execResult(ctx context.Context, stmt statement) (sql.Result, error) {
	qry := s.db.Rebind(stmt.query)
	s.logger.DebugContext(ctx, "exec", "query", qry, "args", len(stmt.args))

	res, err := s.db.ExecContext(ctx, qry, stmt.args...)
	if err != nil {
		return nil, s.wrapError(qry, err)
	}

	return res, nil
}

func (s *Session) queryRow(ctx context.Context, dest any, stmt statement) error {
	qry := s.db.Rebind(stmt.query)
	s.logger.DebugContext(ctx, "query row", "query", qry, "args", len(stmt.args))

	if err := s.db.QueryRowxContext(ctx, qry, stmt.args...).Scan(dest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return s.wrapError(qry, err)
	}

	return nil
}

func (s *Session) query(ctx context.Context, stmt statement) ([]map[string]any, []string, error) {
	qry := s.db.Rebind(stmt.query)
	s.logger.DebugContext(ctx, "query", "query", qry, "args", len(stmt.args))

	rows, err := s.db.QueryxContext(ctx, qry, stmt.args...)
	if err != nil {
		return nil, nil, s.wrapError(qry, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, s.wrapError(qry, err)
	}

	var result []map[string]any
	for rows.Next() {
		row := make(map[string]any, len(cols))
		if err := rows.MapScan(row); err != nil {
			return nil, nil, s.wrapError(qry, err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, s.wrapError(qry, err)
	}

	return result, cols, nil
}

func (s *Session) wrapError(qry string, err error) error {
	return &StatementError{
		Query:      qry,
		Err:        err,
		Constraint: s.dialect.IsConstraintViolation(err),
	}
}
