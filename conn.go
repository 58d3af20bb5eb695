package paraffin

import (
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	EnvDriver = "PARAFFIN_DRIVER"
	EnvDSN    = "PARAFFIN_DSN"
)

// Config names a connection target. MaxOpenConns defaults to 1: the
// session is meant to be used over a single connection.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// ConfigFromEnv reads PARAFFIN_DRIVER and PARAFFIN_DSN.
func ConfigFromEnv() Config {
	return Config{
		Driver: os.Getenv(EnvDriver),
		DSN:    os.Getenv(EnvDSN),
	}
}

type PGConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (config PGConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", config.User, config.Password, config.Host, config.Port, config.Database)
}

func ConnectPostgresql(config PGConfig) (*sqlx.DB, error) {
	return sqlx.Open("pgx", config.DSN())
}

type MySQLConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (config MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = config.User
	cfg.Passwd = config.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%s", config.Host, config.Port)
	cfg.DBName = config.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

func ConnectMySQL(config MySQLConfig) (*sqlx.DB, error) {
	return sqlx.Open("mysql", config.DSN())
}

// ConnectSQLite opens a SQLite database file, or ":memory:". The pool is
// capped at one connection so an in-memory database is not lost between
// statements.
func ConnectSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	return db, nil
}

// Open connects to the configured target and returns a Session over it.
func Open(config Config, options ...SessionOption) (*Session, error) {
	if config.Driver == "" || config.DSN == "" {
		return nil, ErrNotConfigured
	}

	if _, err := DialectFor(config.Driver); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	maxConns := config.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)

	return NewSession(db, options...)
}
