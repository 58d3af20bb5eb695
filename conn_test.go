package paraffin

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOpenNotConfigured(t *testing.T) {
	for _, cfg := range []Config{{}, {Driver: "sqlite"}, {DSN: ":memory:"}} {
		if _, err := Open(cfg); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Open(%+v): expected ErrNotConfigured, got %v", cfg, err)
		}
	}

	if _, err := NewSession(nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NewSession(nil): expected ErrNotConfigured, got %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle", DSN: "oracle://localhost"}); !errors.Is(err, ErrUnknownDialect) {
		t.Errorf("expected ErrUnknownDialect, got %v", err)
	}
}

func TestOpenSQLite(t *testing.T) {
	s, err := Open(Config{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if s.Dialect().DriverName() != "sqlite" {
		t.Errorf("expected sqlite dialect, got %s", s.Dialect().DriverName())
	}

	if n := s.DB().Stats().MaxOpenConnections; n != 1 {
		t.Errorf("expected a single connection, got %d", n)
	}

	if err := s.DB().PingContext(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvDriver, "mysql")
	t.Setenv(EnvDSN, "user:pw@tcp(localhost:3306)/app")

	cfg := ConfigFromEnv()
	if cfg.Driver != "mysql" || cfg.DSN != "user:pw@tcp(localhost:3306)/app" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConnectionDSN(t *testing.T) {
	my := MySQLConfig{Host: "localhost", Port: "3306", Database: "app", User: "user", Password: "pw"}.DSN()
	for _, part := range []string{"user:pw@tcp(localhost:3306)/app", "parseTime=true"} {
		if !strings.Contains(my, part) {
			t.Errorf("mysql DSN %q does not contain %q", my, part)
		}
	}

	pg := PGConfig{Host: "localhost", Port: "5432", Database: "app", User: "user", Password: "pw"}.DSN()
	if pg != "postgres://user:pw@localhost:5432/app?sslmode=disable" {
		t.Errorf("unexpected postgres DSN %q", pg)
	}
}

func TestNewSessionWithDialect(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("ConnectSQLite() failed: %v", err)
	}
	defer db.Close()

	s, err := NewSession(db, WithDialect(MySQL{}))
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}

	if _, ok := s.Dialect().(MySQL); !ok {
		t.Errorf("expected the MySQL dialect, got %T", s.Dialect())
	}
}
