// Package dbtest opens a migrated, empty PostgreSQL database for store tests.
// Tests using it are skipped unless SCHEMATA_TEST_DSN holds a postgres:// URL.
package dbtest

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"

	"github.com/JaimeStill/schemata/internal/migrations"
	"github.com/JaimeStill/schemata/pkg/database"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// EnvDSN names the variable holding the test database URL.
const EnvDSN = "SCHEMATA_TEST_DSN"

// Open migrates the database named by EnvDSN to the latest version, empties
// every table, and returns a connection closed at test cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvDSN)
	}

	m, err := database.NewMigrator(migrations.FS, dsn)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
	m.Close()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(context.Background(),
		"TRUNCATE results, scheme_field_keys, scheme_fields, schemes, documents")
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return db
}
