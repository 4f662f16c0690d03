package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/config"
)

func TestRebind(t *testing.T) {
	sqlite := &DB{Driver: config.DriverSQLite}
	pg := &DB{Driver: config.DriverPostgres}

	q := "UPDATE t SET a = $2, b = $10 WHERE id = $1 AND note = '$'"
	assert.Equal(t, "UPDATE t SET a = ?2, b = ?10 WHERE id = ?1 AND note = '$'", sqlite.Rebind(q))
	assert.Equal(t, q, pg.Rebind(q))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
	assert.False(t, IsUniqueViolation(errors.New("disk full")))
}

func TestOpenSQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "gemtune.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.HealthCheck(context.Background()))

	// migrations are idempotent
	require.NoError(t, db.Migrate(context.Background()))

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'vehicle_profiles', 'optimization_runs')`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
