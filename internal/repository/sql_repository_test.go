package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/config"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/database"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// setupPostgresDB starts a Postgres test container and returns a migrated connection
func setupPostgresDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_gemtune"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute)),
	)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	db := &database.DB{DB: sqlDB, Driver: config.DriverPostgres}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

// setupSQLiteDB opens a migrated SQLite file in a temp dir
func setupSQLiteDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	return db, func() { db.Close() }
}

// forEachDriver runs fn against SQLite, and against Postgres unless -short is set
func forEachDriver(t *testing.T, fn func(t *testing.T, db *database.DB)) {
	t.Run("sqlite", func(t *testing.T) {
		db, cleanup := setupSQLiteDB(t)
		defer cleanup()
		fn(t, db)
	})
	t.Run("postgres", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping integration test in short mode")
		}
		db, cleanup := setupPostgresDB(t)
		defer cleanup()
		fn(t, db)
	})
}

// createTestUser inserts a user and returns it
func createTestUser(t *testing.T, db *database.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "hashed_password", IsActive: true}
	if err := NewSQLUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}
