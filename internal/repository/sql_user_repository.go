package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/database"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a user with the same email already exists
	ErrUserExists = errors.New("user with this email already exists")
)

// SQLUserRepository implements UserRepository on Postgres or SQLite
type SQLUserRepository struct {
	db *database.DB
}

// NewSQLUserRepository creates a new user repository
func NewSQLUserRepository(db *database.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// now is truncated to microseconds so values survive a Postgres round trip
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Create creates a new user
func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, created_at, updated_at, last_login_at, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	ts := now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = ts
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = ts
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		user.ID, user.Email, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt, user.LastLoginAt, user.IsActive,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *SQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := r.getOne(ctx, "id = $1", id)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, err
}

// GetByEmail retrieves a user by their email address
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.getOne(ctx, "email = $1", email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, err
}

func (r *SQLUserRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at, last_login_at, is_active
		FROM users
		WHERE ` + where

	user := &models.User{}
	var lastLoginAt sql.NullTime

	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt, &lastLoginAt, &user.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	return user, nil
}

// UpdateLastLogin updates the user's last login timestamp
func (r *SQLUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET last_login_at = $2, updated_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), id, now())
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
