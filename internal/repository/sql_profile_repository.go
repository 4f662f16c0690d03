package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/database"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

var (
	// ErrProfileNotFound is returned when a profile does not exist for the user
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned when the user already has a profile with that name
	ErrProfileExists = errors.New("profile with this name already exists")
)

const profileColumns = `id, user_id, name, input_json, baseline_json, created_at, updated_at`

// SQLProfileRepository implements ProfileRepository on Postgres or SQLite
type SQLProfileRepository struct {
	db *database.DB
}

// NewSQLProfileRepository creates a new profile repository
func NewSQLProfileRepository(db *database.DB) *SQLProfileRepository {
	return &SQLProfileRepository{db: db}
}

// Create saves a new profile
func (r *SQLProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts

	input, baseline, err := encodeProfile(p)
	if err != nil {
		return err
	}

	query := `INSERT INTO vehicle_profiles (` + profileColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query),
		p.ID, p.UserID, p.Name, input, baseline, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrProfileExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's profiles
func (r *SQLProfileRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM vehicle_profiles WHERE id = $1 AND user_id = $2`

	p, err := scanProfile(r.db.QueryRowContext(ctx, r.db.Rebind(query), id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// ListByUser returns the user's profiles ordered by name
func (r *SQLProfileRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM vehicle_profiles WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

// Update replaces the name, input and baseline of a profile
func (r *SQLProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = now()

	input, baseline, err := encodeProfile(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE vehicle_profiles
		SET name = $3, input_json = $4, baseline_json = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		p.ID, p.UserID, p.Name, input, baseline, p.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrProfileExists
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return expectRow(result, ErrProfileNotFound)
}

// Delete removes one of the user's profiles
func (r *SQLProfileRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM vehicle_profiles WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return expectRow(result, ErrProfileNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{}
	var input string
	var baseline sql.NullString

	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &input, &baseline, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(input), &p.Input); err != nil {
		return nil, fmt.Errorf("decode profile input: %w", err)
	}
	if baseline.Valid && baseline.String != "" {
		if err := json.Unmarshal([]byte(baseline.String), &p.Baseline); err != nil {
			return nil, fmt.Errorf("decode profile baseline: %w", err)
		}
	}
	return p, nil
}

func encodeProfile(p *models.Profile) (string, sql.NullString, error) {
	input, err := json.Marshal(p.Input)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("encode profile input: %w", err)
	}
	var baseline sql.NullString
	if len(p.Baseline) > 0 {
		b, err := json.Marshal(p.Baseline)
		if err != nil {
			return "", sql.NullString{}, fmt.Errorf("encode profile baseline: %w", err)
		}
		baseline = sql.NullString{String: string(b), Valid: true}
	}
	return string(input), baseline, nil
}

func expectRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
