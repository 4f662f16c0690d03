package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/database"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// ErrRunNotFound is returned when a run does not exist for the user
var ErrRunNotFound = errors.New("run not found")

// DefaultRunLimit caps ListByUser when no positive limit is given
const DefaultRunLimit = 50

const runColumns = `id, user_id, profile_id, kind, success, input_json, result_json, created_at`

// SQLRunRepository implements RunRepository on Postgres or SQLite
type SQLRunRepository struct {
	db *database.DB
}

// NewSQLRunRepository creates a new run repository
func NewSQLRunRepository(db *database.DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

// Create records a run. Anonymous runs have a nil UserID.
func (r *SQLRunRepository) Create(ctx context.Context, run *models.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now()
	}

	query := `INSERT INTO optimization_runs (` + runColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		run.ID, nullUUID(run.UserID), nullUUID(run.ProfileID), string(run.Kind), run.Success,
		string(run.Input), string(run.Result), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's runs
func (r *SQLRunRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM optimization_runs WHERE id = $1 AND user_id = $2`

	run, err := scanRun(r.db.QueryRowContext(ctx, r.db.Rebind(query), id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListByUser returns up to limit of the user's runs, newest first
func (r *SQLRunRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	query := `SELECT ` + runColumns + ` FROM optimization_runs WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row rowScanner) (*models.Run, error) {
	run := &models.Run{}
	var userID, profileID uuid.NullUUID
	var kind, input, result string

	if err := row.Scan(&run.ID, &userID, &profileID, &kind, &run.Success, &input, &result, &run.CreatedAt); err != nil {
		return nil, err
	}
	run.Kind = models.RunKind(kind)
	run.Input = []byte(input)
	run.Result = []byte(result)
	if userID.Valid {
		run.UserID = &userID.UUID
	}
	if profileID.Valid {
		run.ProfileID = &profileID.UUID
	}
	return run, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
