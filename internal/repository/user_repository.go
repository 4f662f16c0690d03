package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by their email address
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateLastLogin updates the user's last login timestamp
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository stores saved vehicle profiles. Every lookup is scoped
// to the owning user; another user's profile reads as not found.
type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Profile, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// RunRepository stores optimization run history
type RunRepository interface {
	Create(ctx context.Context, r *models.Run) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Run, error)
	// ListByUser returns the newest runs first
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Run, error)
}
