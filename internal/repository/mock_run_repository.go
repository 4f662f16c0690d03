package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// MockRunRepository is a mock implementation of RunRepository for testing
type MockRunRepository struct {
	CreateFunc     func(ctx context.Context, r *models.Run) error
	GetByIDFunc    func(ctx context.Context, userID, id uuid.UUID) (*models.Run, error)
	ListByUserFunc func(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Run, error)
}

// NewMockRunRepository creates a new mock run repository
func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{
		CreateFunc: func(_ context.Context, r *models.Run) error {
			if r.ID == uuid.Nil {
				r.ID = uuid.New()
			}
			return nil
		},
		GetByIDFunc: func(_ context.Context, _, _ uuid.UUID) (*models.Run, error) {
			return nil, ErrRunNotFound
		},
		ListByUserFunc: func(_ context.Context, _ uuid.UUID, _ int) ([]*models.Run, error) {
			return []*models.Run{}, nil
		},
	}
}

// Create implements RunRepository.Create
func (m *MockRunRepository) Create(ctx context.Context, r *models.Run) error {
	return m.CreateFunc(ctx, r)
}

// GetByID implements RunRepository.GetByID
func (m *MockRunRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Run, error) {
	return m.GetByIDFunc(ctx, userID, id)
}

// ListByUser implements RunRepository.ListByUser
func (m *MockRunRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Run, error) {
	return m.ListByUserFunc(ctx, userID, limit)
}
