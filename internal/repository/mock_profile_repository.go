package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// MockProfileRepository is a mock implementation of ProfileRepository for testing
type MockProfileRepository struct {
	CreateFunc     func(ctx context.Context, p *models.Profile) error
	GetByIDFunc    func(ctx context.Context, userID, id uuid.UUID) (*models.Profile, error)
	ListByUserFunc func(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error)
	UpdateFunc     func(ctx context.Context, p *models.Profile) error
	DeleteFunc     func(ctx context.Context, userID, id uuid.UUID) error
}

// NewMockProfileRepository creates a new mock profile repository
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		CreateFunc: func(_ context.Context, p *models.Profile) error {
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			return nil
		},
		GetByIDFunc: func(_ context.Context, _, _ uuid.UUID) (*models.Profile, error) {
			return nil, ErrProfileNotFound
		},
		ListByUserFunc: func(_ context.Context, _ uuid.UUID) ([]*models.Profile, error) {
			return []*models.Profile{}, nil
		},
		UpdateFunc: func(_ context.Context, _ *models.Profile) error {
			return nil
		},
		DeleteFunc: func(_ context.Context, _, _ uuid.UUID) error {
			return nil
		},
	}
}

// Create implements ProfileRepository.Create
func (m *MockProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	return m.CreateFunc(ctx, p)
}

// GetByID implements ProfileRepository.GetByID
func (m *MockProfileRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Profile, error) {
	return m.GetByIDFunc(ctx, userID, id)
}

// ListByUser implements ProfileRepository.ListByUser
func (m *MockProfileRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	return m.ListByUserFunc(ctx, userID)
}

// Update implements ProfileRepository.Update
func (m *MockProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	return m.UpdateFunc(ctx, p)
}

// Delete implements ProfileRepository.Delete
func (m *MockProfileRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.DeleteFunc(ctx, userID, id)
}
