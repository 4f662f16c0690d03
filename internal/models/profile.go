package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
)

// Profile is a saved vehicle configuration with an optional controller
// baseline read from the vehicle.
type Profile struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"userId"`
	Name      string            `json:"name"`
	Input     OptimizationInput `json:"input"`
	Baseline  catalog.Settings  `json:"baseline,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// CreateProfileRequest is the body for saving a new profile
type CreateProfileRequest struct {
	Name     string            `json:"name" binding:"required,max=100"`
	Input    OptimizationInput `json:"input"`
	Baseline catalog.Settings  `json:"baseline,omitempty"`
}

// UpdateProfileRequest patches a profile. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name     *string            `json:"name,omitempty" binding:"omitempty,max=100"`
	Input    *OptimizationInput `json:"input,omitempty"`
	Baseline catalog.Settings   `json:"baseline,omitempty"`
}

// Apply copies the set fields of req onto p
func (req *UpdateProfileRequest) Apply(p *Profile) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Input != nil {
		p.Input = *req.Input
	}
	if req.Baseline != nil {
		p.Baseline = req.Baseline.Clone()
	}
}
