package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunKind distinguishes base optimizations from trip optimizations
type RunKind string

// Run kinds
const (
	RunOptimize RunKind = "optimize"
	RunTrip     RunKind = "trip"
)

// Run records one optimization call. Input and Result hold the request
// and response documents as JSON so both kinds share a table.
type Run struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"userId,omitempty"`
	ProfileID *uuid.UUID      `json:"profileId,omitempty"`
	Kind      RunKind         `json:"kind"`
	Success   bool            `json:"success"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RunSummary is the list view of a run
type RunSummary struct {
	ID        uuid.UUID  `json:"id"`
	ProfileID *uuid.UUID `json:"profileId,omitempty"`
	Kind      RunKind    `json:"kind"`
	Success   bool       `json:"success"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Summary drops the documents from a run
func (r *Run) Summary() RunSummary {
	return RunSummary{ID: r.ID, ProfileID: r.ProfileID, Kind: r.Kind, Success: r.Success, CreatedAt: r.CreatedAt}
}
