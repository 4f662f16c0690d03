package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/inputfile"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/middleware"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/repository"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/trip"
)

// RunIDHeader carries the id of the recorded run
const RunIDHeader = "X-Run-ID"

// OptimizeHandler serves the optimization and catalog endpoints
type OptimizeHandler struct {
	engine  *optimizer.Engine
	planner *trip.Planner
	runs    repository.RunRepository
}

// NewOptimizeHandler creates a new optimize handler. runs may be nil, in
// which case nothing is recorded.
func NewOptimizeHandler(engine *optimizer.Engine, planner *trip.Planner, runs repository.RunRepository) *OptimizeHandler {
	return &OptimizeHandler{engine: engine, planner: planner, runs: runs}
}

// OptimizeRequest is the body of POST /optimize. Baseline keys may be
// written as "1", "F1" or "F.1".
type OptimizeRequest struct {
	Input    models.OptimizationInput `json:"input"`
	Baseline map[string]int           `json:"baseline,omitempty"`
}

// Optimize runs the base optimizer
// POST /api/v1/optimize
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	baseline, err := inputfile.ParseBaseline(req.Baseline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_baseline",
			"message": err.Error(),
		})
		return
	}

	result := h.engine.Optimize(req.Input, baseline)
	h.record(c, models.RunOptimize, nil, req, result, result.Success)
	c.JSON(http.StatusOK, result)
}

// OptimizeTrip runs the trip planner
// POST /api/v1/optimize/trip
func (h *OptimizeHandler) OptimizeTrip(c *gin.Context) {
	var td models.TripData
	if err := c.ShouldBindJSON(&td); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	result := h.planner.OptimizeForTrip(td)
	h.record(c, models.RunTrip, nil, td, result, result.Success)
	c.JSON(http.StatusOK, result)
}

// Functions lists the controller function catalog
// GET /api/v1/functions
func (h *OptimizeHandler) Functions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"functions": catalog.Functions()})
}

// Defaults returns the factory settings vector with descriptions
// GET /api/v1/functions/defaults
func (h *OptimizeHandler) Defaults(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"settings":     optimizer.GetFactoryDefaults(),
		"descriptions": optimizer.GetFunctionDescriptions(),
	})
}

// record stores a run for signed-in callers. A storage failure is logged
// and never fails the request.
func (h *OptimizeHandler) record(c *gin.Context, kind models.RunKind, profileID *uuid.UUID, input, result any, success bool) {
	userID := middleware.OptionalUserID(c)
	if h.runs == nil || userID == nil {
		return
	}
	run, err := newRun(kind, userID, profileID, input, result, success)
	if err == nil {
		err = h.runs.Create(c.Request.Context(), run)
	}
	if err != nil {
		log.Printf("Failed to record %s run: %v", kind, err)
		return
	}
	c.Header(RunIDHeader, run.ID.String())
}

func newRun(kind models.RunKind, userID, profileID *uuid.UUID, input, result any, success bool) (*models.Run, error) {
	in, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &models.Run{
		ID:        uuid.New(),
		UserID:    userID,
		ProfileID: profileID,
		Kind:      kind,
		Success:   success,
		Input:     in,
		Result:    out,
	}, nil
}

// optimizeProfile runs the engine over a saved profile and records the run
func (h *OptimizeHandler) optimizeProfile(c *gin.Context, p *models.Profile) models.OptimizationResult {
	result := h.engine.Optimize(p.Input, p.Baseline)
	h.record(c, models.RunOptimize, &p.ID, p.Input, result, result.Success)
	return result
}
