package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/email"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/middleware"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/repository"
)

// RunHandler serves the caller's optimization history
type RunHandler struct {
	runs   repository.RunRepository
	mailer email.Service
	appURL string
	now    func() time.Time
}

// NewRunHandler creates a new run handler. mailer may be nil, which
// disables the email endpoint.
func NewRunHandler(runs repository.RunRepository, mailer email.Service, appURL string) *RunHandler {
	return &RunHandler{runs: runs, mailer: mailer, appURL: appURL, now: time.Now}
}

// List returns run summaries, newest first
// GET /api/v1/runs?limit=n
func (h *RunHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	limit := repository.DefaultRunLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_limit",
				"message": "limit must be between 1 and 500",
			})
			return
		}
		limit = n
	}

	runs, err := h.runs.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		log.Printf("Failed to list runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to retrieve runs",
		})
		return
	}

	summaries := make([]models.RunSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, r.Summary())
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  summaries,
		"count": len(summaries),
	})
}

// Get returns a run with its input and result documents
// GET /api/v1/runs/:id
func (h *RunHandler) Get(c *gin.Context) {
	run, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

// Export downloads a run as an export envelope
// GET /api/v1/runs/:id/export
func (h *RunHandler) Export(c *gin.Context) {
	run, ok := h.load(c)
	if !ok {
		return
	}

	settings, changes, err := runSettings(run)
	if err != nil {
		log.Printf("Failed to decode run %s: %v", run.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to read run result",
		})
		return
	}
	writeEnvelope(c, run.Input, settings, changes, h.now())
}

// Email sends the run report to the account address
// POST /api/v1/runs/:id/email
func (h *RunHandler) Email(c *gin.Context) {
	if h.mailer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "email_unavailable",
			"message": "Email delivery is not configured",
		})
		return
	}

	to, err := middleware.GetUserEmail(c)
	if err != nil || to == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "No email address on this session",
		})
		return
	}

	run, ok := h.load(c)
	if !ok {
		return
	}

	report, err := email.BuildReport(run, h.appURL)
	if err != nil {
		log.Printf("Failed to build report for run %s: %v", run.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to build report",
		})
		return
	}

	if err := h.mailer.SendOptimizationReport(c.Request.Context(), to, report); err != nil {
		log.Printf("Failed to send report for run %s: %v", run.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "email_failed",
			"message": "Failed to send report",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "sent", "to": to})
}

func (h *RunHandler) load(c *gin.Context) (*models.Run, bool) {
	userID := middleware.MustGetUserID(c)
	id, ok := parseID(c, "run")
	if !ok {
		return nil, false
	}

	run, err := h.runs.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "run_not_found",
				"message": "Run not found",
			})
			return nil, false
		}
		log.Printf("Failed to get run: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to retrieve run",
		})
		return nil, false
	}
	return run, true
}

// runSettings extracts the exported vector and change list from a stored result
func runSettings(run *models.Run) (catalog.Settings, []string, error) {
	switch run.Kind {
	case models.RunTrip:
		var r models.TripOptimizationResult
		if err := json.Unmarshal(run.Result, &r); err != nil {
			return nil, nil, err
		}
		var changes []string
		if r.BaseResult != nil {
			changes = r.BaseResult.PerformanceChanges
		}
		return r.OptimizedSettings, changes, nil
	default:
		var r models.OptimizationResult
		if err := json.Unmarshal(run.Result, &r); err != nil {
			return nil, nil, err
		}
		return r.OptimizedSettings, r.PerformanceChanges, nil
	}
}
