package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/export"
)

// ExportRequest is the body of POST /export
type ExportRequest struct {
	Input  json.RawMessage `json:"input"`
	Result struct {
		OptimizedSettings  catalog.Settings `json:"optimizedSettings"`
		PerformanceChanges []string         `json:"performanceChanges"`
	} `json:"result"`
}

// ImportResponse is returned by POST /import
type ImportResponse struct {
	OptimizedSettings  catalog.Settings `json:"optimizedSettings"`
	PerformanceChanges []string         `json:"performanceChanges"`
	InputData          json.RawMessage  `json:"inputData,omitempty"`
	Timestamp          time.Time        `json:"timestamp"`
}

// ExportHandler converts results to and from the export envelope
type ExportHandler struct {
	now func() time.Time
}

// NewExportHandler creates a new export handler
func NewExportHandler() *ExportHandler {
	return &ExportHandler{now: time.Now}
}

// Export wraps a result in a versioned envelope
// POST /api/v1/export
func (h *ExportHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	var input any
	if len(req.Input) > 0 {
		input = req.Input
	}
	writeEnvelope(c, input, req.Result.OptimizedSettings, req.Result.PerformanceChanges, h.now())
}

// Import validates an envelope and returns its settings
// POST /api/v1/import
func (h *ExportHandler) Import(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Failed to read request body",
		})
		return
	}

	env, err := export.Decode(data)
	if err != nil {
		respondEnvelopeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ImportResponse{
		OptimizedSettings:  env.OptimizedSettings,
		PerformanceChanges: env.PerformanceChanges,
		InputData:          env.InputData,
		Timestamp:          env.Timestamp,
	})
}

func writeEnvelope(c *gin.Context, input any, settings catalog.Settings, changes []string, now time.Time) {
	env, err := export.New(input, settings, changes, now)
	if err != nil {
		respondEnvelopeError(c, err)
		return
	}
	body, err := env.Encode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to encode envelope",
		})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="gem-t2-settings.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func respondEnvelopeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, export.ErrVersionMismatch):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version_mismatch",
			"message": err.Error(),
		})
	case errors.Is(err, export.ErrMalformedEnvelope):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "malformed_envelope",
			"message": err.Error(),
		})
	case errors.Is(err, catalog.ErrInvalidSettings):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid_settings",
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to process envelope",
		})
	}
}
