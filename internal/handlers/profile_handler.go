package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/middleware"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/repository"
)

// ProfileHandler serves saved vehicle profiles
type ProfileHandler struct {
	profiles  repository.ProfileRepository
	optimizer *OptimizeHandler
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles repository.ProfileRepository, optimizer *OptimizeHandler) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, optimizer: optimizer}
}

// List returns the caller's profiles
// GET /api/v1/profiles
func (h *ProfileHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	profiles, err := h.profiles.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Failed to list profiles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to retrieve profiles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// Create saves a new profile
// POST /api/v1/profiles
func (h *ProfileHandler) Create(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	p := &models.Profile{
		UserID:   userID,
		Name:     req.Name,
		Input:    req.Input,
		Baseline: req.Baseline,
	}
	if err := h.profiles.Create(c.Request.Context(), p); err != nil {
		respondProfileError(c, err, "Failed to create profile")
		return
	}

	c.JSON(http.StatusCreated, p)
}

// Get returns one profile
// GET /api/v1/profiles/:id
func (h *ProfileHandler) Get(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update patches a profile
// PATCH /api/v1/profiles/:id
func (h *ProfileHandler) Update(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	p, ok := h.load(c)
	if !ok {
		return
	}

	req.Apply(p)
	if err := h.profiles.Update(c.Request.Context(), p); err != nil {
		respondProfileError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// Delete removes a profile
// DELETE /api/v1/profiles/:id
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	id, ok := parseID(c, "profile")
	if !ok {
		return
	}

	if err := h.profiles.Delete(c.Request.Context(), userID, id); err != nil {
		respondProfileError(c, err, "Failed to delete profile")
		return
	}

	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}

// Optimize runs the optimizer over a saved profile
// POST /api/v1/profiles/:id/optimize
func (h *ProfileHandler) Optimize(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.optimizer.optimizeProfile(c, p))
}

func (h *ProfileHandler) load(c *gin.Context) (*models.Profile, bool) {
	userID := middleware.MustGetUserID(c)
	id, ok := parseID(c, "profile")
	if !ok {
		return nil, false
	}

	p, err := h.profiles.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondProfileError(c, err, "Failed to retrieve profile")
		return nil, false
	}
	return p, true
}

func respondProfileError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, repository.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "profile_not_found",
			"message": "Profile not found",
		})
	case errors.Is(err, repository.ErrProfileExists):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "profile_exists",
			"message": "A profile with this name already exists",
		})
	default:
		log.Printf("%s: %v", message, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": message,
		})
	}
}

// parseID reads the :id path parameter
func parseID(c *gin.Context, kind string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_id",
			"message": "Invalid " + kind + " ID",
		})
		return uuid.Nil, false
	}
	return id, true
}
