package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/auth"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/config"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/handlers"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/repository"
)

const testSecret = "test-secret"

func newTestDeps() *Dependencies {
	return &Dependencies{
		Config: &config.Config{
			Server: config.ServerConfig{Port: "8080", RateLimitPerMinute: 1000, AuthRateLimitPerMinute: 1000},
			Auth:   config.AuthConfig{JWTSecret: testSecret, JWTAccessTokenTTL: time.Hour},
			Email:  config.EmailConfig{AppURL: "http://localhost:3000"},
		},
		UserRepo:    repository.NewMockUserRepository(),
		ProfileRepo: repository.NewMockProfileRepository(),
		RunRepo:     repository.NewMockRunRepository(),
	}
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.NewJWTService(testSecret, time.Hour).GenerateAccessToken(userID, "driver@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func optimizeBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(handlers.OptimizeRequest{
		Input: models.OptimizationInput{
			Vehicle: models.VehicleProfile{Model: "e4"},
			Battery: models.BatteryProfile{Chemistry: models.ChemistryLead, Voltage: 72},
		},
		Baseline: map[string]int{"F1": 24},
	})
	require.NoError(t, err)
	return body
}

func TestRoutes(t *testing.T) {
	router := New(newTestDeps())

	var got []string
	for _, r := range router.Routes() {
		got = append(got, r.Method+" "+r.Path)
	}
	sort.Strings(got)

	want := []string{
		"DELETE /api/v1/profiles/:id",
		"GET /api/v1/functions",
		"GET /api/v1/functions/defaults",
		"GET /api/v1/health",
		"GET /api/v1/profiles",
		"GET /api/v1/profiles/:id",
		"GET /api/v1/runs",
		"GET /api/v1/runs/:id",
		"GET /api/v1/runs/:id/export",
		"GET /api/v1/users/me",
		"PATCH /api/v1/profiles/:id",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/register",
		"POST /api/v1/export",
		"POST /api/v1/import",
		"POST /api/v1/optimize",
		"POST /api/v1/optimize/trip",
		"POST /api/v1/profiles",
		"POST /api/v1/profiles/:id/optimize",
		"POST /api/v1/runs/:id/email",
	}
	assert.Equal(t, want, got)
}

func TestNonExistentRoute(t *testing.T) {
	router := New(newTestDeps())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := New(newTestDeps())

	for _, path := range []string{"/api/v1/users/me", "/api/v1/profiles", "/api/v1/runs"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestOptimize_Anonymous(t *testing.T) {
	deps := newTestDeps()
	runs := repository.NewMockRunRepository()
	runs.CreateFunc = func(_ context.Context, _ *models.Run) error {
		t.Fatal("anonymous call must not be recorded")
		return nil
	}
	deps.RunRepo = runs
	router := New(deps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewReader(optimizeBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(handlers.RunIDHeader))

	var result models.OptimizationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 24, result.BaselineSettings[1])
}

func TestOptimize_AuthenticatedIsRecorded(t *testing.T) {
	deps := newTestDeps()
	userID := uuid.New()
	var recorded *models.Run
	runs := repository.NewMockRunRepository()
	runs.CreateFunc = func(_ context.Context, r *models.Run) error {
		recorded = r
		return nil
	}
	deps.RunRepo = runs
	router := New(deps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewReader(optimizeBody(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, userID))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, recorded)
	assert.Equal(t, &userID, recorded.UserID)
	assert.Equal(t, recorded.ID.String(), w.Header().Get(handlers.RunIDHeader))
}

func TestRequestID(t *testing.T) {
	router := New(newTestDeps())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestCORSPreflight(t *testing.T) {
	router := New(newTestDeps())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/optimize", nil)
	req.Header.Set("Origin", "https://cart.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthRateLimit(t *testing.T) {
	deps := newTestDeps()
	deps.Config.Server.AuthRateLimitPerMinute = 2
	router := New(deps)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)

	// The catalog is outside the auth group and keeps working
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/functions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
