package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/middleware"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/repository"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/trip"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testOptimizeHandler(runs repository.RunRepository) *OptimizeHandler {
	engine := optimizer.New(optimizer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return NewOptimizeHandler(engine, trip.NewPlanner(engine), runs)
}

func sampleInput() models.OptimizationInput {
	return models.OptimizationInput{
		Vehicle:     models.VehicleProfile{Model: "e4", MotorCondition: models.MotorGood},
		Battery:     models.BatteryProfile{Chemistry: models.ChemistryLithium, Voltage: 72, CapacityAh: 105},
		Wheel:       models.WheelProfile{TireDiameter: 23, GearRatio: "8.91:1"},
		Environment: models.EnvironmentProfile{Terrain: models.TerrainHilly},
		Priorities:  models.Priorities{Range: models.Weight(8)},
	}
}

// newContext builds a test context with an optional JSON body and user
func newContext(t *testing.T, method, path string, body any, userID *uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, r)
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != nil {
		c.Set(string(middleware.UserIDKey), *userID)
		c.Set(string(middleware.UserEmailKey), "driver@example.com")
	}
	return c, w
}

func withID(c *gin.Context, id string) {
	c.Params = gin.Params{{Key: "id", Value: id}}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]any](t, w)
	code, _ := body["error"].(string)
	return code
}

