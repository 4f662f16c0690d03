package email

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/config"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

func optimizeRun(t *testing.T) *models.Run {
	t.Helper()
	f := catalog.FactoryDefaults()
	o := f.Clone()
	o[catalog.MPHScaling] = 26
	result, err := json.Marshal(models.OptimizationResult{
		Success:            true,
		FactorySettings:    f,
		OptimizedSettings:  o,
		PerformanceChanges: []string{"Top speed increased by approximately 18%"},
	})
	require.NoError(t, err)
	return &models.Run{ID: uuid.New(), Kind: models.RunOptimize, Result: result}
}

func TestBuildReport_Optimize(t *testing.T) {
	run := optimizeRun(t)

	rep, err := BuildReport(run, "https://tune.example.com/")
	require.NoError(t, err)

	assert.Equal(t, "Your GEM controller optimization", rep.Subject)
	assert.Contains(t, rep.Text, "Top speed increased by approximately 18%")
	assert.Contains(t, rep.Text, "MPH Scaling")
	assert.Equal(t, "https://tune.example.com/runs/"+run.ID.String(), rep.Link)
	assert.Contains(t, rep.HTML(), "View this run")
}

func TestBuildReport_Trip(t *testing.T) {
	f := catalog.FactoryDefaults()
	result, err := json.Marshal(models.TripOptimizationResult{
		Success:           true,
		FactorySettings:   f,
		OptimizedSettings: f,
		Report:            &models.TripReport{Summary: "Settings tuned for a short trip.", Confidence: 75},
	})
	require.NoError(t, err)

	rep, err := BuildReport(&models.Run{ID: uuid.New(), Kind: models.RunTrip, Result: result}, "")
	require.NoError(t, err)
	assert.Equal(t, "Your GEM trip optimization", rep.Subject)
	assert.Contains(t, rep.Text, "Confidence: 75%")
	assert.Empty(t, rep.Link)
}

func TestBuildReport_Errors(t *testing.T) {
	_, err := BuildReport(&models.Run{Kind: models.RunOptimize, Result: json.RawMessage(`nope`)}, "")
	assert.Error(t, err)

	_, err = BuildReport(&models.Run{Kind: "other", Result: json.RawMessage(`{}`)}, "")
	assert.Error(t, err)
}

func TestReportHTML_Escapes(t *testing.T) {
	rep := Report{Subject: "a<b", Text: "<script>"}
	assert.NotContains(t, rep.HTML(), "<script>")
	assert.Contains(t, rep.HTML(), "&lt;script&gt;")
}

func TestMockService(t *testing.T) {
	svc := NewMockService()
	ctx := context.Background()

	require.NoError(t, svc.SendOptimizationReport(ctx, "a@example.com", Report{Subject: "one"}))
	require.NoError(t, svc.SendOptimizationReport(ctx, "b@example.com", Report{Subject: "two"}))

	sent := svc.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "a@example.com", sent[0].To)
	assert.Equal(t, "two", sent[1].Report.Subject)

	svc.Err = errors.New("smtp down")
	assert.Error(t, svc.SendOptimizationReport(ctx, "c@example.com", Report{}))

	svc.Reset()
	assert.Empty(t, svc.Sent())
}

func TestNew_SelectsProvider(t *testing.T) {
	assert.IsType(t, &ConsoleService{}, New(&config.EmailConfig{Provider: config.EmailConsole}))
	assert.IsType(t, &MockService{}, New(&config.EmailConfig{Provider: config.EmailMock}))
	assert.IsType(t, &MailgunService{}, New(&config.EmailConfig{
		Provider: config.EmailMailgun, MailgunDomain: "mg.example.com", MailgunAPIKey: "key",
	}))
}
