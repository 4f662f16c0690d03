package format

import (
	"strings"
	"testing"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("markdown")
	require.NoError(t, err)
	assert.Equal(t, Markdown, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ASCII, m)

	_, err = ParseMode("html")
	assert.Error(t, err)
}

func TestSettingsDiff_ChangedOnly(t *testing.T) {
	f := catalog.FactoryDefaults()
	o := f.Clone()
	o[catalog.MPHScaling] = 26

	out := SettingsDiff(Markdown, f, o, true)
	assert.Contains(t, out, "MPH Scaling")
	assert.Contains(t, out, "+4")
	assert.NotContains(t, out, "Pedal Deadband")
}

func TestSettingsDiff_All(t *testing.T) {
	f := catalog.FactoryDefaults()
	out := SettingsDiff(ASCII, f, f, false)
	assert.Contains(t, out, "F.128")
	assert.Contains(t, out, "Pedal Deadband")
}

func TestFunctions(t *testing.T) {
	out := Functions(Markdown, catalog.Functions())
	assert.Contains(t, out, "| 15-35 ")
	assert.NotContains(t, out, "F.100")
}

func TestResult_Failure(t *testing.T) {
	out := Result(ASCII, models.OptimizationResult{
		ErrorMessage:      "boom",
		FactorySettings:   catalog.FactoryDefaults(),
		OptimizedSettings: catalog.FactoryDefaults(),
	})
	assert.True(t, strings.HasPrefix(out, "Optimization failed: boom"))
}

func TestTripResult(t *testing.T) {
	f := catalog.FactoryDefaults()
	out := TripResult(Markdown, models.TripOptimizationResult{
		Success:           true,
		FactorySettings:   f,
		OptimizedSettings: f,
		Report: &models.TripReport{
			Summary:         "Settings tuned for a short trip.",
			Confidence:      80,
			Recommendations: map[string][]string{models.RecommendPreTrip: {"Check tire pressure"}},
		},
	})
	assert.Contains(t, out, "Confidence: 80%")
	assert.Contains(t, out, "Recommendations (pre_trip):")
	assert.Contains(t, out, "Top speed (mph)")
}
