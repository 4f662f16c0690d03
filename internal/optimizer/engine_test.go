package optimizer

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(opts ...Option) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(append([]Option{WithLogger(logger)}, opts...)...)
}

func sampleInputs() map[string]models.OptimizationInput {
	return map[string]models.OptimizationInput{
		"empty": {},
		"sparking steep lead": {
			Vehicle:     models.VehicleProfile{Model: "e4", MotorCondition: models.MotorSparking},
			Battery:     models.BatteryProfile{Chemistry: models.ChemistryLead, Voltage: 72, CapacityAh: 105},
			Environment: models.EnvironmentProfile{Terrain: models.TerrainSteep},
		},
		"big tires": {
			Vehicle: models.VehicleProfile{Model: "e2"},
			Wheel:   models.WheelProfile{TireDiameter: 30},
			Priorities: models.Priorities{
				Speed: models.Weight(10), Acceleration: models.Weight(10), Range: models.Weight(10), Regen: models.Weight(10),
			},
		},
		"lithium hauler": {
			Vehicle:     models.VehicleProfile{Model: "elxd", MotorCondition: models.MotorWorn},
			Battery:     models.BatteryProfile{Chemistry: models.ChemistryLithium, Voltage: 96, CapacityAh: 200, AgeYears: 6},
			Wheel:       models.WheelProfile{TireDiameter: 18, GearRatio: "14:1"},
			Environment: models.EnvironmentProfile{Terrain: models.TerrainHilly, Load: models.LoadMax, Temperature: models.TemperatureHot, HillGrade: 25},
		},
	}
}

func TestOptimize_CompleteAndBounded(t *testing.T) {
	e := testEngine()
	bounds := catalog.SafetyBounds()

	for name, in := range sampleInputs() {
		t.Run(name, func(t *testing.T) {
			res := e.Optimize(in, nil)
			require.True(t, res.Success)
			require.NoError(t, res.OptimizedSettings.Validate())
			require.NoError(t, res.FactorySettings.Validate())
			require.NoError(t, res.BaselineSettings.Validate())

			for k, b := range bounds {
				assert.True(t, b.Contains(res.OptimizedSettings[k]), "F%d=%d outside %d-%d", k, res.OptimizedSettings[k], b.Min, b.Max)
			}
			assert.NotEmpty(t, res.PerformanceChanges)
			assert.Len(t, res.AnalysisData.Stages, len(DefaultStages()))
		})
	}
}

func TestOptimize_Deterministic(t *testing.T) {
	e := testEngine()
	for name, in := range sampleInputs() {
		first := e.Optimize(in, nil)
		second := e.Optimize(in, nil)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s: results differ (-first +second):\n%s", name, diff)
		}
	}
}

func TestOptimize_MotorProtectionMonotonic(t *testing.T) {
	e := testEngine()
	conditions := []models.MotorCondition{models.MotorGood, models.MotorFair, models.MotorSparking}

	prev := -1
	for _, c := range conditions {
		res := e.Optimize(models.OptimizationInput{Vehicle: models.VehicleProfile{MotorCondition: c}}, nil)
		f7 := res.OptimizedSettings[catalog.MinFieldCurrent]
		assert.GreaterOrEqual(t, f7, prev, "F7 for %s", c)
		prev = f7
	}
}

func TestOptimize_ChemistryBranching(t *testing.T) {
	e := testEngine()
	cutoff := func(chem models.Chemistry, v int) int {
		res := e.Optimize(models.OptimizationInput{Battery: models.BatteryProfile{Chemistry: chem, Voltage: v}}, nil)
		return res.OptimizedSettings[catalog.LowBatteryVolts]
	}

	for _, v := range []int{48, 72, 96} {
		assert.Equal(t, cutoff(models.ChemistryLead, v), cutoff(models.ChemistryLithium, v), "%d V", v)
	}
	assert.Equal(t, 54, cutoff(models.ChemistryLithium, 60))
	assert.Equal(t, 53, cutoff(models.ChemistryLead, 60))
}

func TestOptimize_WornMotorOnSteepTerrain(t *testing.T) {
	res := testEngine().Optimize(sampleInputs()["sparking steep lead"], nil)
	require.True(t, res.Success)

	s := res.OptimizedSettings
	assert.Greater(t, s[catalog.MinFieldCurrent], 70)
	assert.Less(t, s[catalog.MPHOverspeed], 40)
	assert.Equal(t, 255, s[catalog.MaxArmatureCurrent])
	assert.Equal(t, 1, s[catalog.ErrorCompensation])
	assert.Contains(t, res.Warnings, "Motor sparking reported; inspect brushes and commutator before heavy use")
}

func TestOptimize_LargerTires(t *testing.T) {
	e := testEngine()

	res := e.Optimize(models.OptimizationInput{Wheel: models.WheelProfile{TireDiameter: 26}}, nil)
	require.True(t, res.Success)
	assert.Equal(t, 65, res.OptimizedSettings[catalog.FieldWeakeningCurrent])
	assert.Equal(t, 26, res.OptimizedSettings[catalog.MPHScaling])

	res = e.Optimize(models.OptimizationInput{Wheel: models.WheelProfile{TireDiameter: 30}}, nil)
	require.True(t, res.Success)
	assert.Equal(t, 70, res.OptimizedSettings[catalog.FieldWeakeningCurrent])
	assert.Contains(t, res.AnalysisData.ClampedFunctions, catalog.FieldWeakeningCurrent)
}

func TestOptimize_BaselineSeedsPipeline(t *testing.T) {
	baseline := catalog.Settings{
		catalog.PedalDeadband: 12,
		catalog.MPHScaling:    99,
		300:                   1,
	}
	res := testEngine().Optimize(models.OptimizationInput{}, baseline)
	require.True(t, res.Success)

	assert.Equal(t, 12, res.BaselineSettings[catalog.PedalDeadband])
	assert.Equal(t, 12, res.OptimizedSettings[catalog.PedalDeadband])
	assert.Equal(t, 22, res.BaselineSettings[catalog.MPHScaling])
	assert.Equal(t, []int{catalog.MPHScaling, 300}, res.AnalysisData.RejectedBaseline)
	assert.NotEmpty(t, res.Warnings)
}

func TestOptimize_EmergencySubsetOnEnforcementFailure(t *testing.T) {
	broken := NewEnforcer(map[int]catalog.Bound{catalog.MPHScaling: {Min: 30, Max: 10}})
	res := testEngine(WithEnforcer(broken)).Optimize(sampleInputs()["big tires"], nil)

	require.True(t, res.Success)
	assert.True(t, res.AnalysisData.EnforcementFailed)
	s := res.OptimizedSettings
	require.NoError(t, s.Validate())
	assert.LessOrEqual(t, s[catalog.MPHScaling], 20)
	assert.LessOrEqual(t, s[catalog.MaxArmatureCurrent], 200)
	assert.LessOrEqual(t, s[catalog.ArmatureAccelRate], 40)
	assert.Contains(t, res.Warnings, "Safety limits could not be verified; emergency-safe values applied")
}

func TestOptimize_StageFailureIsIsolated(t *testing.T) {
	failing := Stage{Name: "broken", Apply: func(s catalog.Settings, _ models.AnalysisContext) error {
		s[catalog.MPHScaling] = 5
		return errors.New("sensor offline")
	}}
	panicking := Stage{Name: "panicky", Apply: func(s catalog.Settings, _ models.AnalysisContext) error {
		s[catalog.ArmatureAccelRate] = 1
		panic("boom")
	}}
	stages := append([]Stage{failing, panicking}, DefaultStages()...)

	res := testEngine(WithStages(stages...)).Optimize(models.OptimizationInput{}, nil)
	reference := testEngine().Optimize(models.OptimizationInput{}, nil)

	require.True(t, res.Success)
	if diff := cmp.Diff(reference.OptimizedSettings, res.OptimizedSettings); diff != "" {
		t.Errorf("failed stages leaked into result (-want +got):\n%s", diff)
	}
	require.Len(t, res.AnalysisData.Stages, len(stages))
	assert.Equal(t, "sensor offline", res.AnalysisData.Stages[0].Error)
	assert.Contains(t, res.AnalysisData.Stages[1].Error, "boom")
	assert.False(t, res.AnalysisData.Stages[2].Failed())
	assert.Contains(t, res.Warnings, "Rule broken skipped: sensor offline")
}

func TestOptimize_UnknownCategoryKeepsOtherFields(t *testing.T) {
	battery := models.BatteryProfile{Chemistry: models.ChemistryLithium, Voltage: 48, CapacityAh: 150}

	res := testEngine().Optimize(models.OptimizationInput{
		Battery:     battery,
		Environment: models.EnvironmentProfile{Terrain: "swamp"},
	}, nil)
	valid := testEngine().Optimize(models.OptimizationInput{
		Battery:     battery,
		Environment: models.EnvironmentProfile{Terrain: models.TerrainMixed},
	}, nil)

	require.True(t, res.Success)
	ctx := res.AnalysisData.Context
	assert.True(t, ctx.Defaulted)
	assert.Equal(t, 48, ctx.BatteryVoltage)
	assert.True(t, ctx.IsLithium)
	assert.Equal(t, 150.0, ctx.CapacityAh)
	assert.Equal(t, DefaultContext().TerrainDifficulty, ctx.TerrainDifficulty)

	assert.Equal(t, valid.OptimizedSettings[catalog.BatteryVolts], res.OptimizedSettings[catalog.BatteryVolts])
	assert.Equal(t, valid.OptimizedSettings[catalog.LowBatteryVolts], res.OptimizedSettings[catalog.LowBatteryVolts])
	assert.NotEqual(t, 72, res.OptimizedSettings[catalog.BatteryVolts])

	require.NotEmpty(t, res.Warnings)
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "swamp") {
			found = true
		}
	}
	assert.True(t, found, "warning names the rejected value: %v", res.Warnings)
}

func TestOptimize_OversizedTireStaysInRange(t *testing.T) {
	res := testEngine().Optimize(models.OptimizationInput{
		Wheel: models.WheelProfile{TireDiameter: 1e300},
	}, nil)
	capped := testEngine().Optimize(models.OptimizationInput{
		Wheel: models.WheelProfile{TireDiameter: ReferenceTireDiameter * MaxScaleRatio},
	}, nil)

	require.True(t, res.Success)
	assert.Equal(t, MaxScaleRatio, res.AnalysisData.Context.TireSizeRatio)
	if diff := cmp.Diff(capped.OptimizedSettings, res.OptimizedSettings); diff != "" {
		t.Errorf("oversized tire not capped (-want +got):\n%s", diff)
	}
	assert.GreaterOrEqual(t, res.OptimizedSettings[catalog.MPHScaling], catalog.FactoryDefaults()[catalog.MPHScaling])
}

func TestOptimize_WholeCallFallback(t *testing.T) {
	corrupt := Stage{Name: "corrupt", Apply: func(s catalog.Settings, _ models.AnalysisContext) error {
		s[500] = 1
		return nil
	}}
	baseline := catalog.Settings{catalog.PedalDeadband: 14}

	res := testEngine(WithStages(corrupt)).Optimize(models.OptimizationInput{}, baseline)

	assert.False(t, res.Success)
	assert.True(t, res.EmergencyFallback)
	require.NoError(t, res.OptimizedSettings.Validate())
	assert.Equal(t, 14, res.OptimizedSettings[catalog.PedalDeadband])
	assert.Equal(t, []string{FallbackChange}, res.PerformanceChanges)
	assert.NotEmpty(t, res.ErrorMessage)
}

func TestFallbackResult_IncompleteStartUsesFactory(t *testing.T) {
	res := FallbackResult(catalog.Settings{1: 20}, errors.New("x"))
	if diff := cmp.Diff(catalog.FactoryDefaults(), res.OptimizedSettings); diff != "" {
		t.Errorf("unexpected settings (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Optimization failed: x", res.ErrorMessage)
}

func TestOptimize_LithiumVoltageOffTable(t *testing.T) {
	res := testEngine().Optimize(models.OptimizationInput{
		Battery: models.BatteryProfile{Chemistry: models.ChemistryLithium, Voltage: 66},
	}, nil)

	require.True(t, res.Success)
	assert.Equal(t, 54, res.OptimizedSettings[catalog.LowBatteryVolts])
	assert.Contains(t, res.Warnings, "No lithium cutoff for 66 V; using nearest table value 54 V")
}

func TestGetFactoryDefaultsAndDescriptions(t *testing.T) {
	d := GetFactoryDefaults()
	require.NoError(t, d.Validate())
	d[1] = 0
	assert.Equal(t, 22, GetFactoryDefaults()[1])

	desc := GetFunctionDescriptions()
	assert.NotEmpty(t, desc[catalog.MaxArmatureCurrent])
	_, ok := desc[100]
	assert.False(t, ok)
}
