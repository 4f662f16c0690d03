package trip

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlanner(opts ...optimizer.Option) *Planner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPlanner(optimizer.New(append([]optimizer.Option{optimizer.WithLogger(logger)}, opts...)...))
}

func TestOptimizeForTrip_RainNarrowsAcceleration(t *testing.T) {
	res := testPlanner().OptimizeForTrip(models.TripData{
		Weather: &models.Weather{TemperatureF: 60, Conditions: "rain"},
	})
	require.True(t, res.Success)

	s := res.OptimizedSettings
	require.NoError(t, s.Validate())
	assert.GreaterOrEqual(t, s[catalog.ControlledAcceleration], 20)
	assert.LessOrEqual(t, s[catalog.ControlledAcceleration], 25)
	assert.Greater(t, s[catalog.ControlledAcceleration], res.FactorySettings[catalog.ControlledAcceleration])
	assert.GreaterOrEqual(t, s[catalog.TurfSpeedLimit], 5)
	assert.LessOrEqual(t, s[catalog.TurfSpeedLimit], 15)
	assert.Less(t, s[catalog.TurfSpeedLimit], res.FactorySettings[catalog.TurfSpeedLimit])
	assert.Contains(t, res.Warnings, "Wet roads expected; acceleration and turf speed have been reduced")
}

func TestOptimizeForTrip_RespectsTripLimits(t *testing.T) {
	p := testPlanner()
	trips := []models.TripData{
		{Wheel: models.WheelProfile{TireDiameter: 30}, Vehicle: models.VehicleProfile{Model: "e2"}},
		{
			Weather:         &models.Weather{TemperatureF: 100},
			Terrain:         &models.TerrainData{MaxGrade: 22, Surface: "dirt"},
			Passengers:      &models.Passengers{Count: 6, CargoLbs: 200},
			DistanceDetails: &models.DistanceDetails{EstimatedMiles: 40},
		},
		{SpecialRequirements: []string{"parade"}},
	}
	limits := catalog.TripLimits()
	bounds := catalog.SafetyBounds()

	for i, td := range trips {
		res := p.OptimizeForTrip(td)
		require.True(t, res.Success, "trip %d", i)
		require.NoError(t, res.OptimizedSettings.Validate())
		for k, b := range limits {
			assert.True(t, b.Contains(res.OptimizedSettings[k]), "trip %d: F%d=%d outside trip limit", i, k, res.OptimizedSettings[k])
		}
		for k, b := range bounds {
			assert.True(t, b.Contains(res.OptimizedSettings[k]), "trip %d: F%d=%d outside safety bound", i, k, res.OptimizedSettings[k])
		}
	}
}

func TestOptimizeForTrip_BigTiresCappedByTripLimit(t *testing.T) {
	res := testPlanner().OptimizeForTrip(models.TripData{
		Wheel: models.WheelProfile{TireDiameter: 32},
	})
	require.True(t, res.Success)

	assert.Equal(t, 32, res.BaseResult.OptimizedSettings[catalog.MPHScaling])
	assert.Equal(t, 30, res.OptimizedSettings[catalog.MPHScaling])
}

func TestOptimizeForTrip_Parade(t *testing.T) {
	res := testPlanner().OptimizeForTrip(models.TripData{SpecialRequirements: []string{"Parade"}})
	require.True(t, res.Success)

	s := res.OptimizedSettings
	assert.Equal(t, 15, s[catalog.MPHScaling])
	assert.Equal(t, 30, s[catalog.ControlledAcceleration])
	assert.Equal(t, 25, s[catalog.ArmatureAccelRate])
	assert.Equal(t, 8, s[catalog.TurfSpeedLimit])
	assert.Equal(t, 2, s[catalog.CreepSpeed])
	require.NotNil(t, res.Report)
	assert.Contains(t, res.Report.Summary, "parade mode")
}

func TestOptimizeForTrip_Deterministic(t *testing.T) {
	td := models.TripData{
		Weather:    &models.Weather{TemperatureF: 30, Conditions: "snow"},
		Passengers: &models.Passengers{Count: 3},
	}
	p := testPlanner()
	if diff := cmp.Diff(p.OptimizeForTrip(td), p.OptimizeForTrip(td)); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
}

func TestOptimizeForTrip_FallbackOnBaseFailure(t *testing.T) {
	corrupt := optimizer.Stage{Name: "corrupt", Apply: func(s catalog.Settings, _ models.AnalysisContext) error {
		s[777] = 3
		return nil
	}}
	res := testPlanner(optimizer.WithStages(corrupt)).OptimizeForTrip(models.TripData{})

	assert.False(t, res.Success)
	assert.True(t, res.FallbackMode)
	assert.NotEmpty(t, res.Message)
	require.NoError(t, res.OptimizedSettings.Validate())
	for k, v := range catalog.TripFallbackSubset() {
		assert.Equal(t, v, res.OptimizedSettings[k])
	}
	assert.Equal(t, catalog.FactoryDefaults()[catalog.PedalDeadband], res.OptimizedSettings[catalog.PedalDeadband])
}

func TestAdjuster_DoesNotModifyInput(t *testing.T) {
	s := catalog.FactoryDefaults()
	_, err := NewAdjuster().Adjust(s, models.TripAnalysis{Wet: true, Parade: true})
	require.NoError(t, err)
	if diff := cmp.Diff(catalog.FactoryDefaults(), s); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestAdjuster_HeavyLoadBands(t *testing.T) {
	s := catalog.FactoryDefaults()
	s[catalog.ControlledAcceleration] = 6
	s[catalog.MaxArmatureCurrent] = 200

	out, err := NewAdjuster().Adjust(s, models.TripAnalysis{Load: models.TripLoadHeavy})
	require.NoError(t, err)
	assert.Equal(t, 12, out[catalog.ControlledAcceleration])
	assert.Equal(t, 245, out[catalog.MaxArmatureCurrent])
	assert.Equal(t, 18, out[catalog.TurfSpeedLimit])
}

func TestAdjuster_Overrides(t *testing.T) {
	base := catalog.FactoryDefaults()
	base[catalog.MaxArmatureCurrent] = 220
	base[catalog.RegenArmatureCurrent] = 200

	tests := []struct {
		name     string
		analysis models.TripAnalysis
		want     map[int]int
	}{
		{
			name:     "hot",
			analysis: models.TripAnalysis{Temperature: models.TripHot},
			want: map[int]int{
				catalog.MaxArmatureCurrent:     198, // 220 * 0.9
				catalog.ControlledAcceleration: 18,  // 15 + 3
			},
		},
		{
			name:     "extreme terrain",
			analysis: models.TripAnalysis{TerrainDifficulty: models.TerrainExtreme},
			want: map[int]int{
				catalog.MaxFieldCurrent:      255,
				catalog.FieldToArmatureRatio: 50,
				catalog.FieldWeakeningDelay:  20, // 10 + 10
			},
		},
		{
			name:     "elderly passengers",
			analysis: models.TripAnalysis{ElderlyPassengers: true},
			want: map[int]int{
				catalog.ControlledAcceleration: 19, // 15 + 4
				catalog.ArmatureAccelRate:      50, // 60 - 10
			},
		},
		{
			name:     "long trip",
			analysis: models.TripAnalysis{Distance: models.DistanceLong},
			want: map[int]int{
				catalog.RegenArmatureCurrent: 220, // 200 * 1.1
				catalog.MaxArmatureCurrent:   209, // 220 * 0.95
			},
		},
		{
			name:     "charging needed",
			analysis: models.TripAnalysis{ChargingLikelyNeeded: true},
			want: map[int]int{
				catalog.RegenArmatureCurrent: 220,
				catalog.MaxArmatureCurrent:   209,
			},
		},
	}

	ad := NewAdjuster()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ad.Adjust(base, tt.analysis)
			require.NoError(t, err)
			for k, v := range tt.want {
				assert.Equal(t, v, out[k], "F%d", k)
			}
			for k := range base {
				if _, ok := tt.want[k]; !ok {
					assert.Equal(t, base[k], out[k], "F%d changed unexpectedly", k)
				}
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		a    models.TripAnalysis
		want int
	}{
		{"complete easy trip", models.TripAnalysis{TerrainDifficulty: models.TerrainEasy, Temperature: models.TripOptimal}, 100},
		{"missing everything", models.TripAnalysis{Missing: []string{MissingWeather, MissingTerrain, MissingPassengers, MissingDistance}}, 70},
		{"hard and hot", models.TripAnalysis{TerrainDifficulty: models.TerrainHard, Temperature: models.TripHot}, 85},
		{"floor", models.TripAnalysis{
			Missing:              []string{MissingWeather, MissingTerrain, MissingPassengers, MissingDistance},
			TerrainDifficulty:    models.TerrainExtreme,
			Wet:                  true,
			ChargingLikelyNeeded: true,
			Temperature:          models.TripCold,
		}, MinConfidence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Confidence(tt.a))
		})
	}
}

func TestBuildReport(t *testing.T) {
	factory := catalog.FactoryDefaults()
	optimized := factory.Clone()
	optimized[catalog.ControlledAcceleration] = 20
	optimized[catalog.CreepSpeed] = 2
	optimized[catalog.MaxArmatureCurrent] = 250

	a := models.TripAnalysis{
		Temperature:         models.TripOptimal,
		TerrainDifficulty:   models.TerrainExtreme,
		MaxGrade:            20,
		Load:                models.TripLoadHeavy,
		Distance:            models.DistanceMedium,
		EstimatedRangeMiles: 30,
	}
	r := BuildReport(a, factory, optimized)

	assert.Equal(t, "Settings tuned for a medium trip on extreme terrain with a heavy load.", r.Summary)
	require.Len(t, r.KeyOptimizations, 2)
	assert.Equal(t, catalog.ControlledAcceleration, r.KeyOptimizations[0].Function)
	assert.InDelta(t, 33.3, r.KeyOptimizations[0].ChangePercent, 1e-9)
	assert.Equal(t, catalog.CreepSpeed, r.KeyOptimizations[1].Function)

	assert.Contains(t, r.Warnings, "Extreme grades up to 20% expected; monitor motor temperature on long climbs")
	assert.Contains(t, r.Warnings, "Heavy load on steep terrain increases motor and brake stress")
	for _, k := range []string{models.RecommendPreTrip, models.RecommendWeather, models.RecommendTerrain, models.RecommendLoad} {
		assert.Contains(t, r.Recommendations, k)
	}
	assert.Equal(t, 85, r.Confidence)
	assert.InDelta(t, 25.0, r.ExpectedPerformance.TopSpeedMPH, 1e-9)
}

func TestExpectedPerformance_Factory(t *testing.T) {
	f := catalog.FactoryDefaults()
	p := ExpectedPerformance(models.TripAnalysis{
		TerrainDifficulty:   models.TerrainEasy,
		EstimatedRangeMiles: 30.2,
	}, f, f)

	assert.InDelta(t, 30.2, p.RangeMiles, 1e-9)
	assert.InDelta(t, 25.0, p.TopSpeedMPH, 1e-9)
	assert.InDelta(t, 5.0, p.AccelerationRating, 1e-9)
	assert.InDelta(t, 15.0, p.HillClimbingGrade, 1e-9)
	assert.InDelta(t, 70.0, p.Efficiency, 1e-9)
}
