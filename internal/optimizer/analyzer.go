// Package optimizer implements the rule-based controller parameter optimizer:
// configuration analysis, the staged rule pipeline, safety enforcement and
// performance delta reporting.
package optimizer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// Reference drivetrain the factory defaults are calibrated for.
const (
	ReferenceTireDiameter = 22.0
	ReferenceGearRatio    = 8.91
	ReferenceCapacityAh   = 105.0
	ReferenceVoltage      = 72

	defaultModel = "e4"
)

// Tire and gear ratios fed to the speed rules are held within this range.
const (
	MinScaleRatio = 0.5
	MaxScaleRatio = 2.0
)

var (
	// ErrInvalidGearRatio is returned when a gear ratio cannot be parsed or is not positive
	ErrInvalidGearRatio = errors.New("invalid gear ratio")

	// ErrInvalidBattery is returned for negative voltage or capacity
	ErrInvalidBattery = errors.New("invalid battery profile")
)

type vehicleModel struct {
	weightLbs int
	gearRatio float64
}

var vehicleModels = map[string]vehicleModel{
	"e2":   {weightLbs: 1200, gearRatio: 8.91},
	"e4":   {weightLbs: 1400, gearRatio: 8.91},
	"e6":   {weightLbs: 1600, gearRatio: 12.44},
	"elxd": {weightLbs: 1800, gearRatio: 12.44},
}

// ResolveModel maps a model id to a known model, falling back to the e4.
// The boolean reports whether the id was recognized.
func ResolveModel(id string) (string, bool) {
	key := strings.NewReplacer("-", "", " ", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(id)))
	key = strings.TrimPrefix(key, "gem")
	if _, ok := vehicleModels[key]; ok {
		return key, true
	}
	return defaultModel, false
}

// ParseGearRatio accepts "8.91:1", "8.91" or "" (returns 0, nil).
func ParseGearRatio(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	num, den := s, "1"
	if i := strings.Index(s, ":"); i >= 0 {
		num, den = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGearRatio, s)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGearRatio, s)
	}
	ratio := n / d
	if ratio <= 0 || math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGearRatio, s)
	}
	return ratio, nil
}

func motorRisk(c models.MotorCondition) float64 {
	switch c {
	case models.MotorSparking, models.MotorWorn:
		return 1.0
	case models.MotorFair:
		return 0.5
	case models.MotorGood:
		return 0
	}
	return 0
}

func terrainDifficulty(t models.Terrain) float64 {
	switch t {
	case models.TerrainSteep:
		return 1.0
	case models.TerrainHilly:
		return 0.7
	case models.TerrainMixed:
		return 0.4
	case models.TerrainFlat:
		return 0.1
	}
	return 0.4
}

func loadFactor(l models.LoadCategory) float64 {
	switch l {
	case models.LoadMax:
		return 2.0
	case models.LoadHeavy:
		return 1.5
	case models.LoadMedium:
		return 1.2
	case models.LoadLight:
		return 1.0
	}
	return 1.0
}

func temperatureFactor(t models.TemperatureCategory) float64 {
	switch t {
	case models.TemperatureHot:
		return 1.0
	case models.TemperatureMild:
		return 0.5
	case models.TemperatureCold:
		return 0.2
	}
	return 0.5
}

// normalizeWeight maps a raw 0-10 slider to 0-1; nil means balanced.
func normalizeWeight(w *float64) float64 {
	if w == nil || math.IsNaN(*w) {
		return 0.5
	}
	return clampFloat(*w/10, 0, 1)
}

// NormalizePriorities scales raw 0-10 priorities to 0-1.
func NormalizePriorities(p models.Priorities) models.NormalizedPriorities {
	return models.NormalizedPriorities{
		Range:        normalizeWeight(p.Range),
		Speed:        normalizeWeight(p.Speed),
		Acceleration: normalizeWeight(p.Acceleration),
		HillClimbing: normalizeWeight(p.HillClimbing),
		Regen:        normalizeWeight(p.Regen),
	}
}

// DefaultContext is the reference e4 on a 72 V lead pack with balanced
// priorities. Analyze starts from it, so a field that fails to parse keeps
// its reference value.
func DefaultContext() models.AnalysisContext {
	m := vehicleModels[defaultModel]
	return models.AnalysisContext{
		Model:             defaultModel,
		VehicleWeightLbs:  m.weightLbs,
		TireSizeRatio:     1,
		GearRatioFactor:   1,
		BatteryVoltage:    ReferenceVoltage,
		IsLithium:         false,
		CapacityAh:        ReferenceCapacityAh,
		MotorRisk:         0,
		TerrainDifficulty: 0.4,
		LoadFactor:        1.0,
		TemperatureFactor: 0.5,
		Priorities:        NormalizePriorities(models.Priorities{}),
	}
}

// Analyze derives the AnalysisContext for an input. Every sub-derivation is
// attempted; failures are joined into the returned error and the context is
// still filled with what could be derived.
func Analyze(in models.OptimizationInput) (models.AnalysisContext, error) {
	ctx := DefaultContext()
	var errs []error

	model, _ := ResolveModel(in.Vehicle.Model)
	vm := vehicleModels[model]
	ctx.Model = model
	ctx.VehicleWeightLbs = vm.weightLbs

	if cond, err := models.ParseMotorCondition(string(in.Vehicle.MotorCondition)); err != nil {
		errs = append(errs, err)
	} else {
		ctx.MotorRisk = motorRisk(cond)
	}

	if in.Wheel.TireDiameter < 0 || math.IsNaN(in.Wheel.TireDiameter) {
		errs = append(errs, fmt.Errorf("invalid tire diameter %v", in.Wheel.TireDiameter))
	} else if in.Wheel.TireDiameter > 0 {
		ctx.TireSizeRatio = clampFloat(in.Wheel.TireDiameter/ReferenceTireDiameter, MinScaleRatio, MaxScaleRatio)
	}

	gear, err := ParseGearRatio(in.Wheel.GearRatio)
	switch {
	case err != nil:
		errs = append(errs, err)
	case gear == 0:
		ctx.GearRatioFactor = clampFloat(vm.gearRatio/ReferenceGearRatio, MinScaleRatio, MaxScaleRatio)
	default:
		ctx.GearRatioFactor = clampFloat(gear/ReferenceGearRatio, MinScaleRatio, MaxScaleRatio)
	}

	if chem, err := models.ParseChemistry(string(in.Battery.Chemistry)); err != nil {
		errs = append(errs, err)
	} else {
		ctx.IsLithium = chem == models.ChemistryLithium
	}
	switch {
	case in.Battery.Voltage < 0:
		errs = append(errs, fmt.Errorf("%w: voltage %d", ErrInvalidBattery, in.Battery.Voltage))
	case in.Battery.Voltage > 0:
		ctx.BatteryVoltage = in.Battery.Voltage
	}
	switch {
	case in.Battery.CapacityAh < 0:
		errs = append(errs, fmt.Errorf("%w: capacity %v", ErrInvalidBattery, in.Battery.CapacityAh))
	case in.Battery.CapacityAh > 0:
		ctx.CapacityAh = in.Battery.CapacityAh
	}
	if in.Battery.AgeYears > 0 {
		ctx.BatteryAgeYears = in.Battery.AgeYears
	}

	if terrain, err := models.ParseTerrain(string(in.Environment.Terrain)); err != nil {
		errs = append(errs, err)
	} else {
		ctx.TerrainDifficulty = terrainDifficulty(terrain)
	}
	if g := in.Environment.HillGrade; g > 10 {
		ctx.TerrainDifficulty = math.Max(ctx.TerrainDifficulty, math.Min(1, g/15))
	}

	if load, err := models.ParseLoad(string(in.Environment.Load)); err != nil {
		errs = append(errs, err)
	} else {
		ctx.LoadFactor = loadFactor(load)
	}

	if temp, err := models.ParseTemperature(string(in.Environment.Temperature)); err != nil {
		errs = append(errs, err)
	} else {
		ctx.TemperatureFactor = temperatureFactor(temp)
	}

	ctx.Priorities = NormalizePriorities(in.Priorities)

	return ctx, errors.Join(errs...)
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
