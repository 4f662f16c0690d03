package optimizer

import (
	"errors"
	"math"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// ErrInvalidContext is returned by a stage that cannot work with the context it was given
var ErrInvalidContext = errors.New("invalid analysis context")

// priorityThreshold is the normalized weight above which a priority rule fires
const priorityThreshold = 0.7

// armatureCeiling is the factory ceiling of the max armature current function
const armatureCeiling = 255

// lithiumCutoffs maps nominal pack voltage to low-voltage cutoff at ~3.5 V/cell
var lithiumCutoffs = map[int]int{
	36: 32,
	48: 42,
	60: 54,
	72: 63,
	84: 74,
	96: 84,
}

// LowVoltageCutoff returns the low-voltage cutoff for a pack. Lead-acid uses
// 87.5% of nominal. Lithium uses the cutoff table; exact is false when the
// nearest table entry was used instead.
func LowVoltageCutoff(voltage int, lithium bool) (cutoff int, exact bool) {
	if !lithium {
		return round(float64(voltage) * 0.875), true
	}
	if c, ok := lithiumCutoffs[voltage]; ok {
		return c, true
	}
	nearest, best := 0, math.MaxInt
	for v := range lithiumCutoffs {
		d := absInt(v - voltage)
		if d < best || (d == best && v < nearest) {
			nearest, best = v, d
		}
	}
	return lithiumCutoffs[nearest], false
}

func applyTireGear(s catalog.Settings, ctx models.AnalysisContext) error {
	tire, gear := ctx.TireSizeRatio, ctx.GearRatioFactor
	if tire <= 0 || gear <= 0 {
		return ErrInvalidContext
	}
	speedScale := tire / gear
	s[catalog.MPHScaling] = scale(s[catalog.MPHScaling], speedScale)
	s[catalog.OdometerCalibration] = scale(s[catalog.OdometerCalibration], speedScale)

	if tire > 1.05 || gear < 0.95 {
		s[catalog.FieldWeakeningCurrent] = scale(s[catalog.FieldWeakeningCurrent], speedScale)
	}
	if gear > 1.05 {
		s[catalog.FieldWeakeningCurrent] = scale(s[catalog.FieldWeakeningCurrent], 0.9)
		s[catalog.ControlledAcceleration] = max(s[catalog.ControlledAcceleration]-2, 1)
	}
	return nil
}

func applyBattery(s catalog.Settings, ctx models.AnalysisContext) error {
	if ctx.BatteryVoltage <= 0 || ctx.CapacityAh <= 0 {
		return ErrInvalidContext
	}
	s[catalog.BatteryVolts] = ctx.BatteryVoltage
	s[catalog.LowBatteryVolts], _ = LowVoltageCutoff(ctx.BatteryVoltage, ctx.IsLithium)

	ir := s[catalog.IRCompensation]
	if ctx.IsLithium {
		ir = max(ir-2, 1)
		s[catalog.RegenArmatureCurrent] = scale(s[catalog.RegenArmatureCurrent], 1.1)
		s[catalog.RegenMaxFieldCurrent] = scale(s[catalog.RegenMaxFieldCurrent], 1.1)
	} else if ctx.CapacityAh < 100 {
		ir++
	}
	if ctx.BatteryAgeYears > 3 {
		ir++
	}
	s[catalog.IRCompensation] = ir

	s[catalog.PlugCurrent] = scale(s[catalog.PlugCurrent], ctx.CapacityAh/ReferenceCapacityAh)
	return nil
}

func applyMotorProtection(s catalog.Settings, ctx models.AnalysisContext) error {
	risk := ctx.MotorRisk
	if risk <= 0 {
		return nil
	}
	s[catalog.MinFieldCurrent] += round(20 * risk)
	s[catalog.FieldWeakeningDelay] += round(10 * risk)
	s[catalog.MPHOverspeed] -= round(10 * risk)
	s[catalog.ErrorCompensation] /= 2
	return nil
}

func applyTerrain(s catalog.Settings, ctx models.AnalysisContext) error {
	if ctx.TerrainDifficulty <= 0.5 && ctx.LoadFactor <= 1.4 {
		return nil
	}
	s[catalog.ControlledAcceleration] = max(s[catalog.ControlledAcceleration]-2, 5)
	s[catalog.MaxArmatureCurrent] = armatureCeiling
	s[catalog.RegenArmatureCurrent] = scale(s[catalog.RegenArmatureCurrent], 1.1)
	s[catalog.FieldToArmatureRatio] += 5
	return nil
}

func applyPriorities(s catalog.Settings, ctx models.AnalysisContext) error {
	p := ctx.Priorities
	if p.Speed > priorityThreshold {
		s[catalog.FieldWeakeningCurrent] = scale(s[catalog.FieldWeakeningCurrent], 1.1)
		s[catalog.MPHOverspeed] += 3
		s[catalog.MPHScaling]++
	}
	if p.Acceleration > priorityThreshold {
		s[catalog.ControlledAcceleration] = max(s[catalog.ControlledAcceleration]-3, 5)
		s[catalog.ArmatureAccelRate] += 10
	}
	if p.Range > priorityThreshold {
		s[catalog.MaxArmatureCurrent] = scale(s[catalog.MaxArmatureCurrent], 0.95)
		s[catalog.ControlledAcceleration] += 2
		s[catalog.RegenArmatureCurrent] = scale(s[catalog.RegenArmatureCurrent], 1.05)
	}
	if p.Regen > priorityThreshold {
		s[catalog.RegenArmatureCurrent] = scale(s[catalog.RegenArmatureCurrent], 1.1)
		s[catalog.RegenMaxFieldCurrent] = scale(s[catalog.RegenMaxFieldCurrent], 1.15)
		s[catalog.RegenStartSpeed] = max(s[catalog.RegenStartSpeed]-2, 0)
	}
	return nil
}

func applyCreepSpeed(s catalog.Settings, ctx models.AnalysisContext) error {
	switch {
	case ctx.TerrainDifficulty >= 0.7 && ctx.LoadFactor >= 1.4:
		s[catalog.CreepSpeed] = 5
	case ctx.TerrainDifficulty >= 0.7:
		s[catalog.CreepSpeed] = 3
	case ctx.Priorities.Acceleration > priorityThreshold:
		s[catalog.CreepSpeed] = 2
	default:
		s[catalog.CreepSpeed] = 0
	}
	return nil
}

func applyPlugCurrent(s catalog.Settings, ctx models.AnalysisContext) error {
	if ctx.CapacityAh <= 0 {
		return ErrInvalidContext
	}
	factory := catalog.FactoryDefaults()[catalog.PlugCurrent]
	v := float64(factory) * clampFloat(ctx.CapacityAh/ReferenceCapacityAh, 0.8, 1.3)
	if ctx.IsLithium {
		v *= 1.05
	}
	if ctx.TerrainDifficulty >= 0.9 {
		v *= 1.1
	}
	s[catalog.PlugCurrent] = round(v)
	return nil
}

func applyFieldRamp(s catalog.Settings, ctx models.AnalysisContext) error {
	p := ctx.Priorities
	switch {
	case ctx.MotorRisk >= 0.5:
		s[catalog.FieldRampRate] = 3
	case ctx.TemperatureFactor >= 0.9:
		s[catalog.FieldRampRate] = 5
	case p.Acceleration > priorityThreshold:
		s[catalog.FieldRampRate] = 10
	case p.Range > priorityThreshold:
		s[catalog.FieldRampRate] = 3
	case ctx.TerrainDifficulty > 0.5:
		s[catalog.FieldRampRate] = 7
	default:
		s[catalog.FieldRampRate] = 5
	}
	return nil
}

func applyArmatureRamp(s catalog.Settings, ctx models.AnalysisContext) error {
	switch {
	case ctx.MotorRisk >= 0.5:
		s[catalog.ArmatureCurrentRamp] = 2
	case ctx.LoadFactor >= 1.5:
		s[catalog.ArmatureCurrentRamp] = 4
	case ctx.Priorities.Acceleration > priorityThreshold:
		s[catalog.ArmatureCurrentRamp] = 6
	default:
		s[catalog.ArmatureCurrentRamp] = 3
	}
	return nil
}

func applyErrorCompensation(s catalog.Settings, ctx models.AnalysisContext) error {
	switch {
	case ctx.MotorRisk >= 1:
		s[catalog.ErrorCompensation] = 1
	case ctx.MotorRisk >= 0.5:
		s[catalog.ErrorCompensation] = 2
	case ctx.BatteryVoltage >= 84:
		s[catalog.ErrorCompensation] = 3
	case ctx.Model == "e6" || ctx.Model == "elxd":
		s[catalog.ErrorCompensation] = 5
	default:
		s[catalog.ErrorCompensation] = 4
	}
	return nil
}

func scale(v int, f float64) int {
	return round(float64(v) * f)
}

func round(f float64) int {
	return int(math.Round(f))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
