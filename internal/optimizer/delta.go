package optimizer

import (
	"fmt"
	"math"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// NoSignificantChange is reported when no delta crosses its threshold.
const NoSignificantChange = "Settings remain close to factory defaults"

// ratio returns a/b, or 1 when b is zero so the term contributes nothing.
func ratio(a, b int) float64 {
	if b == 0 {
		return 1
	}
	return float64(a) / float64(b)
}

// CalculateDeltas estimates the percentage change of each performance
// dimension between factory and optimized settings.
func CalculateDeltas(factory, optimized catalog.Settings, ctx models.AnalysisContext) models.PerformanceDeltas {
	f, o := factory, optimized
	return models.PerformanceDeltas{
		Speed: (ratio(o[catalog.FieldWeakeningCurrent], f[catalog.FieldWeakeningCurrent])-1)*50 +
			(ctx.TireSizeRatio-1)*100,
		Acceleration: (ratio(f[catalog.ControlledAcceleration], o[catalog.ControlledAcceleration])-1)*100 +
			(ratio(o[catalog.ArmatureAccelRate], f[catalog.ArmatureAccelRate])-1)*50,
		HillClimbing: (ratio(o[catalog.MaxArmatureCurrent], f[catalog.MaxArmatureCurrent])-1)*100 +
			(ratio(o[catalog.FieldToArmatureRatio], f[catalog.FieldToArmatureRatio])-1)*50,
		Range: (ratio(f[catalog.MaxArmatureCurrent], o[catalog.MaxArmatureCurrent])-1)*50 +
			(ratio(o[catalog.RegenArmatureCurrent], f[catalog.RegenArmatureCurrent])-1)*30,
		MotorProtection: (ratio(o[catalog.MinFieldCurrent], f[catalog.MinFieldCurrent])-1)*100 +
			(ratio(f[catalog.MPHOverspeed], o[catalog.MPHOverspeed])-1)*50,
		Regen: (ratio(o[catalog.RegenArmatureCurrent], f[catalog.RegenArmatureCurrent])-1)*100 +
			(ratio(o[catalog.RegenMaxFieldCurrent], f[catalog.RegenMaxFieldCurrent])-1)*50,
	}
}

// DescribeChanges turns deltas and per-function changes into sentences.
func DescribeChanges(d models.PerformanceDeltas, factory, optimized catalog.Settings) []string {
	var out []string

	if math.Abs(d.Speed) > 5 {
		out = append(out, fmt.Sprintf("Top speed %s by approximately %.0f%%", direction(d.Speed), math.Abs(d.Speed)))
	}
	if math.Abs(d.Acceleration) > 10 {
		if d.Acceleration > 0 {
			out = append(out, fmt.Sprintf("Acceleration improved by approximately %.0f%%", d.Acceleration))
		} else {
			out = append(out, fmt.Sprintf("Acceleration softened by approximately %.0f%% for smoother starts", -d.Acceleration))
		}
	}
	if d.HillClimbing > 5 {
		out = append(out, fmt.Sprintf("Hill climbing torque increased by approximately %.0f%%", d.HillClimbing))
	}
	if math.Abs(d.Range) > 5 {
		out = append(out, fmt.Sprintf("Estimated range %s by approximately %.0f%%", direction(d.Range), math.Abs(d.Range)))
	}
	switch {
	case d.MotorProtection > 20:
		out = append(out, "Motor protection significantly enhanced")
	case d.MotorProtection > 5:
		out = append(out, "Motor protection enhanced")
	}
	if d.Regen > 10 {
		out = append(out, fmt.Sprintf("Regenerative braking strengthened by approximately %.0f%%", d.Regen))
	}

	f, o := factory, optimized
	if v := o[catalog.CreepSpeed]; v != f[catalog.CreepSpeed] {
		if v == 0 {
			out = append(out, "Creep speed disabled")
		} else {
			out = append(out, fmt.Sprintf("Creep speed set to %d for low-speed maneuvering", v))
		}
	}
	if fp := f[catalog.PlugCurrent]; fp > 0 {
		if pct := (float64(o[catalog.PlugCurrent]) - float64(fp)) / float64(fp) * 100; math.Abs(pct) > 10 {
			out = append(out, fmt.Sprintf("Plug braking current %s by %.0f%% to match battery capacity", direction(pct), math.Abs(pct)))
		}
	}
	if diff := o[catalog.FieldRampRate] - f[catalog.FieldRampRate]; absInt(diff) >= 2 {
		if diff > 0 {
			out = append(out, "Field ramp rate quickened for sharper response")
		} else {
			out = append(out, "Field ramp rate slowed for gentler field changes")
		}
	}
	if o[catalog.ArmatureCurrentRamp] != f[catalog.ArmatureCurrentRamp] {
		out = append(out, fmt.Sprintf("Armature current ramp adjusted to %d", o[catalog.ArmatureCurrentRamp]))
	}
	if o[catalog.ErrorCompensation] != f[catalog.ErrorCompensation] {
		out = append(out, fmt.Sprintf("Speed regulation compensation adjusted to %d", o[catalog.ErrorCompensation]))
	}

	if len(out) == 0 {
		return []string{NoSignificantChange}
	}
	return out
}

func direction(v float64) string {
	if v >= 0 {
		return "increased"
	}
	return "decreased"
}
