package trip

import (
	"fmt"
	"math"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
)

// Condition bands narrow a few functions further than the trip limits.
var (
	wetBands = map[int]catalog.Bound{
		catalog.ControlledAcceleration: {Min: 20, Max: 25},
		catalog.TurfSpeedLimit:         {Min: 5, Max: 15},
	}
	heavyLoadBands = map[int]catalog.Bound{
		catalog.ControlledAcceleration: {Min: 12, Max: 28},
		catalog.TurfSpeedLimit:         {Min: 5, Max: 18},
	}
)

// Adjuster applies trip overrides to a base-optimized vector and revalidates
// the result against condition bands, trip limits and base bounds.
type Adjuster struct {
	tripLimits *optimizer.Enforcer
	base       *optimizer.Enforcer
}

// NewAdjuster creates an Adjuster with the catalog trip limits and base bounds.
func NewAdjuster() *Adjuster {
	return &Adjuster{
		tripLimits: optimizer.TripEnforcer(),
		base:       optimizer.DefaultEnforcer(),
	}
}

// Adjust returns a new vector; s is never modified.
func (ad *Adjuster) Adjust(s catalog.Settings, a models.TripAnalysis) (catalog.Settings, error) {
	out := s.Clone()
	applyOverrides(out, a)
	applyBands(out, a)

	limited, _, err := ad.tripLimits.Enforce(out)
	if err != nil {
		return nil, fmt.Errorf("failed to apply trip limits: %w", err)
	}
	final, _, err := ad.base.Enforce(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to apply safety bounds: %w", err)
	}
	return final, nil
}

func applyOverrides(s catalog.Settings, a models.TripAnalysis) {
	switch a.Temperature {
	case models.TripHot:
		s[catalog.MaxArmatureCurrent] = scale(s[catalog.MaxArmatureCurrent], 0.9)
		s[catalog.ControlledAcceleration] += 3
	case models.TripCold:
		s[catalog.IRCompensation]++
	case models.TripOptimal:
	}
	if a.Wet {
		s[catalog.ControlledAcceleration] += 5
		s[catalog.TurfSpeedLimit] -= 5
	}
	if a.TerrainDifficulty == models.TerrainExtreme {
		s[catalog.MaxFieldCurrent] = 255
		s[catalog.FieldToArmatureRatio] = 50
		s[catalog.FieldWeakeningDelay] += 10
	}
	if a.Load == models.TripLoadHeavy {
		s[catalog.MaxArmatureCurrent] = max(s[catalog.MaxArmatureCurrent], 245)
	}
	if a.Distance == models.DistanceLong || a.ChargingLikelyNeeded {
		s[catalog.RegenArmatureCurrent] = scale(s[catalog.RegenArmatureCurrent], 1.1)
		s[catalog.MaxArmatureCurrent] = scale(s[catalog.MaxArmatureCurrent], 0.95)
	}
	if a.ElderlyPassengers {
		s[catalog.ControlledAcceleration] += 4
		s[catalog.ArmatureAccelRate] -= 10
	}
	if a.Parade {
		s[catalog.MPHScaling] = 15
		s[catalog.ControlledAcceleration] = 30
		s[catalog.ArmatureAccelRate] = 25
		s[catalog.TurfSpeedLimit] = 8
		s[catalog.CreepSpeed] = 2
	}
}

func applyBands(s catalog.Settings, a models.TripAnalysis) {
	if a.Wet {
		clampInto(s, wetBands)
	}
	if a.Load == models.TripLoadHeavy {
		clampInto(s, heavyLoadBands)
	}
}

func clampInto(s catalog.Settings, bands map[int]catalog.Bound) {
	for k, b := range bands {
		s[k] = b.Clamp(s[k])
	}
}

func scale(v int, f float64) int {
	return int(math.Round(float64(v) * f))
}
