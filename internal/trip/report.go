package trip

import (
	"fmt"
	"math"
	"strings"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// MinConfidence is the lowest confidence a report carries.
const MinConfidence = 50

// keyChangeRatio is the relative change above which a function is reported.
const keyChangeRatio = 0.10

var terrainRangeFactor = map[models.TerrainDifficulty]float64{
	models.TerrainEasy:     1.0,
	models.TerrainModerate: 0.9,
	models.TerrainHard:     0.8,
	models.TerrainExtreme:  0.7,
}

// BuildReport summarizes a trip optimization for the driver.
func BuildReport(a models.TripAnalysis, factory, optimized catalog.Settings) models.TripReport {
	return models.TripReport{
		Summary:             summary(a),
		KeyOptimizations:    keyOptimizations(factory, optimized),
		Warnings:            reportWarnings(a),
		Recommendations:     recommendations(a),
		ExpectedPerformance: ExpectedPerformance(a, factory, optimized),
		Confidence:          Confidence(a),
	}
}

func summary(a models.TripAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Settings tuned for a %s trip on %s terrain with a %s load", a.Distance, a.TerrainDifficulty, a.Load)
	switch a.Temperature {
	case models.TripHot:
		b.WriteString(" in hot weather")
	case models.TripCold:
		b.WriteString(" in cold weather")
	case models.TripOptimal:
	}
	if a.Wet {
		b.WriteString(" on wet roads")
	}
	if a.Parade {
		b.WriteString(", in parade mode")
	}
	b.WriteString(".")
	return b.String()
}

func keyOptimizations(factory, optimized catalog.Settings) []models.KeyOptimization {
	out := []models.KeyOptimization{}
	for n := 1; n <= catalog.FunctionCount; n++ {
		f, o := factory[n], optimized[n]
		if f == o {
			continue
		}
		pct := 100.0
		if f != 0 {
			pct = float64(o-f) / float64(f) * 100
			if math.Abs(pct) <= keyChangeRatio*100 {
				continue
			}
		}
		out = append(out, models.KeyOptimization{
			Function:      n,
			Name:          catalog.Name(n),
			Factory:       f,
			Optimized:     o,
			ChangePercent: round1(pct),
		})
	}
	return out
}

func reportWarnings(a models.TripAnalysis) []string {
	w := []string{}
	if a.TerrainDifficulty == models.TerrainExtreme {
		w = append(w, fmt.Sprintf("Extreme grades up to %.0f%% expected; monitor motor temperature on long climbs", a.MaxGrade))
	}
	if a.ChargingLikelyNeeded {
		w = append(w, fmt.Sprintf("Trip of %.1f miles may exceed the estimated %.1f mile range; plan a charging stop", a.TotalMiles, a.EstimatedRangeMiles))
	}
	if a.Load == models.TripLoadHeavy && (a.TerrainDifficulty == models.TerrainHard || a.TerrainDifficulty == models.TerrainExtreme) {
		w = append(w, "Heavy load on steep terrain increases motor and brake stress")
	}
	if a.Wet {
		w = append(w, "Wet roads expected; acceleration and turf speed have been reduced")
	}
	switch a.Temperature {
	case models.TripHot:
		w = append(w, "High temperatures reduce battery and motor efficiency")
	case models.TripCold:
		w = append(w, "Cold temperatures reduce available battery capacity")
	case models.TripOptimal:
	}
	if a.Parade {
		w = append(w, "Parade mode limits top speed; restore normal settings afterwards")
	}
	return w
}

func recommendations(a models.TripAnalysis) map[string][]string {
	rec := map[string][]string{
		models.RecommendPreTrip: {"Fully charge the battery before departure", "Check tire pressure"},
		models.RecommendWeather: {},
		models.RecommendTerrain: {},
		models.RecommendLoad:    {},
	}
	if a.ChargingLikelyNeeded {
		rec[models.RecommendPreTrip] = append(rec[models.RecommendPreTrip], "Identify charging locations along the route")
	}
	if len(a.Missing) > 0 {
		rec[models.RecommendPreTrip] = append(rec[models.RecommendPreTrip],
			"Provide "+strings.Join(a.Missing, ", ")+" details for a more precise optimization")
	}

	if a.Wet {
		rec[models.RecommendWeather] = append(rec[models.RecommendWeather], "Allow extra braking distance")
	}
	if a.Windy {
		rec[models.RecommendWeather] = append(rec[models.RecommendWeather], "Expect reduced range in strong headwinds")
	}
	switch a.Temperature {
	case models.TripHot:
		rec[models.RecommendWeather] = append(rec[models.RecommendWeather], "Avoid prolonged full-throttle climbs in the heat")
	case models.TripCold:
		rec[models.RecommendWeather] = append(rec[models.RecommendWeather], "Keep the vehicle sheltered before departure to warm the battery")
	case models.TripOptimal:
	}

	switch a.TerrainDifficulty {
	case models.TerrainHard, models.TerrainExtreme:
		rec[models.RecommendTerrain] = append(rec[models.RecommendTerrain], "Descend steep grades slowly and let regen do the braking")
	case models.TerrainEasy, models.TerrainModerate:
	}
	if a.LooseSurface {
		rec[models.RecommendTerrain] = append(rec[models.RecommendTerrain], "Reduce speed on loose surfaces")
	}

	if a.Load == models.TripLoadHeavy {
		rec[models.RecommendLoad] = append(rec[models.RecommendLoad], "Distribute weight evenly front to back")
	}
	if a.Cargo {
		rec[models.RecommendLoad] = append(rec[models.RecommendLoad], "Secure all cargo before driving")
	}
	if a.ElderlyPassengers || a.Children {
		rec[models.RecommendLoad] = append(rec[models.RecommendLoad], "Confirm every passenger is seated before moving")
	}
	return rec
}

// ExpectedPerformance estimates trip performance from the final settings.
func ExpectedPerformance(a models.TripAnalysis, factory, optimized catalog.Settings) models.ExpectedPerformance {
	f := func(n int) float64 { return float64(factory[n]) }
	o := func(n int) float64 { return float64(optimized[n]) }
	rel := func(num, den float64) float64 {
		if den == 0 {
			return 0
		}
		return num / den
	}

	rangeMiles := a.EstimatedRangeMiles *
		(1 + rel(f(catalog.MaxArmatureCurrent)-o(catalog.MaxArmatureCurrent), f(catalog.MaxArmatureCurrent))*0.5 +
			rel(o(catalog.RegenArmatureCurrent)-f(catalog.RegenArmatureCurrent), f(catalog.RegenArmatureCurrent))*0.2)
	if tf, ok := terrainRangeFactor[a.TerrainDifficulty]; ok {
		rangeMiles *= tf
	}
	if a.Temperature == models.TripCold {
		rangeMiles *= 0.8
	}
	if a.Load == models.TripLoadHeavy {
		rangeMiles *= 0.85
	}

	topSpeed := 25 * rel(o(catalog.MPHScaling), f(catalog.MPHScaling)) *
		(1 + rel(o(catalog.FieldWeakeningCurrent)-f(catalog.FieldWeakeningCurrent), f(catalog.FieldWeakeningCurrent))*0.3)

	accel := clamp(10-o(catalog.ControlledAcceleration)/3+(o(catalog.ArmatureAccelRate)-60)/20, 0, 10)

	hill := 15 * rel(o(catalog.MaxArmatureCurrent), f(catalog.MaxArmatureCurrent)) *
		rel(o(catalog.FieldToArmatureRatio), f(catalog.FieldToArmatureRatio))

	eff := clamp(70+
		rel(f(catalog.MaxArmatureCurrent)-o(catalog.MaxArmatureCurrent), f(catalog.MaxArmatureCurrent))*100+
		rel(o(catalog.RegenArmatureCurrent)-f(catalog.RegenArmatureCurrent), f(catalog.RegenArmatureCurrent))*50, 0, 100)

	return models.ExpectedPerformance{
		RangeMiles:         round1(rangeMiles),
		TopSpeedMPH:        round1(topSpeed),
		AccelerationRating: round1(accel),
		HillClimbingGrade:  round1(hill),
		Efficiency:         round1(eff),
	}
}

// Confidence scores how much the report can be trusted given the inputs
// that were missing and the severity of the conditions.
func Confidence(a models.TripAnalysis) int {
	c := 100
	for _, m := range a.Missing {
		switch m {
		case MissingWeather, MissingTerrain:
			c -= 10
		case MissingPassengers, MissingDistance:
			c -= 5
		}
	}
	switch a.TerrainDifficulty {
	case models.TerrainExtreme:
		c -= 15
	case models.TerrainHard:
		c -= 10
	case models.TerrainEasy, models.TerrainModerate:
	}
	if a.Wet {
		c -= 10
	}
	if a.ChargingLikelyNeeded {
		c -= 10
	}
	if a.Temperature == models.TripHot || a.Temperature == models.TripCold {
		c -= 5
	}
	return max(c, MinConfidence)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
