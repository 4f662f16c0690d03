// Package trip layers trip-specific analysis, adjustments and reporting on
// top of the base optimizer.
package trip

import (
	"math"
	"strings"
	"time"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
)

// Classification thresholds.
const (
	hotAboveF        = 85.0
	coldBelowF       = 40.0
	windyAboveMPH    = 15.0
	passengerLbs     = 170.0
	heavyAboveLbs    = 600.0
	moderateAboveLbs = 300.0
	shortBelowMiles  = 10.0
	mediumBelowMiles = 25.0
	kWhPerMile       = 0.2
	chargingMargin   = 0.9
	nightFromHour    = 19
	nightUntilHour   = 6
)

// Sections reported in TripAnalysis.Missing.
const (
	MissingWeather    = "weather"
	MissingTerrain    = "terrain"
	MissingPassengers = "passengers"
	MissingDistance   = "distance"
)

// Analyze derives categorical judgments and trip priorities from td.
// Missing sections fall back to the environment profile where one applies.
func Analyze(td models.TripData) models.TripAnalysis {
	var a models.TripAnalysis

	analyzeWeather(td, &a)
	analyzeTerrain(td, &a)
	analyzeLoad(td, &a)
	analyzeDistance(td, &a)
	analyzeSchedule(td, &a)
	analyzeRequirements(td.SpecialRequirements, &a)

	a.Priorities = derivePriorities(a)
	return a
}

func analyzeWeather(td models.TripData, a *models.TripAnalysis) {
	w := td.Weather
	if w == nil {
		a.Missing = append(a.Missing, MissingWeather)
		temp, _ := models.ParseTemperature(string(td.Environment.Temperature))
		switch temp {
		case models.TemperatureHot:
			a.Temperature = models.TripHot
		case models.TemperatureCold:
			a.Temperature = models.TripCold
		default:
			a.Temperature = models.TripOptimal
		}
		return
	}

	switch {
	case w.TemperatureF > hotAboveF:
		a.Temperature = models.TripHot
	case w.TemperatureF < coldBelowF:
		a.Temperature = models.TripCold
	default:
		a.Temperature = models.TripOptimal
	}
	cond := strings.ToLower(w.Conditions)
	for _, wet := range []string{"rain", "snow", "storm", "drizzle", "sleet"} {
		if strings.Contains(cond, wet) {
			a.Wet = true
			break
		}
	}
	a.Windy = w.WindSpeedMPH > windyAboveMPH
}

func analyzeTerrain(td models.TripData, a *models.TripAnalysis) {
	t := td.Terrain
	if t == nil {
		a.Missing = append(a.Missing, MissingTerrain)
		terrain, _ := models.ParseTerrain(string(td.Environment.Terrain))
		switch terrain {
		case models.TerrainFlat:
			a.TerrainDifficulty = models.TerrainEasy
		case models.TerrainHilly:
			a.TerrainDifficulty = models.TerrainHard
		case models.TerrainSteep:
			a.TerrainDifficulty = models.TerrainExtreme
		default:
			a.TerrainDifficulty = models.TerrainModerate
		}
		a.MaxGrade = td.Environment.HillGrade
		return
	}

	a.MaxGrade = t.MaxGrade
	switch {
	case t.MaxGrade < 5:
		a.TerrainDifficulty = models.TerrainEasy
	case t.MaxGrade < 10:
		a.TerrainDifficulty = models.TerrainModerate
	case t.MaxGrade < 15:
		a.TerrainDifficulty = models.TerrainHard
	default:
		a.TerrainDifficulty = models.TerrainExtreme
	}
	switch strings.ToLower(strings.TrimSpace(t.Surface)) {
	case "gravel", "dirt", "sand", "grass":
		a.LooseSurface = true
	}
}

func analyzeLoad(td models.TripData, a *models.TripAnalysis) {
	p := td.Passengers
	if p == nil {
		a.Missing = append(a.Missing, MissingPassengers)
		load, _ := models.ParseLoad(string(td.Environment.Load))
		switch load {
		case models.LoadHeavy, models.LoadMax:
			a.Load = models.TripLoadHeavy
		case models.LoadMedium:
			a.Load = models.TripLoadModerate
		default:
			a.Load = models.TripLoadLight
		}
		return
	}

	a.TotalWeightLbs = float64(p.Count)*passengerLbs + p.CargoLbs
	switch {
	case a.TotalWeightLbs > heavyAboveLbs:
		a.Load = models.TripLoadHeavy
	case a.TotalWeightLbs > moderateAboveLbs:
		a.Load = models.TripLoadModerate
	default:
		a.Load = models.TripLoadLight
	}
	if p.CargoLbs > 0 {
		a.Cargo = true
	}
}

func analyzeDistance(td models.TripData, a *models.TripAnalysis) {
	a.EstimatedRangeMiles = EstimateRange(td.Battery)

	d := td.DistanceDetails
	if d == nil {
		a.Missing = append(a.Missing, MissingDistance)
		a.Distance = models.DistanceShort
		return
	}

	a.TotalMiles = d.EstimatedMiles
	if d.RoundTrip {
		a.TotalMiles *= 2
	}
	switch {
	case a.TotalMiles < shortBelowMiles:
		a.Distance = models.DistanceShort
	case a.TotalMiles < mediumBelowMiles:
		a.Distance = models.DistanceMedium
	default:
		a.Distance = models.DistanceLong
	}
	a.ChargingLikelyNeeded = a.TotalMiles > chargingMargin*a.EstimatedRangeMiles
}

// EstimateRange returns the nominal range in miles of a battery profile.
// Zero voltage or capacity falls back to the reference pack.
func EstimateRange(b models.BatteryProfile) float64 {
	capacity, voltage := b.CapacityAh, float64(b.Voltage)
	if capacity <= 0 {
		capacity = optimizer.ReferenceCapacityAh
	}
	if voltage <= 0 {
		voltage = optimizer.ReferenceVoltage
	}
	usable := 0.8
	if chem, _ := models.ParseChemistry(string(b.Chemistry)); chem == models.ChemistryLithium {
		usable = 0.9
	}
	return math.Round(capacity*voltage/1000*usable/kWhPerMile*10) / 10
}

func analyzeSchedule(td models.TripData, a *models.TripAnalysis) {
	s := td.Schedule
	if s == nil {
		return
	}
	a.TimeSensitive = s.TimeSensitive
	if s.DepartureTime == "" {
		return
	}
	dep, err := time.Parse("15:04", strings.TrimSpace(s.DepartureTime))
	if err != nil {
		return
	}
	h := dep.Hour()
	a.Night = h >= nightFromHour || h < nightUntilHour
}

func analyzeRequirements(reqs []string, a *models.TripAnalysis) {
	for _, r := range reqs {
		r = strings.ToLower(r)
		switch {
		case strings.Contains(r, "parade"):
			a.Parade = true
		case strings.Contains(r, "elderly"), strings.Contains(r, "senior"):
			a.ElderlyPassengers = true
		case strings.Contains(r, "child"), strings.Contains(r, "kid"):
			a.Children = true
		case strings.Contains(r, "cargo"), strings.Contains(r, "tow"):
			a.Cargo = true
		}
	}
}

func derivePriorities(a models.TripAnalysis) models.TripPriorities {
	p := models.TripPriorities{
		Range: 5, Speed: 5, Acceleration: 5, HillClimbing: 5,
		Regen: 5, Safety: 5, Comfort: 5, Efficiency: 5,
	}

	switch a.Temperature {
	case models.TripHot:
		p.Efficiency += 2
		p.Safety++
		p.Acceleration--
	case models.TripCold:
		p.Range += 2
		p.Regen--
	case models.TripOptimal:
	}
	if a.Wet {
		p.Safety += 4
		p.Acceleration -= 3
		p.Speed -= 2
		p.Regen -= 2
	}
	if a.Windy {
		p.Efficiency++
		p.Range++
	}

	switch a.TerrainDifficulty {
	case models.TerrainModerate:
		p.HillClimbing += 2
	case models.TerrainHard:
		p.HillClimbing += 4
		p.Regen += 2
		p.Safety++
	case models.TerrainExtreme:
		p.HillClimbing = 10
		p.Regen += 3
		p.Safety += 2
		p.Speed -= 2
	case models.TerrainEasy:
	}

	if a.Load == models.TripLoadHeavy {
		p.HillClimbing += 2
		p.Safety += 2
		p.Acceleration--
	}
	if a.Distance == models.DistanceLong || a.ChargingLikelyNeeded {
		p.Range += 3
		p.Efficiency += 2
		p.Speed--
	}
	if a.Night {
		p.Safety += 2
	}
	if a.TimeSensitive {
		p.Speed += 2
	}
	if a.Parade {
		p.Speed = 1
		p.Safety = 10
		p.Comfort = 10
	}
	if a.ElderlyPassengers {
		p.Comfort += 4
		p.Acceleration -= 3
		p.Safety += 2
	}
	if a.Children {
		p.Safety += 3
	}
	if a.Cargo {
		p.HillClimbing += 2
	}

	clamp := func(v *float64) { *v = math.Max(0, math.Min(10, *v)) }
	for _, v := range []*float64{&p.Range, &p.Speed, &p.Acceleration, &p.HillClimbing, &p.Regen, &p.Safety, &p.Comfort, &p.Efficiency} {
		clamp(v)
	}
	return p
}

// BaseInput folds a trip and its analysis into the base optimizer input.
func BaseInput(td models.TripData, a models.TripAnalysis) models.OptimizationInput {
	env := td.Environment

	switch a.TerrainDifficulty {
	case models.TerrainEasy:
		env.Terrain = models.TerrainFlat
	case models.TerrainModerate:
		env.Terrain = models.TerrainMixed
	case models.TerrainHard:
		env.Terrain = models.TerrainHilly
	case models.TerrainExtreme:
		env.Terrain = models.TerrainSteep
	}
	if td.Terrain != nil {
		env.HillGrade = td.Terrain.MaxGrade
	}

	if td.Passengers != nil {
		switch a.Load {
		case models.TripLoadHeavy:
			env.Load = models.LoadHeavy
		case models.TripLoadModerate:
			env.Load = models.LoadMedium
		case models.TripLoadLight:
			env.Load = models.LoadLight
		}
	}

	if td.Weather != nil {
		switch a.Temperature {
		case models.TripHot:
			env.Temperature = models.TemperatureHot
		case models.TripCold:
			env.Temperature = models.TemperatureCold
		case models.TripOptimal:
			env.Temperature = models.TemperatureMild
		}
	}

	p := a.Priorities
	return models.OptimizationInput{
		Vehicle:     td.Vehicle,
		Battery:     td.Battery,
		Wheel:       td.Wheel,
		Environment: env,
		Priorities: models.Priorities{
			Range:        models.Weight(p.Range),
			Speed:        models.Weight(p.Speed),
			Acceleration: models.Weight(p.Acceleration),
			HillClimbing: models.Weight(p.HillClimbing),
			Regen:        models.Weight(p.Regen),
		},
	}
}
