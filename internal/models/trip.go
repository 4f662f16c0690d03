package models

import "github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"

// Weather is the forecast for a planned trip
type Weather struct {
	TemperatureF float64 `json:"temperatureF" yaml:"temperatureF"`
	Conditions   string  `json:"conditions,omitempty" yaml:"conditions,omitempty"` // e.g. "clear", "rain"
	WindSpeedMPH float64 `json:"windSpeedMph,omitempty" yaml:"windSpeedMph,omitempty"`
	Humidity     float64 `json:"humidity,omitempty" yaml:"humidity,omitempty"`
}

// TerrainData summarizes the route profile
type TerrainData struct {
	MaxGrade        float64 `json:"maxGrade" yaml:"maxGrade"` // percent
	AvgGrade        float64 `json:"avgGrade,omitempty" yaml:"avgGrade,omitempty"`
	ElevationGainFt float64 `json:"elevationGainFt,omitempty" yaml:"elevationGainFt,omitempty"`
	Surface         string  `json:"surface,omitempty" yaml:"surface,omitempty"` // paved, gravel, dirt
}

// Passengers describes the trip load
type Passengers struct {
	Count    int     `json:"count" yaml:"count"`
	CargoLbs float64 `json:"cargoLbs,omitempty" yaml:"cargoLbs,omitempty"`
}

// DistanceDetails describes trip length
type DistanceDetails struct {
	EstimatedMiles float64 `json:"estimatedMiles" yaml:"estimatedMiles"`
	RoundTrip      bool    `json:"roundTrip,omitempty" yaml:"roundTrip,omitempty"`
}

// Schedule describes when the trip happens
type Schedule struct {
	DepartureTime string  `json:"departureTime,omitempty" yaml:"departureTime,omitempty"` // HH:MM, 24h
	DurationHours float64 `json:"durationHours,omitempty" yaml:"durationHours,omitempty"`
	TimeSensitive bool    `json:"timeSensitive,omitempty" yaml:"timeSensitive,omitempty"`
}

// TripData is the input to trip optimization. Nil sections are treated as unknown.
type TripData struct {
	Vehicle             VehicleProfile     `json:"vehicle" yaml:"vehicle"`
	Battery             BatteryProfile     `json:"battery" yaml:"battery"`
	Wheel               WheelProfile       `json:"wheel" yaml:"wheel"`
	Environment         EnvironmentProfile `json:"environment" yaml:"environment"`
	Weather             *Weather           `json:"weather,omitempty" yaml:"weather,omitempty"`
	Terrain             *TerrainData       `json:"terrain,omitempty" yaml:"terrain,omitempty"`
	Passengers          *Passengers        `json:"passengers,omitempty" yaml:"passengers,omitempty"`
	DistanceDetails     *DistanceDetails   `json:"distanceDetails,omitempty" yaml:"distanceDetails,omitempty"`
	Schedule            *Schedule          `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	SpecialRequirements []string           `json:"specialRequirements,omitempty" yaml:"specialRequirements,omitempty"`
}

// TemperatureJudgment classifies the trip temperature
type TemperatureJudgment string

const (
	TripHot     TemperatureJudgment = "hot"
	TripCold    TemperatureJudgment = "cold"
	TripOptimal TemperatureJudgment = "optimal"
)

// TerrainDifficulty classifies the route grade
type TerrainDifficulty string

const (
	TerrainEasy     TerrainDifficulty = "easy"
	TerrainModerate TerrainDifficulty = "moderate"
	TerrainHard     TerrainDifficulty = "hard"
	TerrainExtreme  TerrainDifficulty = "extreme"
)

// LoadJudgment classifies trip load
type LoadJudgment string

const (
	TripLoadLight    LoadJudgment = "light"
	TripLoadModerate LoadJudgment = "moderate"
	TripLoadHeavy    LoadJudgment = "heavy"
)

// DistanceJudgment classifies trip length
type DistanceJudgment string

const (
	DistanceShort  DistanceJudgment = "short"
	DistanceMedium DistanceJudgment = "medium"
	DistanceLong   DistanceJudgment = "long"
)

// TripPriorities are 0-10 trip priorities derived from conditions
type TripPriorities struct {
	Range        float64 `json:"range"`
	Speed        float64 `json:"speed"`
	Acceleration float64 `json:"acceleration"`
	HillClimbing float64 `json:"hillClimbing"`
	Regen        float64 `json:"regen"`
	Safety       float64 `json:"safety"`
	Comfort      float64 `json:"comfort"`
	Efficiency   float64 `json:"efficiency"`
}

// TripAnalysis holds categorical judgments about a trip
type TripAnalysis struct {
	Temperature          TemperatureJudgment `json:"temperature"`
	Wet                  bool                `json:"wet"`
	Windy                bool                `json:"windy"`
	TerrainDifficulty    TerrainDifficulty   `json:"terrainDifficulty"`
	MaxGrade             float64             `json:"maxGrade"`
	LooseSurface         bool                `json:"looseSurface"`
	Load                 LoadJudgment        `json:"load"`
	TotalWeightLbs       float64             `json:"totalWeightLbs"`
	Distance             DistanceJudgment    `json:"distance"`
	TotalMiles           float64             `json:"totalMiles"`
	EstimatedRangeMiles  float64             `json:"estimatedRangeMiles"`
	ChargingLikelyNeeded bool                `json:"chargingLikelyNeeded"`
	Night                bool                `json:"night"`
	TimeSensitive        bool                `json:"timeSensitive"`
	Parade               bool                `json:"parade"`
	ElderlyPassengers    bool                `json:"elderlyPassengers"`
	Children             bool                `json:"children"`
	Cargo                bool                `json:"cargo"`
	Missing              []string            `json:"missing,omitempty"`
	Priorities           TripPriorities      `json:"priorities"`
}

// KeyOptimization is a function whose value moved more than 10% from factory
type KeyOptimization struct {
	Function      int     `json:"function"`
	Name          string  `json:"name"`
	Factory       int     `json:"factory"`
	Optimized     int     `json:"optimized"`
	ChangePercent float64 `json:"changePercent"`
}

// ExpectedPerformance holds simplified estimates derived from final settings
type ExpectedPerformance struct {
	RangeMiles         float64 `json:"rangeMiles"`
	TopSpeedMPH        float64 `json:"topSpeedMph"`
	AccelerationRating float64 `json:"accelerationRating"` // 0-10
	HillClimbingGrade  float64 `json:"hillClimbingGrade"`  // percent
	Efficiency         float64 `json:"efficiency"`         // 0-100
}

// Recommendation categories
const (
	RecommendPreTrip = "pre_trip"
	RecommendWeather = "weather"
	RecommendTerrain = "terrain"
	RecommendLoad    = "load"
)

// TripReport is the human-facing summary of a trip optimization
type TripReport struct {
	Summary             string              `json:"summary"`
	KeyOptimizations    []KeyOptimization   `json:"keyOptimizations"`
	Warnings            []string            `json:"warnings"`
	Recommendations     map[string][]string `json:"recommendations"`
	ExpectedPerformance ExpectedPerformance `json:"expectedPerformance"`
	Confidence          int                 `json:"confidence"`
}

// TripOptimizationResult is the outcome of a trip optimization
type TripOptimizationResult struct {
	Success           bool                `json:"success"`
	FallbackMode      bool                `json:"fallbackMode,omitempty"`
	FactorySettings   catalog.Settings    `json:"factorySettings"`
	OptimizedSettings catalog.Settings    `json:"optimizedSettings"`
	BaseResult        *OptimizationResult `json:"baseResult,omitempty"`
	Analysis          *TripAnalysis       `json:"analysis,omitempty"`
	Report            *TripReport         `json:"report,omitempty"`
	Warnings          []string            `json:"warnings"`
	Message           string              `json:"message,omitempty"`
}
