package models

import "github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"

// NormalizedPriorities holds priority weights scaled to 0-1
type NormalizedPriorities struct {
	Range        float64 `json:"range"`
	Speed        float64 `json:"speed"`
	Acceleration float64 `json:"acceleration"`
	HillClimbing float64 `json:"hillClimbing"`
	Regen        float64 `json:"regen"`
}

// AnalysisContext is derived once per optimization call and never persisted
type AnalysisContext struct {
	Model             string               `json:"model"`
	VehicleWeightLbs  int                  `json:"vehicleWeightLbs"`
	TireSizeRatio     float64              `json:"tireSizeRatio"`
	GearRatioFactor   float64              `json:"gearRatioFactor"`
	BatteryVoltage    int                  `json:"batteryVoltage"`
	IsLithium         bool                 `json:"isLithium"`
	CapacityAh        float64              `json:"capacityAh"`
	BatteryAgeYears   float64              `json:"batteryAgeYears"`
	MotorRisk         float64              `json:"motorRisk"`
	TerrainDifficulty float64              `json:"terrainDifficulty"`
	LoadFactor        float64              `json:"loadFactor"`
	TemperatureFactor float64              `json:"temperatureFactor"`
	Priorities        NormalizedPriorities `json:"priorities"`

	// Defaulted is set when analysis failed and the default context was used
	Defaulted bool `json:"defaulted,omitempty"`
}

// StageOutcome records what one pipeline stage did
type StageOutcome struct {
	Stage   string `json:"stage"`
	Changed []int  `json:"changed,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the stage was skipped because of an error
func (o StageOutcome) Failed() bool {
	return o.Error != ""
}

// PerformanceDeltas holds estimated percentage changes versus factory settings
type PerformanceDeltas struct {
	Speed           float64 `json:"speed"`
	Acceleration    float64 `json:"acceleration"`
	HillClimbing    float64 `json:"hillClimbing"`
	Range           float64 `json:"range"`
	MotorProtection float64 `json:"motorProtection"`
	Regen           float64 `json:"regen"`
}

// AnalysisData carries diagnostic detail alongside a result
type AnalysisData struct {
	Context           AnalysisContext   `json:"context"`
	Stages            []StageOutcome    `json:"stages,omitempty"`
	Deltas            PerformanceDeltas `json:"deltas"`
	RejectedBaseline  []int             `json:"rejectedBaseline,omitempty"`
	ClampedFunctions  []int             `json:"clampedFunctions,omitempty"`
	EnforcementFailed bool              `json:"enforcementFailed,omitempty"`
}

// OptimizationResult is the outcome of one optimization call. OptimizedSettings
// is always fully populated, even on failure.
type OptimizationResult struct {
	Success            bool             `json:"success"`
	EmergencyFallback  bool             `json:"emergencyFallback,omitempty"`
	FactorySettings    catalog.Settings `json:"factorySettings"`
	BaselineSettings   catalog.Settings `json:"baselineSettings"`
	OptimizedSettings  catalog.Settings `json:"optimizedSettings"`
	PerformanceChanges []string         `json:"performanceChanges"`
	Warnings           []string         `json:"warnings"`
	AnalysisData       AnalysisData     `json:"analysisData"`
	ErrorMessage       string           `json:"errorMessage,omitempty"`
}
