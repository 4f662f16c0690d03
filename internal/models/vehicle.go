// Package models contains data models for the GEM tuning service.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a categorical input is not one of the
// recognized values.
var ErrUnknownCategory = errors.New("unknown category")

// MotorCondition describes the observed state of the drive motor
type MotorCondition string

const (
	MotorGood     MotorCondition = "good"
	MotorFair     MotorCondition = "fair"
	MotorSparking MotorCondition = "sparking"
	MotorWorn     MotorCondition = "worn"
)

// Chemistry is the battery pack chemistry
type Chemistry string

const (
	ChemistryLead    Chemistry = "lead"
	ChemistryLithium Chemistry = "lithium"
)

// Terrain is the usual driving terrain
type Terrain string

const (
	TerrainFlat  Terrain = "flat"
	TerrainMixed Terrain = "mixed"
	TerrainHilly Terrain = "hilly"
	TerrainSteep Terrain = "steep"
)

// LoadCategory is the usual vehicle load
type LoadCategory string

const (
	LoadLight  LoadCategory = "light"
	LoadMedium LoadCategory = "medium"
	LoadHeavy  LoadCategory = "heavy"
	LoadMax    LoadCategory = "max"
)

// TemperatureCategory is the usual ambient temperature
type TemperatureCategory string

const (
	TemperatureCold TemperatureCategory = "cold"
	TemperatureMild TemperatureCategory = "mild"
	TemperatureHot  TemperatureCategory = "hot"
)

// normalize lower-cases and trims a categorical value.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseMotorCondition returns the closed enum value for s. An empty string
// means good.
func ParseMotorCondition(s string) (MotorCondition, error) {
	switch v := MotorCondition(normalize(s)); v {
	case "":
		return MotorGood, nil
	case MotorGood, MotorFair, MotorSparking, MotorWorn:
		return v, nil
	default:
		return "", fmt.Errorf("%w: motor condition %q", ErrUnknownCategory, s)
	}
}

// ParseChemistry returns the closed enum value for s. An empty string means lead.
func ParseChemistry(s string) (Chemistry, error) {
	switch v := normalize(s); v {
	case "", "lead", "lead-acid", "lead_acid", "leadacid":
		return ChemistryLead, nil
	case "lithium", "li-ion", "lifepo4":
		return ChemistryLithium, nil
	default:
		return "", fmt.Errorf("%w: battery chemistry %q", ErrUnknownCategory, s)
	}
}

// ParseTerrain returns the closed enum value for s. An empty string means mixed.
func ParseTerrain(s string) (Terrain, error) {
	switch v := Terrain(normalize(s)); v {
	case "":
		return TerrainMixed, nil
	case TerrainFlat, TerrainMixed, TerrainHilly, TerrainSteep:
		return v, nil
	default:
		return "", fmt.Errorf("%w: terrain %q", ErrUnknownCategory, s)
	}
}

// ParseLoad returns the closed enum value for s. An empty string means light.
func ParseLoad(s string) (LoadCategory, error) {
	switch v := LoadCategory(normalize(s)); v {
	case "":
		return LoadLight, nil
	case LoadLight, LoadMedium, LoadHeavy, LoadMax:
		return v, nil
	default:
		return "", fmt.Errorf("%w: load %q", ErrUnknownCategory, s)
	}
}

// ParseTemperature returns the closed enum value for s. An empty string means mild.
func ParseTemperature(s string) (TemperatureCategory, error) {
	switch v := TemperatureCategory(normalize(s)); v {
	case "":
		return TemperatureMild, nil
	case TemperatureCold, TemperatureMild, TemperatureHot:
		return v, nil
	default:
		return "", fmt.Errorf("%w: temperature %q", ErrUnknownCategory, s)
	}
}

// VehicleProfile describes the vehicle being tuned
type VehicleProfile struct {
	Model          string         `json:"model" yaml:"model"`
	TopSpeed       float64        `json:"topSpeed,omitempty" yaml:"topSpeed,omitempty"`
	MotorCondition MotorCondition `json:"motorCondition,omitempty" yaml:"motorCondition,omitempty"`
}

// BatteryProfile describes the traction pack
type BatteryProfile struct {
	Chemistry  Chemistry `json:"chemistry" yaml:"chemistry"`
	Voltage    int       `json:"voltage" yaml:"voltage"`
	CapacityAh float64   `json:"capacityAh,omitempty" yaml:"capacityAh,omitempty"`
	AgeYears   float64   `json:"ageYears,omitempty" yaml:"ageYears,omitempty"`
}

// WheelProfile describes tires and final drive
type WheelProfile struct {
	TireDiameter float64 `json:"tireDiameter,omitempty" yaml:"tireDiameter,omitempty"` // inches
	GearRatio    string  `json:"gearRatio,omitempty" yaml:"gearRatio,omitempty"`       // "8.91:1" or "8.91"
}

// EnvironmentProfile describes where the vehicle is usually driven
type EnvironmentProfile struct {
	Terrain     Terrain             `json:"terrain,omitempty" yaml:"terrain,omitempty"`
	Load        LoadCategory        `json:"load,omitempty" yaml:"load,omitempty"`
	Temperature TemperatureCategory `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	HillGrade   float64             `json:"hillGrade,omitempty" yaml:"hillGrade,omitempty"` // percent
}

// Priorities holds raw 0-10 owner preferences. A nil weight means balanced.
type Priorities struct {
	Range        *float64 `json:"range,omitempty" yaml:"range,omitempty"`
	Speed        *float64 `json:"speed,omitempty" yaml:"speed,omitempty"`
	Acceleration *float64 `json:"acceleration,omitempty" yaml:"acceleration,omitempty"`
	HillClimbing *float64 `json:"hillClimbing,omitempty" yaml:"hillClimbing,omitempty"`
	Regen        *float64 `json:"regen,omitempty" yaml:"regen,omitempty"`
}

// OptimizationInput is the full description consumed by the optimizer
type OptimizationInput struct {
	Vehicle     VehicleProfile     `json:"vehicle" yaml:"vehicle"`
	Battery     BatteryProfile     `json:"battery" yaml:"battery"`
	Wheel       WheelProfile       `json:"wheel" yaml:"wheel"`
	Environment EnvironmentProfile `json:"environment" yaml:"environment"`
	Priorities  Priorities         `json:"priorities" yaml:"priorities"`
}

// Weight returns a pointer to w, for building Priorities literals.
func Weight(w float64) *float64 {
	return &w
}
