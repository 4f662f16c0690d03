// Package catalog holds the static GEM T2 controller function table: factory
// defaults, descriptions, safety bounds and the conservative fallback subsets.
package catalog

import (
	"sort"
	"strconv"
)

const (
	// FunctionCount is the number of function slots the controller exposes.
	FunctionCount = 128

	// MinValue and MaxValue bound every function value the controller accepts.
	MinValue = 0
	MaxValue = 999
)

// Function numbers referenced by the optimization rules.
const (
	MPHScaling             = 1
	ControlledAcceleration = 3
	MaxArmatureCurrent     = 4
	PlugCurrent            = 5
	ArmatureAccelRate      = 6
	MinFieldCurrent        = 7
	MaxFieldCurrent        = 8
	RegenArmatureCurrent   = 9
	RegenMaxFieldCurrent   = 10
	TurfSpeedLimit         = 11
	ReverseSpeedLimit      = 12
	CreepSpeed             = 13
	IRCompensation         = 14
	BatteryVolts           = 15
	LowBatteryVolts        = 16
	PedalDeadband          = 17
	ErrorCompensation      = 19
	MPHOverspeed           = 20
	RegenStartSpeed        = 21
	OdometerCalibration    = 22
	FieldWeakeningDelay    = 23
	FieldWeakeningCurrent  = 24
	RegenRampRate          = 25
	FieldToArmatureRatio   = 26
	ArmatureCurrentRamp    = 27
	FieldRampRate          = 28
	SeatSwitchDelay        = 29
	HighPedalDisable       = 30
)

// Bound is an inclusive {min,max} range for a function value.
type Bound struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Valid reports whether the bound describes a non-empty range.
func (b Bound) Valid() bool {
	return b.Min <= b.Max
}

// Contains reports whether v lies within the bound.
func (b Bound) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// Clamp forces v into the bound.
func (b Bound) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Function describes one controller function slot.
type Function struct {
	Number      int    `json:"number"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Default     int    `json:"default"`
	Bound       *Bound `json:"bound,omitempty"`
	TripLimit   *Bound `json:"tripLimit,omitempty"`
}

type entry struct {
	name        string
	description string
	def         int
	bound       *Bound
	tripLimit   *Bound
}

func bound(lo, hi int) *Bound {
	return &Bound{Min: lo, Max: hi}
}

// described lists every function with a known meaning. Keys absent here
// default to 0 and carry no bound.
var described = map[int]entry{
	MPHScaling: {"MPH Scaling", "Top speed scaling; tracks tire diameter and gear ratio",
		22, bound(15, 35), bound(15, 30)},
	ControlledAcceleration: {"Controlled Acceleration", "Time to reach full power; higher is gentler",
		15, bound(5, 40), bound(5, 30)},
	MaxArmatureCurrent: {"Max Armature Current", "Peak armature current available for hills and launches",
		245, bound(180, 255), bound(180, 255)},
	PlugCurrent: {"Plug Current", "Braking current used when changing direction under power",
		180, bound(100, 250), bound(100, 250)},
	ArmatureAccelRate: {"Armature Acceleration Rate", "Rate at which armature current ramps on throttle",
		60, bound(20, 80), bound(20, 70)},
	MinFieldCurrent: {"Minimum Field Current", "Lowest field current; higher protects worn brushes",
		70, bound(50, 100), bound(50, 100)},
	MaxFieldCurrent: {"Maximum Field Current", "Highest field current for torque at low speed",
		245, bound(200, 255), bound(200, 255)},
	RegenArmatureCurrent: {"Regen Armature Current", "Armature current returned to the pack while braking",
		225, bound(150, 250), bound(150, 250)},
	RegenMaxFieldCurrent: {"Regen Maximum Field Current", "Field current ceiling during regenerative braking",
		100, bound(60, 140), bound(60, 140)},
	TurfSpeedLimit: {"Turf Speed Limit", "Speed limit while turf mode is engaged",
		20, bound(5, 30), bound(5, 25)},
	ReverseSpeedLimit: {"Reverse Speed Limit", "Speed limit in reverse",
		15, bound(5, 20), bound(5, 18)},
	CreepSpeed: {"Creep Speed", "Crawl speed with the pedal barely pressed",
		0, bound(0, 10), bound(0, 8)},
	IRCompensation: {"IR Compensation", "Voltage sag compensation for pack internal resistance",
		5, bound(1, 15), bound(1, 15)},
	BatteryVolts: {"Battery Volts", "Nominal pack voltage",
		72, bound(36, 96), bound(36, 96)},
	LowBatteryVolts: {"Low Battery Volts", "Low-voltage cutoff protecting the pack",
		63, bound(30, 90), bound(30, 90)},
	PedalDeadband: {"Pedal Deadband", "Pedal travel ignored before the controller responds",
		10, nil, nil},
	ErrorCompensation: {"Error Compensation", "Speed regulation sensitivity",
		4, bound(0, 8), nil},
	MPHOverspeed: {"MPH Overspeed", "Overspeed allowance before the controller intervenes",
		40, bound(25, 50), bound(25, 45)},
	RegenStartSpeed: {"Regen Start Speed", "Speed below which regenerative braking fades out",
		5, bound(0, 15), nil},
	OdometerCalibration: {"Odometer Calibration", "Distance scaling for the odometer",
		100, bound(50, 200), nil},
	FieldWeakeningDelay: {"Field Weakening Start Delay", "Delay before field weakening engages",
		10, bound(0, 40), bound(5, 40)},
	FieldWeakeningCurrent: {"Field Weakening Current", "Field weakening allowance; higher reaches more speed",
		55, bound(40, 70), bound(40, 70)},
	RegenRampRate: {"Regen Ramp Rate", "Rate at which regenerative braking builds",
		30, bound(10, 60), nil},
	FieldToArmatureRatio: {"Field To Armature Ratio", "Field current relative to armature current under load",
		30, bound(20, 50), bound(20, 50)},
	ArmatureCurrentRamp: {"Armature Current Ramp", "Step size of armature current changes",
		3, bound(1, 10), nil},
	FieldRampRate: {"Field Ramp Rate", "Step size of field current changes",
		5, bound(1, 15), nil},
	SeatSwitchDelay: {"Seat Switch Delay", "Delay before the seat switch disables drive",
		20, nil, nil},
	HighPedalDisable: {"High Pedal Disable", "Refuse to start with the pedal already pressed",
		1, bound(0, 1), nil},
}

// emergencySubset is applied when constraint enforcement itself fails. It
// covers the four highest-risk functions only.
var emergencySubset = map[int]int{
	MPHScaling:            18,
	MaxArmatureCurrent:    200,
	ArmatureAccelRate:     30,
	FieldWeakeningCurrent: 40,
}

// tripFallbackSubset is applied when the trip flow fails outright.
var tripFallbackSubset = map[int]int{
	MPHScaling:             18,
	ControlledAcceleration: 25,
	MaxArmatureCurrent:     200,
	ArmatureAccelRate:      30,
	TurfSpeedLimit:         10,
}

// Functions returns every function slot in numeric order.
func Functions() []Function {
	out := make([]Function, 0, FunctionCount)
	for n := 1; n <= FunctionCount; n++ {
		f, _ := Lookup(n)
		out = append(out, f)
	}
	return out
}

// Lookup returns the catalog entry for a function number.
func Lookup(n int) (Function, bool) {
	if n < 1 || n > FunctionCount {
		return Function{}, false
	}
	f := Function{Number: n}
	if e, ok := described[n]; ok {
		f.Name = e.name
		f.Description = e.description
		f.Default = e.def
		if e.bound != nil {
			b := *e.bound
			f.Bound = &b
		}
		if e.tripLimit != nil {
			b := *e.tripLimit
			f.TripLimit = &b
		}
	}
	return f, true
}

// Name returns a display name, falling back to "F.<n>".
func Name(n int) string {
	if e, ok := described[n]; ok {
		return e.name
	}
	return "F." + strconv.Itoa(n)
}

// FactoryDefaults returns a fresh, fully populated factory settings vector.
func FactoryDefaults() Settings {
	s := make(Settings, FunctionCount)
	for n := 1; n <= FunctionCount; n++ {
		s[n] = described[n].def
	}
	return s
}

// Descriptions returns the human description of each described function.
func Descriptions() map[int]string {
	out := make(map[int]string, len(described))
	for n, e := range described {
		out[n] = e.description
	}
	return out
}

// SafetyBounds returns the base safety constraint table.
func SafetyBounds() map[int]Bound {
	out := make(map[int]Bound)
	for n, e := range described {
		if e.bound != nil {
			out[n] = *e.bound
		}
	}
	return out
}

// TripLimits returns the absolute safety-limit table used after trip
// adjustments. It is stricter than SafetyBounds for several keys.
func TripLimits() map[int]Bound {
	out := make(map[int]Bound)
	for n, e := range described {
		if e.tripLimit != nil {
			out[n] = *e.tripLimit
		}
	}
	return out
}

// EmergencySubset returns the conservative values applied on enforcement failure.
func EmergencySubset() map[int]int {
	return copyInts(emergencySubset)
}

// TripFallbackSubset returns the conservative values applied on trip failure.
func TripFallbackSubset() map[int]int {
	return copyInts(tripFallbackSubset)
}

// BoundedKeys returns the keys of a bound table in ascending order.
func BoundedKeys(bounds map[int]Bound) []int {
	keys := make([]int, 0, len(bounds))
	for k := range bounds {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func copyInts(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
