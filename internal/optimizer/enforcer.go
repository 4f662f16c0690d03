package optimizer

import (
	"errors"
	"fmt"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
)

var (
	// ErrEnforcement is returned when a settings vector could not be constrained
	ErrEnforcement = errors.New("safety enforcement failed")

	// ErrInvalidBound is returned for a bound whose min exceeds its max
	ErrInvalidBound = errors.New("invalid safety bound")
)

// Enforcer clamps settings into a bound table.
type Enforcer struct {
	bounds map[int]catalog.Bound
}

// NewEnforcer creates an enforcer over a private copy of bounds.
func NewEnforcer(bounds map[int]catalog.Bound) *Enforcer {
	own := make(map[int]catalog.Bound, len(bounds))
	for k, b := range bounds {
		own[k] = b
	}
	return &Enforcer{bounds: own}
}

// DefaultEnforcer enforces the base safety bounds.
func DefaultEnforcer() *Enforcer {
	return NewEnforcer(catalog.SafetyBounds())
}

// TripEnforcer enforces the absolute trip limits.
func TripEnforcer() *Enforcer {
	return NewEnforcer(catalog.TripLimits())
}

// Enforce returns a copy of s with every bounded key clamped into its range
// and every key clamped into [MinValue, MaxValue]. clamped lists the keys
// whose value moved. s is never modified.
func (e *Enforcer) Enforce(s catalog.Settings) (out catalog.Settings, clamped []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, clamped = nil, nil
			err = fmt.Errorf("%w: %v", ErrEnforcement, r)
		}
	}()

	for _, k := range catalog.BoundedKeys(e.bounds) {
		if b := e.bounds[k]; !b.Valid() {
			return nil, nil, fmt.Errorf("%w: %w: function %d min %d > max %d", ErrEnforcement, ErrInvalidBound, k, b.Min, b.Max)
		}
	}

	out = s.Clone()
	for n := 1; n <= catalog.FunctionCount; n++ {
		v, ok := out[n]
		if !ok {
			return nil, nil, fmt.Errorf("%w: missing function %d", ErrEnforcement, n)
		}
		nv := catalog.Bound{Min: catalog.MinValue, Max: catalog.MaxValue}.Clamp(v)
		if b, ok := e.bounds[n]; ok {
			nv = b.Clamp(nv)
		}
		if nv != v {
			out[n] = nv
			clamped = append(clamped, n)
		}
	}
	return out, clamped, nil
}

// ApplyEmergencySubset overlays the emergency-safe values on s. Missing keys
// are filled from the factory defaults so the result is always complete.
func ApplyEmergencySubset(s catalog.Settings) catalog.Settings {
	out := catalog.FactoryDefaults()
	for n, v := range s {
		if n >= 1 && n <= catalog.FunctionCount && v >= catalog.MinValue && v <= catalog.MaxValue {
			out[n] = v
		}
	}
	for n, v := range catalog.EmergencySubset() {
		out[n] = v
	}
	return out
}
