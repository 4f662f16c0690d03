package catalog

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidSettings is returned when a settings vector is incomplete or out of range.
var ErrInvalidSettings = errors.New("invalid settings vector")

// Settings maps function number to value. A Settings built by this package
// always carries all FunctionCount keys.
type Settings map[int]int

// Clone returns an independent copy of s.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Validate checks that every key 1..FunctionCount is present with a value
// in [MinValue, MaxValue] and that no other keys exist.
func (s Settings) Validate() error {
	if len(s) != FunctionCount {
		return fmt.Errorf("%w: expected %d functions, got %d", ErrInvalidSettings, FunctionCount, len(s))
	}
	for n := 1; n <= FunctionCount; n++ {
		v, ok := s[n]
		if !ok {
			return fmt.Errorf("%w: missing function %d", ErrInvalidSettings, n)
		}
		if v < MinValue || v > MaxValue {
			return fmt.Errorf("%w: function %d value %d outside %d-%d", ErrInvalidSettings, n, v, MinValue, MaxValue)
		}
	}
	return nil
}

// Changed returns the keys whose value differs between s and other, ascending.
func (s Settings) Changed(other Settings) []int {
	var keys []int
	for n := 1; n <= FunctionCount; n++ {
		if s[n] != other[n] {
			keys = append(keys, n)
		}
	}
	return keys
}

// FromBaseline overlays a sparse or full baseline on the factory defaults.
// Entries with unknown keys, values outside [MinValue, MaxValue], or values
// outside a bounded key's safety range are skipped and returned in rejected.
func FromBaseline(baseline map[int]int) (s Settings, rejected []int) {
	s = FactoryDefaults()
	bounds := SafetyBounds()
	for n, v := range baseline {
		if n < 1 || n > FunctionCount || v < MinValue || v > MaxValue {
			rejected = append(rejected, n)
			continue
		}
		if b, ok := bounds[n]; ok && !b.Contains(v) {
			rejected = append(rejected, n)
			continue
		}
		s[n] = v
	}
	sort.Ints(rejected)
	return s, rejected
}
