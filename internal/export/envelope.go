// Package export encodes optimized settings into a portable, versioned
// envelope and decodes them back.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
)

// Version is the only envelope version this build reads and writes.
const Version = "1.0"

var (
	// ErrVersionMismatch is returned for an envelope written by another version
	ErrVersionMismatch = errors.New("envelope version mismatch")

	// ErrMalformedEnvelope is returned when an envelope cannot be parsed
	ErrMalformedEnvelope = errors.New("malformed envelope")
)

// Envelope is the export file format.
type Envelope struct {
	Version            string           `json:"version"`
	Timestamp          time.Time        `json:"timestamp"`
	InputData          json.RawMessage  `json:"inputData,omitempty"`
	OptimizedSettings  catalog.Settings `json:"optimizedSettings"`
	PerformanceChanges []string         `json:"performanceChanges"`
}

// New builds an envelope for settings produced from input. input may be any
// JSON-encodable value, typically an OptimizationInput or TripData.
func New(input any, settings catalog.Settings, changes []string, now time.Time) (*Envelope, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if input != nil {
		b, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("failed to encode input data: %w", err)
		}
		raw = b
	}
	if changes == nil {
		changes = []string{}
	}
	return &Envelope{
		Version:            Version,
		Timestamp:          now.UTC(),
		InputData:          raw,
		OptimizedSettings:  settings.Clone(),
		PerformanceChanges: changes,
	}, nil
}

// Encode renders the envelope as indented JSON.
func (e *Envelope) Encode() ([]byte, error) {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return b, nil
}

// Decode parses an envelope. The version is checked before anything else is
// read, and the settings vector must be complete and within safety bounds.
func Decode(data []byte) (*Envelope, error) {
	var header struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrVersionMismatch, header.Version, Version)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if err := env.OptimizedSettings.Validate(); err != nil {
		return nil, err
	}
	bounds := catalog.SafetyBounds()
	for _, k := range catalog.BoundedKeys(bounds) {
		b := bounds[k]
		if v := env.OptimizedSettings[k]; !b.Contains(v) {
			return nil, fmt.Errorf("%w: function %d value %d outside %d-%d", catalog.ErrInvalidSettings, k, v, b.Min, b.Max)
		}
	}
	return &env, nil
}
