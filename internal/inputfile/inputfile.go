// Package inputfile loads optimization inputs, trip data and baselines from
// YAML or JSON files.
package inputfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// ErrBadFunctionKey is returned for a baseline key that is not a function number
var ErrBadFunctionKey = errors.New("invalid function key")

// LoadInput reads an OptimizationInput. JSON is accepted since it is valid YAML.
func LoadInput(path string) (models.OptimizationInput, error) {
	var in models.OptimizationInput
	if err := load(path, &in); err != nil {
		return models.OptimizationInput{}, err
	}
	return in, nil
}

// LoadTrip reads a TripData file.
func LoadTrip(path string) (models.TripData, error) {
	var td models.TripData
	if err := load(path, &td); err != nil {
		return models.TripData{}, err
	}
	return td, nil
}

// LoadBaseline reads a sparse or full map of function number to value.
// Keys may be written as 1, "1", "F1" or "F.1".
func LoadBaseline(path string) (catalog.Settings, error) {
	var raw map[string]int
	if err := load(path, &raw); err != nil {
		return nil, err
	}
	return ParseBaseline(raw)
}

// ParseBaseline converts string keys to function numbers.
func ParseBaseline(raw map[string]int) (catalog.Settings, error) {
	out := make(catalog.Settings, len(raw))
	for k, v := range raw {
		key := strings.TrimPrefix(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(k)), "F"), ".")
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadFunctionKey, k)
		}
		out[n] = v
	}
	return out, nil
}

// ListInputs returns the .yaml, .yml and .json files directly under dir, sorted.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}
