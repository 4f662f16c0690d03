package optimizer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// ErrStagePanic wraps a panic recovered from a pipeline stage
var ErrStagePanic = errors.New("stage panicked")

// Stage is one rule module of the base pipeline. Apply mutates the vector it
// is given; it receives a private copy, so a failed stage leaves no trace.
type Stage struct {
	Name  string
	Apply func(s catalog.Settings, ctx models.AnalysisContext) error
}

// DefaultStages returns the ten rule modules in execution order. Later stages
// may override values set by earlier ones.
func DefaultStages() []Stage {
	return []Stage{
		{Name: "tire_gear", Apply: applyTireGear},
		{Name: "battery", Apply: applyBattery},
		{Name: "motor_protection", Apply: applyMotorProtection},
		{Name: "terrain", Apply: applyTerrain},
		{Name: "priorities", Apply: applyPriorities},
		{Name: "creep_speed", Apply: applyCreepSpeed},
		{Name: "plug_current", Apply: applyPlugCurrent},
		{Name: "field_ramp", Apply: applyFieldRamp},
		{Name: "armature_ramp", Apply: applyArmatureRamp},
		{Name: "error_compensation", Apply: applyErrorCompensation},
	}
}

// RunStages threads start through stages and returns the final vector along
// with one outcome per stage. start is never modified.
func RunStages(stages []Stage, start catalog.Settings, ctx models.AnalysisContext, logger *slog.Logger) (catalog.Settings, []models.StageOutcome) {
	if logger == nil {
		logger = slog.Default()
	}
	current := start
	outcomes := make([]models.StageOutcome, 0, len(stages))
	for _, st := range stages {
		next, err := runStage(st, current, ctx)
		outcome := models.StageOutcome{Stage: st.Name}
		if err != nil {
			outcome.Error = err.Error()
			logger.Warn("optimization stage skipped", "stage", st.Name, "error", err)
		} else {
			outcome.Changed = current.Changed(next)
			current = next
		}
		outcomes = append(outcomes, outcome)
	}
	return current, outcomes
}

func runStage(st Stage, current catalog.Settings, ctx models.AnalysisContext) (next catalog.Settings, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = current
			err = fmt.Errorf("%w: %v", ErrStagePanic, r)
		}
	}()
	work := current.Clone()
	if err := st.Apply(work, ctx); err != nil {
		return current, err
	}
	return work, nil
}
