package trip

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
)

// ErrTripOptimization wraps any failure that forces the trip fallback
var ErrTripOptimization = errors.New("trip optimization failed")

// Planner runs trip optimizations. It is safe for concurrent use.
type Planner struct {
	engine   *optimizer.Engine
	adjuster *Adjuster
	logger   *slog.Logger
}

// NewPlanner creates a Planner on top of engine. A nil engine gets the
// default one.
func NewPlanner(engine *optimizer.Engine) *Planner {
	if engine == nil {
		engine = optimizer.New()
	}
	return &Planner{
		engine:   engine,
		adjuster: NewAdjuster(),
		logger:   engine.Logger(),
	}
}

// OptimizeForTrip tunes settings for a specific trip. The result always
// carries a complete settings vector; on failure it is the conservative trip
// fallback.
func (p *Planner) OptimizeForTrip(td models.TripData) (result models.TripOptimizationResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrTripOptimization, r)
			p.logger.Error("trip optimization aborted", "error", err)
			result = FallbackResult(err)
		}
	}()

	analysis := Analyze(td)
	base := p.engine.Optimize(BaseInput(td, analysis), nil)
	if !base.Success {
		err := fmt.Errorf("%w: %s", ErrTripOptimization, base.ErrorMessage)
		p.logger.Warn("base optimization failed, using trip fallback", "error", err)
		return FallbackResult(err)
	}

	adjusted, err := p.adjuster.Adjust(base.OptimizedSettings, analysis)
	if err == nil {
		err = adjusted.Validate()
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTripOptimization, err)
		p.logger.Warn("trip adjustment failed, using trip fallback", "error", err)
		return FallbackResult(err)
	}

	report := BuildReport(analysis, base.FactorySettings, adjusted)
	warnings := append(append([]string{}, base.Warnings...), report.Warnings...)

	return models.TripOptimizationResult{
		Success:           true,
		FactorySettings:   base.FactorySettings,
		OptimizedSettings: adjusted,
		BaseResult:        &base,
		Analysis:          &analysis,
		Report:            &report,
		Warnings:          warnings,
	}
}

// FallbackResult is returned when trip optimization cannot complete: the
// trip fallback subset over factory defaults.
func FallbackResult(err error) models.TripOptimizationResult {
	settings := catalog.FactoryDefaults()
	for k, v := range catalog.TripFallbackSubset() {
		settings[k] = v
	}
	return models.TripOptimizationResult{
		Success:           false,
		FallbackMode:      true,
		FactorySettings:   catalog.FactoryDefaults(),
		OptimizedSettings: settings,
		Warnings:          []string{"Conservative trip settings applied; drive with extra caution"},
		Message:           fmt.Sprintf("Trip optimization could not be completed (%v). Conservative speed and acceleration limits were applied instead.", err),
	}
}
