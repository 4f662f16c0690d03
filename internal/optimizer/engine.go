package optimizer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// ErrOptimizationFailed wraps any failure that aborts a whole optimization call
var ErrOptimizationFailed = errors.New("optimization failed")

// FallbackChange is the single performance change reported on a fallback result.
const FallbackChange = "Optimization unavailable; conservative settings applied"

// Engine runs the base optimization pipeline. An Engine holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	stages   []Stage
	enforcer *Enforcer
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for stage and enforcement warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStages replaces the rule pipeline.
func WithStages(stages ...Stage) Option {
	return func(e *Engine) {
		e.stages = append([]Stage(nil), stages...)
	}
}

// WithEnforcer replaces the base safety enforcer.
func WithEnforcer(enf *Enforcer) Option {
	return func(e *Engine) {
		if enf != nil {
			e.enforcer = enf
		}
	}
}

// New creates an Engine with the default stages and safety bounds.
func New(opts ...Option) *Engine {
	e := &Engine{
		stages:   DefaultStages(),
		enforcer: DefaultEnforcer(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Optimize computes a complete optimized settings vector for in. baseline may
// be nil, sparse or full. The returned OptimizedSettings always carries every
// function; on failure it holds the baseline over factory defaults.
func (e *Engine) Optimize(in models.OptimizationInput, baseline catalog.Settings) (result models.OptimizationResult) {
	factory := catalog.FactoryDefaults()
	start, rejected := catalog.FromBaseline(baseline)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrOptimizationFailed, r)
			e.logger.Error("optimization aborted", "error", err)
			result = FallbackResult(start, err)
		}
	}()

	var warnings []string
	if len(rejected) > 0 {
		warnings = append(warnings, fmt.Sprintf("Ignored %d invalid baseline entries: %v", len(rejected), rejected))
	}

	// Fields that failed to parse keep their reference default; the rest
	// of the derived context is used as is.
	ctx, err := Analyze(in)
	if err != nil {
		e.logger.Warn("configuration partially analyzed", "error", err)
		ctx.Defaulted = true
		warnings = append(warnings, "Some configuration fields could not be analyzed and reference defaults were used for them: "+err.Error())
	}
	warnings = append(warnings, domainWarnings(in, ctx)...)

	tuned, outcomes := RunStages(e.stages, start, ctx, e.logger)
	for _, o := range outcomes {
		if o.Failed() {
			warnings = append(warnings, fmt.Sprintf("Rule %s skipped: %s", o.Stage, o.Error))
		}
	}

	final, clamped, err := e.enforcer.Enforce(tuned)
	enforcementFailed := err != nil
	if enforcementFailed {
		e.logger.Warn("safety enforcement failed, applying emergency settings", "error", err)
		final = ApplyEmergencySubset(tuned)
		clamped = nil
		warnings = append(warnings, "Safety limits could not be verified; emergency-safe values applied")
	}

	if err := final.Validate(); err != nil {
		return FallbackResult(start, err)
	}

	deltas := CalculateDeltas(factory, final, ctx)
	return models.OptimizationResult{
		Success:            true,
		FactorySettings:    factory,
		BaselineSettings:   start,
		OptimizedSettings:  final,
		PerformanceChanges: DescribeChanges(deltas, factory, final),
		Warnings:           nonNil(warnings),
		AnalysisData: models.AnalysisData{
			Context:           ctx,
			Stages:            outcomes,
			Deltas:            deltas,
			RejectedBaseline:  rejected,
			ClampedFunctions:  clamped,
			EnforcementFailed: enforcementFailed,
		},
	}
}

// FallbackResult builds the result returned when an optimization call fails
// outright. start must be a complete vector; if it is not, factory defaults
// are used.
func FallbackResult(start catalog.Settings, err error) models.OptimizationResult {
	optimized := start.Clone()
	if optimized.Validate() != nil {
		optimized = catalog.FactoryDefaults()
	}
	return models.OptimizationResult{
		Success:            false,
		EmergencyFallback:  true,
		FactorySettings:    catalog.FactoryDefaults(),
		BaselineSettings:   optimized.Clone(),
		OptimizedSettings:  optimized,
		PerformanceChanges: []string{FallbackChange},
		Warnings:           []string{"Optimization failed; settings were not changed from the baseline"},
		ErrorMessage:       FormatError(err),
	}
}

// FormatError renders err for end users.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, catalog.ErrInvalidSettings):
		return "The optimizer produced an incomplete settings vector. Factory or baseline values were kept. Details: " + err.Error()
	case errors.Is(err, ErrOptimizationFailed):
		return "An internal error interrupted optimization. Factory or baseline values were kept. Details: " + err.Error()
	}
	return "Optimization failed: " + err.Error()
}

func domainWarnings(in models.OptimizationInput, ctx models.AnalysisContext) []string {
	var w []string
	cond, _ := models.ParseMotorCondition(string(in.Vehicle.MotorCondition))
	switch cond {
	case models.MotorSparking:
		w = append(w, "Motor sparking reported; inspect brushes and commutator before heavy use")
	case models.MotorWorn:
		w = append(w, "Motor reported worn; protective limits applied")
	}
	if in.Vehicle.Model != "" {
		if _, ok := ResolveModel(in.Vehicle.Model); !ok {
			w = append(w, fmt.Sprintf("Unknown vehicle model %q; using e4 defaults", in.Vehicle.Model))
		}
	}
	if ctx.IsLithium {
		if cutoff, exact := LowVoltageCutoff(ctx.BatteryVoltage, true); !exact {
			w = append(w, fmt.Sprintf("No lithium cutoff for %d V; using nearest table value %d V", ctx.BatteryVoltage, cutoff))
		}
	}
	if ctx.BatteryAgeYears > 5 {
		w = append(w, "Battery pack is over five years old; expect reduced range")
	}
	return w
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// GetFactoryDefaults returns a fresh factory settings vector.
func GetFactoryDefaults() catalog.Settings {
	return catalog.FactoryDefaults()
}

// GetFunctionDescriptions returns the description of each described function.
func GetFunctionDescriptions() map[int]string {
	return catalog.Descriptions()
}
