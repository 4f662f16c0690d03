package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// SettingsDiff renders factory and optimized values side by side. With
// changedOnly, unchanged functions are omitted.
func SettingsDiff(m Mode, factory, optimized catalog.Settings, changedOnly bool) string {
	t := NewTable(m)
	t.Header("F#", "Function", "Factory", "Optimized", "Change")
	t.AlignRight(1, 3, 4, 5)

	changed := 0
	for n := 1; n <= catalog.FunctionCount; n++ {
		f, o := factory[n], optimized[n]
		if f != o {
			changed++
		} else if changedOnly {
			continue
		}
		t.Row(n, catalog.Name(n), f, o, change(f, o))
	}
	t.Footer("", "Changed", "", "", changed)
	return t.String()
}

func change(f, o int) string {
	if f == o {
		return ""
	}
	return fmt.Sprintf("%+d", o-f)
}

// Functions renders the catalog of described functions and their bounds.
func Functions(m Mode, fns []catalog.Function) string {
	t := NewTable(m)
	t.Header("F#", "Function", "Default", "Bounds", "Trip limit")
	t.AlignRight(1, 3)
	for _, f := range fns {
		if f.Name == "" {
			continue
		}
		t.Row(f.Number, f.Name, f.Default, bound(f.Bound), bound(f.TripLimit))
	}
	return t.String()
}

func bound(b *catalog.Bound) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}

// Result renders an optimization result: changes, warnings and the diff.
func Result(m Mode, r models.OptimizationResult) string {
	var b strings.Builder
	if !r.Success {
		fmt.Fprintf(&b, "Optimization failed: %s\n\n", r.ErrorMessage)
	}
	writeList(&b, "Performance changes", r.PerformanceChanges)
	writeList(&b, "Warnings", r.Warnings)
	b.WriteString(SettingsDiff(m, r.FactorySettings, r.OptimizedSettings, true))
	b.WriteString("\n")
	return b.String()
}

// TripResult renders a trip optimization result with its report.
func TripResult(m Mode, r models.TripOptimizationResult) string {
	var b strings.Builder
	if r.FallbackMode {
		fmt.Fprintf(&b, "%s\n\n", r.Message)
	}
	if rep := r.Report; rep != nil {
		fmt.Fprintf(&b, "%s\nConfidence: %d%%\n\n", rep.Summary, rep.Confidence)

		p := NewTable(m)
		p.Header("Estimate", "Value")
		p.AlignRight(2)
		p.Row("Range (mi)", fmt.Sprintf("%.1f", rep.ExpectedPerformance.RangeMiles))
		p.Row("Top speed (mph)", fmt.Sprintf("%.1f", rep.ExpectedPerformance.TopSpeedMPH))
		p.Row("Acceleration (0-10)", fmt.Sprintf("%.1f", rep.ExpectedPerformance.AccelerationRating))
		p.Row("Hill climbing (% grade)", fmt.Sprintf("%.1f", rep.ExpectedPerformance.HillClimbingGrade))
		p.Row("Efficiency (0-100)", fmt.Sprintf("%.1f", rep.ExpectedPerformance.Efficiency))
		b.WriteString(p.String())
		b.WriteString("\n\n")

		cats := make([]string, 0, len(rep.Recommendations))
		for k := range rep.Recommendations {
			cats = append(cats, k)
		}
		sort.Strings(cats)
		for _, k := range cats {
			writeList(&b, "Recommendations ("+k+")", rep.Recommendations[k])
		}
	}
	writeList(&b, "Warnings", r.Warnings)
	b.WriteString(SettingsDiff(m, r.FactorySettings, r.OptimizedSettings, true))
	b.WriteString("\n")
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title + ":\n")
	for _, it := range items {
		b.WriteString("  - " + it + "\n")
	}
	b.WriteString("\n")
}
