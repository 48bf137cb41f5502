// Package filters applies user-selected AnalysisFilters to raw occurrences and to scored
// analyses. Every pass returns new slices; inputs are never modified.
package filters

import (
	"github.com/miradorstack/trigger-rca/internal/models"
)

// MinimumTriggerOccurrences is the evidence count below which a trigger is treated as
// low-occurrence.
const MinimumTriggerOccurrences = 3

// PreFilterSymptoms drops symptoms below the severity threshold or outside the symptom-type set.
func PreFilterSymptoms(symptoms []models.SymptomOccurrence, f models.AnalysisFilters) []models.SymptomOccurrence {
	out := make([]models.SymptomOccurrence, 0, len(symptoms))
	for _, s := range symptoms {
		if f.SeverityThreshold != nil && s.Intensity < *f.SeverityThreshold {
			continue
		}
		if !f.AllowsSymptomType(s.Type) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// PreFilterFoods drops excluded foods and foods outside the category allow-list.
func PreFilterFoods(foods []models.FoodOccurrence, f models.AnalysisFilters) []models.FoodOccurrence {
	out := make([]models.FoodOccurrence, 0, len(foods))
	for _, food := range foods {
		if f.Excludes(food.Name) {
			continue
		}
		if !f.AllowsCategory(models.CategorizeFood(food.Name)) {
			continue
		}
		out = append(out, food)
	}
	return out
}

// PostFilter applies the filters to scored analyses.
func PostFilter(analyses []models.SymptomAnalysis, f models.AnalysisFilters) []models.SymptomAnalysis {
	out := make([]models.SymptomAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if !f.AllowsSymptomType(a.SymptomType) {
			continue
		}
		if f.SeverityThreshold != nil && a.AverageIntensity < float64(*f.SeverityThreshold) {
			continue
		}

		triggers := make([]models.TriggerProbability, 0, len(a.Triggers))
		for _, tp := range a.Triggers {
			if tp.Confidence < f.MinimumConfidence {
				continue
			}
			if !f.AllowsCategory(tp.Category) {
				continue
			}
			if f.Excludes(tp.FoodName) {
				continue
			}
			if !f.ShowLowOccurrence && tp.OccurrenceCount < MinimumTriggerOccurrences {
				continue
			}
			triggers = append(triggers, tp)
		}
		if len(triggers) == 0 && !f.ShowLowOccurrence {
			continue
		}
		out = append(out, withTriggers(a, triggers))
	}
	return out
}

// ApplyTimeWindow drops analyses below the window's occurrence minimum and triggers whose
// average lag exceeds the lag window.
func ApplyTimeWindow(analyses []models.SymptomAnalysis, w models.AnalysisTimeWindow) []models.SymptomAnalysis {
	out := make([]models.SymptomAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if a.TotalOccurrences < w.MinimumOccurrences {
			continue
		}
		triggers := make([]models.TriggerProbability, 0, len(a.Triggers))
		for _, tp := range a.Triggers {
			if tp.AverageTimeLag > w.WindowSize {
				continue
			}
			triggers = append(triggers, tp)
		}
		if len(triggers) > 0 || a.TotalOccurrences >= w.MinimumOccurrences {
			out = append(out, withTriggers(a, triggers))
		}
	}
	return out
}

// ComputeStats reports the effect of filtering before into after.
func ComputeStats(before, after []models.SymptomAnalysis, f models.AnalysisFilters) models.FilterStats {
	stats := models.FilterStats{
		OriginalAnalyses: len(before),
		FilteredAnalyses: len(after),
		OriginalTriggers: countTriggers(before),
		FilteredTriggers: countTriggers(after),
		ActiveFilters:    ActiveFilterCount(f),
	}
	if stats.OriginalAnalyses > 0 {
		stats.Reduction = 1 - float64(stats.FilteredAnalyses)/float64(stats.OriginalAnalyses)
	}
	return stats
}

// ActiveFilterCount counts the filter dimensions that differ from their defaults.
func ActiveFilterCount(f models.AnalysisFilters) int {
	active := 0
	if f.SeverityThreshold != nil {
		active++
	}
	if len(f.SymptomTypes) > 0 {
		active++
	}
	if len(f.FoodCategories) > 0 {
		active++
	}
	if len(f.ExcludedFoods) > 0 {
		active++
	}
	if f.MinimumConfidence > 0 {
		active++
	}
	if f.ShowLowOccurrence {
		active++
	}
	return active
}

func countTriggers(analyses []models.SymptomAnalysis) int {
	total := 0
	for _, a := range analyses {
		total += len(a.Triggers)
	}
	return total
}

// withTriggers copies a with the surviving triggers. Confidence becomes their mean.
func withTriggers(a models.SymptomAnalysis, triggers []models.TriggerProbability) models.SymptomAnalysis {
	a.Triggers = triggers
	a.Confidence = meanConfidence(triggers)
	a.Patterns = append([]models.SymptomPattern(nil), a.Patterns...)
	a.Insights = append([]string(nil), a.Insights...)
	return a
}

func meanConfidence(triggers []models.TriggerProbability) float64 {
	if len(triggers) == 0 {
		return 0
	}
	sum := 0.0
	for _, tp := range triggers {
		sum += tp.Confidence
	}
	return sum / float64(len(triggers))
}
