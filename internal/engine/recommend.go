package engine

import (
	"fmt"

	"github.com/miradorstack/trigger-rca/internal/models"
)

// RecommendationFor derives the publish/suppress level purely from the scored triggers.
func RecommendationFor(triggers []models.TriggerProbability, t RecommendationThresholds) models.RecommendationLevel {
	anyMatch := func(minConfidence float64, minOccurrences int) bool {
		for _, tp := range triggers {
			if tp.Confidence >= minConfidence && tp.OccurrenceCount >= minOccurrences {
				return true
			}
		}
		return false
	}

	switch {
	case anyMatch(t.HighConfidence, t.HighOccurrences):
		return models.RecommendationHigh
	case anyMatch(t.MediumConfidence, t.MediumOccurrences):
		return models.RecommendationMedium
	case anyMatch(t.LowConfidence, 0):
		return models.RecommendationLowConfidence
	default:
		return models.RecommendationHide
	}
}

// refreshedRecommendation re-derives the level after filtering. Surviving triggers keep the
// analysis publishable at no less than low confidence; an analysis left without triggers is hidden.
func refreshedRecommendation(triggers []models.TriggerProbability, t RecommendationThresholds) models.RecommendationLevel {
	level := RecommendationFor(triggers, t)
	if level == models.RecommendationHide && len(triggers) > 0 {
		return models.RecommendationLowConfidence
	}
	return level
}

// buildInsights summarises the top trigger and flags multiple high-probability triggers.
func buildInsights(symptomType string, triggers []models.TriggerProbability, highProbability float64) []string {
	if len(triggers) == 0 {
		return nil
	}
	top := triggers[0]
	insights := []string{
		fmt.Sprintf("%s shows a %d%% likelihood of triggering %s (%d correlated episodes)",
			top.FoodName, top.ProbabilityPercentage, symptomType, top.OccurrenceCount),
	}

	high := 0
	for _, tp := range triggers {
		if tp.Probability >= highProbability {
			high++
		}
	}
	if high > 1 {
		insights = append(insights, fmt.Sprintf("%d foods show a high probability of triggering %s", high, symptomType))
	}
	return insights
}
