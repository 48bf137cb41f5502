package engine

import (
	"sort"
	"time"

	"github.com/miradorstack/trigger-rca/internal/models"
	"github.com/miradorstack/trigger-rca/internal/utils"
)

// EvidenceFinder pairs symptoms with the foods eaten inside the lag window before them.
type EvidenceFinder struct{}

// NewEvidenceFinder constructs an EvidenceFinder.
func NewEvidenceFinder() *EvidenceFinder {
	return &EvidenceFinder{}
}

// Find returns evidence grouped by food name. Foods at or after a symptom, or further than
// window before it, never produce evidence.
func (f *EvidenceFinder) Find(symptoms []models.SymptomOccurrence, foods []models.FoodOccurrence, window time.Duration) map[string][]models.CorrelationEvidence {
	evidence := make(map[string][]models.CorrelationEvidence)
	if len(symptoms) == 0 || len(foods) == 0 || window <= 0 {
		return evidence
	}

	sortedFoods := sortFoods(foods)
	windowHours := window.Hours()

	for _, symptom := range sortSymptoms(symptoms) {
		earliest := symptom.Timestamp.Add(-window)
		lo := sort.Search(len(sortedFoods), func(i int) bool {
			return !sortedFoods[i].Timestamp.Before(earliest)
		})
		hi := sort.Search(len(sortedFoods), func(i int) bool {
			return !sortedFoods[i].Timestamp.Before(symptom.Timestamp)
		})
		for _, food := range sortedFoods[lo:hi] {
			lag := symptom.Timestamp.Sub(food.Timestamp)
			weight := utils.Clamp(1-lag.Hours()/windowHours, 0, 1)
			ev, err := models.NewCorrelationEvidence(food, symptom, weight, symptom.Notes)
			if err != nil {
				continue
			}
			evidence[food.Name] = append(evidence[food.Name], ev)
		}
	}
	return evidence
}

// sortFoods returns a time-ordered copy; ties are broken by name then ID so output is stable
// regardless of source order.
func sortFoods(foods []models.FoodOccurrence) []models.FoodOccurrence {
	sorted := append([]models.FoodOccurrence(nil), foods...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func sortSymptoms(symptoms []models.SymptomOccurrence) []models.SymptomOccurrence {
	sorted := append([]models.SymptomOccurrence(nil), symptoms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func countFoods(foods []models.FoodOccurrence) map[string]int {
	counts := make(map[string]int)
	for _, food := range foods {
		counts[food.Name]++
	}
	return counts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
