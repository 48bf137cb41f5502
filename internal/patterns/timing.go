package patterns

import (
	"fmt"
	"time"

	"github.com/miradorstack/trigger-rca/internal/models"
)

type hourBucket struct {
	name       string
	start, end int // [start, end) hours of day
}

var dayQuadrants = []hourBucket{
	{name: "night", start: 0, end: 6},
	{name: "morning", start: 6, end: 12},
	{name: "afternoon", start: 12, end: 18},
	{name: "evening", start: 18, end: 24},
}

var mealWindows = []hourBucket{
	{name: "breakfast", start: 6, end: 10},
	{name: "lunch", start: 11, end: 14},
	{name: "dinner", start: 17, end: 21},
}

// temporalClusters checks whether episodes concentrate in one part of the day, one weekday,
// or around one meal.
func (d *Detector) temporalClusters(symptoms []models.SymptomOccurrence) []models.SymptomPattern {
	total := len(symptoms)
	if total < d.cfg.MinClusterOccurrences {
		return nil
	}

	var patterns []models.SymptomPattern

	quadrantCounts := make([]int, len(dayQuadrants))
	mealCounts := make([]int, len(mealWindows))
	weekdayCounts := make([]int, 7)
	for _, s := range symptoms {
		hour := s.Timestamp.Hour()
		for i, b := range dayQuadrants {
			if hour >= b.start && hour < b.end {
				quadrantCounts[i]++
			}
		}
		for i, b := range mealWindows {
			if hour >= b.start && hour < b.end {
				mealCounts[i]++
			}
		}
		weekdayCounts[int(s.Timestamp.Weekday())]++
	}

	if idx, count := maxIndex(quadrantCounts); count > 0 {
		share := float64(count) / float64(total)
		if share >= d.cfg.MinDailyShare {
			patterns = append(patterns, models.SymptomPattern{
				SymptomType:     models.GeneralSymptomType,
				Type:            models.PatternTemporal,
				Description:     fmt.Sprintf("Most symptoms occur in the %s", dayQuadrants[idx].name),
				Confidence:      share,
				OccurrenceCount: count,
				Metadata:        map[string]string{"bucket": dayQuadrants[idx].name, "scope": "daily", "share": formatFloat(share)},
			})
		}
	}

	if idx, count := maxIndex(weekdayCounts); count > 0 {
		share := float64(count) / float64(total)
		if share >= d.cfg.MinWeeklyShare {
			day := time.Weekday(idx).String()
			patterns = append(patterns, models.SymptomPattern{
				SymptomType:     models.GeneralSymptomType,
				Type:            models.PatternTemporal,
				Description:     fmt.Sprintf("Symptoms cluster on %ss", day),
				Confidence:      share,
				OccurrenceCount: count,
				Metadata:        map[string]string{"bucket": day, "scope": "weekly", "share": formatFloat(share)},
			})
		}
	}

	if idx, count := maxIndex(mealCounts); count > 0 {
		share := float64(count) / float64(total)
		if share >= d.cfg.MinMealShare {
			patterns = append(patterns, models.SymptomPattern{
				SymptomType:     models.GeneralSymptomType,
				Type:            models.PatternMealRelated,
				Description:     fmt.Sprintf("Symptoms frequently appear around %s", mealWindows[idx].name),
				Confidence:      share,
				OccurrenceCount: count,
				Metadata:        map[string]string{"bucket": mealWindows[idx].name, "scope": "meal", "share": formatFloat(share)},
			})
		}
	}
	return patterns
}

// timingConsistency checks whether scored triggers act after a similar delay.
func (d *Detector) timingConsistency(analyses []models.SymptomAnalysis) *models.SymptomPattern {
	var lags []float64
	for _, a := range analyses {
		for _, tp := range a.Triggers {
			lags = append(lags, tp.AverageTimeLag.Hours())
		}
	}
	if len(lags) < d.cfg.MinTimingPoints {
		return nil
	}
	mean, mad := meanAbsoluteDeviation(lags)
	if mean <= 0 {
		return nil
	}
	consistency := 1 - mad/mean
	if consistency < d.cfg.MinTimingConsistency {
		return nil
	}
	return &models.SymptomPattern{
		SymptomType:     models.GeneralSymptomType,
		Type:            models.PatternTemporal,
		Description:     fmt.Sprintf("Reactions consistently appear about %.1f hours after eating", mean),
		Confidence:      consistency,
		OccurrenceCount: len(lags),
		Metadata:        map[string]string{"scope": "trigger_timing", "average_lag_hours": formatFloat(mean)},
	}
}

// maxIndex returns the first index holding the largest count.
func maxIndex(counts []int) (int, int) {
	best, bestCount := 0, -1
	for i, c := range counts {
		if c > bestCount {
			best, bestCount = i, c
		}
	}
	return best, bestCount
}
