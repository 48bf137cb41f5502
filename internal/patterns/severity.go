package patterns

import (
	"fmt"
	"math"

	"github.com/miradorstack/trigger-rca/internal/models"
)

// severityEscalation measures how often each episode is worse than the one before.
func (d *Detector) severityEscalation(symptomType string, series []models.SymptomOccurrence) *models.SymptomPattern {
	n := len(series)
	if n < d.cfg.MinEscalationOccurrences {
		return nil
	}
	increases := 0
	for i := 1; i < n; i++ {
		if series[i].Intensity > series[i-1].Intensity {
			increases++
		}
	}
	strength := float64(increases) / float64(n-1)
	if strength < d.cfg.MinEscalationStrength {
		return nil
	}
	return &models.SymptomPattern{
		SymptomType:     symptomType,
		Type:            models.PatternSeverityTrend,
		Description:     fmt.Sprintf("%s intensity has been escalating over time", symptomType),
		Confidence:      strength,
		OccurrenceCount: n,
		Metadata:        map[string]string{"trend": "escalating", "increases": fmt.Sprint(increases)},
	}
}

// severityCycles looks for repeated intensity peaks.
func (d *Detector) severityCycles(symptomType string, series []models.SymptomOccurrence) *models.SymptomPattern {
	n := len(series)
	if n < d.cfg.MinCycleOccurrences {
		return nil
	}
	peaks := 0
	for i := 1; i < n-1; i++ {
		if series[i].Intensity > series[i-1].Intensity && series[i].Intensity > series[i+1].Intensity {
			peaks++
		}
	}
	if peaks < d.cfg.MinCyclePeaks {
		return nil
	}
	return &models.SymptomPattern{
		SymptomType:     symptomType,
		Type:            models.PatternSeverityTrend,
		Description:     fmt.Sprintf("%s intensity rises and falls in cycles (%d peaks)", symptomType, peaks),
		Confidence:      math.Min(1, float64(peaks)/(float64(n)/4)),
		OccurrenceCount: n,
		Metadata:        map[string]string{"trend": "cyclical", "peaks": fmt.Sprint(peaks)},
	}
}
