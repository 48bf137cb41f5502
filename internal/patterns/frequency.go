package patterns

import (
	"fmt"
	"math"

	"github.com/miradorstack/trigger-rca/internal/models"
	"github.com/miradorstack/trigger-rca/internal/utils"
)

// frequency looks for a regular interval between successive episodes of one symptom type.
func (d *Detector) frequency(symptomType string, series []models.SymptomOccurrence) *models.SymptomPattern {
	if len(series) < d.cfg.MinFrequencyOccurrences {
		return nil
	}
	intervals := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		intervals = append(intervals, utils.DurationHours(series[i-1].Timestamp, series[i].Timestamp))
	}
	mean, mad := meanAbsoluteDeviation(intervals)
	if mean <= 0 {
		return nil
	}
	consistency := math.Max(0, 1-mad/mean)
	if consistency < d.cfg.MinFrequencyConsistency {
		return nil
	}

	cadence := "regular"
	switch {
	case mean <= 24:
		cadence = "daily"
	case mean <= 168:
		cadence = "weekly"
	}
	return &models.SymptomPattern{
		SymptomType:     symptomType,
		Type:            models.PatternFrequency,
		Description:     fmt.Sprintf("%s recurs on a %s cadence, roughly every %.1f hours", symptomType, cadence, mean),
		Confidence:      consistency,
		OccurrenceCount: len(series),
		Metadata: map[string]string{
			"cadence":                cadence,
			"average_interval_hours": formatFloat(mean),
			"consistency":            formatFloat(consistency),
		},
	}
}

// meanAbsoluteDeviation returns the mean of values and their mean absolute deviation.
func meanAbsoluteDeviation(values []float64) (mean, mad float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		mad += math.Abs(v - mean)
	}
	mad /= float64(len(values))
	return mean, mad
}
