package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultMaxLag bounds how long after eating a symptom may still be linked to a food.
const DefaultMaxLag = 8 * time.Hour

// CorrelationEvidence links one food occurrence to one later symptom occurrence.
type CorrelationEvidence struct {
	FoodName         string        `json:"food_name"`
	FoodTimestamp    time.Time     `json:"food_timestamp"`
	SymptomTimestamp time.Time     `json:"symptom_timestamp"`
	TimeLag          time.Duration `json:"time_lag"`
	SymptomIntensity int           `json:"symptom_intensity"`
	FoodQuantity     string        `json:"food_quantity,omitempty"`
	TemporalWeight   float64       `json:"temporal_weight"`
	Notes            string        `json:"notes,omitempty"`
}

// NewCorrelationEvidence pairs a food with a later symptom. The lag is derived, never supplied.
func NewCorrelationEvidence(food FoodOccurrence, symptom SymptomOccurrence, weight float64, notes string) (CorrelationEvidence, error) {
	if !symptom.Timestamp.After(food.Timestamp) {
		return CorrelationEvidence{}, invalid("correlation evidence", "symptom must occur strictly after food")
	}
	if symptom.Intensity < MinIntensity || symptom.Intensity > MaxIntensity {
		return CorrelationEvidence{}, invalid("correlation evidence", "symptom intensity must be between 1 and 10")
	}
	if weight < 0 || weight > 1 || math.IsNaN(weight) {
		return CorrelationEvidence{}, invalid("correlation evidence", "temporal weight must be within [0,1]")
	}
	return CorrelationEvidence{
		FoodName:         food.Name,
		FoodTimestamp:    food.Timestamp,
		SymptomTimestamp: symptom.Timestamp,
		TimeLag:          symptom.Timestamp.Sub(food.Timestamp),
		SymptomIntensity: symptom.Intensity,
		FoodQuantity:     food.Quantity,
		TemporalWeight:   weight,
		Notes:            notes,
	}, nil
}

// TriggerProbability is one food's scored trigger result for a symptom type.
type TriggerProbability struct {
	FoodName              string                `json:"food_name"`
	Category              TriggerCategory       `json:"category"`
	Probability           float64               `json:"probability"`
	ProbabilityPercentage int                   `json:"probability_percentage"`
	Confidence            float64               `json:"confidence"`
	OccurrenceCount       int                   `json:"occurrence_count"`
	CorrelationScore      float64               `json:"correlation_score"`
	TemporalScore         float64               `json:"temporal_score"`
	BaselineScore         float64               `json:"baseline_score"`
	FrequencyScore        float64               `json:"frequency_score"`
	AverageTimeLag        time.Duration         `json:"average_time_lag"`
	IntensityMultiplier   float64               `json:"intensity_multiplier"`
	LastCorrelationDate   time.Time             `json:"last_correlation_date"`
	Evidence              []CorrelationEvidence `json:"evidence"`
}

// NewTriggerProbability validates the scored fields and derives the integer percentage.
// maxLag bounds AverageTimeLag; zero means DefaultMaxLag.
func NewTriggerProbability(tp TriggerProbability, maxLag time.Duration) (TriggerProbability, error) {
	const op = "trigger probability"
	if maxLag <= 0 {
		maxLag = DefaultMaxLag
	}
	if strings.TrimSpace(tp.FoodName) == "" {
		return TriggerProbability{}, invalid(op, "food name must not be blank")
	}
	if !tp.Category.Valid() {
		return TriggerProbability{}, invalid(op, fmt.Sprintf("unknown category %q", tp.Category))
	}
	if tp.OccurrenceCount <= 0 {
		return TriggerProbability{}, invalid(op, "occurrence count must be positive")
	}
	for name, v := range map[string]float64{
		"probability":       tp.Probability,
		"confidence":        tp.Confidence,
		"correlation score": tp.CorrelationScore,
		"temporal score":    tp.TemporalScore,
		"baseline score":    tp.BaselineScore,
		"frequency score":   tp.FrequencyScore,
	} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return TriggerProbability{}, invalid(op, name+" must be within [0,1]")
		}
	}
	if tp.AverageTimeLag < 0 || tp.AverageTimeLag > maxLag {
		return TriggerProbability{}, invalid(op, fmt.Sprintf("average time lag %s outside [0,%s]", tp.AverageTimeLag, maxLag))
	}
	if tp.IntensityMultiplier < 0.5 || tp.IntensityMultiplier > 2.0 {
		return TriggerProbability{}, invalid(op, "intensity multiplier must be within [0.5,2.0]")
	}
	tp.ProbabilityPercentage = int(math.Floor(tp.Probability * 100))
	tp.Evidence = append([]CorrelationEvidence(nil), tp.Evidence...)
	return tp, nil
}
