package models

// GeneralSymptomType marks patterns that are not tied to one symptom type.
const GeneralSymptomType = "General"

// PatternType enumerates detected behavioural pattern families.
type PatternType string

const (
	PatternFrequency          PatternType = "frequency"
	PatternTemporal           PatternType = "temporal"
	PatternTriggerConsistency PatternType = "trigger_consistency"
	PatternSeverityTrend      PatternType = "severity_trend"
	PatternCombination        PatternType = "combination"
	PatternMealRelated        PatternType = "meal_related"
	PatternCategoryPreference PatternType = "category_preference"
	PatternSeasonal           PatternType = "seasonal"
)

// ConfidenceBand buckets a pattern confidence for presentation.
type ConfidenceBand string

const (
	BandHigh     ConfidenceBand = "high"
	BandModerate ConfidenceBand = "moderate"
	BandLow      ConfidenceBand = "low"
)

// SymptomPattern is a recurring behaviour detected in the occurrence streams.
type SymptomPattern struct {
	ID              string            `json:"id"`
	SymptomType     string            `json:"symptom_type"`
	Type            PatternType       `json:"type"`
	Description     string            `json:"description"`
	Confidence      float64           `json:"confidence"`
	OccurrenceCount int               `json:"occurrence_count"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Band returns the confidence band of the pattern.
func (p SymptomPattern) Band() ConfidenceBand {
	return BandFor(p.Confidence)
}

// BandFor maps a confidence value to its band.
func BandFor(confidence float64) ConfidenceBand {
	switch {
	case confidence >= 0.7:
		return BandHigh
	case confidence >= 0.4:
		return BandModerate
	default:
		return BandLow
	}
}
