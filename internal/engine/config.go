package engine

import "time"

// ScoringConfig carries the hand-tuned weights and thresholds of the trigger engine.
// It is passed by value; nothing in the engine mutates it.
type ScoringConfig struct {
	Probability    ProbabilityWeights
	Recommendation RecommendationThresholds
	AnalysisRank   AnalysisRankWeights
	TriggerRank    TriggerRankWeights
	Reliability    ReliabilityConfig

	// TemporalDecay is the e-folding time of exp(-lag/decay); independent of the lag window.
	TemporalDecay time.Duration
	// ConfidenceSaturation is the evidence count at which sample-size confidence reaches 1.
	ConfidenceSaturation float64
	// IntensityPivot is the mid-scale intensity mapped to a multiplier of 1.0.
	IntensityPivot         float64
	MinIntensityMultiplier float64
	MaxIntensityMultiplier float64
	// HighProbability marks triggers worth calling out in insights.
	HighProbability float64
}

// ProbabilityWeights combine the component scores into a trigger probability.
type ProbabilityWeights struct {
	Temporal  float64
	Baseline  float64
	Frequency float64
}

// RecommendationThresholds drive the publish/suppress decision.
type RecommendationThresholds struct {
	HighConfidence    float64
	HighOccurrences   int
	MediumConfidence  float64
	MediumOccurrences int
	LowConfidence     float64
}

// AnalysisRankWeights build the composite strength used to order analyses.
type AnalysisRankWeights struct {
	Confidence             float64
	Severity               float64
	TriggerQuality         float64
	Occurrence             float64
	TriggerCountSaturation float64
	OccurrenceSaturation   float64
}

// TriggerRankWeights order triggers inside one analysis.
type TriggerRankWeights struct {
	Probability          float64
	Confidence           float64
	Occurrence           float64
	OccurrenceSaturation float64
}

// ReliabilityConfig normalises the report-level reliability components.
type ReliabilityConfig struct {
	VolumeSaturation    float64
	RangeSaturationDays float64
	SymptomsPerAnalysis float64
}

// DefaultScoringConfig returns the production weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Probability: ProbabilityWeights{
			Temporal:  0.40,
			Baseline:  0.30,
			Frequency: 0.30,
		},
		Recommendation: RecommendationThresholds{
			HighConfidence:    0.7,
			HighOccurrences:   5,
			MediumConfidence:  0.5,
			MediumOccurrences: 3,
			LowConfidence:     0.2,
		},
		AnalysisRank: AnalysisRankWeights{
			Confidence:             0.4,
			Severity:               0.2,
			TriggerQuality:         0.25,
			Occurrence:             0.15,
			TriggerCountSaturation: 10,
			OccurrenceSaturation:   20,
		},
		TriggerRank: TriggerRankWeights{
			Probability:          0.5,
			Confidence:           0.3,
			Occurrence:           0.2,
			OccurrenceSaturation: 15,
		},
		Reliability: ReliabilityConfig{
			VolumeSaturation:    50,
			RangeSaturationDays: 30,
			SymptomsPerAnalysis: 10,
		},
		TemporalDecay:          8 * time.Hour,
		ConfidenceSaturation:   10,
		IntensityPivot:         5.5,
		MinIntensityMultiplier: 0.5,
		MaxIntensityMultiplier: 2.0,
		HighProbability:        0.7,
	}
}

// BatchConfig controls chunked scoring of large datasets.
type BatchConfig struct {
	// LargeDatasetThreshold is the combined symptom+food count above which foods are chunked.
	LargeDatasetThreshold int
	ChunkSize             int
}

// DefaultBatchConfig returns the default chunking limits.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		LargeDatasetThreshold: 5000,
		ChunkSize:             1000,
	}
}
