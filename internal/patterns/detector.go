// Package patterns detects recurring symptom behaviour that does not depend on a specific
// food: frequency, timing, trigger consistency, combinations and severity trends.
package patterns

import (
	"log/slog"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/miradorstack/trigger-rca/internal/models"
)

// DetectorConfig holds the detection thresholds. Each episode counts toward every food
// subset of size MinCombinationSize..MaxCombinationSize (zero means unbounded).
type DetectorConfig struct {
	// MinConfidence is the floor applied to all non-combination patterns.
	MinConfidence float64
	// MinCombinationConfidence is the floor applied to combination patterns.
	MinCombinationConfidence float64

	MinFrequencyOccurrences  int
	MinFrequencyConsistency  float64
	TriggerWindowHours       float64
	MinTriggerShare          float64
	MinClusterOccurrences    int
	MinDailyShare            float64
	MinWeeklyShare           float64
	MinMealShare             float64
	MinCombinationSize       int
	MaxCombinationSize       int
	MinCombinationCount      int
	CombinationSaturation    float64
	MinTimingPoints          int
	MinTimingConsistency     float64
	MinEscalationOccurrences int
	MinEscalationStrength    float64
	MinCycleOccurrences      int
	MinCyclePeaks            int
}

// DefaultDetectorConfig returns the production thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinConfidence:            0.3,
		MinCombinationConfidence: 0.4,
		MinFrequencyOccurrences:  3,
		MinFrequencyConsistency:  0.4,
		TriggerWindowHours:       8,
		MinTriggerShare:          0.6,
		MinClusterOccurrences:    5,
		MinDailyShare:            0.6,
		MinWeeklyShare:           0.4,
		MinMealShare:             0.5,
		MinCombinationSize:       2,
		MaxCombinationSize:       4,
		MinCombinationCount:      3,
		CombinationSaturation:    10,
		MinTimingPoints:          5,
		MinTimingConsistency:     0.6,
		MinEscalationOccurrences: 4,
		MinEscalationStrength:    0.6,
		MinCycleOccurrences:      6,
		MinCyclePeaks:            2,
	}
}

// Input is the raw and scored data a detection pass inspects.
type Input struct {
	Symptoms []models.SymptomOccurrence
	Foods    []models.FoodOccurrence
	Analyses []models.SymptomAnalysis
}

// Detector runs every sub-detector and applies the confidence floors.
type Detector struct {
	cfg    DetectorConfig
	logger *slog.Logger
	newID  func() string
}

// NewDetector constructs a Detector.
func NewDetector(logger *slog.Logger, cfg DetectorConfig) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{cfg: cfg, logger: logger, newID: uuid.NewString}
}

// Detect returns all patterns above their confidence floor. Output order is fixed:
// per-symptom detectors by symptom type, then cross-symptom detectors.
func (d *Detector) Detect(in Input) []models.SymptomPattern {
	byType := groupByType(in.Symptoms)
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	var candidates []models.SymptomPattern
	for _, symptomType := range types {
		series := byType[symptomType]
		candidates = appendIf(candidates, d.frequency(symptomType, series))
		candidates = appendIf(candidates, d.triggerConsistency(symptomType, series, in.Foods))
		candidates = appendIf(candidates, d.severityEscalation(symptomType, series))
		candidates = appendIf(candidates, d.severityCycles(symptomType, series))
	}
	candidates = append(candidates, d.temporalClusters(in.Symptoms)...)
	candidates = append(candidates, d.combinations(in.Analyses)...)
	candidates = appendIf(candidates, d.timingConsistency(in.Analyses))

	patterns := make([]models.SymptomPattern, 0, len(candidates))
	for _, p := range candidates {
		floor := d.cfg.MinConfidence
		if p.Type == models.PatternCombination {
			floor = d.cfg.MinCombinationConfidence
		}
		if p.Confidence < floor {
			continue
		}
		p.ID = d.newID()
		patterns = append(patterns, p)
	}
	d.logger.Debug("pattern detection complete",
		slog.Int("candidates", len(candidates)),
		slog.Int("patterns", len(patterns)))
	return patterns
}

func appendIf(patterns []models.SymptomPattern, p *models.SymptomPattern) []models.SymptomPattern {
	if p == nil {
		return patterns
	}
	return append(patterns, *p)
}

func groupByType(symptoms []models.SymptomOccurrence) map[string][]models.SymptomOccurrence {
	grouped := make(map[string][]models.SymptomOccurrence)
	for _, s := range symptoms {
		grouped[s.Type] = append(grouped[s.Type], s)
	}
	for t, series := range grouped {
		grouped[t] = sortByTime(series)
	}
	return grouped
}

func sortByTime(symptoms []models.SymptomOccurrence) []models.SymptomOccurrence {
	sorted := append([]models.SymptomOccurrence(nil), symptoms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
