package engine

import (
	"errors"
	"math"
	"time"

	"github.com/miradorstack/trigger-rca/internal/models"
	"github.com/miradorstack/trigger-rca/internal/utils"
)

// ErrNoEvidence is returned when a food cannot be scored.
var ErrNoEvidence = errors.New("no scoreable evidence")

// CorrelationScorer turns a food's accumulated evidence into a TriggerProbability.
type CorrelationScorer struct {
	cfg ScoringConfig
}

// NewCorrelationScorer constructs a scorer bound to cfg.
func NewCorrelationScorer(cfg ScoringConfig) *CorrelationScorer {
	return &CorrelationScorer{cfg: cfg}
}

// Score computes the trigger probability of one food for the current symptom type.
// totalFood is how often the food was eaten; totalSymptoms is how often the symptom occurred.
func (s *CorrelationScorer) Score(food string, evidence []models.CorrelationEvidence, totalFood, totalSymptoms int, maxLag time.Duration) (models.TriggerProbability, error) {
	n := len(evidence)
	if n == 0 || totalFood <= 0 || totalSymptoms <= 0 {
		return models.TriggerProbability{}, ErrNoEvidence
	}
	count := float64(n)
	category := models.CategorizeFood(food)

	decayHours := s.cfg.TemporalDecay.Hours()
	var temporalSum, intensitySum float64
	var lagSum time.Duration
	var last time.Time
	for _, ev := range evidence {
		temporalSum += math.Exp(-ev.TimeLag.Hours()/decayHours) * ev.TemporalWeight
		intensitySum += float64(ev.SymptomIntensity)
		lagSum += ev.TimeLag
		if ev.SymptomTimestamp.After(last) {
			last = ev.SymptomTimestamp
		}
	}

	correlation := utils.Clamp(count/float64(totalFood), 0, 1)
	temporal := utils.Clamp(temporalSum/count, 0, 1)
	baseline := category.Baseline()
	frequency := utils.Clamp(count/float64(totalSymptoms), 0, 1)

	w := s.cfg.Probability
	probability := utils.Clamp(w.Temporal*temporal+w.Baseline*baseline+w.Frequency*frequency, 0, 1)

	sampleConfidence := math.Min(count/s.cfg.ConfidenceSaturation, 1)
	ratioConfidence := math.Min(count/float64(totalFood), 1)
	confidence := utils.Clamp((sampleConfidence+ratioConfidence)/2, 0, 1)

	averageLag := (lagSum / time.Duration(n)).Truncate(time.Minute)
	multiplier := utils.Clamp(intensitySum/count/s.cfg.IntensityPivot, s.cfg.MinIntensityMultiplier, s.cfg.MaxIntensityMultiplier)

	return models.NewTriggerProbability(models.TriggerProbability{
		FoodName:            food,
		Category:            category,
		Probability:         probability,
		Confidence:          confidence,
		OccurrenceCount:     n,
		CorrelationScore:    correlation,
		TemporalScore:       temporal,
		BaselineScore:       baseline,
		FrequencyScore:      frequency,
		AverageTimeLag:      averageLag,
		IntensityMultiplier: multiplier,
		LastCorrelationDate: last,
		Evidence:            evidence,
	}, maxLag)
}
