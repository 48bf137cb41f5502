package engine

import (
	"math"
	"sort"

	"github.com/miradorstack/trigger-rca/internal/models"
	"github.com/miradorstack/trigger-rca/internal/utils"
)

// AnalysisStrength is the composite score used to order analyses.
func AnalysisStrength(a models.SymptomAnalysis, w AnalysisRankWeights) float64 {
	triggerQuality := 0.0
	if top, ok := a.TopTrigger(); ok {
		triggerQuality = (top.Probability + math.Min(1, float64(top.OccurrenceCount)/w.TriggerCountSaturation)) / 2
	}
	occurrenceScore := math.Min(1, float64(a.TotalOccurrences)/w.OccurrenceSaturation)
	return w.Confidence*a.Confidence +
		w.Severity*a.Severity.Weight() +
		w.TriggerQuality*triggerQuality +
		w.Occurrence*occurrenceScore
}

// RankAnalyses returns a copy ordered by descending strength; ties keep input order.
func RankAnalyses(analyses []models.SymptomAnalysis, w AnalysisRankWeights) []models.SymptomAnalysis {
	ranked := append([]models.SymptomAnalysis(nil), analyses...)
	scores := make(map[string]float64, len(ranked))
	for _, a := range ranked {
		scores[a.SymptomType] = AnalysisStrength(a, w)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].SymptomType] > scores[ranked[j].SymptomType]
	})
	return ranked
}

// TriggerStrength is the composite score used to order triggers within an analysis.
func TriggerStrength(tp models.TriggerProbability, w TriggerRankWeights) float64 {
	return w.Probability*tp.Probability +
		w.Confidence*tp.Confidence +
		w.Occurrence*math.Min(1, float64(tp.OccurrenceCount)/w.OccurrenceSaturation)
}

// RankTriggers returns a copy ordered by descending strength, ties broken by occurrence count.
func RankTriggers(triggers []models.TriggerProbability, w TriggerRankWeights) []models.TriggerProbability {
	ranked := append([]models.TriggerProbability(nil), triggers...)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := TriggerStrength(ranked[i], w), TriggerStrength(ranked[j], w)
		if si != sj {
			return si > sj
		}
		return ranked[i].OccurrenceCount > ranked[j].OccurrenceCount
	})
	return ranked
}

// Reliability scores confidence in the whole report.
func Reliability(totalSymptoms, totalFoods int, observationDays float64, analyses []models.SymptomAnalysis, cfg ReliabilityConfig) float64 {
	if len(analyses) == 0 || totalSymptoms+totalFoods == 0 {
		return 0
	}
	volume := math.Min(1, float64(totalSymptoms+totalFoods)/cfg.VolumeSaturation)
	timeRange := math.Min(1, observationDays/cfg.RangeSaturationDays)

	confidenceSum := 0.0
	for _, a := range analyses {
		confidenceSum += a.Confidence
	}
	meanConfidence := confidenceSum / float64(len(analyses))

	coverage := float64(len(analyses)) / math.Max(1, float64(totalSymptoms)/cfg.SymptomsPerAnalysis)

	return utils.Clamp((volume+timeRange+meanConfidence+coverage)/4, 0, 1)
}
