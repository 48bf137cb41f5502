package patterns

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/trigger-rca/internal/models"
)

// 2026-03-02 is a Monday.
var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func symptom(t *testing.T, id, symptomType string, intensity int, at time.Time) models.SymptomOccurrence {
	t.Helper()
	s, err := models.NewSymptomOccurrence(id, symptomType, intensity, at, "")
	require.NoError(t, err)
	return s
}

func food(t *testing.T, id, name string, at time.Time) models.FoodOccurrence {
	t.Helper()
	f, err := models.NewFoodOccurrence(id, name, "", "", at)
	require.NoError(t, err)
	return f
}

func newTestDetector() *Detector {
	d := NewDetector(nil, DefaultDetectorConfig())
	n := 0
	d.newID = func() string {
		n++
		return fmt.Sprintf("pattern-%d", n)
	}
	return d
}

func byType(patterns []models.SymptomPattern, pt models.PatternType) []models.SymptomPattern {
	var out []models.SymptomPattern
	for _, p := range patterns {
		if p.Type == pt {
			out = append(out, p)
		}
	}
	return out
}

func TestFrequencyDailyCadence(t *testing.T) {
	var series []models.SymptomOccurrence
	for i := 0; i < 4; i++ {
		series = append(series, symptom(t, fmt.Sprint(i), "Headache", 5, base.Add(time.Duration(i)*24*time.Hour+9*time.Hour)))
	}

	p := newTestDetector().frequency("Headache", series)
	require.NotNil(t, p)
	assert.Equal(t, models.PatternFrequency, p.Type)
	assert.Equal(t, "daily", p.Metadata["cadence"])
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)
}

func TestFrequencyIrregularIntervals(t *testing.T) {
	offsets := []time.Duration{0, time.Hour, 200 * time.Hour, 201 * time.Hour, 500 * time.Hour}
	var series []models.SymptomOccurrence
	for i, off := range offsets {
		series = append(series, symptom(t, fmt.Sprint(i), "Headache", 5, base.Add(off)))
	}
	assert.Nil(t, newTestDetector().frequency("Headache", series))
}

func TestFrequencyNeedsThreeOccurrences(t *testing.T) {
	series := []models.SymptomOccurrence{
		symptom(t, "a", "Nausea", 3, base),
		symptom(t, "b", "Nausea", 3, base.Add(24*time.Hour)),
	}
	assert.Nil(t, newTestDetector().frequency("Nausea", series))
}

func TestTriggerConsistency(t *testing.T) {
	var series []models.SymptomOccurrence
	var foods []models.FoodOccurrence
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i)*24*time.Hour + 14*time.Hour)
		series = append(series, symptom(t, fmt.Sprint(i), "Bloating", 6, at))
		if i < 4 {
			// eaten twice before the same episode; counted once
			foods = append(foods,
				food(t, fmt.Sprintf("o-%d", i), "onion", at.Add(-2*time.Hour)),
				food(t, fmt.Sprintf("p-%d", i), "onion", at.Add(-3*time.Hour)),
			)
		}
		foods = append(foods, food(t, fmt.Sprintf("r-%d", i), "rice", at.Add(-10*time.Hour)))
	}

	p := newTestDetector().triggerConsistency("Bloating", series, foods)
	require.NotNil(t, p)
	assert.Equal(t, "onion", p.Metadata["food"])
	assert.InDelta(t, 0.8, p.Confidence, 1e-9)
	assert.Equal(t, 4, p.OccurrenceCount)
}

func TestTriggerConsistencyHasNoEpisodeMinimum(t *testing.T) {
	var series []models.SymptomOccurrence
	var foods []models.FoodOccurrence
	for i := 0; i < 2; i++ {
		at := base.Add(time.Duration(i)*24*time.Hour + 14*time.Hour)
		series = append(series, symptom(t, fmt.Sprint(i), "Nausea", 5, at))
		foods = append(foods, food(t, fmt.Sprint(i), "shrimp", at.Add(-time.Hour)))
	}

	p := newTestDetector().triggerConsistency("Nausea", series, foods)
	require.NotNil(t, p)
	assert.Equal(t, "shrimp", p.Metadata["food"])
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)
}

func TestTriggerConsistencyBelowShare(t *testing.T) {
	var series []models.SymptomOccurrence
	var foods []models.FoodOccurrence
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i)*24*time.Hour + 14*time.Hour)
		series = append(series, symptom(t, fmt.Sprint(i), "Bloating", 6, at))
		if i < 2 {
			foods = append(foods, food(t, fmt.Sprint(i), "onion", at.Add(-time.Hour)))
		}
	}
	assert.Nil(t, newTestDetector().triggerConsistency("Bloating", series, foods))
}

func TestTemporalClusters(t *testing.T) {
	var symptoms []models.SymptomOccurrence
	for i := 0; i < 5; i++ {
		// every Monday at 19:00
		symptoms = append(symptoms, symptom(t, fmt.Sprint(i), "Reflux", 5, base.Add(time.Duration(i)*7*24*time.Hour+19*time.Hour)))
	}

	patterns := newTestDetector().temporalClusters(symptoms)
	require.Len(t, patterns, 3)
	assert.Equal(t, "evening", patterns[0].Metadata["bucket"])
	assert.Equal(t, "Monday", patterns[1].Metadata["bucket"])
	assert.Equal(t, models.PatternMealRelated, patterns[2].Type)
	assert.Equal(t, "dinner", patterns[2].Metadata["bucket"])
	for _, p := range patterns {
		assert.Equal(t, models.GeneralSymptomType, p.SymptomType)
		assert.InDelta(t, 1.0, p.Confidence, 1e-9)
	}
}

func TestTemporalClustersNeedFiveOccurrences(t *testing.T) {
	var symptoms []models.SymptomOccurrence
	for i := 0; i < 4; i++ {
		symptoms = append(symptoms, symptom(t, fmt.Sprint(i), "Reflux", 5, base.Add(time.Duration(i)*time.Hour)))
	}
	assert.Empty(t, newTestDetector().temporalClusters(symptoms))
}

func TestSeverityEscalation(t *testing.T) {
	intensities := []int{2, 3, 5, 4, 7}
	var series []models.SymptomOccurrence
	for i, v := range intensities {
		series = append(series, symptom(t, fmt.Sprint(i), "Cramps", v, base.Add(time.Duration(i)*24*time.Hour)))
	}

	p := newTestDetector().severityEscalation("Cramps", series)
	require.NotNil(t, p)
	assert.Equal(t, models.PatternSeverityTrend, p.Type)
	assert.InDelta(t, 0.75, p.Confidence, 1e-9)
	assert.Equal(t, "escalating", p.Metadata["trend"])
}

func TestSeverityCycles(t *testing.T) {
	intensities := []int{2, 8, 3, 9, 2, 7, 1, 6}
	var series []models.SymptomOccurrence
	for i, v := range intensities {
		series = append(series, symptom(t, fmt.Sprint(i), "Migraine", v, base.Add(time.Duration(i)*24*time.Hour)))
	}

	p := newTestDetector().severityCycles("Migraine", series)
	require.NotNil(t, p)
	assert.Equal(t, "3", p.Metadata["peaks"])
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)

	assert.Nil(t, newTestDetector().severityCycles("Migraine", series[:5]))
}

func triggerWithEvidence(t *testing.T, name string, lag time.Duration, episodes ...time.Time) models.TriggerProbability {
	t.Helper()
	tp := models.TriggerProbability{FoodName: name, AverageTimeLag: lag, OccurrenceCount: len(episodes)}
	for i, at := range episodes {
		ev, err := models.NewCorrelationEvidence(
			food(t, fmt.Sprintf("%s-%d", name, i), name, at.Add(-lag)),
			symptom(t, fmt.Sprintf("s-%d", i), "Bloating", 5, at),
			0.5, "")
		require.NoError(t, err)
		tp.Evidence = append(tp.Evidence, ev)
	}
	return tp
}

func TestCombinations(t *testing.T) {
	var episodes []time.Time
	for i := 0; i < 4; i++ {
		episodes = append(episodes, base.Add(time.Duration(i)*24*time.Hour+13*time.Hour))
	}
	analysis := models.SymptomAnalysis{
		SymptomType: "Bloating",
		Triggers: []models.TriggerProbability{
			triggerWithEvidence(t, "milk", time.Hour, episodes...),
			triggerWithEvidence(t, "bread", 2*time.Hour, episodes...),
			triggerWithEvidence(t, "apple", time.Hour, episodes[0]),
		},
	}

	patterns := newTestDetector().combinations([]models.SymptomAnalysis{analysis})
	require.Len(t, patterns, 1)
	assert.Equal(t, "bread + milk", patterns[0].Metadata["foods"])
	assert.Equal(t, "Bloating", patterns[0].SymptomType)
	assert.Equal(t, 4, patterns[0].OccurrenceCount)
	assert.InDelta(t, 0.4, patterns[0].Confidence, 1e-9)

	detected := newTestDetector().Detect(Input{Analyses: []models.SymptomAnalysis{analysis}})
	combos := byType(detected, models.PatternCombination)
	require.Len(t, combos, 1)
	assert.Equal(t, "bread + milk", combos[0].Metadata["foods"])
}

func TestFoodSubsets(t *testing.T) {
	got := foodSubsets([]string{"apple", "bread", "milk"}, 2, 0)
	assert.Equal(t, [][]string{
		{"apple", "bread"},
		{"apple", "bread", "milk"},
		{"apple", "milk"},
		{"bread", "milk"},
	}, got)

	capped := foodSubsets([]string{"a", "b", "c", "d"}, 2, 2)
	assert.Len(t, capped, 6)
	for _, subset := range capped {
		assert.Len(t, subset, 2)
	}
}

func TestTimingConsistency(t *testing.T) {
	analysis := models.SymptomAnalysis{SymptomType: "Bloating"}
	for i, lag := range []time.Duration{2 * time.Hour, 2 * time.Hour, 2 * time.Hour, 3 * time.Hour, 2 * time.Hour} {
		analysis.Triggers = append(analysis.Triggers, models.TriggerProbability{FoodName: fmt.Sprint(i), AverageTimeLag: lag})
	}

	p := newTestDetector().timingConsistency([]models.SymptomAnalysis{analysis})
	require.NotNil(t, p)
	assert.Equal(t, models.GeneralSymptomType, p.SymptomType)
	assert.Greater(t, p.Confidence, 0.6)

	assert.Nil(t, newTestDetector().timingConsistency([]models.SymptomAnalysis{{Triggers: analysis.Triggers[:4]}}))
}

func TestDetectAppliesFloorsAndIsDeterministic(t *testing.T) {
	var episodes []time.Time
	for i := 0; i < 3; i++ {
		episodes = append(episodes, base.Add(time.Duration(i)*24*time.Hour+13*time.Hour))
	}
	// three shared episodes give a combination confidence of 0.3, under the 0.4 floor
	in := Input{Analyses: []models.SymptomAnalysis{{
		SymptomType: "Bloating",
		Triggers: []models.TriggerProbability{
			triggerWithEvidence(t, "milk", time.Hour, episodes...),
			triggerWithEvidence(t, "bread", time.Hour, episodes...),
		},
	}}}
	for i, at := range episodes {
		in.Symptoms = append(in.Symptoms, symptom(t, fmt.Sprint(i), "Bloating", 4, at))
	}

	first := newTestDetector().Detect(in)
	assert.Empty(t, byType(first, models.PatternCombination))
	assert.NotEmpty(t, byType(first, models.PatternFrequency))
	for _, p := range first {
		assert.NotEmpty(t, p.ID)
	}

	second := newTestDetector().Detect(in)
	assert.Equal(t, first, second)
}
