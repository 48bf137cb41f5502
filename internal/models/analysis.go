package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Analysis window defaults.
const (
	DefaultWindowSize         = 8 * time.Hour
	DefaultMinimumOccurrences = 3
	DefaultMinimumDays        = 14
	DefaultMinimumConfidence  = 0.3
)

// SeverityLevel buckets the average intensity of a symptom type.
type SeverityLevel string

const (
	SeverityLow    SeverityLevel = "low"
	SeverityMedium SeverityLevel = "medium"
	SeverityHigh   SeverityLevel = "high"
)

// SeverityFromIntensity maps an average intensity onto a severity level.
func SeverityFromIntensity(avg float64) SeverityLevel {
	switch {
	case avg >= 7.0:
		return SeverityHigh
	case avg >= 4.0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Weight is the severity contribution used when ranking analyses.
func (s SeverityLevel) Weight() float64 {
	switch s {
	case SeverityHigh:
		return 1.0
	case SeverityMedium:
		return 0.7
	default:
		return 0.4
	}
}

// RecommendationLevel is the publish/suppress decision for a symptom analysis.
type RecommendationLevel string

const (
	RecommendationHigh          RecommendationLevel = "high"
	RecommendationMedium        RecommendationLevel = "medium"
	RecommendationLowConfidence RecommendationLevel = "low_confidence"
	RecommendationHide          RecommendationLevel = "hide"
)

// SymptomAnalysis bundles the scored triggers and patterns of one symptom type.
type SymptomAnalysis struct {
	SymptomType      string               `json:"symptom_type"`
	TotalOccurrences int                  `json:"total_occurrences"`
	AverageIntensity float64              `json:"average_intensity"`
	Severity         SeverityLevel        `json:"severity"`
	Triggers         []TriggerProbability `json:"triggers"`
	Patterns         []SymptomPattern     `json:"patterns,omitempty"`
	Confidence       float64              `json:"confidence"`
	Recommendation   RecommendationLevel  `json:"recommendation"`
	LastOccurrence   time.Time            `json:"last_occurrence"`
	Insights         []string             `json:"insights,omitempty"`
}

// Validate checks the analysis invariants.
func (a SymptomAnalysis) Validate() error {
	const op = "symptom analysis"
	if strings.TrimSpace(a.SymptomType) == "" {
		return invalid(op, "symptom type must not be blank")
	}
	if a.TotalOccurrences <= 0 {
		return invalid(op, "total occurrences must be positive")
	}
	if a.AverageIntensity < MinIntensity || a.AverageIntensity > MaxIntensity {
		return invalid(op, "average intensity must be within [1,10]")
	}
	if a.Confidence < 0 || a.Confidence > 1 || math.IsNaN(a.Confidence) {
		return invalid(op, "confidence must be within [0,1]")
	}
	if !sort.SliceIsSorted(a.Triggers, func(i, j int) bool {
		return a.Triggers[i].Probability > a.Triggers[j].Probability
	}) {
		return invalid(op, "triggers must be sorted by probability descending")
	}
	if a.Recommendation == RecommendationHide && len(a.Triggers) > 0 {
		return invalid(op, "hidden analyses cannot carry triggers")
	}
	return nil
}

// TopTrigger returns the most probable trigger, if any.
func (a SymptomAnalysis) TopTrigger() (TriggerProbability, bool) {
	if len(a.Triggers) == 0 {
		return TriggerProbability{}, false
	}
	return a.Triggers[0], true
}

// AnalysisTimeWindow bounds the occurrences considered by one analysis run.
type AnalysisTimeWindow struct {
	Start              time.Time     `json:"start"`
	End                time.Time     `json:"end"`
	WindowSize         time.Duration `json:"window_size"`
	MinimumOccurrences int           `json:"minimum_occurrences"`
	MinimumDays        int           `json:"minimum_days"`
}

// NewAnalysisTimeWindow validates the window. Zero WindowSize, MinimumOccurrences and
// MinimumDays fall back to the defaults.
func NewAnalysisTimeWindow(start, end time.Time, windowSize time.Duration, minOccurrences, minDays int) (AnalysisTimeWindow, error) {
	if windowSize == 0 {
		windowSize = DefaultWindowSize
	}
	if minOccurrences == 0 {
		minOccurrences = DefaultMinimumOccurrences
	}
	if minDays == 0 {
		minDays = DefaultMinimumDays
	}
	w := AnalysisTimeWindow{
		Start:              start,
		End:                end,
		WindowSize:         windowSize,
		MinimumOccurrences: minOccurrences,
		MinimumDays:        minDays,
	}
	if err := w.Validate(); err != nil {
		return AnalysisTimeWindow{}, err
	}
	return w, nil
}

// Validate checks the window invariants.
func (w AnalysisTimeWindow) Validate() error {
	const op = "analysis time window"
	if w.Start.IsZero() || w.End.IsZero() {
		return invalid(op, "start and end are required")
	}
	if !w.Start.Before(w.End) {
		return invalid(op, "start must be before end")
	}
	if w.WindowSize <= 0 {
		return invalid(op, "window size must be positive")
	}
	if w.MinimumOccurrences <= 0 {
		return invalid(op, "minimum occurrences must be positive")
	}
	if w.MinimumDays <= 0 {
		return invalid(op, "minimum days must be positive")
	}
	return nil
}

// TotalDays is the length of the window in fractional days.
func (w AnalysisTimeWindow) TotalDays() float64 {
	return w.End.Sub(w.Start).Hours() / 24
}

// WindowHours is the lag window size in hours.
func (w AnalysisTimeWindow) WindowHours() float64 {
	return w.WindowSize.Hours()
}

// AnalysisFilters narrows the events and results considered by a run.
type AnalysisFilters struct {
	SeverityThreshold *int              `json:"severity_threshold,omitempty"`
	SymptomTypes      []string          `json:"symptom_types,omitempty"`
	FoodCategories    []TriggerCategory `json:"food_categories,omitempty"`
	ExcludedFoods     []string          `json:"excluded_foods,omitempty"`
	MinimumConfidence float64           `json:"minimum_confidence"`
	ShowLowOccurrence bool              `json:"show_low_occurrence"`
}

// DefaultAnalysisFilters returns filters that only apply the default confidence floor.
func DefaultAnalysisFilters() AnalysisFilters {
	return AnalysisFilters{MinimumConfidence: DefaultMinimumConfidence}
}

// NewAnalysisFilters validates and normalises filters. Set members are trimmed,
// de-duplicated and sorted so equal filters compare equal.
func NewAnalysisFilters(f AnalysisFilters) (AnalysisFilters, error) {
	const op = "analysis filters"
	if f.SeverityThreshold != nil {
		if *f.SeverityThreshold < MinIntensity || *f.SeverityThreshold > MaxIntensity {
			return AnalysisFilters{}, invalid(op, fmt.Sprintf("severity threshold %d outside [1,10]", *f.SeverityThreshold))
		}
		threshold := *f.SeverityThreshold
		f.SeverityThreshold = &threshold
	}
	if f.MinimumConfidence < 0 || f.MinimumConfidence > 1 || math.IsNaN(f.MinimumConfidence) {
		return AnalysisFilters{}, invalid(op, "minimum confidence must be within [0,1]")
	}
	for _, c := range f.FoodCategories {
		if !c.Valid() {
			return AnalysisFilters{}, invalid(op, fmt.Sprintf("unknown food category %q", c))
		}
	}
	f.SymptomTypes = normaliseSet(f.SymptomTypes)
	f.ExcludedFoods = normaliseSet(f.ExcludedFoods)
	categories := make([]string, 0, len(f.FoodCategories))
	for _, c := range f.FoodCategories {
		categories = append(categories, string(c))
	}
	f.FoodCategories = nil
	for _, c := range normaliseSet(categories) {
		f.FoodCategories = append(f.FoodCategories, TriggerCategory(c))
	}
	return f, nil
}

// AllowsSymptomType reports whether the symptom-type set admits symptomType.
func (f AnalysisFilters) AllowsSymptomType(symptomType string) bool {
	if len(f.SymptomTypes) == 0 {
		return true
	}
	return containsFold(f.SymptomTypes, symptomType)
}

// AllowsCategory reports whether the category allow-list admits c.
func (f AnalysisFilters) AllowsCategory(c TriggerCategory) bool {
	if len(f.FoodCategories) == 0 {
		return true
	}
	for _, allowed := range f.FoodCategories {
		if allowed == c {
			return true
		}
	}
	return false
}

// Excludes reports whether the food name is on the exclude list.
func (f AnalysisFilters) Excludes(food string) bool {
	return containsFold(f.ExcludedFoods, food)
}

// AnalysisResult is the ranked, reliability-scored report of one run.
type AnalysisResult struct {
	ID                      string             `json:"id"`
	GeneratedAt             time.Time          `json:"generated_at"`
	TimeWindow              AnalysisTimeWindow `json:"time_window"`
	Filters                 AnalysisFilters    `json:"filters"`
	Analyses                []SymptomAnalysis  `json:"analyses"`
	Patterns                []SymptomPattern   `json:"patterns,omitempty"`
	TotalSymptomOccurrences int                `json:"total_symptom_occurrences"`
	TotalFoodOccurrences    int                `json:"total_food_occurrences"`
	SymptomsObserved        int                `json:"symptoms_observed"`
	ObservationDays         float64            `json:"observation_days"`
	Reliability             float64            `json:"reliability"`
	FilterStats             FilterStats        `json:"filter_stats"`
}

// Validate checks the result invariants against now.
func (r AnalysisResult) Validate(now time.Time) error {
	const op = "analysis result"
	if r.ID == "" {
		return invalid(op, "id is required")
	}
	if r.GeneratedAt.After(now) {
		return invalid(op, "generation timestamp is in the future")
	}
	if r.ObservationDays <= 0 {
		return invalid(op, "observation period must be positive")
	}
	if r.Reliability < 0 || r.Reliability > 1 || math.IsNaN(r.Reliability) {
		return invalid(op, "reliability must be within [0,1]")
	}
	if r.TotalSymptomOccurrences > 0 && len(r.Analyses) == 0 {
		return invalid(op, "symptom occurrences reported without analyses")
	}
	return nil
}

// FilterStats summarises the effect of a filter pass.
type FilterStats struct {
	OriginalAnalyses int     `json:"original_analyses"`
	FilteredAnalyses int     `json:"filtered_analyses"`
	OriginalTriggers int     `json:"original_triggers"`
	FilteredTriggers int     `json:"filtered_triggers"`
	Reduction        float64 `json:"reduction"`
	ActiveFilters    int     `json:"active_filters"`
}

func normaliseSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
