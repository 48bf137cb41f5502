package api

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/trigger-rca/internal/models"
	"github.com/miradorstack/trigger-rca/internal/utils"
)

// AnalysisRequest is the wire form of a RunAnalysis call. Omitted fields take the server
// defaults.
type AnalysisRequest struct {
	Start              string        `json:"start,omitempty"`
	End                string        `json:"end,omitempty"`
	WindowHours        float64       `json:"window_hours,omitempty"`
	MinimumOccurrences int           `json:"minimum_occurrences,omitempty"`
	MinimumDays        int           `json:"minimum_days,omitempty"`
	Filters            FilterRequest `json:"filters"`
}

// FilterRequest is the wire form of AnalysisFilters. Categories accept either the enum value
// or the display name.
type FilterRequest struct {
	SeverityThreshold *int     `json:"severity_threshold,omitempty"`
	SymptomTypes      []string `json:"symptom_types,omitempty"`
	FoodCategories    []string `json:"food_categories,omitempty"`
	ExcludedFoods     []string `json:"excluded_foods,omitempty"`
	MinimumConfidence *float64 `json:"minimum_confidence,omitempty"`
	ShowLowOccurrence bool     `json:"show_low_occurrence,omitempty"`
}

// FilterStatsRequest asks for the statistics of an already-performed filter pass.
type FilterStatsRequest struct {
	Before  []models.SymptomAnalysis `json:"before"`
	After   []models.SymptomAnalysis `json:"after"`
	Filters FilterRequest            `json:"filters"`
}

// Defaults fills request fields the caller left out.
type Defaults struct {
	Days               int
	WindowHours        float64
	MinimumOccurrences int
	MinimumDays        int
	MinimumConfidence  float64
}

// TimeWindow converts the request into a validated AnalysisTimeWindow. A missing end means
// now; a missing start means Days before end.
func (r AnalysisRequest) TimeWindow(d Defaults, now time.Time) (models.AnalysisTimeWindow, error) {
	end := now.UTC()
	if r.End != "" {
		parsed, err := utils.ParseTime(r.End)
		if err != nil {
			return models.AnalysisTimeWindow{}, utils.NewAppError("analysis request", "end: "+err.Error(), models.ErrInvalid)
		}
		end = parsed
	}
	start := end.AddDate(0, 0, -d.Days)
	if r.Start != "" {
		parsed, err := utils.ParseTime(r.Start)
		if err != nil {
			return models.AnalysisTimeWindow{}, utils.NewAppError("analysis request", "start: "+err.Error(), models.ErrInvalid)
		}
		start = parsed
	}

	hours := r.WindowHours
	if hours == 0 {
		hours = d.WindowHours
	}
	minOccurrences := r.MinimumOccurrences
	if minOccurrences == 0 {
		minOccurrences = d.MinimumOccurrences
	}
	minDays := r.MinimumDays
	if minDays == 0 {
		minDays = d.MinimumDays
	}
	return models.NewAnalysisTimeWindow(start, end, time.Duration(hours*float64(time.Hour)), minOccurrences, minDays)
}

// AnalysisFilters converts the request into validated, normalised filters.
func (f FilterRequest) AnalysisFilters(d Defaults) (models.AnalysisFilters, error) {
	out := models.AnalysisFilters{
		SeverityThreshold: f.SeverityThreshold,
		SymptomTypes:      f.SymptomTypes,
		ExcludedFoods:     f.ExcludedFoods,
		MinimumConfidence: d.MinimumConfidence,
		ShowLowOccurrence: f.ShowLowOccurrence,
	}
	if f.MinimumConfidence != nil {
		out.MinimumConfidence = *f.MinimumConfidence
	}
	for _, label := range f.FoodCategories {
		category, ok := models.ParseTriggerCategory(label)
		if !ok {
			return models.AnalysisFilters{}, utils.NewAppError("filter request", fmt.Sprintf("unknown food category %q", label), models.ErrInvalid)
		}
		out.FoodCategories = append(out.FoodCategories, category)
	}
	return models.NewAnalysisFilters(out)
}

// DecodeStruct copies a structpb document into out through its JSON form.
func DecodeStruct(s *structpb.Struct, out any) error {
	if s == nil {
		return fmt.Errorf("request is nil")
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("encode struct: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return utils.NewAppError("decode request", err.Error(), models.ErrInvalid)
	}
	return nil
}

// EncodeStruct converts v into a structpb document through its JSON form.
func EncodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("response is not an object: %w", err)
	}
	return structpb.NewStruct(fields)
}
