package models

import (
	"errors"
	"strings"
	"time"

	"github.com/miradorstack/trigger-rca/internal/utils"
)

// ErrInvalid marks construction-time validation failures.
var ErrInvalid = errors.New("invalid input")

// Intensity bounds for symptom episodes.
const (
	MinIntensity = 1
	MaxIntensity = 10
)

// FoodOccurrence is a single logged food intake.
type FoodOccurrence struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFoodOccurrence validates and returns a FoodOccurrence.
func NewFoodOccurrence(id, name, quantity, notes string, ts time.Time) (FoodOccurrence, error) {
	food := FoodOccurrence{ID: id, Name: strings.TrimSpace(name), Quantity: quantity, Notes: notes, Timestamp: ts}
	if err := food.Validate(); err != nil {
		return FoodOccurrence{}, err
	}
	return food, nil
}

// Validate checks the occurrence invariants.
func (f FoodOccurrence) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return invalid("food occurrence", "name must not be blank")
	}
	if f.Timestamp.IsZero() {
		return invalid("food occurrence", "timestamp is required")
	}
	return nil
}

// SymptomOccurrence is a single logged symptom episode.
type SymptomOccurrence struct {
	ID        string    `json:"id,omitempty"`
	Type      string    `json:"type"`
	Intensity int       `json:"intensity"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

// NewSymptomOccurrence validates and returns a SymptomOccurrence.
func NewSymptomOccurrence(id, symptomType string, intensity int, ts time.Time, notes string) (SymptomOccurrence, error) {
	symptom := SymptomOccurrence{ID: id, Type: strings.TrimSpace(symptomType), Intensity: intensity, Timestamp: ts, Notes: notes}
	if err := symptom.Validate(); err != nil {
		return SymptomOccurrence{}, err
	}
	return symptom, nil
}

// Validate checks the occurrence invariants.
func (s SymptomOccurrence) Validate() error {
	if strings.TrimSpace(s.Type) == "" {
		return invalid("symptom occurrence", "type must not be blank")
	}
	if s.Intensity < MinIntensity || s.Intensity > MaxIntensity {
		return invalid("symptom occurrence", "intensity must be between 1 and 10")
	}
	if s.Timestamp.IsZero() {
		return invalid("symptom occurrence", "timestamp is required")
	}
	return nil
}

func invalid(op, msg string) error {
	return utils.NewAppError(op, msg, ErrInvalid)
}
