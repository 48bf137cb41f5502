package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/miradorstack/trigger-rca/internal/models"
)

var testBase = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	symptoms    []models.SymptomOccurrence
	foods       []models.FoodOccurrence
	symptomErr  error
	foodErr     error
	symptomCall int
}

func (f *fakeSource) SymptomsInRange(ctx context.Context, start, end time.Time) ([]models.SymptomOccurrence, error) {
	f.symptomCall++
	if f.symptomErr != nil {
		return nil, f.symptomErr
	}
	return inRange(f.symptoms, start, end, func(s models.SymptomOccurrence) time.Time { return s.Timestamp }), nil
}

func (f *fakeSource) FoodsInRange(ctx context.Context, start, end time.Time) ([]models.FoodOccurrence, error) {
	if f.foodErr != nil {
		return nil, f.foodErr
	}
	return inRange(f.foods, start, end, func(o models.FoodOccurrence) time.Time { return o.Timestamp }), nil
}

func inRange[T any](items []T, start, end time.Time, at func(T) time.Time) []T {
	var out []T
	for _, item := range items {
		ts := at(item)
		if ts.Before(start) || ts.After(end) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func mustSymptom(t *testing.T, id, symptomType string, intensity int, ts time.Time) models.SymptomOccurrence {
	t.Helper()
	s, err := models.NewSymptomOccurrence(id, symptomType, intensity, ts, "")
	if err != nil {
		t.Fatalf("symptom %s: %v", id, err)
	}
	return s
}

func mustFood(t *testing.T, id, name string, ts time.Time) models.FoodOccurrence {
	t.Helper()
	f, err := models.NewFoodOccurrence(id, name, "1 serving", "", ts)
	if err != nil {
		t.Fatalf("food %s: %v", id, err)
	}
	return f
}

// bloatingDataset logs ten daily Bloating episodes at noon, eight of them an hour after milk.
func bloatingDataset(t *testing.T) *fakeSource {
	t.Helper()
	src := &fakeSource{}
	for i := 0; i < 10; i++ {
		at := testBase.Add(time.Duration(i)*24*time.Hour + 12*time.Hour)
		src.symptoms = append(src.symptoms, mustSymptom(t, fmt.Sprintf("s-%02d", i), "Bloating", 7, at))
		if i < 8 {
			src.foods = append(src.foods, mustFood(t, fmt.Sprintf("f-%02d", i), "milk", at.Add(-time.Hour)))
		}
	}
	return src
}

func testWindow(t *testing.T, windowSize time.Duration) models.AnalysisTimeWindow {
	t.Helper()
	w, err := models.NewAnalysisTimeWindow(testBase, testBase.Add(30*24*time.Hour), windowSize, 3, 14)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	return w
}

func approx(a, b float64) bool {
	const eps = 1e-3
	d := a - b
	return d < eps && d > -eps
}
