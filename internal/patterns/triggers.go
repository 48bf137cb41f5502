package patterns

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/miradorstack/trigger-rca/internal/models"
)

// triggerConsistency looks for one food eaten before most episodes of a symptom type.
func (d *Detector) triggerConsistency(symptomType string, series []models.SymptomOccurrence, foods []models.FoodOccurrence) *models.SymptomPattern {
	if len(series) == 0 || len(foods) == 0 {
		return nil
	}
	sortedFoods := append([]models.FoodOccurrence(nil), foods...)
	sort.SliceStable(sortedFoods, func(i, j int) bool {
		return sortedFoods[i].Timestamp.Before(sortedFoods[j].Timestamp)
	})
	window := time.Duration(d.cfg.TriggerWindowHours * float64(time.Hour))

	episodes := make(map[string]int)
	for _, s := range series {
		earliest := s.Timestamp.Add(-window)
		lo := sort.Search(len(sortedFoods), func(i int) bool {
			return !sortedFoods[i].Timestamp.Before(earliest)
		})
		seen := make(map[string]struct{})
		for _, f := range sortedFoods[lo:] {
			if !f.Timestamp.Before(s.Timestamp) {
				break
			}
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			episodes[f.Name]++
		}
	}
	if len(episodes) == 0 {
		return nil
	}

	names := make([]string, 0, len(episodes))
	for name := range episodes {
		names = append(names, name)
	}
	sort.Strings(names)
	top := names[0]
	for _, name := range names[1:] {
		if episodes[name] > episodes[top] {
			top = name
		}
	}

	share := float64(episodes[top]) / float64(len(series))
	if share < d.cfg.MinTriggerShare {
		return nil
	}
	return &models.SymptomPattern{
		SymptomType:     symptomType,
		Type:            models.PatternTriggerConsistency,
		Description:     fmt.Sprintf("%s preceded %.0f%% of %s episodes", top, share*100, symptomType),
		Confidence:      share,
		OccurrenceCount: episodes[top],
		Metadata:        map[string]string{"food": top, "share": formatFloat(share)},
	}
}

type episodeKey struct {
	symptomType string
	at          int64
}

// combinations finds sets of scored triggers that repeatedly precede the same episode.
func (d *Detector) combinations(analyses []models.SymptomAnalysis) []models.SymptomPattern {
	episodes := make(map[episodeKey]map[string]struct{})
	for _, a := range analyses {
		for _, tp := range a.Triggers {
			for _, ev := range tp.Evidence {
				key := episodeKey{symptomType: a.SymptomType, at: ev.SymptomTimestamp.UnixNano()}
				if episodes[key] == nil {
					episodes[key] = make(map[string]struct{})
				}
				episodes[key][tp.FoodName] = struct{}{}
			}
		}
	}

	counts := make(map[string]int)
	types := make(map[string]map[string]struct{})
	for key, foods := range episodes {
		if len(foods) < d.cfg.MinCombinationSize {
			continue
		}
		names := make([]string, 0, len(foods))
		for name := range foods {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, subset := range foodSubsets(names, d.cfg.MinCombinationSize, d.cfg.MaxCombinationSize) {
			combo := strings.Join(subset, " + ")
			counts[combo]++
			if types[combo] == nil {
				types[combo] = make(map[string]struct{})
			}
			types[combo][key.symptomType] = struct{}{}
		}
	}

	combos := make([]string, 0, len(counts))
	for combo, count := range counts {
		if count >= d.cfg.MinCombinationCount {
			combos = append(combos, combo)
		}
	}
	sort.Strings(combos)

	patterns := make([]models.SymptomPattern, 0, len(combos))
	for _, combo := range combos {
		symptomType := models.GeneralSymptomType
		if len(types[combo]) == 1 {
			for t := range types[combo] {
				symptomType = t
			}
		}
		count := counts[combo]
		patterns = append(patterns, models.SymptomPattern{
			SymptomType:     symptomType,
			Type:            models.PatternCombination,
			Description:     fmt.Sprintf("%s were eaten together before %d episodes", combo, count),
			Confidence:      math.Min(1, float64(count)/d.cfg.CombinationSaturation),
			OccurrenceCount: count,
			Metadata:        map[string]string{"foods": combo},
		})
	}
	return patterns
}

// foodSubsets returns every subset of the sorted names with a size in [minSize, maxSize],
// each in sorted order. A non-positive maxSize means no upper bound.
func foodSubsets(names []string, minSize, maxSize int) [][]string {
	if maxSize <= 0 || maxSize > len(names) {
		maxSize = len(names)
	}
	var out [][]string
	var walk func(start int, current []string)
	walk = func(start int, current []string) {
		if len(current) >= minSize {
			out = append(out, append([]string(nil), current...))
		}
		if len(current) == maxSize {
			return
		}
		for i := start; i < len(names); i++ {
			walk(i+1, append(current, names[i]))
		}
	}
	walk(0, make([]string, 0, maxSize))
	return out
}
