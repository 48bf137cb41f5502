package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/miradorstack/trigger-rca/internal/filters"
	"github.com/miradorstack/trigger-rca/internal/models"
	"github.com/miradorstack/trigger-rca/internal/patterns"
)

// OccurrenceSource supplies logged events for an inclusive time range, in no particular order.
type OccurrenceSource interface {
	SymptomsInRange(ctx context.Context, start, end time.Time) ([]models.SymptomOccurrence, error)
	FoodsInRange(ctx context.Context, start, end time.Time) ([]models.FoodOccurrence, error)
}

// ErrSourceUnavailable marks failures of the occurrence source.
var ErrSourceUnavailable = errors.New("occurrence source unavailable")

// PatternDetector describes the pattern-detection step of the pipeline.
type PatternDetector interface {
	Detect(in patterns.Input) []models.SymptomPattern
}

// Pipeline orchestrates one trigger analysis run.
type Pipeline struct {
	logger   *slog.Logger
	source   OccurrenceSource
	detector PatternDetector
	finder   *EvidenceFinder
	scorer   *CorrelationScorer
	cfg      ScoringConfig
	batch    BatchConfig
	now      func() time.Time
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithScoringConfig overrides the default scoring weights.
func WithScoringConfig(cfg ScoringConfig) Option {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithBatchConfig overrides the large-dataset chunking limits.
func WithBatchConfig(cfg BatchConfig) Option {
	return func(p *Pipeline) {
		if cfg.LargeDatasetThreshold > 0 {
			p.batch.LargeDatasetThreshold = cfg.LargeDatasetThreshold
		}
		if cfg.ChunkSize > 0 {
			p.batch.ChunkSize = cfg.ChunkSize
		}
	}
}

// WithDetector replaces the pattern detector.
func WithDetector(d PatternDetector) Option {
	return func(p *Pipeline) { p.detector = d }
}

// NewPipeline constructs a pipeline reading from source.
func NewPipeline(logger *slog.Logger, source OccurrenceSource, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		logger: logger,
		source: source,
		finder: NewEvidenceFinder(),
		cfg:    DefaultScoringConfig(),
		batch:  DefaultBatchConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.detector == nil {
		p.detector = patterns.NewDetector(logger, patterns.DefaultDetectorConfig())
	}
	p.scorer = NewCorrelationScorer(p.cfg)
	return p
}

// RunAnalysis fetches occurrences for the window and produces a ranked report.
func (p *Pipeline) RunAnalysis(ctx context.Context, window models.AnalysisTimeWindow, f models.AnalysisFilters) (models.AnalysisResult, error) {
	if err := window.Validate(); err != nil {
		return models.AnalysisResult{}, err
	}
	f, err := models.NewAnalysisFilters(f)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	if p.source == nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: not configured", ErrSourceUnavailable)
	}

	symptoms, err := p.source.SymptomsInRange(ctx, window.Start, window.End)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("fetch symptoms: %w: %w", ErrSourceUnavailable, err)
	}
	foods, err := p.source.FoodsInRange(ctx, window.Start, window.End)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("fetch foods: %w: %w", ErrSourceUnavailable, err)
	}

	symptoms = filters.PreFilterSymptoms(symptoms, f)
	foods = filters.PreFilterFoods(foods, f)

	p.logger.Info("trigger analysis started",
		slog.Time("start", window.Start),
		slog.Time("end", window.End),
		slog.Int("symptoms", len(symptoms)),
		slog.Int("foods", len(foods)))
	if window.TotalDays() < float64(window.MinimumDays) {
		p.logger.Warn("observation period shorter than recommended",
			slog.Float64("days", window.TotalDays()),
			slog.Int("minimum_days", window.MinimumDays))
	}

	chunks := p.chunkFoods(symptoms, foods)
	byType := groupSymptoms(symptoms)

	analyses := make([]models.SymptomAnalysis, 0, len(byType))
	for _, symptomType := range sortedKeys(byType) {
		if err := ctx.Err(); err != nil {
			return models.AnalysisResult{}, err
		}
		series := byType[symptomType]
		if len(series) < window.MinimumOccurrences {
			p.logger.Debug("symptom type below minimum occurrences",
				slog.String("symptom_type", symptomType),
				slog.Int("occurrences", len(series)))
			continue
		}
		analysis, ok, err := p.analyzeSymptomType(ctx, symptomType, series, chunks, window)
		if err != nil {
			return models.AnalysisResult{}, err
		}
		if ok {
			analyses = append(analyses, analysis)
		}
	}

	detected := p.detector.Detect(patterns.Input{Symptoms: symptoms, Foods: foods, Analyses: analyses})

	filtered := filters.PostFilter(analyses, f)
	filtered = filters.ApplyTimeWindow(filtered, window)
	for i := range filtered {
		filtered[i].Recommendation = refreshedRecommendation(filtered[i].Triggers, p.cfg.Recommendation)
	}
	ranked, general := attachPatterns(RankAnalyses(filtered, p.cfg.AnalysisRank), detected)

	totalAnalyzed := 0
	for _, a := range ranked {
		totalAnalyzed += a.TotalOccurrences
	}

	result := models.AnalysisResult{
		ID:                      uuid.NewString(),
		GeneratedAt:             p.now().UTC(),
		TimeWindow:              window,
		Filters:                 f,
		Analyses:                ranked,
		Patterns:                general,
		TotalSymptomOccurrences: totalAnalyzed,
		TotalFoodOccurrences:    len(foods),
		SymptomsObserved:        len(symptoms),
		ObservationDays:         window.TotalDays(),
		Reliability:             Reliability(len(symptoms), len(foods), window.TotalDays(), ranked, p.cfg.Reliability),
		FilterStats:             filters.ComputeStats(analyses, ranked, f),
	}

	p.logger.Info("trigger analysis complete",
		slog.String("result_id", result.ID),
		slog.Int("analyses", len(result.Analyses)),
		slog.Int("patterns", len(detected)),
		slog.Float64("reliability", result.Reliability))
	return result, nil
}

// chunkFoods splits foods into fixed-size, time-ordered chunks once the combined dataset
// exceeds the large-dataset threshold. Small datasets yield a single chunk.
func (p *Pipeline) chunkFoods(symptoms []models.SymptomOccurrence, foods []models.FoodOccurrence) [][]models.FoodOccurrence {
	sorted := sortFoods(foods)
	if len(symptoms)+len(foods) <= p.batch.LargeDatasetThreshold || p.batch.ChunkSize <= 0 {
		return [][]models.FoodOccurrence{sorted}
	}
	chunks := make([][]models.FoodOccurrence, 0, len(sorted)/p.batch.ChunkSize+1)
	for start := 0; start < len(sorted); start += p.batch.ChunkSize {
		end := start + p.batch.ChunkSize
		if end > len(sorted) {
			end = len(sorted)
		}
		chunks = append(chunks, sorted[start:end])
	}
	p.logger.Debug("large dataset, scoring foods in chunks",
		slog.Int("chunks", len(chunks)),
		slog.Int("chunk_size", p.batch.ChunkSize))
	return chunks
}

// analyzeSymptomType scores every candidate food for one symptom type. The boolean result is
// false when the analysis is suppressed.
func (p *Pipeline) analyzeSymptomType(ctx context.Context, symptomType string, series []models.SymptomOccurrence, chunks [][]models.FoodOccurrence, window models.AnalysisTimeWindow) (models.SymptomAnalysis, bool, error) {
	best := make(map[string]models.TriggerProbability)
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return models.SymptomAnalysis{}, false, err
		}
		totals := countFoods(chunk)
		evidence := p.finder.Find(series, chunk, window.WindowSize)
		for _, food := range sortedKeys(evidence) {
			tp, err := p.scorer.Score(food, evidence[food], totals[food], len(series), window.WindowSize)
			if err != nil {
				if !errors.Is(err, ErrNoEvidence) {
					p.logger.Debug("skipping food", slog.String("food", food), slog.Any("error", err))
				}
				continue
			}
			if existing, ok := best[food]; !ok || tp.Probability > existing.Probability {
				best[food] = tp
			}
		}
	}

	triggers := make([]models.TriggerProbability, 0, len(best))
	for _, food := range sortedKeys(best) {
		triggers = append(triggers, best[food])
	}
	sort.SliceStable(triggers, func(i, j int) bool {
		return triggers[i].Probability > triggers[j].Probability
	})

	level := RecommendationFor(triggers, p.cfg.Recommendation)
	if level == models.RecommendationHide {
		p.logger.Debug("analysis hidden", slog.String("symptom_type", symptomType), slog.Int("triggers", len(triggers)))
		return models.SymptomAnalysis{}, false, nil
	}

	intensitySum := 0
	var last time.Time
	for _, s := range series {
		intensitySum += s.Intensity
		if s.Timestamp.After(last) {
			last = s.Timestamp
		}
	}
	average := float64(intensitySum) / float64(len(series))

	confidence := 0.0
	for _, tp := range triggers {
		confidence += tp.Confidence
	}
	if len(triggers) > 0 {
		confidence /= float64(len(triggers))
	}

	analysis := models.SymptomAnalysis{
		SymptomType:      symptomType,
		TotalOccurrences: len(series),
		AverageIntensity: average,
		Severity:         models.SeverityFromIntensity(average),
		Triggers:         triggers,
		Confidence:       confidence,
		Recommendation:   level,
		LastOccurrence:   last,
		Insights:         buildInsights(symptomType, triggers, p.cfg.HighProbability),
	}
	if err := analysis.Validate(); err != nil {
		p.logger.Warn("discarding invalid analysis", slog.String("symptom_type", symptomType), slog.Any("error", err))
		return models.SymptomAnalysis{}, false, nil
	}
	return analysis, true, nil
}

// attachPatterns moves symptom-specific patterns onto their published analysis. Cross-symptom
// patterns and those whose analysis was filtered out are returned for the result.
func attachPatterns(analyses []models.SymptomAnalysis, detected []models.SymptomPattern) ([]models.SymptomAnalysis, []models.SymptomPattern) {
	index := make(map[string]int, len(analyses))
	out := make([]models.SymptomAnalysis, len(analyses))
	for i, a := range analyses {
		out[i] = a
		out[i].Patterns = nil
		index[a.SymptomType] = i
	}
	var general []models.SymptomPattern
	for _, pattern := range detected {
		if i, ok := index[pattern.SymptomType]; ok {
			out[i].Patterns = append(out[i].Patterns, pattern)
			continue
		}
		general = append(general, pattern)
	}
	return out, general
}

func groupSymptoms(symptoms []models.SymptomOccurrence) map[string][]models.SymptomOccurrence {
	grouped := make(map[string][]models.SymptomOccurrence)
	for _, s := range symptoms {
		grouped[s.Type] = append(grouped[s.Type], s)
	}
	return grouped
}
