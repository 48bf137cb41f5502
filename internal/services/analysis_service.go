package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/trigger-rca/internal/api"
	"github.com/miradorstack/trigger-rca/internal/engine"
	"github.com/miradorstack/trigger-rca/internal/filters"
	"github.com/miradorstack/trigger-rca/internal/metrics"
	"github.com/miradorstack/trigger-rca/internal/models"
	"github.com/miradorstack/trigger-rca/internal/utils"
)

// Runner executes one analysis run.
type Runner interface {
	RunAnalysis(ctx context.Context, window models.AnalysisTimeWindow, f models.AnalysisFilters) (models.AnalysisResult, error)
}

// AnalysisService is the transport-independent facade over the analysis pipeline. It also
// implements api.AnalysisServer.
type AnalysisService struct {
	logger    *slog.Logger
	runner    Runner
	defaults  api.Defaults
	latencies *utils.LatencyTracker
	now       func() time.Time
}

// NewAnalysisService constructs the service facade.
func NewAnalysisService(logger *slog.Logger, runner Runner, defaults api.Defaults) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		logger:    logger,
		runner:    runner,
		defaults:  defaults,
		latencies: utils.NewLatencyTracker(1024),
		now:       time.Now,
	}
}

// Analyze validates the request and runs the pipeline.
func (s *AnalysisService) Analyze(ctx context.Context, req api.AnalysisRequest) (models.AnalysisResult, error) {
	if s.runner == nil {
		return models.AnalysisResult{}, errors.New("analysis pipeline not configured")
	}
	window, err := req.TimeWindow(s.defaults, s.now())
	if err != nil {
		metrics.ObserveAnalysis(0, metrics.OutcomeInvalid)
		return models.AnalysisResult{}, err
	}
	f, err := req.Filters.AnalysisFilters(s.defaults)
	if err != nil {
		metrics.ObserveAnalysis(0, metrics.OutcomeInvalid)
		return models.AnalysisResult{}, err
	}

	start := time.Now()
	result, err := s.runner.RunAnalysis(ctx, window, f)
	duration := time.Since(start)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, models.ErrInvalid) {
			outcome = metrics.OutcomeInvalid
		}
		metrics.ObserveAnalysis(duration, outcome)
		s.logger.Error("analysis failed", slog.Any("error", err), slog.Duration("duration", duration))
		return models.AnalysisResult{}, err
	}

	s.latencies.Observe(duration)
	metrics.ObserveAnalysis(duration, metrics.OutcomeSuccess)
	recordResult(result)
	if total := s.latencies.Total(); total%20 == 0 {
		summary := s.latencies.Summary()
		s.logger.Info("analysis latency",
			slog.Duration("p50", summary.P50),
			slog.Duration("p95", summary.P95),
			slog.Duration("max", summary.Max),
			slog.Int("samples", summary.Samples),
		)
	}
	return result, nil
}

// FilterStats recomputes the statistics of a filter pass supplied by the caller.
func (s *AnalysisService) FilterStats(req api.FilterStatsRequest) (models.FilterStats, error) {
	f, err := req.Filters.AnalysisFilters(s.defaults)
	if err != nil {
		return models.FilterStats{}, err
	}
	return filters.ComputeStats(req.Before, req.After, f), nil
}

// RunAnalysis implements api.AnalysisServer.
func (s *AnalysisService) RunAnalysis(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.AnalysisRequest
	if err := api.DecodeStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	result, err := s.Analyze(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := api.EncodeStruct(result)
	if err != nil {
		s.logger.Error("encode analysis result", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "failed to encode result")
	}
	return out, nil
}

// ComputeFilterStats implements api.AnalysisServer.
func (s *AnalysisService) ComputeFilterStats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.FilterStatsRequest
	if err := api.DecodeStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	stats, err := s.FilterStats(req)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := api.EncodeStruct(stats)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode filter stats")
	}
	return out, nil
}

// LatencyP95 returns the current p95 analysis latency.
func (s *AnalysisService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}

func recordResult(result models.AnalysisResult) {
	triggers := 0
	for _, a := range result.Analyses {
		triggers += len(a.Triggers)
		for _, p := range a.Patterns {
			metrics.AddPattern(string(p.Type))
		}
	}
	for _, p := range result.Patterns {
		metrics.AddPattern(string(p.Type))
	}
	metrics.AddTriggers(triggers)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, engine.ErrSourceUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
