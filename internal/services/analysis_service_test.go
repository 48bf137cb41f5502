package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/trigger-rca/internal/api"
	"github.com/miradorstack/trigger-rca/internal/config"
	"github.com/miradorstack/trigger-rca/internal/engine"
	"github.com/miradorstack/trigger-rca/internal/models"
)

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeRunner struct {
	result  models.AnalysisResult
	err     error
	calls   int
	window  models.AnalysisTimeWindow
	filters models.AnalysisFilters
}

func (f *fakeRunner) RunAnalysis(_ context.Context, window models.AnalysisTimeWindow, filters models.AnalysisFilters) (models.AnalysisResult, error) {
	f.calls++
	f.window = window
	f.filters = filters
	if f.err != nil {
		return models.AnalysisResult{}, f.err
	}
	out := f.result
	out.TimeWindow = window
	out.Filters = filters
	return out, nil
}

func testDefaults() api.Defaults {
	return api.Defaults{Days: 30, WindowHours: 8, MinimumOccurrences: 3, MinimumDays: 14, MinimumConfidence: 0.3}
}

func newTestService(runner Runner) *AnalysisService {
	svc := NewAnalysisService(nil, runner, testDefaults())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func sampleResult() models.AnalysisResult {
	return models.AnalysisResult{
		ID:          "result-1",
		GeneratedAt: fixedNow,
		Analyses: []models.SymptomAnalysis{{
			SymptomType:      "Bloating",
			TotalOccurrences: 10,
			AverageIntensity: 7,
			Confidence:       0.7,
			Recommendation:   models.RecommendationHigh,
			Triggers: []models.TriggerProbability{{
				FoodName:        "milk",
				Category:        models.CategoryDairy,
				Probability:     0.8,
				Confidence:      0.7,
				OccurrenceCount: 8,
				AverageTimeLag:  time.Hour,
			}},
		}},
		TotalSymptomOccurrences: 10,
		TotalFoodOccurrences:    8,
		SymptomsObserved:        10,
		Reliability:             0.5,
	}
}

func TestAnalyzeAppliesDefaults(t *testing.T) {
	runner := &fakeRunner{result: sampleResult()}
	svc := newTestService(runner)

	result, err := svc.Analyze(context.Background(), api.AnalysisRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, runner.calls)

	assert.Equal(t, fixedNow, runner.window.End)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), runner.window.Start)
	assert.Equal(t, 8*time.Hour, runner.window.WindowSize)
	assert.Equal(t, 3, runner.window.MinimumOccurrences)
	assert.InDelta(t, 0.3, runner.filters.MinimumConfidence, 1e-9)
	assert.Equal(t, "result-1", result.ID)
	assert.Equal(t, 1, svc.latencies.Count())
}

func TestAnalyzeRejectsInvalidRequestWithoutRunning(t *testing.T) {
	runner := &fakeRunner{result: sampleResult()}
	svc := newTestService(runner)

	_, err := svc.Analyze(context.Background(), api.AnalysisRequest{Start: "yesterday"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalid))

	_, err = svc.Analyze(context.Background(), api.AnalysisRequest{Filters: api.FilterRequest{FoodCategories: []string{"Sweets"}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalid))
	assert.Zero(t, runner.calls)
}

func TestAnalyzeWithoutRunner(t *testing.T) {
	svc := newTestService(nil)
	_, err := svc.Analyze(context.Background(), api.AnalysisRequest{})
	require.Error(t, err)
}

func TestFilterStats(t *testing.T) {
	svc := newTestService(&fakeRunner{})
	before := sampleResult().Analyses
	minConf := 0.9

	stats, err := svc.FilterStats(api.FilterStatsRequest{
		Before:  before,
		After:   nil,
		Filters: api.FilterRequest{MinimumConfidence: &minConf},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OriginalAnalyses)
	assert.Equal(t, 0, stats.FilteredAnalyses)
	assert.Equal(t, 1, stats.OriginalTriggers)
	assert.InDelta(t, 1.0, stats.Reduction, 1e-9)
	assert.Equal(t, 1, stats.ActiveFilters)
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("bad: %w", models.ErrInvalid), codes.InvalidArgument},
		{fmt.Errorf("fetch symptoms: %w: %w", engine.ErrSourceUnavailable, errors.New("dial")), codes.Unavailable},
		{context.Canceled, codes.Canceled},
		{fmt.Errorf("run: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, status.Code(toStatus(tc.err)), tc.err.Error())
	}
}

func dialBufconn(t *testing.T, svc api.AnalysisServer) *api.AnalysisClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := api.NewServerWithListener(config.ServerConfig{GracefulTimeout: time.Second}, lis, svc, nil)
	go func() { _ = server.Start() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return api.NewAnalysisClient(conn)
}

func TestRunAnalysisOverGRPC(t *testing.T) {
	runner := &fakeRunner{result: sampleResult()}
	client := dialBufconn(t, newTestService(runner))

	in, err := api.EncodeStruct(api.AnalysisRequest{
		Start:       "2026-04-01T00:00:00Z",
		End:         "2026-04-30T00:00:00Z",
		WindowHours: 6,
		Filters:     api.FilterRequest{FoodCategories: []string{"Dairy"}},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := client.RunAnalysis(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, 6*time.Hour, runner.window.WindowSize)
	assert.Equal(t, []models.TriggerCategory{models.CategoryDairy}, runner.filters.FoodCategories)

	var result models.AnalysisResult
	require.NoError(t, api.DecodeStruct(out, &result))
	assert.Equal(t, "result-1", result.ID)
	require.Len(t, result.Analyses, 1)
	require.Len(t, result.Analyses[0].Triggers, 1)
	assert.Equal(t, "milk", result.Analyses[0].Triggers[0].FoodName)
	assert.Equal(t, time.Hour, result.Analyses[0].Triggers[0].AverageTimeLag)
}

func TestRunAnalysisOverGRPCMapsErrors(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("fetch foods: %w: %w", engine.ErrSourceUnavailable, errors.New("connection refused"))}
	client := dialBufconn(t, newTestService(runner))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.RunAnalysis(ctx, &structpb.Struct{})
	assert.Equal(t, codes.Unavailable, status.Code(err))

	bad, err := structpb.NewStruct(map[string]any{"window_hours": "eight"})
	require.NoError(t, err)
	_, err = client.RunAnalysis(ctx, bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestComputeFilterStatsOverGRPC(t *testing.T) {
	client := dialBufconn(t, newTestService(&fakeRunner{}))

	in, err := api.EncodeStruct(api.FilterStatsRequest{
		Before: sampleResult().Analyses,
		After:  sampleResult().Analyses,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := client.ComputeFilterStats(ctx, in)
	require.NoError(t, err)

	var stats models.FilterStats
	require.NoError(t, api.DecodeStruct(out, &stats))
	assert.Equal(t, 1, stats.FilteredAnalyses)
	assert.Zero(t, stats.Reduction)
	assert.Equal(t, 1, stats.ActiveFilters)
}
