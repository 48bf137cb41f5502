package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/miradorstack/trigger-rca/internal/api"
	"github.com/miradorstack/trigger-rca/internal/config"
	"github.com/miradorstack/trigger-rca/internal/filters"
	"github.com/miradorstack/trigger-rca/internal/services"
	"github.com/miradorstack/trigger-rca/internal/utils"
)

var (
	analyzeStart         string
	analyzeEnd           string
	analyzeWindowHours   float64
	analyzeMinOccurrence int
	analyzeMinConfidence float64
	analyzeExcluded      []string
	analyzeCategories    []string
	analyzeSymptoms      []string
	analyzeShowLow       bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "Window start (RFC3339 or YYYY-MM-DD); defaults to end minus analysis.defaultDays")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "Window end (RFC3339 or YYYY-MM-DD); defaults to now")
	analyzeCmd.Flags().Float64Var(&analyzeWindowHours, "window-hours", 0, "Correlation window in hours")
	analyzeCmd.Flags().IntVar(&analyzeMinOccurrence, "min-occurrences", 0, "Minimum occurrences per symptom type")
	analyzeCmd.Flags().Float64Var(&analyzeMinConfidence, "min-confidence", -1, "Minimum trigger confidence (0-1)")
	analyzeCmd.Flags().StringSliceVar(&analyzeExcluded, "exclude", nil, "Foods to exclude")
	analyzeCmd.Flags().StringSliceVar(&analyzeCategories, "category", nil, "Restrict triggers to food categories")
	analyzeCmd.Flags().StringSliceVar(&analyzeSymptoms, "symptom", nil, "Restrict to symptom types")
	analyzeCmd.Flags().BoolVar(&analyzeShowLow, "show-low", false, fmt.Sprintf("Keep triggers with fewer than %d correlated episodes and analyses left without triggers", filters.MinimumTriggerOccurrences))
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis and print the result as JSON",
	Long: `Run one analysis against the configured source and print the result.

Examples:
  trigger-rca analyze --start 2026-03-01T00:00:00Z --end 2026-03-31T00:00:00Z
  trigger-rca analyze --exclude coffee --category Dairy --min-confidence 0.5`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := utils.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.JSON)

	source, err := openSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	req := api.AnalysisRequest{
		Start:              analyzeStart,
		End:                analyzeEnd,
		WindowHours:        analyzeWindowHours,
		MinimumOccurrences: analyzeMinOccurrence,
		Filters: api.FilterRequest{
			SymptomTypes:      analyzeSymptoms,
			FoodCategories:    analyzeCategories,
			ExcludedFoods:     analyzeExcluded,
			ShowLowOccurrence: analyzeShowLow,
		},
	}
	if analyzeMinConfidence >= 0 {
		minConf := analyzeMinConfidence
		req.Filters.MinimumConfidence = &minConf
	}

	service := services.NewAnalysisService(logger, newPipeline(cfg, source, logger), requestDefaults(cfg))
	result, err := service.Analyze(cmd.Context(), req)
	if err != nil {
		return err
	}
	logger.Debug("analysis complete", slog.String("id", result.ID), slog.Int("analyses", len(result.Analyses)))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
