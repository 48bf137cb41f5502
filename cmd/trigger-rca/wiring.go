package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/miradorstack/trigger-rca/internal/api"
	"github.com/miradorstack/trigger-rca/internal/cache"
	"github.com/miradorstack/trigger-rca/internal/config"
	"github.com/miradorstack/trigger-rca/internal/engine"
	"github.com/miradorstack/trigger-rca/internal/patterns"
	"github.com/miradorstack/trigger-rca/internal/repo"
)

// occurrenceSource is an engine source that owns resources.
type occurrenceSource interface {
	engine.OccurrenceSource
	io.Closer
}

type logbookSource struct {
	*repo.LogbookClient
	cache cache.Provider
}

func (s logbookSource) Close() error { return s.cache.Close() }

func openSource(cfg *config.Config, logger *slog.Logger) (occurrenceSource, error) {
	switch cfg.Source.Kind {
	case config.SourceSQLite:
		store, err := repo.OpenSQLiteStore(cfg.Source.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.SourceLogbook:
		var provider cache.Provider = cache.NoopProvider{}
		if cfg.Cache.Enabled {
			provider = cache.NewMemoryProvider(cfg.Cache.Size, cfg.Cache.TTL)
		}
		client := repo.NewLogbookClient(repo.LogbookConfig{
			BaseURL:           cfg.Source.Logbook.BaseURL,
			SymptomsPath:      cfg.Source.Logbook.SymptomsPath,
			FoodsPath:         cfg.Source.Logbook.FoodsPath,
			Timeout:           cfg.Source.Logbook.Timeout,
			RequestsPerSecond: cfg.Source.Logbook.RequestsPerSecond,
			Burst:             cfg.Source.Logbook.Burst,
			CacheTTL:          cfg.Cache.TTL,
		}, provider, logger)
		return logbookSource{LogbookClient: client, cache: provider}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

func newPipeline(cfg *config.Config, source engine.OccurrenceSource, logger *slog.Logger) *engine.Pipeline {
	return engine.NewPipeline(logger, source,
		engine.WithBatchConfig(engine.BatchConfig{
			LargeDatasetThreshold: cfg.Engine.LargeDatasetThreshold,
			ChunkSize:             cfg.Engine.ChunkSize,
		}),
		engine.WithDetector(patterns.NewDetector(logger, patterns.DefaultDetectorConfig())),
	)
}

func requestDefaults(cfg *config.Config) api.Defaults {
	return api.Defaults{
		Days:               cfg.Analysis.DefaultDays,
		WindowHours:        cfg.Analysis.WindowHours,
		MinimumOccurrences: cfg.Analysis.MinimumOccurrences,
		MinimumDays:        cfg.Analysis.MinimumDays,
		MinimumConfidence:  cfg.Analysis.MinimumConfidence,
	}
}
