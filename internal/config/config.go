package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceSQLite  = "sqlite"
	SourceLogbook = "logbook"
)

// Config captures the settings required to boot the trigger analysis service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Source   SourceConfig   `yaml:"source"`
	Cache    CacheConfig    `yaml:"cache"`
	Engine   EngineConfig   `yaml:"engine"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServerConfig controls the gRPC and HTTP listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	HTTPAddress     string        `yaml:"httpAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// SourceConfig selects where occurrences are read from.
type SourceConfig struct {
	Kind    string        `yaml:"kind"`
	SQLite  SQLiteConfig  `yaml:"sqlite"`
	Logbook LogbookConfig `yaml:"logbook"`
}

// SQLiteConfig points at the local occurrence database.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// LogbookConfig configures the remote logbook API.
type LogbookConfig struct {
	BaseURL           string        `yaml:"baseURL"`
	SymptomsPath      string        `yaml:"symptomsPath"`
	FoodsPath         string        `yaml:"foodsPath"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
}

// CacheConfig controls in-memory caching of logbook responses. Size bounds the number of
// cached range responses; the least recently used entry is evicted first.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Size    int           `yaml:"size"`
}

// EngineConfig controls large-dataset chunking.
type EngineConfig struct {
	LargeDatasetThreshold int `yaml:"largeDatasetThreshold"`
	ChunkSize             int `yaml:"chunkSize"`
}

// AnalysisConfig supplies defaults for requests that omit them.
type AnalysisConfig struct {
	DefaultDays        int     `yaml:"defaultDays"`
	WindowHours        float64 `yaml:"windowHours"`
	MinimumOccurrences int     `yaml:"minimumOccurrences"`
	MinimumDays        int     `yaml:"minimumDays"`
	MinimumConfidence  float64 `yaml:"minimumConfidence"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TRIGGER_RCA_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.Source.Kind {
	case SourceSQLite:
		if c.Source.SQLite.Path == "" {
			return fmt.Errorf("source.sqlite.path is required")
		}
	case SourceLogbook:
		if c.Source.Logbook.BaseURL == "" {
			return fmt.Errorf("source.logbook.baseURL is required")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Cache.Enabled && c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive when the cache is enabled")
	}
	if c.Analysis.MinimumConfidence < 0 || c.Analysis.MinimumConfidence > 1 {
		return fmt.Errorf("analysis.minimumConfidence must be within [0,1]")
	}
	if c.Analysis.WindowHours <= 0 {
		return fmt.Errorf("analysis.windowHours must be positive")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50051",
			HTTPAddress:     ":8080",
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Source: SourceConfig{
			Kind:   SourceSQLite,
			SQLite: SQLiteConfig{Path: "trigger-rca.db"},
			Logbook: LogbookConfig{
				SymptomsPath:      "/api/v1/logbook/symptoms",
				FoodsPath:         "/api/v1/logbook/foods",
				Timeout:           5 * time.Second,
				RequestsPerSecond: 10,
				Burst:             5,
			},
		},
		Cache:  CacheConfig{Enabled: false, TTL: 5 * time.Minute, Size: 1024},
		Engine: EngineConfig{LargeDatasetThreshold: 5000, ChunkSize: 1000},
		Analysis: AnalysisConfig{
			DefaultDays:        30,
			WindowHours:        8,
			MinimumOccurrences: 3,
			MinimumDays:        14,
			MinimumConfidence:  0.3,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRIGGER_RCA_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("TRIGGER_RCA_HTTP_ADDRESS"); v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v := os.Getenv("TRIGGER_RCA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRIGGER_RCA_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("TRIGGER_RCA_SOURCE"); v != "" {
		cfg.Source.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("TRIGGER_RCA_SQLITE_PATH"); v != "" {
		cfg.Source.SQLite.Path = v
	}
	if v := os.Getenv("TRIGGER_RCA_LOGBOOK_URL"); v != "" {
		cfg.Source.Logbook.BaseURL = v
	}
	if v := os.Getenv("TRIGGER_RCA_LOGBOOK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.Logbook.Timeout = d
		}
	}
	if v := os.Getenv("TRIGGER_RCA_LOGBOOK_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Source.Logbook.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("TRIGGER_RCA_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("TRIGGER_RCA_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("TRIGGER_RCA_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Size = n
		}
	}
	if v := os.Getenv("TRIGGER_RCA_LARGE_DATASET_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.LargeDatasetThreshold = n
		}
	}
	if v := os.Getenv("TRIGGER_RCA_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.ChunkSize = n
		}
	}
	if v := os.Getenv("TRIGGER_RCA_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.MinimumConfidence = f
		}
	}
}
