package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/miradorstack/trigger-rca/internal/cache"
	"github.com/miradorstack/trigger-rca/internal/models"
)

// LogbookConfig configures access to the remote health logbook.
type LogbookConfig struct {
	BaseURL      string
	SymptomsPath string
	FoodsPath    string
	Timeout      time.Duration
	// RequestsPerSecond bounds outbound calls; zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	CacheTTL          time.Duration
}

// LogbookClient reads occurrences from the logbook HTTP API.
type LogbookClient struct {
	baseURL      string
	symptomsPath string
	foodsPath    string
	httpClient   *http.Client
	cache        cache.Provider
	cacheTTL     time.Duration
	limiter      *rate.Limiter
	logger       *slog.Logger
}

// NewLogbookClient constructs a client. A nil provider disables caching.
func NewLogbookClient(cfg LogbookConfig, provider cache.Provider, logger *slog.Logger) *LogbookClient {
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &LogbookClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		symptomsPath: cfg.SymptomsPath,
		foodsPath:    cfg.FoodsPath,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		cache:        provider,
		cacheTTL:     cfg.CacheTTL,
		limiter:      limiter,
		logger:       logger,
	}
}

type rangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SymptomsInRange fetches symptoms logged in [start, end].
func (c *LogbookClient) SymptomsInRange(ctx context.Context, start, end time.Time) ([]models.SymptomOccurrence, error) {
	var response struct {
		Symptoms []models.SymptomOccurrence `json:"symptoms"`
	}
	if err := c.fetch(ctx, "symptoms", c.symptomsPath, start, end, &response); err != nil {
		return nil, fmt.Errorf("logbook symptoms request failed: %w", err)
	}

	out := make([]models.SymptomOccurrence, 0, len(response.Symptoms))
	for _, s := range response.Symptoms {
		symptom, err := models.NewSymptomOccurrence(s.ID, s.Type, s.Intensity, s.Timestamp, s.Notes)
		if err != nil {
			c.logger.Warn("dropping malformed symptom", slog.String("id", s.ID), slog.Any("error", err))
			continue
		}
		out = append(out, symptom)
	}
	return out, nil
}

// FoodsInRange fetches foods logged in [start, end].
func (c *LogbookClient) FoodsInRange(ctx context.Context, start, end time.Time) ([]models.FoodOccurrence, error) {
	var response struct {
		Foods []models.FoodOccurrence `json:"foods"`
	}
	if err := c.fetch(ctx, "foods", c.foodsPath, start, end, &response); err != nil {
		return nil, fmt.Errorf("logbook foods request failed: %w", err)
	}

	out := make([]models.FoodOccurrence, 0, len(response.Foods))
	for _, f := range response.Foods {
		food, err := models.NewFoodOccurrence(f.ID, f.Name, f.Quantity, f.Notes, f.Timestamp)
		if err != nil {
			c.logger.Warn("dropping malformed food", slog.String("id", f.ID), slog.Any("error", err))
			continue
		}
		out = append(out, food)
	}
	return out, nil
}

func (c *LogbookClient) fetch(ctx context.Context, kind, p string, start, end time.Time, out any) error {
	if c == nil {
		return fmt.Errorf("logbook client not initialised")
	}
	if c.baseURL == "" {
		return fmt.Errorf("logbook base URL not configured")
	}

	payload := rangeRequest{Start: start.UTC().Format(time.RFC3339Nano), End: end.UTC().Format(time.RFC3339Nano)}
	key := cache.RangeKey("logbook", kind, start, end)

	if cached, err := c.cache.Get(ctx, key); err == nil {
		if err := json.Unmarshal(cached, out); err == nil {
			return nil
		}
		_ = c.cache.Del(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Debug("logbook cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	body, err := c.postJSON(ctx, c.resolvePath(p), payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
		c.logger.Debug("logbook cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return nil
}

func (c *LogbookClient) resolvePath(p string) string {
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}

func (c *LogbookClient) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("logbook returned %s", resp.Status)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return buf.Bytes(), nil
}
