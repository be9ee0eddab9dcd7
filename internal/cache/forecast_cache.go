package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/demandiq/backend-go/internal/config"
	"github.com/demandiq/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix = "forecast:result"
	summaryKeyPrefix  = "forecast:summary"
	forecastScanBatch = 100
)

// ForecastCache holds recently served forecast and summary payloads.
// It caches API responses only; trained artifacts live in the artifact
// store and are reused without any TTL.
type ForecastCache interface {
	GetForecast(ctx context.Context, key ForecastCacheKey) ([]domain.ForecastLine, bool, error)
	SetForecast(ctx context.Context, key ForecastCacheKey, lines []domain.ForecastLine) error
	GetSummary(ctx context.Context, key domain.SeriesKey) (*domain.SeriesSummary, bool, error)
	SetSummary(ctx context.Context, key domain.SeriesKey, summary *domain.SeriesSummary) error
	InvalidateAll(ctx context.Context) error
}

// ForecastCacheKey is everything that changes a forecast response.
type ForecastCacheKey struct {
	Series        domain.SeriesKey
	Horizon       int
	Strategy      string
	CurrentStock  float64
	SafetyPercent float64
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{client: client, ttl: ttl}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetForecast(ctx context.Context, key ForecastCacheKey) ([]domain.ForecastLine, bool, error) {
	payload, err := c.client.Get(ctx, buildForecastKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []domain.ForecastLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}
	return lines, true, nil
}

func (c *redisForecastCache) SetForecast(ctx context.Context, key ForecastCacheKey, lines []domain.ForecastLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}
	if err := c.client.Set(ctx, buildForecastKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) GetSummary(ctx context.Context, key domain.SeriesKey) (*domain.SeriesSummary, bool, error) {
	payload, err := c.client.Get(ctx, buildSummaryKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.SeriesSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode summary cache: %w", err)
	}
	return &summary, true, nil
}

func (c *redisForecastCache) SetSummary(ctx context.Context, key domain.SeriesKey, summary *domain.SeriesSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary cache: %w", err)
	}
	if err := c.client.Set(ctx, buildSummaryKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatch); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, summaryKeyPrefix, forecastScanBatch)
}

func (n *noopForecastCache) GetForecast(ctx context.Context, key ForecastCacheKey) ([]domain.ForecastLine, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetForecast(ctx context.Context, key ForecastCacheKey, lines []domain.ForecastLine) error {
	return nil
}

func (n *noopForecastCache) GetSummary(ctx context.Context, key domain.SeriesKey) (*domain.SeriesSummary, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetSummary(ctx context.Context, key domain.SeriesKey, summary *domain.SeriesSummary) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error { return nil }

func buildForecastKey(key ForecastCacheKey) string {
	raw := fmt.Sprintf("loc=%d|cat=%d|h=%d|strategy=%s|stock=%.4f|safety=%.4f",
		key.Series.LocationID, key.Series.CategoryID, key.Horizon,
		key.Strategy, key.CurrentStock, key.SafetyPercent)
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", forecastKeyPrefix, hex.EncodeToString(sum[:]))
}

func buildSummaryKey(key domain.SeriesKey) string {
	return fmt.Sprintf("%s:%d:%d", summaryKeyPrefix, key.LocationID, key.CategoryID)
}
