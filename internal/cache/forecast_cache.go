package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oncare/pharmalytics/internal/config"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix     = "forecast:"
	forecastRunKeyFmt     = "forecast:run:%d"
	forecastLatestKeyFmt  = "forecast:latest:%d"
	forecastScanBatchSize = 100
)

// ForecastCache fronts the forecast repository for read paths. Fitting a model
// is the expensive part, so runs are cached by id and by medicine; a new run
// for a medicine invalidates its latest entry.
type ForecastCache interface {
	GetRun(ctx context.Context, id int64) (*domain.ForecastRun, bool, error)
	SetRun(ctx context.Context, run *domain.ForecastRun) error
	GetLatest(ctx context.Context, medicineID int64) (*domain.ForecastRun, bool, error)
	SetLatest(ctx context.Context, run *domain.ForecastRun) error
	InvalidateMedicine(ctx context.Context, medicineID int64) error
	InvalidateAll(ctx context.Context) error
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

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetRun(ctx context.Context, id int64) (*domain.ForecastRun, bool, error) {
	return c.get(ctx, fmt.Sprintf(forecastRunKeyFmt, id))
}

func (c *redisForecastCache) SetRun(ctx context.Context, run *domain.ForecastRun) error {
	return c.set(ctx, fmt.Sprintf(forecastRunKeyFmt, run.ID), run)
}

func (c *redisForecastCache) GetLatest(ctx context.Context, medicineID int64) (*domain.ForecastRun, bool, error) {
	return c.get(ctx, fmt.Sprintf(forecastLatestKeyFmt, medicineID))
}

func (c *redisForecastCache) SetLatest(ctx context.Context, run *domain.ForecastRun) error {
	return c.set(ctx, fmt.Sprintf(forecastLatestKeyFmt, run.MedicineID), run)
}

func (c *redisForecastCache) InvalidateMedicine(ctx context.Context, medicineID int64) error {
	return c.client.Del(ctx, fmt.Sprintf(forecastLatestKeyFmt, medicineID)).Err()
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatchSize)
}

func (c *redisForecastCache) get(ctx context.Context, key string) (*domain.ForecastRun, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var run domain.ForecastRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}
	return &run, true, nil
}

func (c *redisForecastCache) set(ctx context.Context, key string, run *domain.ForecastRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopForecastCache) GetRun(ctx context.Context, id int64) (*domain.ForecastRun, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetRun(ctx context.Context, run *domain.ForecastRun) error {
	return nil
}

func (n *noopForecastCache) GetLatest(ctx context.Context, medicineID int64) (*domain.ForecastRun, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetLatest(ctx context.Context, run *domain.ForecastRun) error {
	return nil
}

func (n *noopForecastCache) InvalidateMedicine(ctx context.Context, medicineID int64) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}
