package quoteclient

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"charter/internal/pricing"
	"charter/pkg/cache"
	"charter/pkg/logger"
)

// CachedMarketData memoizes rate snapshots so a burst of operators pricing
// the same published request hits the provider once. Cache failures fall
// through to the provider; a provider failure is still a hard error.
type CachedMarketData struct {
	inner  pricing.MarketDataProvider
	cache  cache.Cache
	ttl    time.Duration
	logger logger.Client
}

func NewCachedMarketData(inner pricing.MarketDataProvider, c cache.Cache, ttl time.Duration, log logger.Client) *CachedMarketData {
	return &CachedMarketData{inner: inner, cache: c, ttl: ttl, logger: log}
}

func (c *CachedMarketData) CurrentRates(ctx context.Context) (*pricing.MarketRates, error) {
	const key = "market:rates:current"

	cached, err := c.cache.Get(ctx, key)
	if err == nil && cached != "" {
		var rates pricing.MarketRates
		if err := json.Unmarshal([]byte(cached), &rates); err == nil {
			return &rates, nil
		}
		c.logger.Error("failed to unmarshal cached rates", logger.Field{Key: "err", Value: err})
	}

	rates, err := c.inner.CurrentRates(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(rates); err == nil {
		if err := c.cache.Set(ctx, key, string(payload), c.ttl); err != nil {
			c.logger.Error("failed to cache rates", logger.Field{Key: "err", Value: err.Error()})
		}
	}
	return rates, nil
}

// CachedWeather memoizes route condition snapshots keyed by route and hour.
type CachedWeather struct {
	inner  pricing.WeatherProvider
	cache  cache.Cache
	ttl    time.Duration
	logger logger.Client
}

func NewCachedWeather(inner pricing.WeatherProvider, c cache.Cache, ttl time.Duration, log logger.Client) *CachedWeather {
	return &CachedWeather{inner: inner, cache: c, ttl: ttl, logger: log}
}

func (c *CachedWeather) RouteConditions(ctx context.Context, airports []string, at time.Time) ([]pricing.WeatherSnapshot, error) {
	key := weatherKey(airports, at)

	cached, err := c.cache.Get(ctx, key)
	if err == nil && cached != "" {
		var snapshots []pricing.WeatherSnapshot
		if err := json.Unmarshal([]byte(cached), &snapshots); err == nil {
			return snapshots, nil
		}
		c.logger.Error("failed to unmarshal cached weather", logger.Field{Key: "err", Value: err})
	}

	snapshots, err := c.inner.RouteConditions(ctx, airports, at)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(snapshots); err == nil {
		if err := c.cache.Set(ctx, key, string(payload), c.ttl); err != nil {
			c.logger.Error("failed to cache weather", logger.Field{Key: "err", Value: err.Error()})
		}
	}
	return snapshots, nil
}

// weatherKey creates a deterministic key from the route and the departure
// hour, in flying order.
func weatherKey(airports []string, at time.Time) string {
	key := fmt.Sprintf("weather:%s:%s", strings.Join(airports, ":"), at.UTC().Format("2006010215"))
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("weather:route:%x", hash[:16])
}
