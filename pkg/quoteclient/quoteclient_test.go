package quoteclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"charter/internal/pricing"
	"charter/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Client {
	return logger.NewWithWriter("production", io.Discard)
}

func TestMarketDataClient_MapsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rates/current", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"fuel": {"price_per_gallon": 6.5},
			"crew": {"hourly_rate": 250},
			"airports": {"landing_fees": {"KTEB": 750}, "default_landing_fee": 600},
			"handling": {"base_per_leg": 800, "per_passenger": 50}
		}`))
	}))
	defer server.Close()

	client := NewMarketDataClient(server.Client(), server.URL, testLogger())
	rates, err := client.CurrentRates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6.5, rates.FuelPricePerGallon)
	assert.Equal(t, 250.0, rates.CrewHourlyRate)
	assert.Equal(t, 750.0, rates.LandingFees["KTEB"])
	assert.Equal(t, 600.0, rates.DefaultLandingFee)
	assert.Equal(t, 800.0, rates.HandlingBasePerLeg)
}

func TestMarketDataClient_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewMarketDataClient(server.Client(), server.URL, testLogger())
	_, err := client.CurrentRates(context.Background())
	assert.Error(t, err)
}

func TestWeatherClient_MapsObservations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KTEB,KMIA", r.URL.Query().Get("airports"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"observations": [
				{"station": "KTEB", "condition": "thunderstorm", "wind_knots": 28, "visibility_sm": 2, "ceiling_ft": 1500},
				{"station": "KMIA", "condition": "clear", "wind_knots": 8, "visibility_sm": 10, "ceiling_ft": 12000}
			]
		}`))
	}))
	defer server.Close()

	client := NewWeatherClient(server.Client(), server.URL, testLogger())
	snapshots, err := client.RouteConditions(context.Background(), []string{"KTEB", "KMIA"}, time.Now())
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(t, pricing.ConditionThunderstorm, snapshots[0].Condition)
	assert.Equal(t, 28.0, snapshots[0].WindKnots)
	assert.Equal(t, pricing.ConditionClear, snapshots[1].Condition)
}

// fakeCache is an in-memory cache.Cache for decorator tests.
type fakeCache struct {
	mu    sync.Mutex
	items map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]string)}
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.items[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return value, nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// countingMarket counts provider hits behind the cache decorator.
type countingMarket struct {
	rates pricing.MarketRates
	calls int
}

func (m *countingMarket) CurrentRates(ctx context.Context) (*pricing.MarketRates, error) {
	m.calls++
	rates := m.rates
	return &rates, nil
}

func TestCachedMarketData_HitsProviderOnce(t *testing.T) {
	inner := &countingMarket{rates: DefaultRates()}
	cached := NewCachedMarketData(inner, newFakeCache(), time.Minute, testLogger())

	first, err := cached.CurrentRates(context.Background())
	require.NoError(t, err)
	second, err := cached.CurrentRates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
}

func TestCachedMarketData_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("rates feed down")
	cached := NewCachedMarketData(&FixedMarketData{Err: boom}, newFakeCache(), time.Minute, testLogger())

	_, err := cached.CurrentRates(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFixedWeather_DefaultsToClear(t *testing.T) {
	fixed := &FixedWeather{ByAirport: map[string]pricing.WeatherSnapshot{
		"KTEB": {Airport: "KTEB", Condition: pricing.ConditionFog, VisibilitySM: 0.5},
	}}

	snapshots, err := fixed.RouteConditions(context.Background(), []string{"KTEB", "KMIA"}, time.Now())
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, pricing.ConditionFog, snapshots[0].Condition)
	assert.Equal(t, pricing.ConditionClear, snapshots[1].Condition)
}
