package pricing

import (
	"context"
	"time"
)

// MarketDataProvider supplies the current fuel price, crew rate and airport
// fee tables. Queried once per pricing run.
type MarketDataProvider interface {
	CurrentRates(ctx context.Context) (*MarketRates, error)
}

// WeatherProvider supplies observed conditions for a route's airports at a
// given departure time.
type WeatherProvider interface {
	RouteConditions(ctx context.Context, airports []string, at time.Time) ([]WeatherSnapshot, error)
}
