package quoteclient

import (
	"context"
	"time"

	"charter/internal/pricing"
)

// FixedMarketData returns the same rates on every call. Randomized mock
// providers break pricing determinism, so tests and local dev pin the
// snapshot instead.
type FixedMarketData struct {
	Rates pricing.MarketRates
	Err   error
}

func (f *FixedMarketData) CurrentRates(ctx context.Context) (*pricing.MarketRates, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	rates := f.Rates
	return &rates, nil
}

// FixedWeather returns a pinned snapshot per airport; airports without an
// entry report clear conditions.
type FixedWeather struct {
	ByAirport map[string]pricing.WeatherSnapshot
	Err       error
}

func (f *FixedWeather) RouteConditions(ctx context.Context, airports []string, at time.Time) ([]pricing.WeatherSnapshot, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	snapshots := make([]pricing.WeatherSnapshot, 0, len(airports))
	for _, airport := range airports {
		if snap, ok := f.ByAirport[airport]; ok {
			snapshots = append(snapshots, snap)
			continue
		}
		snapshots = append(snapshots, pricing.WeatherSnapshot{
			Airport:      airport,
			Condition:    pricing.ConditionClear,
			VisibilitySM: 10,
			CeilingFT:    10000,
		})
	}
	return snapshots, nil
}

// DefaultRates is a reasonable fixed snapshot for local dev.
func DefaultRates() pricing.MarketRates {
	return pricing.MarketRates{
		FuelPricePerGallon: 6.5,
		CrewHourlyRate:     250,
		LandingFees: map[string]float64{
			"KTEB": 750,
			"KJFK": 1200,
			"KLAX": 1100,
			"KMIA": 900,
			"KLAS": 850,
			"EGGW": 1300,
			"LFPB": 1250,
		},
		DefaultLandingFee:    600,
		HandlingBasePerLeg:   800,
		HandlingPerPassenger: 50,
	}
}
