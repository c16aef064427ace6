package quoteclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"charter/internal/pricing"
	"charter/pkg/logger"
)

// MarketDataClient fetches current fuel, crew and airport fee rates from
// the market data service.
type MarketDataClient struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Client
}

func NewMarketDataClient(httpClient *http.Client, baseURL string, log logger.Client) *MarketDataClient {
	return &MarketDataClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     log,
	}
}

// marketRatesResponse mirrors the provider's wire format.
type marketRatesResponse struct {
	Fuel struct {
		PricePerGallon float64 `json:"price_per_gallon"`
	} `json:"fuel"`
	Crew struct {
		HourlyRate float64 `json:"hourly_rate"`
	} `json:"crew"`
	Airports struct {
		LandingFees       map[string]float64 `json:"landing_fees"`
		DefaultLandingFee float64            `json:"default_landing_fee"`
	} `json:"airports"`
	Handling struct {
		BasePerLeg   float64 `json:"base_per_leg"`
		PerPassenger float64 `json:"per_passenger"`
	} `json:"handling"`
}

func (c *MarketDataClient) CurrentRates(ctx context.Context) (*pricing.MarketRates, error) {
	url := c.baseURL + "/v1/rates/current"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch market rates", logger.Field{Key: "err", Value: err.Error()})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data service returned %d", resp.StatusCode)
	}

	var body marketRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode market rates: %w", err)
	}

	return &pricing.MarketRates{
		FuelPricePerGallon:   body.Fuel.PricePerGallon,
		CrewHourlyRate:       body.Crew.HourlyRate,
		LandingFees:          body.Airports.LandingFees,
		DefaultLandingFee:    body.Airports.DefaultLandingFee,
		HandlingBasePerLeg:   body.Handling.BasePerLeg,
		HandlingPerPassenger: body.Handling.PerPassenger,
	}, nil
}
