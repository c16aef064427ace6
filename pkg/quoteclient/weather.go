package quoteclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"charter/internal/pricing"
	"charter/pkg/logger"
)

// WeatherClient fetches observed airport conditions from the weather
// service.
type WeatherClient struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Client
}

func NewWeatherClient(httpClient *http.Client, baseURL string, log logger.Client) *WeatherClient {
	return &WeatherClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     log,
	}
}

type weatherResponse struct {
	Observations []struct {
		Station      string  `json:"station"`
		Condition    string  `json:"condition"`
		WindKnots    float64 `json:"wind_knots"`
		VisibilitySM float64 `json:"visibility_sm"`
		CeilingFT    float64 `json:"ceiling_ft"`
	} `json:"observations"`
}

func (c *WeatherClient) RouteConditions(ctx context.Context, airports []string, at time.Time) ([]pricing.WeatherSnapshot, error) {
	url := fmt.Sprintf("%s/v1/conditions?airports=%s&at=%s",
		c.baseURL, strings.Join(airports, ","), at.UTC().Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch weather", logger.Field{Key: "err", Value: err.Error()})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather service returned %d", resp.StatusCode)
	}

	var body weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}

	snapshots := make([]pricing.WeatherSnapshot, 0, len(body.Observations))
	for _, obs := range body.Observations {
		snapshots = append(snapshots, pricing.WeatherSnapshot{
			Airport:      obs.Station,
			Condition:    pricing.Condition(obs.Condition),
			WindKnots:    obs.WindKnots,
			VisibilitySM: obs.VisibilitySM,
			CeilingFT:    obs.CeilingFT,
		})
	}
	return snapshots, nil
}
