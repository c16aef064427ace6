package charter

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"charter/internal/pricing"
	"charter/internal/request"
	"charter/pkg/idgen"
	"charter/pkg/logger"
	"charter/pkg/quoteclient"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, market pricing.MarketDataProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewWithWriter("production", io.Discard)
	weather := &quoteclient.FixedWeather{}
	engine := pricing.NewEngine(market, weather, log)

	ids, err := idgen.NewSnowflakeGenerator(1)
	require.NoError(t, err)
	lifecycle := request.NewLifecycle(request.NewMemoryStore(), ids, log)

	router := gin.New()
	NewHandler(engine, lifecycle).RegisterRoutes(router)
	return router
}

func fixedMarket() *quoteclient.FixedMarketData {
	return &quoteclient.FixedMarketData{Rates: quoteclient.DefaultRates()}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func draftBody() request.NewRequestInput {
	return request.NewRequestInput{
		BrokerID: "broker-1",
		Legs: []request.Leg{
			{From: "KTEB", To: "KMIA", Departure: time.Date(2025, 4, 1, 14, 0, 0, 0, time.UTC), Passengers: 4},
		},
	}
}

func TestHandler_RequestLifecycleFlow(t *testing.T) {
	router := newTestRouter(t, fixedMarket())

	w := doJSON(t, router, http.MethodPost, "/v1/requests", draftBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created request.Request
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, request.StatusDraft, created.Status)

	w = doJSON(t, router, http.MethodPost, "/v1/requests/"+created.ID+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code)

	sub := request.QuoteSubmission{
		OperatorID:     "op-1",
		Aircraft:       "Citation X+",
		Price:          45000,
		OperatorRating: 4.5,
	}
	sub.Fees.Base = 45000
	sub.Fees.Total = 45000
	w = doJSON(t, router, http.MethodPost, "/v1/requests/"+created.ID+"/quotes", sub)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var submitted struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))

	w = doJSON(t, router, http.MethodGet, "/v1/requests/"+created.ID+"/quotes/compare", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/quotes/"+submitted.ID+"/accept", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Second accept hits the terminal quote state.
	w = doJSON(t, router, http.MethodPost, "/v1/quotes/"+submitted.ID+"/accept", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_NotFound(t *testing.T) {
	router := newTestRouter(t, fixedMarket())
	w := doJSON(t, router, http.MethodGet, "/v1/requests/12345", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_PricingValidation(t *testing.T) {
	router := newTestRouter(t, fixedMarket())

	in := pricing.Input{
		Aircraft:      "Citation X+",
		DistanceNM:    -10,
		Passengers:    4,
		Route:         pricing.Route{Origin: "KTEB", Destination: "KMIA"},
		DurationHours: 2,
	}
	w := doJSON(t, router, http.MethodPost, "/v1/pricing/calculate", in)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION")
}

func TestHandler_ProviderFailure(t *testing.T) {
	router := newTestRouter(t, &quoteclient.FixedMarketData{Err: errors.New("rates feed down")})

	in := pricing.Input{
		Aircraft:      "Citation X+",
		DistanceNM:    1000,
		Passengers:    4,
		Route:         pricing.Route{Origin: "KTEB", Destination: "KMIA"},
		DurationHours: 2.5,
	}
	w := doJSON(t, router, http.MethodPost, "/v1/pricing/calculate", in)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "PROVIDER_UNAVAILABLE")
}

func TestHandler_PricingHappyPath(t *testing.T) {
	router := newTestRouter(t, fixedMarket())

	in := pricing.Input{
		Aircraft:      "Citation X+",
		DistanceNM:    1000,
		Passengers:    4,
		Route:         pricing.Route{Origin: "KTEB", Destination: "KMIA"},
		Departure:     time.Date(2025, 4, 1, 14, 0, 0, 0, time.UTC),
		DurationHours: 2.5,
		Demand:        pricing.DemandSignals{Season: pricing.SeasonMedium},
		Operator:      pricing.OperatorProfile{Rating: 4.5, YearsExperience: 5, FleetSize: 10},
	}
	w := doJSON(t, router, http.MethodPost, "/v1/pricing/calculate", in)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var b pricing.Breakdown
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Greater(t, b.Total, 0.0)
	assert.InDelta(t, b.Subtotal+b.Taxes, b.Total, 0.001)
}
