package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_WeightedBlend(t *testing.T) {
	// price 50k -> 50, rating 4.5 -> 90, 10 min -> 80, Citation X+ -> 85.
	got := Score(50000, 4.5, 10, "Citation X+")
	want := 0.4*50 + 0.3*90 + 0.2*80 + 0.1*85
	assert.Equal(t, 72, got)
	assert.InDelta(t, float64(got), want, 0.5)
}

func TestScore_AlwaysInRange(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		rating   float64
		response int
		aircraft string
	}{
		{"free flight perfect operator", 0, 5, 0, "Global 7500"},
		{"absurd price", 10_000_000, 0, 10000, "unknown"},
		{"negative price", -5000, 5, 0, "Gulfstream G650"},
		{"zero rating slow response", 80000, 0, 500, "King Air 350"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.price, tt.rating, tt.response, tt.aircraft)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestScore_PriceSaturatesToZero(t *testing.T) {
	// Above 100k the price term is fully saturated; only the other terms
	// differentiate the quotes.
	a := Score(150000, 4.0, 30, "Phenom 300")
	b := Score(900000, 4.0, 30, "Phenom 300")
	assert.Equal(t, a, b)
}

func TestScore_UnknownAircraftUsesFallback(t *testing.T) {
	known := Score(50000, 4.0, 30, "Global 7500")
	unknown := Score(50000, 4.0, 30, "Mystery Jet")
	assert.Greater(t, known, unknown)
	assert.Greater(t, unknown, 0)
}
