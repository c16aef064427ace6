package quote

import (
	"math"

	"charter/internal/pricing"
)

// Deal score weights. Price dominates, then operator rating, then response
// speed, with aircraft class as a small tiebreaker.
const (
	priceWeight    = 0.4
	ratingWeight   = 0.3
	responseWeight = 0.2
	aircraftWeight = 0.1
)

// Score blends price, operator rating, response latency and aircraft class
// into one 0-100 comparability number.
//
// The price term is scale-sensitive: it is tuned for totals in the tens of
// thousands, and anything above 100k saturates its contribution to zero.
// That is accepted behavior, not an overflow.
func Score(price, operatorRating float64, responseTimeMinutes int, aircraft string) int {
	priceScore := math.Max(0, 100-price/1000)
	ratingScore := operatorRating * 20
	responseScore := math.Max(0, 100-float64(responseTimeMinutes)*2)
	aircraftScore := pricing.PrestigeScore(aircraft)

	score := priceWeight*priceScore +
		ratingWeight*ratingScore +
		responseWeight*responseScore +
		aircraftWeight*aircraftScore

	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
