package quote

// Comparison points at the standout quotes for one request. Fields are nil
// when the quote set is empty.
type Comparison struct {
	Cheapest  *Quote `json:"cheapest"`
	Fastest   *Quote `json:"fastest"`
	BestValue *Quote `json:"best_value"`
}

// Compare derives the cheapest, fastest-to-respond and best-score quote.
// Ties break toward the earliest submitted quote; a plain fold would
// silently keep whichever element it happened to visit first.
func Compare(quotes []*Quote) Comparison {
	var cmp Comparison
	for _, q := range quotes {
		if cmp.Cheapest == nil || less(q.Price, cmp.Cheapest.Price, q, cmp.Cheapest) {
			cmp.Cheapest = q
		}
		if cmp.Fastest == nil || less(float64(q.ResponseTimeMinutes), float64(cmp.Fastest.ResponseTimeMinutes), q, cmp.Fastest) {
			cmp.Fastest = q
		}
		if cmp.BestValue == nil || less(float64(cmp.BestValue.DealScore), float64(q.DealScore), q, cmp.BestValue) {
			cmp.BestValue = q
		}
	}
	return cmp
}

// less orders by metric, falling back to submission time on equal values.
func less(a, b float64, qa, qb *Quote) bool {
	if a != b {
		return a < b
	}
	return qa.CreatedAt.Before(qb.CreatedAt)
}
