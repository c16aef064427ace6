package quote

import (
	"fmt"
	"math"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Terminal reports whether the quote can no longer change state.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusExpired
}

// FeeBreakdown itemizes a submitted quote's price. The parts are additive
// and must sum to Total, which must equal the quote price at submission.
type FeeBreakdown struct {
	Base          float64 `json:"base"`
	FuelSurcharge float64 `json:"fuel_surcharge"`
	Handling      float64 `json:"handling"`
	Catering      float64 `json:"catering"`
	LandingFees   float64 `json:"landing_fees"`
	CrewCost      float64 `json:"crew_cost"`
	Total         float64 `json:"total"`
}

// Sum returns the additive parts, rounded to cents.
func (f FeeBreakdown) Sum() float64 {
	sum := f.Base + f.FuelSurcharge + f.Handling + f.Catering + f.LandingFees + f.CrewCost
	return math.Round(sum*100) / 100
}

// Validate checks the additive invariant against the quoted price.
func (f FeeBreakdown) Validate(price float64) error {
	if math.Abs(f.Sum()-f.Total) > 0.01 {
		return fmt.Errorf("fee parts sum to %.2f, breakdown total is %.2f", f.Sum(), f.Total)
	}
	if math.Abs(f.Total-price) > 0.01 {
		return fmt.Errorf("breakdown total %.2f does not match price %.2f", f.Total, price)
	}
	return nil
}

// Quote is one operator's priced response to a published request.
type Quote struct {
	ID                  string       `json:"id"`
	RequestID           string       `json:"request_id"`
	OperatorID          string       `json:"operator_id"`
	Aircraft            string       `json:"aircraft"`
	Price               float64      `json:"price"`
	Currency            string       `json:"currency"`
	ValidUntil          time.Time    `json:"valid_until"`
	ResponseTimeMinutes int          `json:"response_time_minutes"`
	OperatorRating      float64      `json:"operator_rating"`
	DealScore           int          `json:"deal_score"`
	Verified            bool         `json:"verified"`
	Fees                FeeBreakdown `json:"fees"`
	Notes               string       `json:"notes,omitempty"`
	Status              Status       `json:"status"`
	RejectionReason     string       `json:"rejection_reason,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
}

// Expired reports whether a pending quote's validity window has passed.
func (q *Quote) Expired(now time.Time) bool {
	return q.Status == StatusPending && !q.ValidUntil.IsZero() && now.After(q.ValidUntil)
}
