package request

import (
	"context"
	"time"

	"charter/internal/quote"
	"charter/pkg/idgen"
	"charter/pkg/logger"
)

const rejectionSiblingAccepted = "another quote was accepted"
const rejectionRequestCancelled = "request was cancelled"

// Lifecycle governs a request from draft through to exactly one accepted
// quote or terminal cancellation. Every transition runs inside one store
// transaction; a precondition failure leaves both the request and its
// quotes untouched.
type Lifecycle struct {
	store         Store
	ids           idgen.Generator
	clock         func() time.Time
	quoteValidity time.Duration
	logger        logger.Client
}

type LifecycleOption func(*Lifecycle)

// WithClock overrides the wall clock for tests.
func WithClock(clock func() time.Time) LifecycleOption {
	return func(l *Lifecycle) {
		l.clock = clock
	}
}

// WithQuoteValidity overrides the default 24h validity for quotes
// submitted without an explicit deadline.
func WithQuoteValidity(d time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		l.quoteValidity = d
	}
}

func NewLifecycle(store Store, ids idgen.Generator, log logger.Client, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store:         store,
		ids:           ids,
		clock:         time.Now,
		quoteValidity: 24 * time.Hour,
		logger:        log.With(logger.Field{Key: "component", Value: "lifecycle"}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create stores a new draft request. Legs must be non-empty and each leg
// needs a route and at least one passenger; passenger and luggage totals
// are derived, never trusted from the caller.
func (l *Lifecycle) Create(ctx context.Context, in NewRequestInput) (*Request, error) {
	if len(in.Legs) == 0 {
		return nil, &StateError{Entity: "request", ID: "", Current: "new", Attempt: "create without legs"}
	}
	totalPassengers, totalLuggage := 0, 0
	for _, leg := range in.Legs {
		if leg.From == "" || leg.To == "" {
			return nil, &StateError{Entity: "request", ID: "", Current: "new", Attempt: "create with incomplete leg route"}
		}
		if leg.Passengers <= 0 {
			return nil, &StateError{Entity: "request", ID: "", Current: "new", Attempt: "create with non-positive leg passengers"}
		}
		totalPassengers += leg.Passengers
		totalLuggage += leg.Luggage
	}

	r := &Request{
		ID:              l.ids.GenerateStringID(),
		BrokerID:        in.BrokerID,
		Legs:            in.Legs,
		TotalPassengers: totalPassengers,
		TotalLuggage:    totalLuggage,
		Catering:        in.Catering,
		ComplianceNotes: in.ComplianceNotes,
		Attachments:     in.Attachments,
		Status:          StatusDraft,
		CreatedAt:       l.clock(),
		ExpiresAt:       in.ExpiresAt,
	}
	if err := l.store.CreateRequest(ctx, r); err != nil {
		return nil, err
	}
	l.logger.Info("request_created",
		logger.Field{Key: "request_id", Value: r.ID},
		logger.Field{Key: "legs", Value: len(r.Legs)},
	)
	return r, nil
}

// Update replaces the broker-editable fields. Only draft and published
// requests are mutable; once quotes arrive the inquiry is frozen.
func (l *Lifecycle) Update(ctx context.Context, id string, in NewRequestInput) (*Request, error) {
	var updated *Request
	err := l.store.InTx(ctx, id, func(tx Tx) error {
		r, err := tx.Request(id)
		if err != nil {
			return err
		}
		if r.Status != StatusDraft && r.Status != StatusPublished {
			return &StateError{Entity: "request", ID: id, Current: string(r.Status), Attempt: "update"}
		}
		if len(in.Legs) == 0 {
			return &StateError{Entity: "request", ID: id, Current: string(r.Status), Attempt: "update without legs"}
		}
		totalPassengers, totalLuggage := 0, 0
		for _, leg := range in.Legs {
			if leg.From == "" || leg.To == "" || leg.Passengers <= 0 {
				return &StateError{Entity: "request", ID: id, Current: string(r.Status), Attempt: "update with invalid leg"}
			}
			totalPassengers += leg.Passengers
			totalLuggage += leg.Luggage
		}
		r.Legs = in.Legs
		r.TotalPassengers = totalPassengers
		r.TotalLuggage = totalLuggage
		r.Catering = in.Catering
		r.ComplianceNotes = in.ComplianceNotes
		r.Attachments = in.Attachments
		if !in.ExpiresAt.IsZero() {
			r.ExpiresAt = in.ExpiresAt
		}
		updated = r
		return tx.SaveRequest(r)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Publish opens a draft request to operator quotes.
func (l *Lifecycle) Publish(ctx context.Context, id string) (*Request, error) {
	var published *Request
	err := l.store.InTx(ctx, id, func(tx Tx) error {
		r, err := tx.Request(id)
		if err != nil {
			return err
		}
		if r.Status != StatusDraft {
			return &StateError{Entity: "request", ID: id, Current: string(r.Status), Attempt: "publish"}
		}
		r.Status = StatusPublished
		r.PublishedAt = l.clock()
		published = r
		return tx.SaveRequest(r)
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("request_published", logger.Field{Key: "request_id", Value: id})
	return published, nil
}

// QuoteSubmission is one operator's priced response.
type QuoteSubmission struct {
	RequestID      string             `json:"request_id"`
	OperatorID     string             `json:"operator_id"`
	Aircraft       string             `json:"aircraft"`
	Price          float64            `json:"price"`
	Currency       string             `json:"currency"`
	Fees           quote.FeeBreakdown `json:"fees"`
	OperatorRating float64            `json:"operator_rating"`
	Verified       bool               `json:"verified"`
	Notes          string             `json:"notes"`
	ValidUntil     time.Time          `json:"valid_until"`
}

// SubmitQuote attaches a pending quote to a published or quoted request.
// Response time is measured here from the publish timestamp, never taken
// from the submission, and the deal score is computed at the same moment.
func (l *Lifecycle) SubmitQuote(ctx context.Context, sub QuoteSubmission) (*quote.Quote, error) {
	if err := sub.Fees.Validate(sub.Price); err != nil {
		return nil, &StateError{Entity: "quote", ID: "", Current: "new", Attempt: "submit with inconsistent fees: " + err.Error()}
	}

	now := l.clock()
	var submitted *quote.Quote
	err := l.store.InTx(ctx, sub.RequestID, func(tx Tx) error {
		r, err := tx.Request(sub.RequestID)
		if err != nil {
			return err
		}
		if r.Status != StatusPublished && r.Status != StatusQuoted {
			return &StateError{Entity: "request", ID: r.ID, Current: string(r.Status), Attempt: "submit quote"}
		}

		responseMinutes := int(now.Sub(r.PublishedAt).Minutes())
		if responseMinutes < 0 {
			responseMinutes = 0
		}

		validUntil := sub.ValidUntil
		if validUntil.IsZero() {
			validUntil = now.Add(l.quoteValidity)
		}

		currency := sub.Currency
		if currency == "" {
			currency = "USD"
		}

		q := &quote.Quote{
			ID:                  l.ids.GenerateStringID(),
			RequestID:           sub.RequestID,
			OperatorID:          sub.OperatorID,
			Aircraft:            sub.Aircraft,
			Price:               sub.Price,
			Currency:            currency,
			ValidUntil:          validUntil,
			ResponseTimeMinutes: responseMinutes,
			OperatorRating:      sub.OperatorRating,
			DealScore:           quote.Score(sub.Price, sub.OperatorRating, responseMinutes, sub.Aircraft),
			Verified:            sub.Verified,
			Fees:                sub.Fees,
			Notes:               sub.Notes,
			Status:              quote.StatusPending,
			CreatedAt:           now,
		}
		if err := tx.SaveQuote(q); err != nil {
			return err
		}

		if r.Status != StatusQuoted {
			r.Status = StatusQuoted
			if err := tx.SaveRequest(r); err != nil {
				return err
			}
		}
		submitted = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("quote_submitted",
		logger.Field{Key: "request_id", Value: sub.RequestID},
		logger.Field{Key: "quote_id", Value: submitted.ID},
		logger.Field{Key: "deal_score", Value: submitted.DealScore},
	)
	return submitted, nil
}

// AcceptQuote picks the winner. The accepted flip, every sibling
// rejection and the request transition commit as one unit; of two
// concurrent accepts on the same request exactly one wins and the other
// fails its pending-status precondition.
func (l *Lifecycle) AcceptQuote(ctx context.Context, quoteID string) (*quote.Quote, error) {
	requestID, err := l.store.RequestIDForQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	now := l.clock()
	var accepted *quote.Quote
	err = l.store.InTx(ctx, requestID, func(tx Tx) error {
		q, err := tx.Quote(quoteID)
		if err != nil {
			return err
		}
		if q.Expired(now) {
			// The overdue quote stays pending here; reads and the sweep
			// flip it. Accepting it is refused either way.
			return &StateError{Entity: "quote", ID: quoteID, Current: string(quote.StatusExpired), Attempt: "accept"}
		}
		if q.Status != quote.StatusPending {
			return &StateError{Entity: "quote", ID: quoteID, Current: string(q.Status), Attempt: "accept"}
		}

		r, err := tx.Request(requestID)
		if err != nil {
			return err
		}
		if r.Status != StatusQuoted {
			return &StateError{Entity: "request", ID: requestID, Current: string(r.Status), Attempt: "accept quote"}
		}

		siblings, err := tx.QuotesForRequest(requestID)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling.ID == quoteID || sibling.Status != quote.StatusPending {
				continue
			}
			sibling.Status = quote.StatusRejected
			sibling.RejectionReason = rejectionSiblingAccepted
			if err := tx.SaveQuote(sibling); err != nil {
				return err
			}
		}

		q.Status = quote.StatusAccepted
		if err := tx.SaveQuote(q); err != nil {
			return err
		}

		r.Status = StatusAccepted
		r.AcceptedQuoteID = q.ID
		accepted = q
		return tx.SaveRequest(r)
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("quote_accepted",
		logger.Field{Key: "request_id", Value: requestID},
		logger.Field{Key: "quote_id", Value: quoteID},
	)
	return accepted, nil
}

// RejectQuote declines a single pending quote without touching siblings.
func (l *Lifecycle) RejectQuote(ctx context.Context, quoteID, reason string) (*quote.Quote, error) {
	requestID, err := l.store.RequestIDForQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	var rejected *quote.Quote
	err = l.store.InTx(ctx, requestID, func(tx Tx) error {
		q, err := tx.Quote(quoteID)
		if err != nil {
			return err
		}
		if q.Status != quote.StatusPending {
			return &StateError{Entity: "quote", ID: quoteID, Current: string(q.Status), Attempt: "reject"}
		}
		q.Status = quote.StatusRejected
		q.RejectionReason = reason
		rejected = q
		return tx.SaveQuote(q)
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// Cancel terminates a request from any non-terminal state and rejects
// whatever quotes are still pending.
func (l *Lifecycle) Cancel(ctx context.Context, requestID string) (*Request, error) {
	var cancelled *Request
	err := l.store.InTx(ctx, requestID, func(tx Tx) error {
		r, err := tx.Request(requestID)
		if err != nil {
			return err
		}
		if r.Status.Terminal() {
			return &StateError{Entity: "request", ID: requestID, Current: string(r.Status), Attempt: "cancel"}
		}
		quotes, err := tx.QuotesForRequest(requestID)
		if err != nil {
			return err
		}
		for _, q := range quotes {
			if q.Status != quote.StatusPending {
				continue
			}
			q.Status = quote.StatusRejected
			q.RejectionReason = rejectionRequestCancelled
			if err := tx.SaveQuote(q); err != nil {
				return err
			}
		}
		r.Status = StatusCancelled
		cancelled = r
		return tx.SaveRequest(r)
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("request_cancelled", logger.Field{Key: "request_id", Value: requestID})
	return cancelled, nil
}

// Complete closes out an accepted request after the flight happened.
func (l *Lifecycle) Complete(ctx context.Context, requestID string) (*Request, error) {
	var completed *Request
	err := l.store.InTx(ctx, requestID, func(tx Tx) error {
		r, err := tx.Request(requestID)
		if err != nil {
			return err
		}
		if !canTransition(r.Status, StatusCompleted) {
			return &StateError{Entity: "request", ID: requestID, Current: string(r.Status), Attempt: "complete"}
		}
		r.Status = StatusCompleted
		completed = r
		return tx.SaveRequest(r)
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// Request reads one request.
func (l *Lifecycle) Request(ctx context.Context, id string) (*Request, error) {
	return l.store.Request(ctx, id)
}

// Quotes reads a request's quotes, lazily expiring any pending quote
// whose validity window has passed.
func (l *Lifecycle) Quotes(ctx context.Context, requestID string) ([]*quote.Quote, error) {
	now := l.clock()
	var quotes []*quote.Quote
	err := l.store.InTx(ctx, requestID, func(tx Tx) error {
		all, err := tx.QuotesForRequest(requestID)
		if err != nil {
			return err
		}
		for _, q := range all {
			if q.Expired(now) {
				q.Status = quote.StatusExpired
				if err := tx.SaveQuote(q); err != nil {
					return err
				}
			}
		}
		quotes = all
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// Compare derives the standout quotes for one request.
func (l *Lifecycle) Compare(ctx context.Context, requestID string) (quote.Comparison, error) {
	quotes, err := l.Quotes(ctx, requestID)
	if err != nil {
		return quote.Comparison{}, err
	}
	return quote.Compare(quotes), nil
}

// ExpirePending sweeps every request and expires overdue pending quotes.
// Meant for a caller-driven periodic sweep; reads already expire lazily.
func (l *Lifecycle) ExpirePending(ctx context.Context) (int, error) {
	ids, err := l.store.RequestIDs(ctx)
	if err != nil {
		return 0, err
	}
	now := l.clock()
	expired := 0
	for _, id := range ids {
		err := l.store.InTx(ctx, id, func(tx Tx) error {
			quotes, err := tx.QuotesForRequest(id)
			if err != nil {
				return err
			}
			for _, q := range quotes {
				if q.Expired(now) {
					q.Status = quote.StatusExpired
					if err := tx.SaveQuote(q); err != nil {
						return err
					}
					expired++
				}
			}
			return nil
		})
		if err != nil {
			return expired, err
		}
	}
	if expired > 0 {
		l.logger.Info("quotes_expired", logger.Field{Key: "count", Value: expired})
	}
	return expired, nil
}
