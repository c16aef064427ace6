package request

import (
	"context"

	"charter/internal/quote"
)

// Tx is the view a lifecycle transition gets inside one atomic unit. The
// memory store backs it with a per-request lock, the Postgres store with a
// row-locking transaction; either way everything done through one Tx
// commits or fails as a whole.
type Tx interface {
	Request(id string) (*Request, error)
	SaveRequest(r *Request) error
	Quote(id string) (*quote.Quote, error)
	SaveQuote(q *quote.Quote) error
	QuotesForRequest(requestID string) ([]*quote.Quote, error)
}

// Store persists requests and quotes. InTx serializes all mutations for
// one request; concurrent transitions on the same request are observed in
// some order, never interleaved.
type Store interface {
	CreateRequest(ctx context.Context, r *Request) error
	Request(ctx context.Context, id string) (*Request, error)
	QuotesForRequest(ctx context.Context, requestID string) ([]*quote.Quote, error)
	RequestIDForQuote(ctx context.Context, quoteID string) (string, error)
	RequestIDs(ctx context.Context) ([]string, error)
	InTx(ctx context.Context, requestID string, fn func(tx Tx) error) error
}
