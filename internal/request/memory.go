package request

import (
	"context"
	"sort"
	"sync"

	"charter/internal/quote"
)

// MemoryStore is the in-process Store used by the pure-library path and by
// tests. All mutations for one request serialize on a per-request mutex;
// writes inside a Tx are buffered and flushed only when the transition
// function succeeds, so a failed precondition mutates nothing.
type MemoryStore struct {
	mu              sync.RWMutex
	requests        map[string]*Request
	quotes          map[string]*quote.Quote
	quotesByRequest map[string][]string

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests:        make(map[string]*Request),
		quotes:          make(map[string]*quote.Quote),
		quotesByRequest: make(map[string][]string),
		locks:           make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) CreateRequest(ctx context.Context, r *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ID] = cloneRequest(r)
	return nil
}

func (s *MemoryStore) Request(ctx context.Context, id string) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRequest(r), nil
}

func (s *MemoryStore) QuotesForRequest(ctx context.Context, requestID string) ([]*quote.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quotesLocked(requestID), nil
}

func (s *MemoryStore) RequestIDForQuote(ctx context.Context, quoteID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[quoteID]
	if !ok {
		return "", ErrNotFound
	}
	return q.RequestID, nil
}

func (s *MemoryStore) RequestIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.requests))
	for id := range s.requests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) InTx(ctx context.Context, requestID string, fn func(tx Tx) error) error {
	lock := s.requestLock(requestID)
	lock.Lock()
	defer lock.Unlock()

	tx := &memTx{
		store:    s,
		requests: make(map[string]*Request),
		quotes:   make(map[string]*quote.Quote),
	}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range tx.requests {
		s.requests[id] = r
	}
	for id, q := range tx.quotes {
		if _, existed := s.quotes[id]; !existed {
			s.quotesByRequest[q.RequestID] = append(s.quotesByRequest[q.RequestID], id)
		}
		s.quotes[id] = q
	}
	return nil
}

func (s *MemoryStore) requestLock(requestID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[requestID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[requestID] = lock
	}
	return lock
}

func (s *MemoryStore) quotesLocked(requestID string) []*quote.Quote {
	ids := s.quotesByRequest[requestID]
	quotes := make([]*quote.Quote, 0, len(ids))
	for _, id := range ids {
		quotes = append(quotes, cloneQuote(s.quotes[id]))
	}
	return quotes
}

// memTx buffers writes until the transition commits.
type memTx struct {
	store    *MemoryStore
	requests map[string]*Request
	quotes   map[string]*quote.Quote
}

func (tx *memTx) Request(id string) (*Request, error) {
	if r, ok := tx.requests[id]; ok {
		return cloneRequest(r), nil
	}
	return tx.store.Request(context.Background(), id)
}

func (tx *memTx) SaveRequest(r *Request) error {
	tx.requests[r.ID] = cloneRequest(r)
	return nil
}

func (tx *memTx) Quote(id string) (*quote.Quote, error) {
	if q, ok := tx.quotes[id]; ok {
		return cloneQuote(q), nil
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	q, ok := tx.store.quotes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneQuote(q), nil
}

func (tx *memTx) SaveQuote(q *quote.Quote) error {
	tx.quotes[q.ID] = cloneQuote(q)
	return nil
}

func (tx *memTx) QuotesForRequest(requestID string) ([]*quote.Quote, error) {
	tx.store.mu.RLock()
	stored := tx.store.quotesLocked(requestID)
	tx.store.mu.RUnlock()

	merged := make([]*quote.Quote, 0, len(stored)+len(tx.quotes))
	seen := make(map[string]bool, len(stored))
	for _, q := range stored {
		if buffered, ok := tx.quotes[q.ID]; ok {
			q = cloneQuote(buffered)
		}
		seen[q.ID] = true
		merged = append(merged, q)
	}
	for id, q := range tx.quotes {
		if !seen[id] && q.RequestID == requestID {
			merged = append(merged, cloneQuote(q))
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	return merged, nil
}

func cloneRequest(r *Request) *Request {
	cp := *r
	cp.Legs = append([]Leg(nil), r.Legs...)
	cp.Attachments = append([]string(nil), r.Attachments...)
	return &cp
}

func cloneQuote(q *quote.Quote) *quote.Quote {
	cp := *q
	return &cp
}
