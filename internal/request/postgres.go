package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"charter/internal/quote"
	"charter/pkg/db"
)

// Schema for the Postgres store. Applied out-of-band by the deployment;
// kept here so the store and its tables stay in one place.
const Schema = `
CREATE TABLE IF NOT EXISTS charter_requests (
	id                TEXT PRIMARY KEY,
	broker_id         TEXT NOT NULL,
	legs              JSONB NOT NULL,
	total_passengers  INT NOT NULL,
	total_luggage     INT NOT NULL,
	catering          TEXT NOT NULL DEFAULT '',
	compliance_notes  TEXT NOT NULL DEFAULT '',
	attachments       JSONB NOT NULL DEFAULT '[]',
	status            TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL,
	published_at      TIMESTAMPTZ,
	expires_at        TIMESTAMPTZ,
	accepted_quote_id TEXT
);

CREATE TABLE IF NOT EXISTS charter_quotes (
	id                    TEXT PRIMARY KEY,
	request_id            TEXT NOT NULL REFERENCES charter_requests (id),
	operator_id           TEXT NOT NULL,
	aircraft              TEXT NOT NULL,
	price                 DOUBLE PRECISION NOT NULL,
	currency              TEXT NOT NULL,
	valid_until           TIMESTAMPTZ NOT NULL,
	response_time_minutes INT NOT NULL,
	operator_rating       DOUBLE PRECISION NOT NULL,
	deal_score            INT NOT NULL,
	verified              BOOLEAN NOT NULL,
	fees                  JSONB NOT NULL,
	notes                 TEXT NOT NULL DEFAULT '',
	status                TEXT NOT NULL,
	rejection_reason      TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_charter_quotes_request ON charter_quotes (request_id, created_at);
`

// PostgresStore persists requests and quotes through a db.SQLExecutor.
// InTx takes a row lock on the request, so the accept-quote flip and its
// sibling rejections commit as one unit.
type PostgresStore struct {
	db db.SQLExecutor
}

func NewPostgresStore(exec db.SQLExecutor) *PostgresStore {
	return &PostgresStore{db: exec}
}

func (s *PostgresStore) CreateRequest(ctx context.Context, r *Request) error {
	legs, err := json.Marshal(r.Legs)
	if err != nil {
		return fmt.Errorf("marshal legs: %w", err)
	}
	attachments, err := json.Marshal(r.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO charter_requests
			(id, broker_id, legs, total_passengers, total_luggage, catering,
			 compliance_notes, attachments, status, created_at, published_at,
			 expires_at, accepted_quote_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.ID, r.BrokerID, legs, r.TotalPassengers, r.TotalLuggage, r.Catering,
		r.ComplianceNotes, attachments, r.Status, r.CreatedAt,
		nullTime(r.PublishedAt), nullTime(r.ExpiresAt), nullString(r.AcceptedQuoteID))
	return err
}

func (s *PostgresStore) Request(ctx context.Context, id string) (*Request, error) {
	row := s.db.QueryRowContext(ctx, selectRequest+` WHERE id = $1`, id)
	return scanRequest(row)
}

func (s *PostgresStore) QuotesForRequest(ctx context.Context, requestID string) ([]*quote.Quote, error) {
	rows, err := s.db.QueryContext(ctx, selectQuote+` WHERE request_id = $1 ORDER BY created_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuotes(rows)
}

func (s *PostgresStore) RequestIDForQuote(ctx context.Context, quoteID string) (string, error) {
	var requestID string
	err := s.db.QueryRowContext(ctx,
		`SELECT request_id FROM charter_quotes WHERE id = $1`, quoteID).Scan(&requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return requestID, err
}

func (s *PostgresStore) RequestIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM charter_requests ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) InTx(ctx context.Context, requestID string, fn func(tx Tx) error) error {
	return s.db.WithTransaction(ctx, sql.LevelReadCommitted, func(ctx context.Context, tx *sql.Tx) error {
		// Serializes concurrent transitions on the same request.
		var locked string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM charter_requests WHERE id = $1 FOR UPDATE`, requestID).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return fn(&pgTx{ctx: ctx, tx: tx})
	})
}

type pgTx struct {
	ctx context.Context
	tx  *sql.Tx
}

const selectRequest = `
	SELECT id, broker_id, legs, total_passengers, total_luggage, catering,
	       compliance_notes, attachments, status, created_at, published_at,
	       expires_at, accepted_quote_id
	FROM charter_requests`

const selectQuote = `
	SELECT id, request_id, operator_id, aircraft, price, currency,
	       valid_until, response_time_minutes, operator_rating, deal_score,
	       verified, fees, notes, status, rejection_reason, created_at
	FROM charter_quotes`

func (t *pgTx) Request(id string) (*Request, error) {
	row := t.tx.QueryRowContext(t.ctx, selectRequest+` WHERE id = $1`, id)
	return scanRequest(row)
}

func (t *pgTx) SaveRequest(r *Request) error {
	legs, err := json.Marshal(r.Legs)
	if err != nil {
		return fmt.Errorf("marshal legs: %w", err)
	}
	attachments, err := json.Marshal(r.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}
	_, err = t.tx.ExecContext(t.ctx, `
		UPDATE charter_requests
		SET broker_id = $2, legs = $3, total_passengers = $4, total_luggage = $5,
		    catering = $6, compliance_notes = $7, attachments = $8, status = $9,
		    published_at = $10, expires_at = $11, accepted_quote_id = $12
		WHERE id = $1`,
		r.ID, r.BrokerID, legs, r.TotalPassengers, r.TotalLuggage, r.Catering,
		r.ComplianceNotes, attachments, r.Status,
		nullTime(r.PublishedAt), nullTime(r.ExpiresAt), nullString(r.AcceptedQuoteID))
	return err
}

func (t *pgTx) Quote(id string) (*quote.Quote, error) {
	row := t.tx.QueryRowContext(t.ctx, selectQuote+` WHERE id = $1`, id)
	quotes, err := scanQuoteRow(row)
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (t *pgTx) SaveQuote(q *quote.Quote) error {
	fees, err := json.Marshal(q.Fees)
	if err != nil {
		return fmt.Errorf("marshal fees: %w", err)
	}
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO charter_quotes
			(id, request_id, operator_id, aircraft, price, currency, valid_until,
			 response_time_minutes, operator_rating, deal_score, verified, fees,
			 notes, status, rejection_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    rejection_reason = EXCLUDED.rejection_reason,
		    valid_until = EXCLUDED.valid_until`,
		q.ID, q.RequestID, q.OperatorID, q.Aircraft, q.Price, q.Currency, q.ValidUntil,
		q.ResponseTimeMinutes, q.OperatorRating, q.DealScore, q.Verified, fees,
		q.Notes, q.Status, q.RejectionReason, q.CreatedAt)
	return err
}

func (t *pgTx) QuotesForRequest(requestID string) ([]*quote.Quote, error) {
	rows, err := t.tx.QueryContext(t.ctx, selectQuote+` WHERE request_id = $1 ORDER BY created_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuotes(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var (
		r               Request
		legs            []byte
		attachments     []byte
		publishedAt     sql.NullTime
		expiresAt       sql.NullTime
		acceptedQuoteID sql.NullString
	)
	err := row.Scan(&r.ID, &r.BrokerID, &legs, &r.TotalPassengers, &r.TotalLuggage,
		&r.Catering, &r.ComplianceNotes, &attachments, &r.Status, &r.CreatedAt,
		&publishedAt, &expiresAt, &acceptedQuoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(legs, &r.Legs); err != nil {
		return nil, fmt.Errorf("unmarshal legs: %w", err)
	}
	if err := json.Unmarshal(attachments, &r.Attachments); err != nil {
		return nil, fmt.Errorf("unmarshal attachments: %w", err)
	}
	if publishedAt.Valid {
		r.PublishedAt = publishedAt.Time
	}
	if expiresAt.Valid {
		r.ExpiresAt = expiresAt.Time
	}
	if acceptedQuoteID.Valid {
		r.AcceptedQuoteID = acceptedQuoteID.String
	}
	return &r, nil
}

func scanQuoteRow(row rowScanner) (*quote.Quote, error) {
	var (
		q    quote.Quote
		fees []byte
	)
	err := row.Scan(&q.ID, &q.RequestID, &q.OperatorID, &q.Aircraft, &q.Price,
		&q.Currency, &q.ValidUntil, &q.ResponseTimeMinutes, &q.OperatorRating,
		&q.DealScore, &q.Verified, &fees, &q.Notes, &q.Status, &q.RejectionReason,
		&q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fees, &q.Fees); err != nil {
		return nil, fmt.Errorf("unmarshal fees: %w", err)
	}
	return &q, nil
}

func scanQuotes(rows *sql.Rows) ([]*quote.Quote, error) {
	var quotes []*quote.Quote
	for rows.Next() {
		q, err := scanQuoteRow(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func nullTime(t interface{ IsZero() bool }) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
