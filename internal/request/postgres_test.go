package request

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"charter/pkg/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSQLExecutor is a mock implementation of db.SQLExecutor
type MockSQLExecutor struct {
	mock.Mock
}

func (m *MockSQLExecutor) WithTransaction(ctx context.Context, isolation sql.IsolationLevel, fn db.TxFunc) error {
	args := m.Called(ctx, isolation, fn)
	return args.Error(0)
}

func (m *MockSQLExecutor) ExecContext(ctx context.Context, query string, queryArgs ...any) (sql.Result, error) {
	args := m.Called(ctx, query, queryArgs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(sql.Result), args.Error(1)
}

func (m *MockSQLExecutor) QueryContext(ctx context.Context, query string, queryArgs ...any) (*sql.Rows, error) {
	args := m.Called(ctx, query, queryArgs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sql.Rows), args.Error(1)
}

func (m *MockSQLExecutor) QueryRowContext(ctx context.Context, query string, queryArgs ...any) *sql.Row {
	args := m.Called(ctx, query, queryArgs)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*sql.Row)
}

type MockResult struct {
	mock.Mock
}

func (m *MockResult) LastInsertId() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResult) RowsAffected() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func TestPostgresStore_CreateRequest(t *testing.T) {
	mockDB := new(MockSQLExecutor)
	mockResult := new(MockResult)
	store := NewPostgresStore(mockDB)

	r := &Request{
		ID:              "r-1",
		BrokerID:        "broker-1",
		Legs:            testLegs(),
		TotalPassengers: 4,
		TotalLuggage:    6,
		Status:          StatusDraft,
		CreatedAt:       time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
	}

	mockDB.On("ExecContext", mock.Anything, mock.Anything, mock.MatchedBy(func(args []any) bool {
		// id, broker, legs blob, totals, then nullable publish/expiry/accept.
		return len(args) == 13 && args[0] == "r-1" && args[1] == "broker-1" &&
			args[10] == nil && args[11] == nil && args[12] == nil
	})).Return(mockResult, nil)

	err := store.CreateRequest(context.Background(), r)
	require.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestPostgresStore_CreateRequestKeepsTimestamps(t *testing.T) {
	mockDB := new(MockSQLExecutor)
	mockResult := new(MockResult)
	store := NewPostgresStore(mockDB)

	published := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	r := &Request{
		ID:          "r-2",
		BrokerID:    "broker-1",
		Legs:        testLegs(),
		Status:      StatusPublished,
		CreatedAt:   published.Add(-time.Hour),
		PublishedAt: published,
	}

	mockDB.On("ExecContext", mock.Anything, mock.Anything, mock.MatchedBy(func(args []any) bool {
		return len(args) == 13 && args[10] == published
	})).Return(mockResult, nil)

	err := store.CreateRequest(context.Background(), r)
	require.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestNullHelpers(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "q-1", nullString("q-1"))

	assert.Nil(t, nullTime(time.Time{}))
	now := time.Now()
	assert.Equal(t, now, nullTime(now))
}
