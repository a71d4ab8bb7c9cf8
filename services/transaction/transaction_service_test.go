package transaction

import (
	"context"
	"errors"
	"testing"

	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) History(ctx context.Context, userID int64, limit int) ([]Record, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Record), args.Error(1)
}

func (m *MockHistoryStore) Insert(ctx context.Context, rec Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func testLogger() *logging.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return &logging.Logger{Logger: l}
}

func TestGetHistoryClassifiesRecords(t *testing.T) {
	repo := new(MockHistoryStore)
	repo.On("History", mock.Anything, int64(7), DefaultHistoryLimit).Return([]Record{
		{ID: "a", UserID: 7, Type: "funding", UserName: "Ann"},
		{ID: "b", UserID: 7, Type: "send", SplitID: "s1", RecipientName: "Ben"},
	}, nil)

	svc := NewTransactionService(repo, NewClassifier(PolicyColored), nil, testLogger())
	got, err := svc.GetHistory(context.Background(), 7, 0)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, TypeFunding, got[0].CanonicalType)
	assert.Equal(t, DirectionIncome, got[0].Direction)
	assert.Equal(t, "Ann", got[0].Subtitle)
	assert.Equal(t, TypeSend, got[1].CanonicalType)
	assert.Equal(t, "Ben", got[1].Subtitle)
	repo.AssertExpectations(t)
}

func TestGetHistoryWrapsStoreFailure(t *testing.T) {
	repo := new(MockHistoryStore)
	repo.On("History", mock.Anything, int64(9), DefaultHistoryLimit).Return(nil, errors.New("connection refused"))

	svc := NewTransactionService(repo, nil, nil, testLogger())
	got, err := svc.GetHistory(context.Background(), 9, DefaultHistoryLimit)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
}

func TestGetHistoryClampsLimit(t *testing.T) {
	repo := new(MockHistoryStore)
	repo.On("History", mock.Anything, int64(1), DefaultHistoryLimit).Return([]Record{}, nil).Twice()

	svc := NewTransactionService(repo, nil, nil, testLogger())

	_, err := svc.GetHistory(context.Background(), 1, -5)
	require.NoError(t, err)
	_, err = svc.GetHistory(context.Background(), 1, 10_000)
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestRecordTransaction(t *testing.T) {
	repo := new(MockHistoryStore)
	rec := Record{ID: "tx", UserID: 3, Type: "payment"}
	repo.On("Insert", mock.Anything, rec).Return(nil)

	svc := NewTransactionService(repo, nil, nil, testLogger())
	require.NoError(t, svc.RecordTransaction(context.Background(), rec))
	repo.AssertExpectations(t)
}

func TestRecordTransactionDuplicate(t *testing.T) {
	repo := new(MockHistoryStore)
	rec := Record{ID: "tx", UserID: 3, Type: "payment"}
	repo.On("Insert", mock.Anything, rec).Return(ErrRecordExists)

	svc := NewTransactionService(repo, nil, nil, testLogger())
	assert.ErrorIs(t, svc.RecordTransaction(context.Background(), rec), ErrRecordExists)
}
