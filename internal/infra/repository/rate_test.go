//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"rental-backend/internal/domain/rate"
	"rental-backend/internal/infra"
	sqlc "rental-backend/internal/infra/sqlc/generated"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRateWriteQueries struct {
	mock.Mock
}

func (m *MockRateWriteQueries) UpsertDailyRate(ctx context.Context, db sqlc.DBTX, arg sqlc.UpsertDailyRateParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func TestRateRepository_Upsert(t *testing.T) {
	minStay := 2
	dr, err := rate.NewDailyRate(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), decimal.RequireFromString("149.99"), &minStay)
	require.NoError(t, err)

	t.Run("maps price and minimum stay", func(t *testing.T) {
		mockQueries := new(MockRateWriteQueries)
		mockQueries.On("UpsertDailyRate", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.UpsertDailyRateParams) bool {
			return p.Date.Time.Equal(dr.Date) &&
				p.Price.Valid && p.Price.Int.Int64() == 14999 && p.Price.Exp == -2 &&
				p.MinStay.Valid && p.MinStay.Int32 == 2
		})).Return(nil)

		require.NoError(t, NewRateRepository(mockQueries, nil).Upsert(context.Background(), nil, dr))
		mockQueries.AssertExpectations(t)
	})

	t.Run("database error", func(t *testing.T) {
		mockQueries := new(MockRateWriteQueries)
		mockQueries.On("UpsertDailyRate", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		err := NewRateRepository(mockQueries, nil).Upsert(context.Background(), nil, dr)
		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}
