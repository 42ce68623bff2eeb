//go:build unit

package readstore

import (
	"context"
	"testing"
	"time"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/infra"
	sqlc "rental-backend/internal/infra/sqlc/generated"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingReadQueries struct {
	mock.Mock
}

func (m *MockBookingReadQueries) GetBookingByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Booking, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlc.Booking), args.Error(1)
}

func (m *MockBookingReadQueries) BookingExists(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, db, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingReadQueries) CountOverlappingBookings(ctx context.Context, db sqlc.DBTX, arg sqlc.CountOverlappingBookingsParams) (int64, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingReadQueries) ListActiveBookingsEndingAfter(ctx context.Context, db sqlc.DBTX, endDate pgtype.Date) ([]sqlc.ListActiveBookingsEndingAfterRow, error) {
	args := m.Called(ctx, db, endDate)
	return args.Get(0).([]sqlc.ListActiveBookingsEndingAfterRow), args.Error(1)
}

func pgDate(s string) pgtype.Date {
	t, _ := time.Parse("2006-01-02", s)
	return pgtype.Date{Time: t, Valid: true}
}

func TestBookingReadStore_FindByID(t *testing.T) {
	id := uuid.New()
	row := sqlc.Booking{
		ID:              id,
		StartDate:       pgDate("2025-06-01"),
		EndDate:         pgDate("2025-06-05"),
		FlatRateCents:   12000,
		TotalPriceCents: 48000,
		Status:          "pending",
		GuestName:       pgtype.Text{String: "Ada", Valid: true},
		PartySize:       pgtype.Int4{Int32: 2, Valid: true},
	}

	tests := []struct {
		name      string
		mockRow   sqlc.Booking
		mockError error
		wantKind  infra.RepositoryErrorKind
	}{
		{name: "success", mockRow: row},
		{name: "not found", mockError: pgx.ErrNoRows, wantKind: infra.KindNotFound},
		{name: "database error", mockError: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockBookingReadQueries)
			mockQueries.On("GetBookingByID", mock.Anything, mock.Anything, id).Return(tt.mockRow, tt.mockError)

			view, err := NewBookingReadStore(mockQueries, nil).FindByID(context.Background(), id)
			if tt.wantKind != "" {
				assert.True(t, infra.IsKind(err, tt.wantKind))
				assert.Nil(t, view)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, view.ID)
			assert.Equal(t, 4, view.Nights)
			assert.Equal(t, int64(48000), view.TotalPriceCents)
			assert.Equal(t, "Ada", *view.GuestName)
			assert.Equal(t, 2, *view.PartySize)
			assert.Nil(t, view.GuestEmail)
			assert.Nil(t, view.PaymentSessionRef)
		})
	}
}

func TestBookingReadStore_SnapshotRoundTripsToDomain(t *testing.T) {
	id := uuid.New()
	mockQueries := new(MockBookingReadQueries)
	mockQueries.On("GetBookingByID", mock.Anything, mock.Anything, id).Return(sqlc.Booking{
		ID:                id,
		StartDate:         pgDate("2025-06-01"),
		EndDate:           pgDate("2025-06-03"),
		FlatRateCents:     10000,
		TotalPriceCents:   20000,
		Status:            "confirmed",
		PaymentSessionRef: pgtype.Text{String: "cs_1", Valid: true},
	}, nil)

	snap, err := NewBookingReadStore(mockQueries, nil).SnapshotByID(context.Background(), id)
	require.NoError(t, err)

	b, err := snap.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, b.Status())
	assert.Equal(t, 2, b.Stay().Nights())
	assert.Equal(t, "cs_1", *b.PaymentSessionRef())
}

func TestBookingReadStore_CountOverlapping(t *testing.T) {
	rng, err := stay.Parse("2025-06-01", "2025-06-05")
	require.NoError(t, err)
	exclude := uuid.New()

	t.Run("passes half-open bounds and exclusion", func(t *testing.T) {
		mockQueries := new(MockBookingReadQueries)
		mockQueries.On("CountOverlappingBookings", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.CountOverlappingBookingsParams) bool {
			return p.QueryStart.Time.Equal(rng.Start()) &&
				p.QueryEnd.Time.Equal(rng.End()) &&
				p.ExcludeID.Valid && p.ExcludeID.Bytes == exclude
		})).Return(int64(1), nil)

		count, err := NewBookingReadStore(mockQueries, nil).CountOverlapping(context.Background(), rng, &exclude)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		mockQueries.AssertExpectations(t)
	})

	t.Run("no exclusion sends null", func(t *testing.T) {
		mockQueries := new(MockBookingReadQueries)
		mockQueries.On("CountOverlappingBookings", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.CountOverlappingBookingsParams) bool {
			return !p.ExcludeID.Valid
		})).Return(int64(0), nil)

		count, err := NewBookingReadStore(mockQueries, nil).CountOverlapping(context.Background(), rng, nil)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("failure propagates", func(t *testing.T) {
		mockQueries := new(MockBookingReadQueries)
		mockQueries.On("CountOverlappingBookings", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

		_, err := NewBookingReadStore(mockQueries, nil).CountOverlapping(context.Background(), rng, nil)
		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}
