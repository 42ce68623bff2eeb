//go:build unit

package pricing_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/pricing"
	pricingmock "rental-backend/tests/mock/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustStay(t *testing.T, start, end string) stay.Range {
	t.Helper()
	r, err := stay.Parse(start, end)
	require.NoError(t, err)
	return r
}

func dailyRate(t *testing.T, date, price string, minStay *int) rate.DailyRate {
	t.Helper()
	d, err := stay.ParseDate(date)
	require.NoError(t, err)
	dr, err := rate.NewDailyRate(d, decimal.RequireFromString(price), minStay)
	require.NoError(t, err)
	return dr
}

func TestEngine_ComputePrice(t *testing.T) {
	ctx := context.Background()
	seeded := func(t *testing.T) []rate.DailyRate {
		return []rate.DailyRate{
			dailyRate(t, "2025-12-01", "100", ptr(2)),
			dailyRate(t, "2025-12-02", "150", ptr(2)),
		}
	}

	tests := []struct {
		name      string
		stay      [2]string
		rates     func(t *testing.T) []rate.DailyRate
		readErr   error
		fallback  *booking.Money
		wantTotal int64
		wantErr   error
		check     func(t *testing.T, q rate.Quote, err error)
	}{
		{
			name:      "two seeded nights",
			stay:      [2]string{"2025-12-01", "2025-12-03"},
			rates:     seeded,
			wantTotal: 25000 + 5000,
		},
		{
			name:    "one night below minimum stay",
			stay:    [2]string{"2025-12-01", "2025-12-02"},
			rates:   seeded,
			wantErr: errs.ErrMinimumStayNotMet,
			check: func(t *testing.T, _ rate.Quote, err error) {
				var minStay *rate.MinimumStayError
				require.ErrorAs(t, err, &minStay)
				assert.Equal(t, 2, minStay.Required)
			},
		},
		{
			name:    "no rates and no fallback",
			stay:    [2]string{"2026-01-10", "2026-01-12"},
			rates:   func(*testing.T) []rate.DailyRate { return nil },
			wantErr: errs.ErrNoRatesAvailable,
		},
		{
			name:      "no rates priced at fallback",
			stay:      [2]string{"2026-01-10", "2026-01-12"},
			rates:     func(*testing.T) []rate.DailyRate { return nil },
			fallback:  ptr(booking.MustMoney(20000)),
			wantTotal: 40000 + 5000,
			check: func(t *testing.T, q rate.Quote, _ error) {
				assert.True(t, q.FallbackUsed)
			},
		},
		{
			name: "subtotal beyond int64 minor units",
			stay: [2]string{"2025-12-01", "2025-12-03"},
			rates: func(t *testing.T) []rate.DailyRate {
				huge := decimal.New(9, 16)
				return []rate.DailyRate{
					{Date: mustStay(t, "2025-12-01", "2025-12-02").Start(), Price: huge},
					{Date: mustStay(t, "2025-12-02", "2025-12-03").Start(), Price: huge},
				}
			},
			wantErr: errs.ErrValidation,
			check: func(t *testing.T, _ rate.Quote, err error) {
				assert.ErrorIs(t, err, booking.ErrMoneyOverflow)
			},
		},
		{
			name:    "read failure",
			stay:    [2]string{"2025-12-01", "2025-12-03"},
			rates:   func(*testing.T) []rate.DailyRate { return nil },
			readErr: errors.New("connection reset"),
			wantErr: errs.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reader := pricingmock.NewMockRateReader(ctrl)
			r := mustStay(t, tt.stay[0], tt.stay[1])
			reader.EXPECT().RatesForRange(gomock.Any(), r).Return(tt.rates(t), tt.readErr)

			engine := pricing.NewEngine(reader, rate.NewDefaultPriceCalculator(booking.MustMoney(5000)), discardLogger())
			q, err := engine.ComputePrice(ctx, r, tt.fallback)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantTotal, q.Total.Cents())
			}
			if tt.check != nil {
				tt.check(t, q, err)
			}
		})
	}
}

func TestEngine_ComputePrice_IsDeterministic(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := pricingmock.NewMockRateReader(ctrl)
	r := mustStay(t, "2025-12-01", "2025-12-04")
	rates := []rate.DailyRate{
		dailyRate(t, "2025-12-01", "100.005", nil),
		dailyRate(t, "2025-12-02", "100.005", nil),
		dailyRate(t, "2025-12-03", "100.01", nil),
	}
	reader.EXPECT().RatesForRange(gomock.Any(), r).Return(rates, nil).Times(2)

	engine := pricing.NewEngine(reader, rate.NewDefaultPriceCalculator(booking.MustMoney(0)), discardLogger())
	first, err := engine.ComputePrice(context.Background(), r, nil)
	require.NoError(t, err)
	second, err := engine.ComputePrice(context.Background(), r, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(30002), first.Total.Cents())
}

func TestEngine_ComputePrice_RejectsZeroRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := pricing.NewEngine(pricingmock.NewMockRateReader(ctrl), rate.NewDefaultPriceCalculator(booking.MustMoney(0)), discardLogger())

	_, err := engine.ComputePrice(context.Background(), stay.Range{}, nil)

	assert.ErrorIs(t, err, errs.ErrValidation)
}
