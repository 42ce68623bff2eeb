//go:build unit || e2e

package builder

import (
	"time"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/stay"
	reqdto "rental-backend/internal/handler/dto/request"
	"rental-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingBuilder struct {
	ID         uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	Rate       decimal.Decimal
	Status     booking.Status
	PartySize  *int
	GuestName  *string
	GuestEmail *string
	CreatedAt  time.Time
}

func NewBookingBuilder() *BookingBuilder {
	start := stay.Date(time.Now()).AddDate(0, 1, 0)
	return &BookingBuilder{
		ID:        uuid.New(),
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 3),
		Rate:      decimal.NewFromInt(150),
		Status:    booking.StatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) Nights() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

func (b *BookingBuilder) Range() stay.Range {
	r, err := stay.New(b.StartDate, b.EndDate)
	if err != nil {
		panic(err)
	}
	return r
}

// Build methods
func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	flat, err := booking.NewMoney(b.Rate.Shift(2).IntPart())
	if err != nil {
		return nil, err
	}
	return booking.NewPendingBooking(b.Range(), b.Nights(), flat)
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	rate := b.Rate
	return reqdto.CreateBookingRequest{
		StartDate: b.StartDate.Format(stay.DateLayout),
		EndDate:   b.EndDate.Format(stay.DateLayout),
		Nights:    b.Nights(),
		Rate:      &rate,
	}
}

func (b *BookingBuilder) BuildCheckoutRequestDTO() reqdto.CheckoutRequest {
	return reqdto.CheckoutRequest{
		PartySize:  b.PartySize,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
	}
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	total := b.Rate.Shift(2).IntPart() * int64(b.Nights())
	return &queries.BookingView{
		ID:              b.ID,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		Nights:          b.Nights(),
		TotalPriceCents: total,
		Status:          b.Status.String(),
		PartySize:       b.PartySize,
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.CreatedAt,
	}
}
