package repository

import (
	"context"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/infra"
	sqlc "rental-backend/internal/infra/sqlc/generated"
	"rental-backend/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type BookingWriteQueries interface {
	CreateBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateBookingParams) (uuid.UUID, error)
	UpdateBookingCheckout(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateBookingCheckoutParams) (int64, error)
	ConfirmBooking(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (int64, error)
}

type BookingRepository struct {
	queries BookingWriteQueries
	db      sqlc.DBTX
}

func NewBookingRepository(queries BookingWriteQueries, db sqlc.DBTX) *BookingRepository {
	return &BookingRepository{
		queries: queries,
		db:      db,
	}
}

// Create fails with KindConflict when the stay overlaps another active booking.
func (r *BookingRepository) Create(ctx context.Context, tx sqlc.DBTX, b *booking.Booking) (uuid.UUID, error) {
	params := sqlc.CreateBookingParams{
		ID:              b.ID(),
		StartDate:       pgconv.DateToPgtype(b.Stay().Start()),
		EndDate:         pgconv.DateToPgtype(b.Stay().End()),
		FlatRateCents:   b.FlatRate().Cents(),
		TotalPriceCents: b.TotalPrice().Cents(),
		Status:          b.Status().String(),
	}

	id, err := r.queries.CreateBooking(ctx, tx, params)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create booking", err)
	}

	return id, nil
}

func (r *BookingRepository) SaveCheckout(ctx context.Context, tx sqlc.DBTX, b *booking.Booking) error {
	params := sqlc.UpdateBookingCheckoutParams{
		ID:                b.ID(),
		TotalPriceCents:   b.TotalPrice().Cents(),
		PaymentSessionRef: pgconv.StringPtrToPgtype(b.PaymentSessionRef()),
		PartySize:         pgconv.IntPtrToPgtype(b.Guest().PartySize),
		GuestName:         pgconv.StringPtrToPgtype(b.Guest().Name),
		GuestEmail:        pgconv.StringPtrToPgtype(b.Guest().Email),
	}

	rows, err := r.queries.UpdateBookingCheckout(ctx, tx, params)
	if err != nil {
		return infra.WrapRepoErr("failed to save booking checkout", err)
	}
	if rows == 0 {
		return infra.NewRepoErr(infra.KindConflict, "booking is no longer pending", nil)
	}

	return nil
}

func (r *BookingRepository) Confirm(ctx context.Context, tx sqlc.DBTX, id uuid.UUID) (bool, error) {
	rows, err := r.queries.ConfirmBooking(ctx, tx, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to confirm booking", err)
	}

	return rows > 0, nil
}

