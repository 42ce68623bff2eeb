package readstore

import (
	"context"
	"time"

	"rental-backend/internal/domain/stay"
	"rental-backend/internal/infra"
	sqlc "rental-backend/internal/infra/sqlc/generated"
	"rental-backend/internal/pkg/pgconv"
	"rental-backend/internal/usecase/queries"
	"rental-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingReadQueries interface {
	GetBookingByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Booking, error)
	BookingExists(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (bool, error)
	CountOverlappingBookings(ctx context.Context, db sqlc.DBTX, arg sqlc.CountOverlappingBookingsParams) (int64, error)
	ListActiveBookingsEndingAfter(ctx context.Context, db sqlc.DBTX, endDate pgtype.Date) ([]sqlc.ListActiveBookingsEndingAfterRow, error)
}

type BookingReadStore struct {
	queries BookingReadQueries
	db      sqlc.DBTX
}

func NewBookingReadStore(queries BookingReadQueries, db sqlc.DBTX) *BookingReadStore {
	return &BookingReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rowToBookingView(row), nil
}

func (r *BookingReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	row, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rowToBookingSnapshot(row), nil
}

func (r *BookingReadStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	exists, err := r.queries.BookingExists(ctx, r.db, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check booking existence", err)
	}
	return exists, nil
}

// CountOverlapping mirrors stay.Overlaps: start_date < queryEnd AND end_date > queryStart.
func (r *BookingReadStore) CountOverlapping(ctx context.Context, rng stay.Range, excludeID *uuid.UUID) (int64, error) {
	params := sqlc.CountOverlappingBookingsParams{
		QueryStart: pgconv.DateToPgtype(rng.Start()),
		QueryEnd:   pgconv.DateToPgtype(rng.End()),
		ExcludeID:  pgconv.UUIDPtrToPgtype(excludeID),
	}

	count, err := r.queries.CountOverlappingBookings(ctx, r.db, params)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count overlapping bookings", err)
	}
	return count, nil
}

func (r *BookingReadStore) ListActiveEndingAfter(ctx context.Context, date time.Time) ([]queries.ActiveBookingRange, error) {
	rows, err := r.queries.ListActiveBookingsEndingAfter(ctx, r.db, pgconv.DateToPgtype(date))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list active bookings", err)
	}

	result := make([]queries.ActiveBookingRange, len(rows))
	for i, row := range rows {
		result[i] = queries.ActiveBookingRange{
			ID:        row.ID,
			StartDate: pgconv.DateFromPgtype(row.StartDate),
			EndDate:   pgconv.DateFromPgtype(row.EndDate),
			Status:    row.Status,
		}
	}
	return result, nil
}

func (r *BookingReadStore) getByID(ctx context.Context, id uuid.UUID) (sqlc.Booking, error) {
	row, err := r.queries.GetBookingByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return sqlc.Booking{}, infra.NewRepoErr(infra.KindNotFound, "booking not found", err)
		}
		return sqlc.Booking{}, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return row, nil
}

func rowToBookingView(row sqlc.Booking) *queries.BookingView {
	start := pgconv.DateFromPgtype(row.StartDate)
	end := pgconv.DateFromPgtype(row.EndDate)
	return &queries.BookingView{
		ID:                row.ID,
		StartDate:         start,
		EndDate:           end,
		Nights:            int(end.Sub(start).Hours() / 24),
		TotalPriceCents:   row.TotalPriceCents,
		Status:            row.Status,
		PaymentSessionRef: pgconv.StringPtrFromPgtype(row.PaymentSessionRef),
		PartySize:         pgconv.IntPtrFromPgtype(row.PartySize),
		GuestName:         pgconv.StringPtrFromPgtype(row.GuestName),
		GuestEmail:        pgconv.StringPtrFromPgtype(row.GuestEmail),
		CreatedAt:         pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:         pgconv.TimeFromPgtype(row.UpdatedAt),
	}
}

func rowToBookingSnapshot(row sqlc.Booking) *shared.BookingSnapshot {
	return &shared.BookingSnapshot{
		ID:                row.ID,
		StartDate:         pgconv.DateFromPgtype(row.StartDate),
		EndDate:           pgconv.DateFromPgtype(row.EndDate),
		FlatRateCents:     row.FlatRateCents,
		TotalPriceCents:   row.TotalPriceCents,
		Status:            row.Status,
		PaymentSessionRef: pgconv.StringPtrFromPgtype(row.PaymentSessionRef),
		PartySize:         pgconv.IntPtrFromPgtype(row.PartySize),
		GuestName:         pgconv.StringPtrFromPgtype(row.GuestName),
		GuestEmail:        pgconv.StringPtrFromPgtype(row.GuestEmail),
		CreatedAt:         pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:         pgconv.TimeFromPgtype(row.UpdatedAt),
	}
}
