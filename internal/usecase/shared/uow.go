package shared

import (
	"context"
	"time"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	sqlc "rental-backend/internal/infra/sqlc/generated"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations, replayed on serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Rates() RateRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() sqlc.DBTX
}

type CommandReads interface {
	BookingByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	BookingExists(ctx context.Context, id uuid.UUID) (bool, error)
	// CountOverlappingBookings counts pending and confirmed bookings overlapping r, skipping excludeID when set.
	CountOverlappingBookings(ctx context.Context, r stay.Range, excludeID *uuid.UUID) (int64, error)
	RatesForRange(ctx context.Context, r stay.Range) ([]rate.DailyRate, error)
}

type BookingRepository interface {
	Create(ctx context.Context, tx sqlc.DBTX, b *booking.Booking) (uuid.UUID, error)
	// SaveCheckout persists price, guest and session of a still-pending booking.
	SaveCheckout(ctx context.Context, tx sqlc.DBTX, b *booking.Booking) error
	// Confirm reports whether the row moved from pending to confirmed.
	Confirm(ctx context.Context, tx sqlc.DBTX, id uuid.UUID) (bool, error)
}

type RateRepository interface {
	Upsert(ctx context.Context, tx sqlc.DBTX, dr rate.DailyRate) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx sqlc.DBTX, kind, topic string, payload []byte, runAt time.Time) error
	ClaimQueued(ctx context.Context, tx sqlc.DBTX, limit int32) ([]NotificationJob, error)
	MarkSent(ctx context.Context, tx sqlc.DBTX, jobID uuid.UUID) error
	MarkFailed(ctx context.Context, tx sqlc.DBTX, jobID uuid.UUID, lastError string, maxAttempts int32) error
}
