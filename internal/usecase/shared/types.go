package shared

import (
	"time"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/stay"

	"github.com/google/uuid"
)

// Minimal snapshot for command read operations
type BookingSnapshot struct {
	ID                uuid.UUID
	StartDate         time.Time
	EndDate           time.Time
	FlatRateCents     int64
	TotalPriceCents   int64
	Status            string
	PaymentSessionRef *string
	PartySize         *int
	GuestName         *string
	GuestEmail        *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ToDomain rehydrates the aggregate. Rows are trusted to satisfy the table constraints.
func (s *BookingSnapshot) ToDomain() (*booking.Booking, error) {
	r, err := stay.New(s.StartDate, s.EndDate)
	if err != nil {
		return nil, err
	}
	flat, err := booking.NewMoney(s.FlatRateCents)
	if err != nil {
		return nil, err
	}
	total, err := booking.NewMoney(s.TotalPriceCents)
	if err != nil {
		return nil, err
	}
	guest := booking.Guest{PartySize: s.PartySize, Name: s.GuestName, Email: s.GuestEmail}

	return booking.ReconstructBooking(
		s.ID, r, flat, total, booking.Status(s.Status), guest, s.PaymentSessionRef, s.CreatedAt, s.UpdatedAt,
	), nil
}

type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	RunAt    time.Time
	Attempts int32
}

// Outbox event kinds
const (
	EventBookingCreated         = "booking_created"
	EventBookingCheckoutStarted = "booking_checkout_started"
	EventBookingConfirmed       = "booking_confirmed"
)
