package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookingView struct {
	ID                uuid.UUID `json:"id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Nights            int       `json:"nights"`
	TotalPriceCents   int64     `json:"total_price_cents"`
	Status            string    `json:"status"`
	PaymentSessionRef *string   `json:"payment_session_ref,omitempty"`
	PartySize         *int      `json:"party_size,omitempty"`
	GuestName         *string   `json:"guest_name,omitempty"`
	GuestEmail        *string   `json:"guest_email,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type BlockedRangeSource string

const (
	SourceBooking  BlockedRangeSource = "booking"
	SourceCalendar BlockedRangeSource = "calendar"
	// SourceMixed marks a merged range built from bookings and calendar blocks together.
	SourceMixed BlockedRangeSource = "mixed"
)

type BlockedRangeQuery struct {
	// Merged coalesces overlapping or touching ranges into one.
	Merged bool
}

type BlockedRangeView struct {
	Start  time.Time          `json:"start"`
	End    time.Time          `json:"end"`
	Source BlockedRangeSource `json:"source"`
	Label  string             `json:"label"`
}

type ActiveBookingRange struct {
	ID        uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Status    string
}

type AvailabilityView struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Available bool      `json:"available"`
}

type NightlyPriceView struct {
	Date     time.Time `json:"date"`
	Price    string    `json:"price"`
	Fallback bool      `json:"fallback"`
}

type QuoteView struct {
	StartDate           time.Time          `json:"start_date"`
	EndDate             time.Time          `json:"end_date"`
	Nights              int                `json:"nights"`
	NightlyAverageCents int64              `json:"nightly_average_cents"`
	SubtotalCents       int64              `json:"subtotal_cents"`
	CleaningFeeCents    int64              `json:"cleaning_fee_cents"`
	TotalCents          int64              `json:"total_cents"`
	MinimumStay         *int               `json:"minimum_stay,omitempty"`
	FallbackUsed        bool               `json:"fallback_used"`
	Breakdown           []NightlyPriceView `json:"breakdown"`
}
