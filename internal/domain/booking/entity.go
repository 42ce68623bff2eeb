package booking

import (
	"errors"
	"time"

	"rental-backend/internal/domain/stay"

	"github.com/google/uuid"
)

var (
	ErrNightsMismatch  = errors.New("nights does not match the stay length")
	ErrInvalidNights   = errors.New("nights must be positive")
	ErrInvalidFlatRate = errors.New("flat rate must be positive")
	ErrNotPending      = errors.New("booking is not pending")
	ErrEmptySessionRef = errors.New("payment session reference is empty")
)

type Booking struct {
	id                uuid.UUID
	stay              stay.Range
	flatRate          Money
	totalPrice        Money
	status            Status
	guest             Guest
	paymentSessionRef *string
	createdAt         time.Time
	updatedAt         time.Time
}

// NewPendingBooking places a provisional hold priced at flatRate per night.
func NewPendingBooking(r stay.Range, nights int, flatRate Money) (*Booking, error) {
	if nights <= 0 {
		return nil, ErrInvalidNights
	}
	if nights != r.Nights() {
		return nil, ErrNightsMismatch
	}
	if flatRate.IsZero() {
		return nil, ErrInvalidFlatRate
	}
	total, err := flatRate.Times(nights)
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:         uuid.New(),
		stay:       r,
		flatRate:   flatRate,
		totalPrice: total,
		status:     StatusPending,
	}, nil
}

func ReconstructBooking(
	id uuid.UUID,
	r stay.Range,
	flatRate, totalPrice Money,
	status Status,
	guest Guest,
	paymentSessionRef *string,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		stay:              r,
		flatRate:          flatRate,
		totalPrice:        totalPrice,
		status:            status,
		guest:             guest,
		paymentSessionRef: paymentSessionRef,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// EnsurePending guards every checkout step.
func (b *Booking) EnsurePending() error {
	if b.status != StatusPending {
		return ErrNotPending
	}
	return nil
}

// Reprice overwrites the provisional total with an authoritative one.
func (b *Booking) Reprice(total Money) error {
	if err := b.EnsurePending(); err != nil {
		return err
	}
	b.totalPrice = total
	return nil
}

func (b *Booking) AttachGuest(g Guest) {
	b.guest = b.guest.Merge(g)
}

func (b *Booking) AttachPaymentSession(ref string) error {
	if ref == "" {
		return ErrEmptySessionRef
	}
	if err := b.EnsurePending(); err != nil {
		return err
	}
	b.paymentSessionRef = &ref
	return nil
}

func (b *Booking) ID() uuid.UUID              { return b.id }
func (b *Booking) Stay() stay.Range           { return b.stay }
func (b *Booking) FlatRate() Money            { return b.flatRate }
func (b *Booking) TotalPrice() Money          { return b.totalPrice }
func (b *Booking) Status() Status             { return b.status }
func (b *Booking) Guest() Guest               { return b.guest }
func (b *Booking) PaymentSessionRef() *string { return b.paymentSessionRef }
func (b *Booking) CreatedAt() time.Time       { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time       { return b.updatedAt }
