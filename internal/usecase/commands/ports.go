package commands

import (
	"context"

	"rental-backend/internal/domain/booking"

	"github.com/google/uuid"
)

// Payment gateway port. Gateway types stay independent of any provider SDK.
type CheckoutRequest struct {
	BookingID      uuid.UUID
	Amount         booking.Money
	Nights         int
	Guest          booking.Guest
	IdempotencyKey string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type PaymentEventType string

const (
	PaymentEventCheckoutCompleted PaymentEventType = "checkout.session.completed"
)

type PaymentEvent struct {
	ID        string
	Type      PaymentEventType
	SessionID string
	// BookingID is the raw metadata value; empty when the session carried none.
	BookingID string
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// VerifyEvent authenticates a raw webhook delivery and decodes it.
	VerifyEvent(payload []byte, signature string) (*PaymentEvent, error)
}
