package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/infra"
	"rental-backend/internal/pkg/clock"
	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const bookingTopic = "booking"

type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, r stay.Range, excludeID *uuid.UUID) (bool, error)
}

type PriceComputer interface {
	ComputePrice(ctx context.Context, r stay.Range, fallback *booking.Money) (rate.Quote, error)
}

type CreateBookingInput struct {
	StartDate time.Time
	EndDate   time.Time
	Nights    int
	// Rate is the nightly flat rate in major currency units.
	Rate decimal.Decimal
}

type CreateBookingResult struct {
	BookingID uuid.UUID
}

type CheckoutResult struct {
	BookingID uuid.UUID
	SessionID string
	URL       string
	Total     booking.Money
}

type BookingCommands interface {
	Create(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	InitiateCheckout(ctx context.Context, id uuid.UUID, guest *booking.Guest) (*CheckoutResult, error)
	HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error
}

type bookingCommandsImpl struct {
	uow          shared.UnitOfWork
	availability AvailabilityChecker
	pricer       PriceComputer
	gateway      PaymentGateway
	clock        clock.Clock
	logger       *slog.Logger
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	availability AvailabilityChecker,
	pricer PriceComputer,
	gateway PaymentGateway,
	clock clock.Clock,
	logger *slog.Logger,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:          uow,
		availability: availability,
		pricer:       pricer,
		gateway:      gateway,
		clock:        clock,
		logger:       logger,
	}
}

func (c *bookingCommandsImpl) Create(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	entity, err := c.newPendingBooking(input)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	available, err := c.availability.IsAvailable(ctx, entity.Stay(), nil)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, errs.Wrapf(errs.ErrDatesUnavailable, "stay %s", entity.Stay())
	}

	var bookingID uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, err := tx.Bookings().Create(ctx, tx.DB(), entity)
		if err != nil {
			return err
		}
		bookingID = id

		return c.enqueue(ctx, tx, shared.EventBookingCreated, map[string]any{
			"bookingId":       id,
			"startDate":       entity.Stay().Start().Format(stay.DateLayout),
			"endDate":         entity.Stay().End().Format(stay.DateLayout),
			"totalPriceCents": entity.TotalPrice().Cents(),
		})
	})
	if err != nil {
		// The exclusion constraint catches a concurrent hold that passed the same availability check.
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.Mark(err, errs.ErrDatesUnavailable)
		}
		return nil, errs.Mark(err, errs.ErrStorage)
	}

	c.logger.Info("booking created",
		"booking_id", bookingID,
		"stay", entity.Stay().String(),
		"total_cents", entity.TotalPrice().Cents())
	return &CreateBookingResult{BookingID: bookingID}, nil
}

func (c *bookingCommandsImpl) newPendingBooking(input CreateBookingInput) (*booking.Booking, error) {
	r, err := stay.New(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	if !input.Rate.IsPositive() {
		return nil, booking.ErrInvalidFlatRate
	}
	flat, err := rate.ToMinorUnits(input.Rate)
	if err != nil {
		return nil, err
	}
	return booking.NewPendingBooking(r, input.Nights, flat)
}

func (c *bookingCommandsImpl) InitiateCheckout(ctx context.Context, id uuid.UUID, guest *booking.Guest) (*CheckoutResult, error) {
	entity, err := c.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entity.EnsurePending(); err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidState)
	}

	available, err := c.availability.IsAvailable(ctx, entity.Stay(), &id)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, errs.Wrapf(errs.ErrDatesUnavailable, "stay %s", entity.Stay())
	}

	flat := entity.FlatRate()
	quote, err := c.pricer.ComputePrice(ctx, entity.Stay(), &flat)
	if err != nil {
		return nil, err
	}
	if err := entity.Reprice(quote.Total); err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidState)
	}
	if guest != nil {
		entity.AttachGuest(*guest)
	}

	session, err := c.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		BookingID:      entity.ID(),
		Amount:         entity.TotalPrice(),
		Nights:         quote.Nights,
		Guest:          entity.Guest(),
		IdempotencyKey: checkoutIdempotencyKey(entity),
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrPaymentInitFailed)
	}
	if err := entity.AttachPaymentSession(session.ID); err != nil {
		return nil, errs.Mark(err, errs.ErrPaymentInitFailed)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Bookings().SaveCheckout(ctx, tx.DB(), entity); err != nil {
			return err
		}
		return c.enqueue(ctx, tx, shared.EventBookingCheckoutStarted, map[string]any{
			"bookingId":  entity.ID(),
			"sessionId":  session.ID,
			"totalCents": entity.TotalPrice().Cents(),
		})
	})
	if err != nil {
		// Confirmed between load and save.
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.Mark(err, errs.ErrInvalidState)
		}
		return nil, errs.Mark(err, errs.ErrStorage)
	}

	c.logger.Info("checkout session created",
		"booking_id", entity.ID(),
		"session_id", session.ID,
		"total_cents", entity.TotalPrice().Cents(),
		"fallback_pricing", quote.FallbackUsed)
	return &CheckoutResult{
		BookingID: entity.ID(),
		SessionID: session.ID,
		URL:       session.URL,
		Total:     entity.TotalPrice(),
	}, nil
}

func (c *bookingCommandsImpl) loadBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	snapshot, err := c.uow.CommandReads().BookingByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStorage)
	}

	entity, err := snapshot.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStorage)
	}
	return entity, nil
}

// HandlePaymentEvent confirms the booking named by a verified checkout completion.
// Unknown bookings and repeated deliveries are acknowledged without changes.
func (c *bookingCommandsImpl) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := c.gateway.VerifyEvent(payload, signature)
	if err != nil {
		c.logger.Warn("payment event rejected", "error", err.Error())
		return errs.Mark(err, errs.ErrSignatureInvalid)
	}

	if event.Type != PaymentEventCheckoutCompleted {
		c.logger.Debug("ignoring payment event", "event_id", event.ID, "type", event.Type)
		return nil
	}

	bookingID, err := uuid.Parse(event.BookingID)
	if err != nil {
		c.logger.Warn("checkout completed without a valid booking id",
			"event_id", event.ID,
			"session_id", event.SessionID,
			"booking_id", event.BookingID)
		return nil
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		confirmed, err := tx.Bookings().Confirm(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if confirmed {
			return c.enqueue(ctx, tx, shared.EventBookingConfirmed, map[string]any{
				"bookingId": bookingID,
				"sessionId": event.SessionID,
			})
		}

		exists, err := tx.Reads().BookingExists(ctx, bookingID)
		if err != nil {
			return err
		}
		if exists {
			c.logger.Info("booking already confirmed", "booking_id", bookingID, "event_id", event.ID)
		} else {
			c.logger.Warn("payment event for unknown booking", "booking_id", bookingID, "event_id", event.ID)
		}
		return errNoTransition
	})
	switch {
	case err == nil:
		c.logger.Info("booking confirmed", "booking_id", bookingID, "session_id", event.SessionID)
		return nil
	case errors.Is(err, errNoTransition):
		return nil
	default:
		return errs.Mark(err, errs.ErrStorage)
	}
}

var errNoTransition = errs.New("booking not transitioned")

func (c *bookingCommandsImpl) enqueue(ctx context.Context, tx shared.Tx, kind string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), kind, bookingTopic, payload, c.clock.Now())
}

// checkoutIdempotencyKey changes whenever the amount or guest details of a retry differ.
func checkoutIdempotencyKey(b *booking.Booking) string {
	attrs := b.Guest().Attributes()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(b.ID().String()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(b.TotalPrice().Cents(), 10)))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k + "=" + attrs[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}
