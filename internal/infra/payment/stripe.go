package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"rental-backend/internal/pkg/config"
	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/commands"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrInvalidSignature = errs.New("stripe signature verification failed")
	ErrMalformedEvent   = errs.New("stripe event payload is malformed")
)

type Option func(*stripe.BackendConfig)

// WithAPIURL points the client at a different API host.
func WithAPIURL(url string) Option {
	return func(c *stripe.BackendConfig) {
		c.URL = stripe.String(url)
	}
}

type StripeGateway struct {
	api    *client.API
	cfg    config.PaymentConfig
	logger *slog.Logger
}

func NewStripeGateway(cfg config.PaymentConfig, logger *slog.Logger, opts ...Option) *StripeGateway {
	backendCfg := &stripe.BackendConfig{
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
		MaxNetworkRetries: stripe.Int64(2),
	}
	for _, opt := range opts {
		opt(backendCfg)
	}

	return &StripeGateway{
		api:    client.New(cfg.SecretKey, stripe.NewBackendsWithConfig(backendCfg)),
		cfg:    cfg,
		logger: logger,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req commands.CheckoutRequest) (*commands.CheckoutSession, error) {
	metadata := map[string]string{"bookingId": req.BookingID.String()}
	for k, v := range req.Guest.Attributes() {
		metadata[k] = v
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(g.cfg.SuccessURL()),
		CancelURL:          stripe.String(g.cfg.CancelURL()),
		ClientReferenceID:  stripe.String(req.BookingID.String()),
		Metadata:           metadata,
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(g.cfg.Currency),
					UnitAmount: stripe.Int64(req.Amount.Cents()),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(g.cfg.ProductName),
						Description: stripe.String(strconv.Itoa(req.Nights) + " night stay"),
						Metadata:    map[string]string{"booking_id": req.BookingID.String()},
					},
				},
			},
		},
	}
	if req.Guest.Email != nil {
		params.CustomerEmail = stripe.String(*req.Guest.Email)
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error("failed to create checkout session",
			"booking_id", req.BookingID,
			"amount_cents", req.Amount.Cents(),
			"error", err.Error())
		return nil, errs.Wrap(err, "create checkout session")
	}

	return &commands.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (*commands.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidSignature)
	}

	result := &commands.PaymentEvent{
		ID:   event.ID,
		Type: commands.PaymentEventType(event.Type),
	}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return result, nil
	}

	if event.Data == nil {
		return nil, ErrMalformedEvent
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, errs.Mark(err, ErrMalformedEvent)
	}
	result.SessionID = session.ID
	result.BookingID = session.Metadata["bookingId"]

	return result, nil
}
