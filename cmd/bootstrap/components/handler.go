package components

import (
	"rental-backend/internal/handler"
	"rental-backend/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewHealthHandler,
		api.NewBookingHandler,
		api.NewAvailabilityHandler,
		api.NewPricingHandler,
		api.NewWebhookHandler,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	health *api.HealthHandler,
	booking *api.BookingHandler,
	availability *api.AvailabilityHandler,
	pricing *api.PricingHandler,
	webhook *api.WebhookHandler,
) handler.Handlers {
	return handler.Handlers{
		Health:       health,
		Booking:      booking,
		Availability: availability,
		Pricing:      pricing,
		Webhook:      webhook,
	}
}
