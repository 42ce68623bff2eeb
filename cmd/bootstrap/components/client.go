package components

import (
	"context"
	"log/slog"

	"rental-backend/internal/infra/broker/kafka"
	"rental-backend/internal/infra/calendarfeed"
	"rental-backend/internal/infra/outbox"
	"rental-backend/internal/infra/payment"
	"rental-backend/internal/infra/rateprovider"
	"rental-backend/internal/pkg/config"
	"rental-backend/internal/usecase/calendar"
	"rental-backend/internal/usecase/commands"
	"rental-backend/internal/usecase/pricing"
	"rental-backend/internal/usecase/shared"

	"go.uber.org/fx"
)

// ClientModule provides the adapters for every upstream the service talks to.
var ClientModule = fx.Module("client",
	fx.Provide(
		fx.Annotate(
			NewCalendarFeed,
			fx.As(new(calendar.FeedSource)),
		),
		fx.Annotate(
			NewRateProvider,
			fx.As(new(pricing.RateSource)),
		),
		fx.Annotate(
			NewPaymentGateway,
			fx.As(new(commands.PaymentGateway)),
		),
		NewOutboxRelay,
	),
)

func NewCalendarFeed(cfg config.Config, logger *slog.Logger) *calendarfeed.Client {
	return calendarfeed.NewClient(cfg.Calendar.URL, cfg.Calendar.FetchTimeout, logger)
}

func NewRateProvider(cfg config.Config, logger *slog.Logger) *rateprovider.PriceLabsClient {
	return rateprovider.NewPriceLabsClient(cfg.Rates.BaseURL, cfg.Rates.APIKey, cfg.Rates.ListingID, cfg.Rates.FetchTimeout, logger)
}

func NewPaymentGateway(cfg config.Config, logger *slog.Logger) *payment.StripeGateway {
	if cfg.Payment.SecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set; checkout requests will fail")
	}
	var opts []payment.Option
	if cfg.Payment.APIURL != "" {
		opts = append(opts, payment.WithAPIURL(cfg.Payment.APIURL))
	}
	return payment.NewStripeGateway(cfg.Payment, logger, opts...)
}

// NewOutboxRelay returns nil when no Kafka brokers are configured; jobs then stay queued.
func NewOutboxRelay(lc fx.Lifecycle, cfg config.Config, uow shared.UnitOfWork, logger *slog.Logger) (*outbox.Relay, error) {
	if !cfg.Kafka.Enabled() {
		logger.Warn("KAFKA_BROKERS not set; notification relay disabled")
		return nil, nil
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, kafka.NewConfig())
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return producer.Close()
		},
	})

	return outbox.NewRelay(uow, producer, logger, cfg.Kafka.TopicPrefix,
		outbox.WithBatchSize(cfg.Kafka.RelayBatch),
	), nil
}
