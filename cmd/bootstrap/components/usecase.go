package components

import (
	"log/slog"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/rate"
	"rental-backend/internal/handler/api"
	"rental-backend/internal/pkg/clock"
	"rental-backend/internal/pkg/config"
	"rental-backend/internal/usecase/availability"
	"rental-backend/internal/usecase/calendar"
	"rental-backend/internal/usecase/commands"
	"rental-backend/internal/usecase/pricing"
	"rental-backend/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseServicesModule,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		NewPriceCalculator,
		fx.As(new(rate.PriceCalculator)),
	),
)

var usecaseServicesModule = fx.Module("usecase/services",
	fx.Provide(
		fx.Annotate(
			NewBlockCache,
			fx.As(fx.Self()),
			fx.As(new(availability.BlockChecker)),
			fx.As(new(queries.BlockSource)),
			fx.As(new(api.CalendarStatus)),
		),
		fx.Annotate(
			pricing.NewRateCache,
			fx.As(fx.Self()),
			fx.As(new(pricing.RateReader)),
		),
		fx.Annotate(
			pricing.NewEngine,
			fx.As(new(commands.PriceComputer)),
			fx.As(new(queries.PriceComputer)),
		),
		fx.Annotate(
			availability.NewResolver,
			fx.As(new(commands.AvailabilityChecker)),
			fx.As(new(queries.AvailabilityChecker)),
		),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
	),
)

func NewPriceCalculator(cfg config.Config) (*rate.DefaultPriceCalculator, error) {
	fee, err := booking.NewMoney(cfg.Pricing.CleaningFeeCents)
	if err != nil {
		return nil, err
	}
	return rate.NewDefaultPriceCalculator(fee), nil
}

func NewBlockCache(cfg config.Config, source calendar.FeedSource, clk clock.Clock, logger *slog.Logger) *calendar.BlockCache {
	return calendar.NewBlockCache(source, cfg.Calendar.FetchTimeout, clk, logger)
}
