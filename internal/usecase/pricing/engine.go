package pricing

import (
	"context"
	"errors"
	"log/slog"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/pkg/errs"
)

type Engine struct {
	rates      RateReader
	calculator rate.PriceCalculator
	logger     *slog.Logger
}

func NewEngine(rates RateReader, calculator rate.PriceCalculator, logger *slog.Logger) *Engine {
	return &Engine{
		rates:      rates,
		calculator: calculator,
		logger:     logger,
	}
}

// ComputePrice prices r from the stored rates. fallback, when set, prices nights that have no rate row.
// The result is deterministic for unchanged rate rows.
func (e *Engine) ComputePrice(ctx context.Context, r stay.Range, fallback *booking.Money) (rate.Quote, error) {
	if r.IsZero() || r.Nights() <= 0 {
		return rate.Quote{}, errs.Mark(rate.ErrInvalidStay, errs.ErrValidation)
	}

	rates, err := e.rates.RatesForRange(ctx, r)
	if err != nil {
		return rate.Quote{}, errs.Mark(err, errs.ErrStorage)
	}

	quote, err := e.calculator.Calculate(r, rates, fallback)
	if err != nil {
		return rate.Quote{}, classify(err)
	}

	if quote.FallbackUsed {
		e.logger.Warn("no synced rate for some nights, priced at fallback",
			"stay", r.String(),
			"synced_nights", len(rates),
			"nights", quote.Nights)
	}
	return quote, nil
}

func classify(err error) error {
	var minStay *rate.MinimumStayError
	switch {
	case errors.As(err, &minStay):
		return errs.Mark(err, errs.ErrMinimumStayNotMet)
	case errors.Is(err, rate.ErrNoRates):
		return errs.Mark(err, errs.ErrNoRatesAvailable)
	case errors.Is(err, rate.ErrInvalidStay), errors.Is(err, booking.ErrMoneyOverflow):
		return errs.Mark(err, errs.ErrValidation)
	default:
		return err
	}
}
