package pricing

import (
	"context"
	"log/slog"

	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/pkg/clock"
	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/shared"
)

// Rates beyond this horizon are not stored.
const syncHorizonDays = 365

type RateSource interface {
	Enabled() bool
	FetchRates(ctx context.Context) ([]rate.DailyRate, error)
}

type RateReader interface {
	RatesForRange(ctx context.Context, r stay.Range) ([]rate.DailyRate, error)
}

// RateCache keeps the daily_rates table in step with the rate provider.
type RateCache struct {
	uow    shared.UnitOfWork
	source RateSource
	clock  clock.Clock
	logger *slog.Logger
}

func NewRateCache(uow shared.UnitOfWork, source RateSource, clk clock.Clock, logger *slog.Logger) *RateCache {
	return &RateCache{
		uow:    uow,
		source: source,
		clock:  clk,
		logger: logger,
	}
}

// Sync upserts the provider's forward calendar in one transaction. Any failure leaves the table untouched.
func (c *RateCache) Sync(ctx context.Context) error {
	if !c.source.Enabled() {
		c.logger.Warn("rate provider api key not configured, skipping sync")
		return nil
	}

	fetched, err := c.source.FetchRates(ctx)
	if err != nil {
		c.logger.Error("rate fetch failed", "error", err.Error())
		return errs.Mark(err, errs.ErrUpstreamSync)
	}

	today := clock.Today(c.clock)
	horizon := today.AddDate(0, 0, syncHorizonDays)
	rates := make([]rate.DailyRate, 0, len(fetched))
	for _, dr := range fetched {
		if dr.Date.Before(today) || !dr.Date.Before(horizon) {
			continue
		}
		rates = append(rates, dr)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, dr := range rates {
			if err := tx.Rates().Upsert(ctx, tx.DB(), dr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.logger.Error("rate upsert failed", "count", len(rates), "error", err.Error())
		return errs.Mark(err, errs.ErrStorage)
	}

	c.logger.Info("rates synced", "received", len(fetched), "stored", len(rates))
	return nil
}

// RatesForRange returns stored rates for the nights of r ordered by date.
func (c *RateCache) RatesForRange(ctx context.Context, r stay.Range) ([]rate.DailyRate, error) {
	rates, err := c.uow.CommandReads().RatesForRange(ctx, r)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStorage)
	}
	return rates, nil
}
