package queries

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/calendar"
	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/infra"
	"rental-backend/internal/pkg/clock"
	"rental-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	bookedLabel      = "Booked"
	unavailableLabel = "Unavailable"
)

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListActiveEndingAfter(ctx context.Context, date time.Time) ([]ActiveBookingRange, error)
}

type BlockSource interface {
	Blocks(ctx context.Context) []calendar.Block
}

type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, r stay.Range, excludeID *uuid.UUID) (bool, error)
}

type PriceComputer interface {
	ComputePrice(ctx context.Context, r stay.Range, fallback *booking.Money) (rate.Quote, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	// ListBlockedRanges merges active local bookings and calendar blocks that end after today, ordered by start.
	ListBlockedRanges(ctx context.Context, query BlockedRangeQuery) ([]BlockedRangeView, error)
	CheckAvailability(ctx context.Context, r stay.Range) (*AvailabilityView, error)
	CalculatePrice(ctx context.Context, r stay.Range) (*QuoteView, error)
}

type bookingQueriesImpl struct {
	store        BookingReadStore
	blocks       BlockSource
	availability AvailabilityChecker
	pricer       PriceComputer
	clock        clock.Clock
	logger       *slog.Logger
}

func NewBookingQueries(
	store BookingReadStore,
	blocks BlockSource,
	availability AvailabilityChecker,
	pricer PriceComputer,
	clock clock.Clock,
	logger *slog.Logger,
) BookingQueries {
	return &bookingQueriesImpl{
		store:        store,
		blocks:       blocks,
		availability: availability,
		pricer:       pricer,
		clock:        clock,
		logger:       logger,
	}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStorage)
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListBlockedRanges(ctx context.Context, query BlockedRangeQuery) ([]BlockedRangeView, error) {
	today := clock.Today(q.clock)

	bookings, err := q.store.ListActiveEndingAfter(ctx, today)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStorage)
	}
	blocks := q.blocks.Blocks(ctx)

	ranges := make([]BlockedRangeView, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		ranges = append(ranges, BlockedRangeView{
			Start:  b.StartDate,
			End:    b.EndDate,
			Source: SourceBooking,
			Label:  bookedLabel,
		})
	}
	for _, b := range blocks {
		if !b.End.After(today) {
			continue
		}
		ranges = append(ranges, BlockedRangeView{
			Start:  b.Start,
			End:    b.End,
			Source: SourceCalendar,
			Label:  b.Summary,
		})
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].Start.Equal(ranges[j].Start) {
			return ranges[i].End.Before(ranges[j].End)
		}
		return ranges[i].Start.Before(ranges[j].Start)
	})
	if query.Merged {
		return mergeBlockedRanges(ranges), nil
	}
	return ranges, nil
}

// mergeBlockedRanges coalesces overlapping or touching ranges. A merged range keeps the source and
// label of its parts only when they all agree.
func mergeBlockedRanges(ranges []BlockedRangeView) []BlockedRangeView {
	spans := make([]stay.Span, len(ranges))
	for i, r := range ranges {
		spans[i] = stay.Span{Start: r.Start, End: r.End}
	}

	merged := stay.MergeSpans(spans)
	views := make([]BlockedRangeView, 0, len(merged))
	for _, span := range merged {
		view := BlockedRangeView{Start: span.Start, End: span.End}
		seen := false
		for _, r := range ranges {
			if r.Start.Before(span.Start) || r.End.After(span.End) {
				continue
			}
			if !seen {
				view.Source, view.Label = r.Source, r.Label
				seen = true
				continue
			}
			if r.Source != view.Source {
				view.Source = SourceMixed
			}
			if r.Label != view.Label {
				view.Label = unavailableLabel
			}
		}
		views = append(views, view)
	}
	return views
}

func (q *bookingQueriesImpl) CheckAvailability(ctx context.Context, r stay.Range) (*AvailabilityView, error) {
	available, err := q.availability.IsAvailable(ctx, r, nil)
	if err != nil {
		return nil, err
	}
	return &AvailabilityView{
		StartDate: r.Start(),
		EndDate:   r.End(),
		Available: available,
	}, nil
}

// CalculatePrice quotes from synced rates only. Nights without a rate fail with ErrNoRatesAvailable.
func (q *bookingQueriesImpl) CalculatePrice(ctx context.Context, r stay.Range) (*QuoteView, error) {
	quote, err := q.pricer.ComputePrice(ctx, r, nil)
	if err != nil {
		return nil, err
	}
	return toQuoteView(r, quote), nil
}

func toQuoteView(r stay.Range, quote rate.Quote) *QuoteView {
	breakdown := make([]NightlyPriceView, len(quote.Breakdown))
	for i, night := range quote.Breakdown {
		breakdown[i] = NightlyPriceView{
			Date:     night.Date,
			Price:    night.Price.StringFixed(2),
			Fallback: night.Fallback,
		}
	}
	return &QuoteView{
		StartDate:           r.Start(),
		EndDate:             r.End(),
		Nights:              quote.Nights,
		NightlyAverageCents: quote.NightlyAverage.Cents(),
		SubtotalCents:       quote.Subtotal.Cents(),
		CleaningFeeCents:    quote.CleaningFee.Cents(),
		TotalCents:          quote.Total.Cents(),
		MinimumStay:         quote.MinimumStay,
		FallbackUsed:        quote.FallbackUsed,
		Breakdown:           breakdown,
	}
}
