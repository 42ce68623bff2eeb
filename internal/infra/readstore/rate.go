package readstore

import (
	"context"

	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/infra"
	sqlc "rental-backend/internal/infra/sqlc/generated"
	"rental-backend/internal/pkg/pgconv"
)

type RateReadQueries interface {
	ListDailyRatesInRange(ctx context.Context, db sqlc.DBTX, arg sqlc.ListDailyRatesInRangeParams) ([]sqlc.DailyRate, error)
}

type RateReadStore struct {
	queries RateReadQueries
	db      sqlc.DBTX
}

func NewRateReadStore(queries RateReadQueries, db sqlc.DBTX) *RateReadStore {
	return &RateReadStore{
		queries: queries,
		db:      db,
	}
}

// ListInRange returns rates for [start, end) ordered by date.
func (r *RateReadStore) ListInRange(ctx context.Context, rng stay.Range) ([]rate.DailyRate, error) {
	params := sqlc.ListDailyRatesInRangeParams{
		RangeStart: pgconv.DateToPgtype(rng.Start()),
		RangeEnd:   pgconv.DateToPgtype(rng.End()),
	}

	rows, err := r.queries.ListDailyRatesInRange(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list daily rates", err)
	}

	result := make([]rate.DailyRate, 0, len(rows))
	for _, row := range rows {
		price, err := pgconv.DecimalFromNumeric(row.Price)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid daily rate price", err)
		}
		result = append(result, rate.DailyRate{
			Date:    pgconv.DateFromPgtype(row.Date),
			Price:   price,
			MinStay: pgconv.IntPtrFromPgtype(row.MinStay),
		})
	}
	return result, nil
}
