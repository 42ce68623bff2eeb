package repository

import (
	"context"

	"rental-backend/internal/domain/rate"
	"rental-backend/internal/infra"
	sqlc "rental-backend/internal/infra/sqlc/generated"
	"rental-backend/internal/pkg/pgconv"
)

type RateWriteQueries interface {
	UpsertDailyRate(ctx context.Context, db sqlc.DBTX, arg sqlc.UpsertDailyRateParams) error
}

type RateRepository struct {
	queries RateWriteQueries
	db      sqlc.DBTX
}

func NewRateRepository(queries RateWriteQueries, db sqlc.DBTX) *RateRepository {
	return &RateRepository{
		queries: queries,
		db:      db,
	}
}

// Upsert replaces any existing row for the same date.
func (r *RateRepository) Upsert(ctx context.Context, tx sqlc.DBTX, dr rate.DailyRate) error {
	params := sqlc.UpsertDailyRateParams{
		Date:    pgconv.DateToPgtype(dr.Date),
		Price:   pgconv.DecimalToNumeric(dr.Price),
		MinStay: pgconv.IntPtrToPgtype(dr.MinStay),
	}

	if err := r.queries.UpsertDailyRate(ctx, tx, params); err != nil {
		return infra.WrapRepoErr("failed to upsert daily rate", err)
	}

	return nil
}
