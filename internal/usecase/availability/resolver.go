package availability

import (
	"context"
	"log/slog"
	"time"

	"rental-backend/internal/domain/stay"
	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

type BlockChecker interface {
	CheckOverlap(ctx context.Context, start, end time.Time) bool
}

// Resolver answers whether a stay is free in both the local bookings and the external calendar.
type Resolver struct {
	uow    shared.UnitOfWork
	blocks BlockChecker
	logger *slog.Logger
}

func NewResolver(uow shared.UnitOfWork, blocks BlockChecker, logger *slog.Logger) *Resolver {
	return &Resolver{
		uow:    uow,
		blocks: blocks,
		logger: logger,
	}
}

// IsAvailable ignores excludeID among local bookings. A failed read is an error, never a yes.
func (r *Resolver) IsAvailable(ctx context.Context, rng stay.Range, excludeID *uuid.UUID) (bool, error) {
	if rng.IsZero() {
		return false, errs.Mark(stay.ErrInvalidRange, errs.ErrValidation)
	}

	count, err := r.uow.CommandReads().CountOverlappingBookings(ctx, rng, excludeID)
	if err != nil {
		r.logger.Error("availability check failed", "stay", rng.String(), "error", err.Error())
		return false, errs.Mark(err, errs.ErrStorage)
	}
	if count > 0 {
		r.logger.Debug("stay overlaps local booking", "stay", rng.String(), "count", count)
		return false, nil
	}

	if r.blocks.CheckOverlap(ctx, rng.Start(), rng.End()) {
		r.logger.Debug("stay overlaps calendar block", "stay", rng.String())
		return false, nil
	}
	return true, nil
}
