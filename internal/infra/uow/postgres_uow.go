package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/infra/readstore"
	"rental-backend/internal/infra/repository"
	sqlc "rental-backend/internal/infra/sqlc/generated"
	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

// retryPolicy governs replays of transactions aborted by serialization failures or deadlocks.
// Exclusion violations on bookings are never replayed: they are the overlap verdict.
type retryPolicy struct {
	maxRetries int
	base       time.Duration
}

var defaultRetryPolicy = retryPolicy{maxRetries: 3, base: 100 * time.Millisecond}

func (p retryPolicy) retryable(err error, attempt int) bool {
	if attempt >= p.maxRetries {
		return false
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// backoff doubles per attempt with up to 20% jitter.
func (p retryPolicy) backoff(attempt int) time.Duration {
	wait := time.Duration(1<<attempt) * p.base
	return wait + time.Duration(jitter(int64(wait/5)))
}

func jitter(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// #nosec G115 -- high bit masked
	return int64(binary.BigEndian.Uint64(buf[:])&0x7FFFFFFFFFFFFFFF) % n
}

type PostgresUoW struct {
	pool   *pgxpool.Pool
	q      *sqlc.Queries
	logger *slog.Logger
	retry  retryPolicy
}

func NewPostgresUoW(pool *pgxpool.Pool, q *sqlc.Queries, logger *slog.Logger) shared.UnitOfWork {
	return &PostgresUoW{
		pool:   pool,
		q:      q,
		logger: logger,
		retry:  defaultRetryPolicy,
	}
}

// Within runs fn in a read committed transaction. The bookings exclusion constraint, not the
// isolation level, is what keeps two holds on the same nights from both committing.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	for attempt := 0; ; attempt++ {
		err := u.attempt(ctx, opts, fn)
		if err == nil {
			return nil
		}
		if !u.retry.retryable(err, attempt) {
			if attempt == u.retry.maxRetries {
				u.logger.Error("transaction failed after max retries", "attempts", attempt+1, "error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		wait := u.retry.backoff(attempt)
		u.logger.Warn("retrying transaction",
			"attempt", attempt+1,
			"wait_ms", wait.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// attempt owns one pgx transaction so a retry never stacks deferred rollbacks.
func (u *PostgresUoW) attempt(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, opts)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}
	defer func() {
		if rbErr := pgxTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			u.logger.Warn("rollback failed", "error", rbErr.Error())
		}
	}()

	if err := fn(ctx, &pgTx{dbtx: pgxTx, uow: u}); err != nil {
		return err
	}
	if err := pgxTx.Commit(ctx); err != nil {
		return errs.Mark(err, errTransactionCommit)
	}
	return nil
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{q: u.q, dbtx: u.pool}
}

type pgTx struct {
	dbtx sqlc.DBTX
	uow  *PostgresUoW

	bookings      shared.BookingRepository
	rates         shared.RateRepository
	notifications shared.NotificationRepository
	reads         shared.CommandReads
}

func (t *pgTx) DB() sqlc.DBTX {
	return t.dbtx
}

func (t *pgTx) Bookings() shared.BookingRepository {
	if t.bookings == nil {
		t.bookings = repository.NewBookingRepository(t.uow.q, t.dbtx)
	}
	return t.bookings
}

func (t *pgTx) Rates() shared.RateRepository {
	if t.rates == nil {
		t.rates = repository.NewRateRepository(t.uow.q, t.dbtx)
	}
	return t.rates
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notifications == nil {
		t.notifications = repository.NewNotificationRepository(t.uow.q, t.dbtx)
	}
	return t.notifications
}

// Reads sees the transaction's own uncommitted writes.
func (t *pgTx) Reads() shared.CommandReads {
	if t.reads == nil {
		t.reads = &commandReads{q: t.uow.q, dbtx: t.dbtx}
	}
	return t.reads
}

type commandReads struct {
	q    *sqlc.Queries
	dbtx sqlc.DBTX

	bookingStore *readstore.BookingReadStore
	rateStore    *readstore.RateReadStore
}

func (r *commandReads) bookingReads() *readstore.BookingReadStore {
	if r.bookingStore == nil {
		r.bookingStore = readstore.NewBookingReadStore(r.q, r.dbtx)
	}
	return r.bookingStore
}

func (r *commandReads) BookingByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	return r.bookingReads().SnapshotByID(ctx, id)
}

func (r *commandReads) BookingExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.bookingReads().Exists(ctx, id)
}

func (r *commandReads) CountOverlappingBookings(ctx context.Context, rng stay.Range, excludeID *uuid.UUID) (int64, error) {
	return r.bookingReads().CountOverlapping(ctx, rng, excludeID)
}

func (r *commandReads) RatesForRange(ctx context.Context, rng stay.Range) ([]rate.DailyRate, error) {
	if r.rateStore == nil {
		r.rateStore = readstore.NewRateReadStore(r.q, r.dbtx)
	}
	return r.rateStore.ListInRange(ctx, rng)
}
