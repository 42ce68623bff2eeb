package calendar

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"rental-backend/internal/domain/calendar"
	"rental-backend/internal/pkg/clock"
	"rental-backend/internal/pkg/errs"

	"golang.org/x/sync/singleflight"
)

const (
	refreshKey = "calendar-refresh"

	// failureBackoff is how long readers skip the lazy populate after it failed.
	failureBackoff = time.Minute
)

type FeedSource interface {
	Enabled() bool
	Fetch(ctx context.Context) ([]calendar.Block, error)
}

type snapshot struct {
	blocks    []calendar.Block
	fetchedAt time.Time
}

// BlockCache holds the most recent successfully parsed feed. Readers never observe a partial list.
type BlockCache struct {
	source       FeedSource
	fetchTimeout time.Duration
	clock        clock.Clock
	logger       *slog.Logger

	current  atomic.Pointer[snapshot]
	failedAt atomic.Pointer[time.Time]
	group    singleflight.Group
}

func NewBlockCache(source FeedSource, fetchTimeout time.Duration, clk clock.Clock, logger *slog.Logger) *BlockCache {
	return &BlockCache{
		source:       source,
		fetchTimeout: fetchTimeout,
		clock:        clk,
		logger:       logger,
	}
}

// Refresh replaces the snapshot. On failure the previous snapshot stays in place.
func (c *BlockCache) Refresh(ctx context.Context) error {
	if !c.source.Enabled() {
		c.logger.Warn("calendar feed url not configured, skipping refresh")
		return nil
	}

	_, err, _ := c.group.Do(refreshKey, func() (any, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *BlockCache) refresh(ctx context.Context) error {
	blocks, err := c.source.Fetch(ctx)
	if err != nil {
		c.logger.Error("calendar refresh failed, keeping previous blocks",
			"cached_blocks", len(c.load().blocks),
			"error", err.Error())
		now := c.clock.Now()
		c.failedAt.Store(&now)
		return errs.Mark(err, errs.ErrUpstreamSync)
	}

	c.current.Store(&snapshot{blocks: blocks, fetchedAt: c.clock.Now()})
	c.failedAt.Store(nil)
	c.logger.Info("calendar blocks refreshed", "count", len(blocks))
	return nil
}

// Blocks returns the current snapshot. Before the first success it starts a populate that outlives
// the caller and waits for it until ctx is done. Within failureBackoff of a failed attempt it
// returns the empty list at once.
func (c *BlockCache) Blocks(ctx context.Context) []calendar.Block {
	if snap := c.current.Load(); snap != nil {
		return snap.blocks
	}
	if !c.source.Enabled() || c.backingOff() {
		return nil
	}

	// Errors are logged by refresh; an empty list is served until a refresh succeeds.
	done := c.group.DoChan(refreshKey, func() (any, error) {
		fetchCtx, cancel := c.detached(ctx)
		defer cancel()
		return nil, c.refresh(fetchCtx)
	})
	select {
	case <-done:
	case <-ctx.Done():
	}

	return c.load().blocks
}

func (c *BlockCache) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if c.fetchTimeout > 0 {
		return context.WithTimeout(ctx, c.fetchTimeout)
	}
	return context.WithCancel(ctx)
}

func (c *BlockCache) backingOff() bool {
	failed := c.failedAt.Load()
	return failed != nil && c.clock.Now().Sub(*failed) < failureBackoff
}

func (c *BlockCache) CheckOverlap(ctx context.Context, start, end time.Time) bool {
	return calendar.AnyOverlap(c.Blocks(ctx), start, end)
}

// LastRefreshed reports when the snapshot was taken; zero before the first success.
func (c *BlockCache) LastRefreshed() time.Time {
	return c.load().fetchedAt
}

func (c *BlockCache) load() *snapshot {
	if snap := c.current.Load(); snap != nil {
		return snap
	}
	return &snapshot{}
}
