//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// inserts a booking row directly, bypassing the availability check
func CreateTestBooking(t *testing.T, db DBLike, start, end time.Time, status string) uuid.UUID {
	t.Helper()

	nights := int64(end.Sub(start).Hours() / 24)
	var id uuid.UUID
	err := db.QueryRow(context.Background(), `
		INSERT INTO bookings (start_date, end_date, flat_rate_cents, total_price_cents, status)
		VALUES ($1, $2, 10000, $3, $4)
		RETURNING id`,
		start, end, nights*10000, status).Scan(&id)
	require.NoError(t, err)
	return id
}

// upserts one rate per night starting at from
func SeedDailyRates(t *testing.T, db DBLike, from time.Time, prices []string, minStay *int) {
	t.Helper()

	ctx := context.Background()
	for i, p := range prices {
		price, err := decimal.NewFromString(p)
		require.NoError(t, err)
		_, err = db.Exec(ctx, `
			INSERT INTO daily_rates (date, price, min_stay) VALUES ($1, $2::text::numeric, $3)
			ON CONFLICT (date) DO UPDATE SET price = EXCLUDED.price, min_stay = EXCLUDED.min_stay`,
			from.AddDate(0, 0, i), price.String(), minStay)
		require.NoError(t, err)
	}
}

func CountNotificationJobs(t *testing.T, db DBLike, kind string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM notification_jobs WHERE kind = $1", kind).Scan(&n)
	require.NoError(t, err)
	return n
}

// inserts reference data needed by tests; the schema currently has none
func SeedReferenceData(_ *pgxpool.Pool) error {
	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations', 'atlas_schema_revisions')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
