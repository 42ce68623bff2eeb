//go:build unit

package stay_test

import (
	"testing"
	"time"

	"rental-backend/internal/domain/stay"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(stay.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustRange(t *testing.T, start, end string) stay.Range {
	t.Helper()
	r, err := stay.Parse(start, end)
	require.NoError(t, err)
	return r
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name  string
		start string
		end   string
		errIs error
	}{
		{name: "valid range", start: "2025-06-01", end: "2025-06-05"},
		{name: "single night", start: "2025-06-01", end: "2025-06-02"},
		{name: "end equals start", start: "2025-06-01", end: "2025-06-01", errIs: stay.ErrInvalidRange},
		{name: "end before start", start: "2025-06-05", end: "2025-06-01", errIs: stay.ErrInvalidRange},
		{name: "malformed start", start: "06/01/2025", end: "2025-06-05", errIs: stay.ErrInvalidDate},
		{name: "malformed end", start: "2025-06-01", end: "", errIs: stay.ErrInvalidDate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := stay.Parse(tc.start, tc.end)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				assert.True(t, r.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, date(tc.start), r.Start())
			assert.Equal(t, date(tc.end), r.End())
		})
	}
}

func TestNights(t *testing.T) {
	testCases := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{name: "four nights", start: "2025-06-01", end: "2025-06-05", expected: 4},
		{name: "across new year", start: "2025-12-31", end: "2026-01-01", expected: 1},
		{name: "across DST change", start: "2025-03-08", end: "2025-03-10", expected: 2},
		{name: "leap day", start: "2024-02-28", end: "2024-03-01", expected: 2},
		{name: "longer than time.Duration can hold", start: "1000-01-01", end: "9999-12-31", expected: 3287181},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, mustRange(t, tc.start, tc.end).Nights())
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := mustRange(t, "2025-06-01", "2025-06-05")

	testCases := []struct {
		name     string
		other    stay.Range
		expected bool
	}{
		{name: "partial overlap at tail", other: mustRange(t, "2025-06-04", "2025-06-10"), expected: true},
		{name: "back-to-back checkout day", other: mustRange(t, "2025-06-05", "2025-06-10"), expected: false},
		{name: "back-to-back checkin day", other: mustRange(t, "2025-05-28", "2025-06-01"), expected: false},
		{name: "contained", other: mustRange(t, "2025-06-02", "2025-06-03"), expected: true},
		{name: "containing", other: mustRange(t, "2025-05-01", "2025-07-01"), expected: true},
		{name: "identical", other: mustRange(t, "2025-06-01", "2025-06-05"), expected: true},
		{name: "disjoint", other: mustRange(t, "2025-07-01", "2025-07-05"), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, base.Overlaps(tc.other))
			assert.Equal(t, tc.expected, tc.other.Overlaps(base), "predicate must be symmetric")
			assert.Equal(t, tc.expected, stay.Overlaps(base.Start(), base.End(), tc.other.Start(), tc.other.End()))
		})
	}
}

func TestOverlaps_SubDaySpans(t *testing.T) {
	r := mustRange(t, "2025-06-01", "2025-06-05")

	// a block ending at 15:00 on check-in day still touches the first night
	assert.True(t, stay.Overlaps(r.Start(), r.End(), date("2025-05-31").Add(12*time.Hour), date("2025-06-01").Add(15*time.Hour)))
	assert.False(t, stay.Overlaps(r.Start(), r.End(), date("2025-05-31"), date("2025-06-01")))
}

func TestDates(t *testing.T) {
	r := mustRange(t, "2025-12-01", "2025-12-03")
	expected := []time.Time{date("2025-12-01"), date("2025-12-02")}
	if diff := cmp.Diff(expected, r.Dates()); diff != "" {
		t.Errorf("Dates() mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_NormalizesToDates(t *testing.T) {
	r, err := stay.New(date("2025-06-01").Add(15*time.Hour), date("2025-06-03").Add(11*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, date("2025-06-01"), r.Start())
	assert.Equal(t, date("2025-06-03"), r.End())
	assert.Equal(t, "[2025-06-01,2025-06-03)", r.String())
}

func TestMergeSpans(t *testing.T) {
	spans := []stay.Span{
		{Start: date("2025-06-10"), End: date("2025-06-12")},
		{Start: date("2025-06-01"), End: date("2025-06-05")},
		{Start: date("2025-06-05"), End: date("2025-06-07")},
		{Start: date("2025-06-03"), End: date("2025-06-04")},
	}

	expected := []stay.Span{
		{Start: date("2025-06-01"), End: date("2025-06-07")},
		{Start: date("2025-06-10"), End: date("2025-06-12")},
	}
	if diff := cmp.Diff(expected, stay.MergeSpans(spans)); diff != "" {
		t.Errorf("MergeSpans() mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, stay.MergeSpans(nil))
}
