package stay

import (
	"errors"
	"sort"
	"time"
)

const (
	DateLayout = "2006-01-02"

	secondsPerDay = 24 * 60 * 60
)

var (
	ErrInvalidRange = errors.New("stay: end date must be after start date")
	ErrInvalidDate  = errors.New("stay: date must be formatted as YYYY-MM-DD")
)

// Range is a half-open interval [Start, End) of calendar dates. The night of End is not part of the stay.
type Range struct {
	start time.Time
	end   time.Time
}

func New(start, end time.Time) (Range, error) {
	r := Range{start: Date(start), end: Date(end)}
	if start.IsZero() || end.IsZero() || !r.end.After(r.start) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

func Parse(start, end string) (Range, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, err
	}
	return New(s, e)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Date truncates t to its calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps is the single overlap predicate used for both local bookings and calendar blocks.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && endA.After(startB)
}

func (r Range) Start() time.Time { return r.start }
func (r Range) End() time.Time   { return r.end }

func (r Range) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

// Nights counts calendar days between the UTC-midnight bounds. Unix seconds do not saturate the way
// time.Duration does past roughly 292 years.
func (r Range) Nights() int {
	return int((r.end.Unix() - r.start.Unix()) / secondsPerDay)
}

func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.start, r.end, other.start, other.end)
}

// Dates lists every night of the stay in order.
func (r Range) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Nights())
	for d := r.start; d.Before(r.end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func (r Range) String() string {
	return "[" + r.start.Format(DateLayout) + "," + r.end.Format(DateLayout) + ")"
}

// Span is a blocked time interval that need not align to dates.
type Span struct {
	Start time.Time
	End   time.Time
}

// MergeSpans coalesces overlapping or touching spans. The input is not modified.
func MergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start.After(last.End) {
			merged = append(merged, s)
			continue
		}
		if s.End.After(last.End) {
			last.End = s.End
		}
	}
	return merged
}
