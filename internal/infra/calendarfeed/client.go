package calendarfeed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rental-backend/internal/domain/calendar"
	"rental-backend/internal/pkg/errs"

	ics "github.com/arran4/golang-ical"
)

const maxFeedBytes = 10 << 20

const durationProperty = ics.ComponentProperty("DURATION")

var (
	ErrFeedDisabled = errs.New("calendar feed url is not configured")
	ErrFeedStatus   = errs.New("calendar feed returned non-success status")
	ErrFeedParse    = errs.New("calendar feed could not be parsed")
)

type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) Enabled() bool {
	return c.url != ""
}

// Fetch downloads the feed and returns one block per VEVENT.
func (c *Client) Fetch(ctx context.Context) ([]calendar.Block, error) {
	if !c.Enabled() {
		return nil, ErrFeedDisabled
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build calendar feed request")
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "fetch calendar feed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.Mark(errs.Newf("calendar feed status %d", resp.StatusCode), ErrFeedStatus)
	}

	return c.Parse(io.LimitReader(resp.Body, maxFeedBytes))
}

func (c *Client) Parse(r io.Reader) ([]calendar.Block, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, errs.Mark(err, ErrFeedParse)
	}

	events := cal.Events()
	blocks := make([]calendar.Block, 0, len(events))
	for _, ev := range events {
		start, end, err := eventBounds(ev)
		if err != nil {
			c.logger.Warn("skipping calendar event", "uid", ev.Id(), "error", err.Error())
			continue
		}
		blocks = append(blocks, calendar.NewBlock(ev.Id(), propertyValue(ev, ics.ComponentPropertySummary), start, end))
	}
	return blocks, nil
}

func eventBounds(ev *ics.VEvent) (time.Time, time.Time, error) {
	allDay := isDateValue(ev.GetProperty(ics.ComponentPropertyDtStart))

	var (
		start time.Time
		err   error
	)
	if allDay {
		start, err = ev.GetAllDayStartAt()
	} else {
		start, err = ev.GetStartAt()
	}
	if err != nil {
		return time.Time{}, time.Time{}, errs.Wrap(err, "invalid DTSTART")
	}
	if allDay {
		start = utcDate(start)
	}

	endProp := ev.GetProperty(ics.ComponentPropertyDtEnd)
	if endProp == nil {
		if durProp := ev.GetProperty(durationProperty); durProp != nil {
			days, clock, err := parseDuration(durProp.Value)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			return start, start.AddDate(0, 0, days).Add(clock), nil
		}
		// RFC 5545: a date-valued event without DTEND lasts one day
		if allDay {
			return start, start.AddDate(0, 0, 1), nil
		}
		return start, start, nil
	}

	var end time.Time
	if isDateValue(endProp) {
		end, err = ev.GetAllDayEndAt()
		end = utcDate(end)
	} else {
		end, err = ev.GetEndAt()
	}
	if err != nil {
		return time.Time{}, time.Time{}, errs.Wrap(err, "invalid DTEND")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errs.Newf("DTEND %s before DTSTART %s", end, start)
	}
	return start, end, nil
}

func isDateValue(prop *ics.IANAProperty) bool {
	if prop == nil {
		return false
	}
	for _, v := range prop.ICalParameters[string(ics.ParameterValue)] {
		if strings.EqualFold(v, "DATE") {
			return true
		}
	}
	return len(strings.TrimSpace(prop.Value)) == len("20060102")
}

func propertyValue(ev *ics.VEvent, p ics.ComponentProperty) string {
	if prop := ev.GetProperty(p); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}

func utcDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
