package calendarfeed

import (
	"strings"
	"time"

	"rental-backend/internal/pkg/errs"
)

// maxDurationDigits keeps every component of a duration inside time.Duration.
const maxDurationDigits = 6

var ErrInvalidDuration = errs.New("calendar event DURATION is malformed")

// parseDuration reads an RFC 5545 dur-value such as P3D, P1W or P1DT12H. Weeks and days come
// back as calendar days, the time part as a clock duration.
func parseDuration(value string) (int, time.Duration, error) {
	s := strings.TrimPrefix(strings.TrimSpace(value), "+")
	if !strings.HasPrefix(s, "P") {
		return 0, 0, errs.Wrapf(ErrInvalidDuration, "%q", value)
	}

	var (
		days   int
		clock  time.Duration
		n      int
		digits int
		inTime bool
		parts  int
	)
	for _, ch := range s[1:] {
		switch {
		case ch >= '0' && ch <= '9':
			if digits == maxDurationDigits {
				return 0, 0, errs.Wrapf(ErrInvalidDuration, "%q is too long", value)
			}
			n = n*10 + int(ch-'0')
			digits++
			continue
		case ch == 'T' && !inTime && digits == 0:
			inTime = true
			continue
		}
		if digits == 0 {
			return 0, 0, errs.Wrapf(ErrInvalidDuration, "%q", value)
		}

		switch {
		case !inTime && ch == 'W':
			days += 7 * n
		case !inTime && ch == 'D':
			days += n
		case inTime && ch == 'H':
			clock += time.Duration(n) * time.Hour
		case inTime && ch == 'M':
			clock += time.Duration(n) * time.Minute
		case inTime && ch == 'S':
			clock += time.Duration(n) * time.Second
		default:
			return 0, 0, errs.Wrapf(ErrInvalidDuration, "%q", value)
		}
		n, digits = 0, 0
		parts++
	}
	if digits != 0 || parts == 0 {
		return 0, 0, errs.Wrapf(ErrInvalidDuration, "%q", value)
	}
	return days, clock, nil
}
