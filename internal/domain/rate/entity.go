package rate

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingDate    = errors.New("rate date is required")
	ErrInvalidPrice   = errors.New("rate price must be positive")
	ErrPriceTooHigh   = errors.New("rate price exceeds the nightly ceiling")
	ErrInvalidMinStay = errors.New("minimum stay must be at least one night")
	ErrMinimumStay    = errors.New("minimum stay not met")
	ErrNoRates        = errors.New("no rates cover the stay")
	ErrInvalidStay    = errors.New("stay must span at least one night")
)

// MaxNightlyPrice bounds a single synced night in major units.
var MaxNightlyPrice = decimal.New(1, 9)

// DailyRate is the synced price of a single night, in major currency units.
type DailyRate struct {
	Date    time.Time
	Price   decimal.Decimal
	MinStay *int
}

func NewDailyRate(date time.Time, price decimal.Decimal, minStay *int) (DailyRate, error) {
	if date.IsZero() {
		return DailyRate{}, ErrMissingDate
	}
	if !price.IsPositive() {
		return DailyRate{}, ErrInvalidPrice
	}
	if price.GreaterThan(MaxNightlyPrice) {
		return DailyRate{}, ErrPriceTooHigh
	}
	if minStay != nil && *minStay < 1 {
		return DailyRate{}, ErrInvalidMinStay
	}
	return DailyRate{
		Date:    time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Price:   price,
		MinStay: minStay,
	}, nil
}

// MinimumStayError carries the minimum the first night of the stay requires.
type MinimumStayError struct {
	Required int
	Nights   int
}

func (e *MinimumStayError) Error() string {
	return "minimum stay not met"
}

func (e *MinimumStayError) Unwrap() error {
	return ErrMinimumStay
}
