package rate

import (
	"math"
	"time"

	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/stay"

	"github.com/shopspring/decimal"
)

var (
	minorUnitsPerMajor = decimal.NewFromInt(100)
	maxMinorUnits      = decimal.NewFromInt(math.MaxInt64)
)

type NightlyPrice struct {
	Date     time.Time
	Price    decimal.Decimal
	Fallback bool
}

// Quote is a priced stay. All Money fields are minor units.
type Quote struct {
	Nights         int
	NightlyAverage booking.Money
	Subtotal       booking.Money
	CleaningFee    booking.Money
	Total          booking.Money
	MinimumStay    *int
	FallbackUsed   bool
	Breakdown      []NightlyPrice
}

type PriceCalculator interface {
	Calculate(r stay.Range, rates []DailyRate, fallback *booking.Money) (Quote, error)
}

type DefaultPriceCalculator struct {
	CleaningFee booking.Money
}

func NewDefaultPriceCalculator(cleaningFee booking.Money) *DefaultPriceCalculator {
	return &DefaultPriceCalculator{CleaningFee: cleaningFee}
}

// Calculate prices every night of r from rates. The minimum stay of the first night governs the
// whole stay. Nights without a rate row are priced at fallback; with no fallback they fail with ErrNoRates.
func (pc *DefaultPriceCalculator) Calculate(r stay.Range, rates []DailyRate, fallback *booking.Money) (Quote, error) {
	nights := r.Nights()
	if r.IsZero() || nights <= 0 {
		return Quote{}, ErrInvalidStay
	}

	byDate := make(map[time.Time]DailyRate, len(rates))
	for _, dr := range rates {
		byDate[stay.Date(dr.Date)] = dr
	}

	var minStay *int
	if first, ok := byDate[r.Start()]; ok && first.MinStay != nil {
		minStay = first.MinStay
		if nights < *first.MinStay {
			return Quote{}, &MinimumStayError{Required: *first.MinStay, Nights: nights}
		}
	}

	var fallbackPrice decimal.Decimal
	if fallback != nil {
		fallbackPrice = decimal.New(fallback.Cents(), -2)
	}

	subtotal := decimal.Zero
	breakdown := make([]NightlyPrice, 0, nights)
	fallbackUsed := false
	for _, night := range r.Dates() {
		dr, ok := byDate[night]
		if !ok {
			if fallback == nil {
				return Quote{}, ErrNoRates
			}
			fallbackUsed = true
			subtotal = subtotal.Add(fallbackPrice)
			breakdown = append(breakdown, NightlyPrice{Date: night, Price: fallbackPrice, Fallback: true})
			continue
		}
		subtotal = subtotal.Add(dr.Price)
		breakdown = append(breakdown, NightlyPrice{Date: night, Price: dr.Price})
	}

	subtotalMoney, err := ToMinorUnits(subtotal)
	if err != nil {
		return Quote{}, err
	}
	total, err := subtotalMoney.Add(pc.CleaningFee)
	if err != nil {
		return Quote{}, err
	}
	average := decimal.NewFromInt(subtotalMoney.Cents()).Div(decimal.NewFromInt(int64(nights))).Round(0).IntPart()

	return Quote{
		Nights:         nights,
		NightlyAverage: booking.MustMoney(average),
		Subtotal:       subtotalMoney,
		CleaningFee:    pc.CleaningFee,
		Total:          total,
		MinimumStay:    minStay,
		FallbackUsed:   fallbackUsed,
		Breakdown:      breakdown,
	}, nil
}

// ToMinorUnits converts a major-unit amount such as a caller-supplied nightly rate. It rounds half
// away from zero exactly once and rejects amounts that do not fit in int64 minor units.
func ToMinorUnits(major decimal.Decimal) (booking.Money, error) {
	minor := major.Mul(minorUnitsPerMajor).Round(0)
	if minor.IsNegative() {
		return booking.Money{}, booking.ErrNegativeMoney
	}
	if minor.GreaterThan(maxMinorUnits) {
		return booking.Money{}, booking.ErrMoneyOverflow
	}
	return booking.NewMoney(minor.IntPart())
}
