package booking

import (
	"errors"
	"math"
	"net/mail"
	"strconv"
	"strings"
)

var (
	ErrNegativeMoney     = errors.New("money cannot be negative")
	ErrMoneyOverflow     = errors.New("money amount out of range")
	ErrInvalidPartySize  = errors.New("party size must be positive")
	ErrInvalidGuestEmail = errors.New("invalid guest email")
)

// Money is an amount in minor currency units.
type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeMoney
	}
	return Money{cents: cents}, nil
}

func MustMoney(cents int64) Money {
	m, err := NewMoney(cents)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) (Money, error) {
	if other.cents > math.MaxInt64-m.cents {
		return Money{}, ErrMoneyOverflow
	}
	return Money{cents: m.cents + other.cents}, nil
}

func (m Money) Times(n int) (Money, error) {
	if n < 0 {
		return Money{}, ErrNegativeMoney
	}
	if n > 0 && m.cents > math.MaxInt64/int64(n) {
		return Money{}, ErrMoneyOverflow
	}
	return Money{cents: m.cents * int64(n)}, nil
}

func (m Money) IsZero() bool {
	return m.cents == 0
}

// Guest holds optional guest metadata. Nil fields are unknown.
type Guest struct {
	PartySize *int
	Name      *string
	Email     *string
}

func NewGuest(partySize *int, name, email *string) (Guest, error) {
	if partySize != nil && *partySize <= 0 {
		return Guest{}, ErrInvalidPartySize
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}
	if email != nil {
		trimmed := strings.TrimSpace(*email)
		if trimmed == "" {
			email = nil
		} else {
			if _, err := mail.ParseAddress(trimmed); err != nil {
				return Guest{}, ErrInvalidGuestEmail
			}
			email = &trimmed
		}
	}
	return Guest{PartySize: partySize, Name: name, Email: email}, nil
}

// Merge overlays the non-nil fields of other onto g.
func (g Guest) Merge(other Guest) Guest {
	merged := g
	if other.PartySize != nil {
		merged.PartySize = other.PartySize
	}
	if other.Name != nil {
		merged.Name = other.Name
	}
	if other.Email != nil {
		merged.Email = other.Email
	}
	return merged
}

func (g Guest) IsEmpty() bool {
	return g.PartySize == nil && g.Name == nil && g.Email == nil
}

// Attributes renders the guest as opaque string metadata for the payment gateway.
func (g Guest) Attributes() map[string]string {
	attrs := map[string]string{}
	if g.PartySize != nil {
		attrs["partySize"] = strconv.Itoa(*g.PartySize)
	}
	if g.Name != nil {
		attrs["guestName"] = *g.Name
	}
	if g.Email != nil {
		attrs["guestEmail"] = *g.Email
	}
	return attrs
}
