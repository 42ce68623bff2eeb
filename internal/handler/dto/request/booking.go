package request

import (
	"rental-backend/internal/domain/booking"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/usecase/commands"
	"rental-backend/internal/usecase/queries"

	"github.com/shopspring/decimal"
)

type CreateBookingRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Nights    int    `json:"nights" binding:"required,min=1"`
	// Rate is the nightly flat rate in major currency units, e.g. 150 or "150.50".
	Rate *decimal.Decimal `json:"rate" binding:"required"`
}

func (r CreateBookingRequest) ToInput() (commands.CreateBookingInput, error) {
	start, err := stay.ParseDate(r.StartDate)
	if err != nil {
		return commands.CreateBookingInput{}, err
	}
	end, err := stay.ParseDate(r.EndDate)
	if err != nil {
		return commands.CreateBookingInput{}, err
	}
	return commands.CreateBookingInput{
		StartDate: start,
		EndDate:   end,
		Nights:    r.Nights,
		Rate:      *r.Rate,
	}, nil
}

type CheckoutRequest struct {
	PartySize  *int    `json:"partySize,omitempty" binding:"omitempty,min=1,max=50"`
	GuestName  *string `json:"guestName,omitempty" binding:"omitempty,max=200"`
	GuestEmail *string `json:"guestEmail,omitempty" binding:"omitempty,max=320"`
}

// ToDomain returns nil when the caller supplied no guest details.
func (r CheckoutRequest) ToDomain() (*booking.Guest, error) {
	if r.PartySize == nil && r.GuestName == nil && r.GuestEmail == nil {
		return nil, nil
	}
	g, err := booking.NewGuest(r.PartySize, r.GuestName, r.GuestEmail)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

type StayQuery struct {
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
}

func (q StayQuery) ToRange() (stay.Range, error) {
	return stay.Parse(q.StartDate, q.EndDate)
}

type BlockedRangesQuery struct {
	Merged bool `form:"merged"`
}

func (q BlockedRangesQuery) ToQuery() queries.BlockedRangeQuery {
	return queries.BlockedRangeQuery{Merged: q.Merged}
}
