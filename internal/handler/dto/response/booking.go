package response

import (
	"time"

	"rental-backend/internal/domain/stay"
	"rental-backend/internal/usecase/commands"
	"rental-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CreateBookingResponse struct {
	BookingID uuid.UUID `json:"bookingId"`
}

type CheckoutResponse struct {
	SessionID  string `json:"sessionId"`
	URL        string `json:"url"`
	TotalCents int64  `json:"totalCents"`
}

func FromCheckoutResult(r *commands.CheckoutResult) *CheckoutResponse {
	return &CheckoutResponse{
		SessionID:  r.SessionID,
		URL:        r.URL,
		TotalCents: r.Total.Cents(),
	}
}

type BookingResponse struct {
	ID                uuid.UUID `json:"id"`
	StartDate         string    `json:"startDate"`
	EndDate           string    `json:"endDate"`
	Nights            int       `json:"nights"`
	TotalPriceCents   int64     `json:"totalPriceCents"`
	Status            string    `json:"status"`
	PaymentSessionRef *string   `json:"paymentSessionRef,omitempty"`
	PartySize         *int      `json:"partySize,omitempty"`
	GuestName         *string   `json:"guestName,omitempty"`
	GuestEmail        *string   `json:"guestEmail,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type BlockedRangeResponse struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Source string `json:"source"`
	Label  string `json:"label"`
}

type AvailabilityResponse struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Available bool   `json:"available"`
}

type NightlyPriceResponse struct {
	Date     string `json:"date"`
	Price    string `json:"price"`
	Fallback bool   `json:"fallback"`
}

type QuoteResponse struct {
	StartDate           string                 `json:"startDate"`
	EndDate             string                 `json:"endDate"`
	Nights              int                    `json:"nights"`
	NightlyAverageCents int64                  `json:"nightlyAverageCents"`
	SubtotalCents       int64                  `json:"subtotalCents"`
	CleaningFeeCents    int64                  `json:"cleaningFeeCents"`
	TotalCents          int64                  `json:"totalCents"`
	MinimumStay         *int                   `json:"minimumStay,omitempty"`
	FallbackUsed        bool                   `json:"fallbackUsed"`
	Breakdown           []NightlyPriceResponse `json:"breakdown"`
}

// Read-model timestamps that mark a calendar date render as YYYY-MM-DD, anything else as RFC 3339.
var copyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				t, _ := src.(time.Time)
				return formatDate(t), nil
			},
		},
		{
			SrcType: queries.BlockedRangeSource(""),
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				s, _ := src.(queries.BlockedRangeSource)
				return string(s), nil
			},
		},
	},
}

func formatDate(t time.Time) string {
	if t.Equal(stay.Date(t)) {
		return t.UTC().Format(stay.DateLayout)
	}
	return t.UTC().Format(time.RFC3339)
}

func FromBookingView(v *queries.BookingView) (*BookingResponse, error) {
	var res BookingResponse
	if err := copier.CopyWithOption(&res, v, copyOption); err != nil {
		return nil, err
	}
	return &res, nil
}

func FromBlockedRanges(views []queries.BlockedRangeView) ([]BlockedRangeResponse, error) {
	var res []BlockedRangeResponse
	if err := copier.CopyWithOption(&res, views, copyOption); err != nil {
		return nil, err
	}
	if res == nil {
		res = []BlockedRangeResponse{}
	}
	return res, nil
}

func FromAvailabilityView(v *queries.AvailabilityView) (*AvailabilityResponse, error) {
	var res AvailabilityResponse
	if err := copier.CopyWithOption(&res, v, copyOption); err != nil {
		return nil, err
	}
	return &res, nil
}

func FromQuoteView(v *queries.QuoteView) (*QuoteResponse, error) {
	var res QuoteResponse
	if err := copier.CopyWithOption(&res, v, copyOption); err != nil {
		return nil, err
	}
	if res.Breakdown == nil {
		res.Breakdown = []NightlyPriceResponse{}
	}
	return &res, nil
}

type HealthResponse struct {
	Status           string  `json:"status"`
	Message          string  `json:"message"`
	CalendarSyncedAt *string `json:"calendarSyncedAt,omitempty"`
}

func NewHealthResponse(calendarSyncedAt time.Time) HealthResponse {
	res := HealthResponse{Status: "ok", Message: "Service is healthy"}
	if !calendarSyncedAt.IsZero() {
		synced := calendarSyncedAt.UTC().Format(time.RFC3339)
		res.CalendarSyncedAt = &synced
	}
	return res
}
