//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/handler/api"
	resdto "rental-backend/internal/handler/dto/response"
	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/queries"
	"rental-backend/tests/common/httptest"
	queriesmock "rental-backend/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

func day(s string) time.Time {
	t, err := stay.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

type StayQueryHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockQueries *queriesmock.MockBookingQueries
}

func (s *StayQueryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)

	availability := api.NewAvailabilityHandler(s.mockQueries)
	pricing := api.NewPricingHandler(s.mockQueries)
	s.router.GET("/api/availability", availability.Check)
	s.router.GET("/api/availability/blocked", availability.Blocked)
	s.router.GET("/api/pricing/quote", pricing.Quote)
}

func (s *StayQueryHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestStayQueryHandlerSuite(t *testing.T) {
	suite.Run(t, new(StayQueryHandlerTestSuite))
}

func (s *StayQueryHandlerTestSuite) TestBlocked() {
	s.Run("success: renders merged ranges in order", func() {
		s.mockQueries.EXPECT().ListBlockedRanges(gomock.Any(), queries.BlockedRangeQuery{}).Return([]queries.BlockedRangeView{
			{Start: day("2025-06-01"), End: day("2025-06-04"), Source: queries.SourceBooking, Label: "Booked"},
			{Start: day("2025-06-10"), End: time.Date(2025, 6, 12, 11, 0, 0, 0, time.UTC), Source: queries.SourceCalendar, Label: "Airbnb (Not available)"},
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/availability/blocked", nil)

		var body []resdto.BlockedRangeResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		want := []resdto.BlockedRangeResponse{
			{Start: "2025-06-01", End: "2025-06-04", Source: "booking", Label: "Booked"},
			{Start: "2025-06-10", End: "2025-06-12T11:00:00Z", Source: "calendar", Label: "Airbnb (Not available)"},
		}
		if diff := cmp.Diff(want, body); diff != "" {
			s.T().Errorf("blocked ranges mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("success: merged flag reaches the query", func() {
		s.mockQueries.EXPECT().ListBlockedRanges(gomock.Any(), queries.BlockedRangeQuery{Merged: true}).Return([]queries.BlockedRangeView{
			{Start: day("2025-06-01"), End: day("2025-06-09"), Source: queries.SourceMixed, Label: "Unavailable"},
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/availability/blocked?merged=true", nil)

		var body []resdto.BlockedRangeResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal([]resdto.BlockedRangeResponse{
			{Start: "2025-06-01", End: "2025-06-09", Source: "mixed", Label: "Unavailable"},
		}, body)
	})

	s.Run("error: 400 when merged is not a boolean", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/availability/blocked?merged=maybe", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("success: empty list renders as an empty array", func() {
		s.mockQueries.EXPECT().ListBlockedRanges(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/availability/blocked", nil)

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`[]`, rec.Body.String())
	})

	s.Run("error: 500 when the booking store fails", func() {
		s.mockQueries.EXPECT().ListBlockedRanges(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errors.New("timeout"), errs.ErrStorage)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/availability/blocked", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}

func (s *StayQueryHandlerTestSuite) TestCheck() {
	s.Run("success: reports the verdict for the range", func() {
		s.mockQueries.EXPECT().CheckAvailability(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, r stay.Range) (*queries.AvailabilityView, error) {
				s.Equal(day("2025-06-01"), r.Start())
				s.Equal(day("2025-06-04"), r.End())
				return &queries.AvailabilityView{StartDate: r.Start(), EndDate: r.End(), Available: false}, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/availability?startDate=2025-06-01&endDate=2025-06-04", nil)

		var body resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(resdto.AvailabilityResponse{StartDate: "2025-06-01", EndDate: "2025-06-04", Available: false}, body)
	})

	s.Run("error: 400 Bad Request on invalid ranges", func() {
		for _, path := range []string{
			"/api/availability",
			"/api/availability?startDate=2025-06-01",
			"/api/availability?startDate=2025-06-04&endDate=2025-06-01",
			"/api/availability?startDate=2025-06-01&endDate=2025-06-01",
			"/api/availability?startDate=06/01/2025&endDate=2025-06-04",
		} {
			s.Run(path, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, path, nil)
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})
}

func (s *StayQueryHandlerTestSuite) TestQuote() {
	url := "/api/pricing/quote?startDate=2025-06-01&endDate=2025-06-03"

	s.Run("success: returns totals and the nightly breakdown", func() {
		minStay := 2
		s.mockQueries.EXPECT().CalculatePrice(gomock.Any(), gomock.Any()).Return(&queries.QuoteView{
			StartDate:           day("2025-06-01"),
			EndDate:             day("2025-06-03"),
			Nights:              2,
			NightlyAverageCents: 12550,
			SubtotalCents:       25100,
			CleaningFeeCents:    5000,
			TotalCents:          30100,
			MinimumStay:         &minStay,
			Breakdown: []queries.NightlyPriceView{
				{Date: day("2025-06-01"), Price: "120.00"},
				{Date: day("2025-06-02"), Price: "131.00"},
			},
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)

		var body resdto.QuoteResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		want := resdto.QuoteResponse{
			StartDate:           "2025-06-01",
			EndDate:             "2025-06-03",
			Nights:              2,
			NightlyAverageCents: 12550,
			SubtotalCents:       25100,
			CleaningFeeCents:    5000,
			TotalCents:          30100,
			MinimumStay:         &minStay,
			Breakdown: []resdto.NightlyPriceResponse{
				{Date: "2025-06-01", Price: "120.00"},
				{Date: "2025-06-02", Price: "131.00"},
			},
		}
		if diff := cmp.Diff(want, body); diff != "" {
			s.T().Errorf("quote mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("error: 422 when the stay is shorter than the minimum", func() {
		s.mockQueries.EXPECT().CalculatePrice(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(&rate.MinimumStayError{Required: 5, Nights: 2}, errs.ErrMinimumStayNotMet)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)

		body := httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "Minimum stay not met")
		s.Equal(float64(5), body.Detail["minimumStay"])
	})

	s.Run("error: 422 when no rates are cached", func() {
		s.mockQueries.EXPECT().CalculatePrice(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(rate.ErrNoRates, errs.ErrNoRatesAvailable)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "No rates available")
	})

	s.Run("error: 400 Bad Request without dates", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/pricing/quote", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Missing required fields")
	})
}
