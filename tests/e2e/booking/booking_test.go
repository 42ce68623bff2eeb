//go:build e2e

package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	resdto "rental-backend/internal/handler/dto/response"
	"rental-backend/internal/pkg/config"
	"rental-backend/tests/common/dbtest"
	"rental-backend/tests/common/httptest"
	"rental-backend/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v76/webhook"
)

type stripeStub struct {
	server *nethttptest.Server

	mu          sync.Mutex
	calls       int
	lastAmount  string
	lastBooking string
}

func newStripeStub() *stripeStub {
	s := &stripeStub{}
	s.server = nethttptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.calls++
		s.lastAmount = r.PostForm.Get("line_items[0][price_data][unit_amount]")
		s.lastBooking = r.PostForm.Get("metadata[bookingId]")
		n := s.calls
		s.mu.Unlock()

		id := fmt.Sprintf("cs_test_e2e_%d", n)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     id,
			"object": "checkout.session",
			"url":    "https://checkout.stripe.test/pay/" + id,
		})
	}))
	return s
}

func (s *stripeStub) snapshot() (calls int, amount, bookingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, s.lastAmount, s.lastBooking
}

type BookingE2ETestSuite struct {
	e2e.SharedSuite
	stripe *stripeStub
}

func TestBookingE2ETestSuite(t *testing.T) {
	suite.Run(t, new(BookingE2ETestSuite))
}

func (s *BookingE2ETestSuite) SetupSuite() {
	s.stripe = newStripeStub()
	s.SetupSharedSuite(s.T(), func(c *config.Config) {
		c.Payment.APIURL = s.stripe.server.URL
	})
}

func (s *BookingE2ETestSuite) TearDownSuite() {
	s.stripe.server.Close()
}

func futureDay(offset int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func ymd(t time.Time) string {
	return t.Format("2006-01-02")
}

func createBody(start, end time.Time, rate any) map[string]any {
	return map[string]any{
		"startDate": ymd(start),
		"endDate":   ymd(end),
		"nights":    int(end.Sub(start).Hours() / 24),
		"rate":      rate,
	}
}

func (s *BookingE2ETestSuite) createBooking(start, end time.Time) uuid.UUID {
	w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/bookings", createBody(start, end, 150))
	var res resdto.CreateBookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &res)
	return res.BookingID
}

func (s *BookingE2ETestSuite) signedWebhook(bookingID uuid.UUID, sessionID string) *webhook.SignedPayload {
	event := map[string]any{
		"id":          "evt_" + uuid.NewString(),
		"object":      "event",
		"type":        "checkout.session.completed",
		"api_version": "2023-10-16",
		"data": map[string]any{
			"object": map[string]any{
				"id":       sessionID,
				"object":   "checkout.session",
				"metadata": map[string]string{"bookingId": bookingID.String()},
			},
		},
	}
	raw, err := json.Marshal(event)
	require.NoError(s.T(), err)
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: raw,
		Secret:  s.Config.Payment.WebhookSecret,
	})
}

func (s *BookingE2ETestSuite) TestCreateBooking() {
	s.Run("created booking is readable as pending", func() {
		start, end := futureDay(30), futureDay(33)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/bookings", createBody(start, end, "150.00"))
		var created resdto.CreateBookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &created)
		httptest.AssertHeaders(s.T(), w, map[string]string{"Location": "/api/bookings/" + created.BookingID.String()})

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/bookings/"+created.BookingID.String(), nil)
		var got resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)

		assert.Equal(s.T(), created.BookingID, got.ID)
		assert.Equal(s.T(), ymd(start), got.StartDate)
		assert.Equal(s.T(), ymd(end), got.EndDate)
		assert.Equal(s.T(), 3, got.Nights)
		assert.Equal(s.T(), "pending", got.Status)
		assert.Equal(s.T(), int64(45000), got.TotalPriceCents)
		assert.Nil(s.T(), got.PaymentSessionRef)
	})

	s.Run("overlapping range is rejected", func() {
		s.createBooking(futureDay(30), futureDay(33))

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/bookings", createBody(futureDay(32), futureDay(35), 150))
		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "Dates not available")
	})

	s.Run("back-to-back stays do not conflict", func() {
		s.createBooking(futureDay(30), futureDay(33))
		s.createBooking(futureDay(33), futureDay(35))
		s.createBooking(futureDay(28), futureDay(30))
	})

	s.Run("missing fields", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/bookings", map[string]any{"startDate": ymd(futureDay(30))})
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Missing required fields")
	})

	s.Run("end before start", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/bookings", map[string]any{
			"startDate": ymd(futureDay(33)),
			"endDate":   ymd(futureDay(30)),
			"nights":    3,
			"rate":      150,
		})
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request")
	})

	s.Run("unknown booking", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/bookings/"+uuid.NewString(), nil)
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Booking not found")
	})
}

func (s *BookingE2ETestSuite) TestConcurrentCreate() {
	s.Run("exactly one of many racing requests wins", func() {
		const racers = 8
		body, err := json.Marshal(createBody(futureDay(40), futureDay(43), 150))
		require.NoError(s.T(), err)

		var (
			wg        sync.WaitGroup
			created   atomic.Int32
			conflicts atomic.Int32
			other     atomic.Int32
		)
		start := make(chan struct{})
		for range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				req := nethttptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
				w := nethttptest.NewRecorder()
				s.Router.ServeHTTP(w, req)
				switch w.Code {
				case http.StatusCreated:
					created.Add(1)
				case http.StatusConflict:
					conflicts.Add(1)
				default:
					other.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Equal(s.T(), int32(1), created.Load())
		assert.Equal(s.T(), int32(racers-1), conflicts.Load())
		assert.Zero(s.T(), other.Load())

		var active int
		err = s.DB.QueryRow(s.T().Context(),
			`SELECT count(*) FROM bookings WHERE start_date = $1 AND status IN ('pending', 'confirmed')`,
			futureDay(40)).Scan(&active)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), 1, active)
	})
}

func (s *BookingE2ETestSuite) TestAvailability() {
	s.Run("blocked ranges list active bookings in start order", func() {
		dbtest.CreateTestBooking(s.T(), s.DB, futureDay(50), futureDay(52), "confirmed")
		dbtest.CreateTestBooking(s.T(), s.DB, futureDay(20), futureDay(25), "pending")
		dbtest.CreateTestBooking(s.T(), s.DB, futureDay(-10), futureDay(-5), "confirmed")

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/availability/blocked", nil)
		var got []resdto.BlockedRangeResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)

		require.Len(s.T(), got, 2)
		assert.Equal(s.T(), resdto.BlockedRangeResponse{
			Start: ymd(futureDay(20)), End: ymd(futureDay(25)), Source: "booking", Label: "Booked",
		}, got[0])
		assert.Equal(s.T(), ymd(futureDay(50)), got[1].Start)
	})

	s.Run("merged view coalesces back-to-back bookings", func() {
		dbtest.CreateTestBooking(s.T(), s.DB, futureDay(20), futureDay(25), "confirmed")
		dbtest.CreateTestBooking(s.T(), s.DB, futureDay(25), futureDay(27), "pending")
		dbtest.CreateTestBooking(s.T(), s.DB, futureDay(40), futureDay(42), "pending")

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/availability/blocked?merged=true", nil)
		var got []resdto.BlockedRangeResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)

		assert.Equal(s.T(), []resdto.BlockedRangeResponse{
			{Start: ymd(futureDay(20)), End: ymd(futureDay(27)), Source: "booking", Label: "Booked"},
			{Start: ymd(futureDay(40)), End: ymd(futureDay(42)), Source: "booking", Label: "Booked"},
		}, got)
	})

	s.Run("health omits calendar sync time without a feed", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/health", nil)
		assert.Equal(s.T(), http.StatusOK, w.Code)
		assert.JSONEq(s.T(), `{"status":"ok","message":"Service is healthy"}`, w.Body.String())
	})

	s.Run("empty calendar renders an empty list", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/availability/blocked", nil)
		assert.Equal(s.T(), http.StatusOK, w.Code)
		assert.JSONEq(s.T(), `[]`, w.Body.String())
	})

	s.Run("check reports overlap", func() {
		dbtest.CreateTestBooking(s.T(), s.DB, futureDay(20), futureDay(25), "pending")

		path := fmt.Sprintf("/api/availability?startDate=%s&endDate=%s", ymd(futureDay(24)), ymd(futureDay(26)))
		var busy resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), httptest.PerformRequest(s.T(), s.Router, http.MethodGet, path, nil), http.StatusOK, &busy)
		assert.False(s.T(), busy.Available)

		path = fmt.Sprintf("/api/availability?startDate=%s&endDate=%s", ymd(futureDay(25)), ymd(futureDay(27)))
		var free resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), httptest.PerformRequest(s.T(), s.Router, http.MethodGet, path, nil), http.StatusOK, &free)
		assert.True(s.T(), free.Available)
	})
}

func (s *BookingE2ETestSuite) TestQuote() {
	quotePath := func(start, end time.Time) string {
		return fmt.Sprintf("/api/pricing/quote?startDate=%s&endDate=%s", ymd(start), ymd(end))
	}

	s.Run("synced rates plus cleaning fee", func() {
		dbtest.SeedDailyRates(s.T(), s.DB, futureDay(60), []string{"100.00", "120.00", "110.00"}, nil)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, quotePath(futureDay(60), futureDay(63)), nil)
		var got resdto.QuoteResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)

		assert.Equal(s.T(), 3, got.Nights)
		assert.Equal(s.T(), int64(33000), got.SubtotalCents)
		assert.Equal(s.T(), int64(11000), got.NightlyAverageCents)
		assert.Equal(s.T(), int64(5000), got.CleaningFeeCents)
		assert.Equal(s.T(), int64(38000), got.TotalCents)
		assert.False(s.T(), got.FallbackUsed)
		require.Len(s.T(), got.Breakdown, 3)
		assert.Equal(s.T(), ymd(futureDay(61)), got.Breakdown[1].Date)
	})

	s.Run("stored sub-cent prices are rounded once over the stay", func() {
		dbtest.SeedDailyRates(s.T(), s.DB, futureDay(60), []string{"100.005", "100.005", "100.005"}, nil)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, quotePath(futureDay(60), futureDay(63)), nil)
		var got resdto.QuoteResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)

		assert.Equal(s.T(), int64(30002), got.SubtotalCents)
		assert.Equal(s.T(), int64(35002), got.TotalCents)
	})

	s.Run("minimum stay of the first night", func() {
		minStay := 5
		dbtest.SeedDailyRates(s.T(), s.DB, futureDay(60), []string{"100.00", "120.00", "110.00"}, &minStay)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, quotePath(futureDay(60), futureDay(63)), nil)
		body := httptest.AssertErrorResponse(s.T(), w, http.StatusUnprocessableEntity, "Minimum stay not met")
		assert.EqualValues(s.T(), 5, body.Detail["minimumStay"])
		assert.EqualValues(s.T(), 3, body.Detail["nights"])
	})

	s.Run("no synced rates", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, quotePath(futureDay(60), futureDay(63)), nil)
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnprocessableEntity, "No rates available for the requested dates")
	})
}

func (s *BookingE2ETestSuite) TestCheckoutAndConfirm() {
	s.Run("checkout reprices and confirm is idempotent", func() {
		start, end := futureDay(70), futureDay(73)
		id := s.createBooking(start, end)
		dbtest.SeedDailyRates(s.T(), s.DB, start, []string{"200.00", "200.00"}, nil)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/bookings/"+id.String()+"/checkout", map[string]any{
			"partySize":  2,
			"guestName":  "Ada Guest",
			"guestEmail": "ada@example.com",
		})
		var checkout resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &checkout)

		// two synced nights at 200, one fallback night at 150, plus cleaning
		assert.Equal(s.T(), int64(60000), checkout.TotalCents)
		assert.NotEmpty(s.T(), checkout.SessionID)
		assert.NotEmpty(s.T(), checkout.URL)

		_, amount, metaBooking := s.stripe.snapshot()
		assert.Equal(s.T(), "60000", amount)
		assert.Equal(s.T(), id.String(), metaBooking)

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/bookings/"+id.String(), nil)
		var pending resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &pending)
		assert.Equal(s.T(), "pending", pending.Status)
		assert.Equal(s.T(), int64(60000), pending.TotalPriceCents)
		require.NotNil(s.T(), pending.PaymentSessionRef)
		assert.Equal(s.T(), checkout.SessionID, *pending.PaymentSessionRef)
		require.NotNil(s.T(), pending.GuestEmail)
		assert.Equal(s.T(), "ada@example.com", *pending.GuestEmail)

		signed := s.signedWebhook(id, checkout.SessionID)
		headers := map[string]string{"Stripe-Signature": signed.Header, "Content-Type": "application/json"}
		for range 2 {
			w = httptest.PerformRawRequest(s.T(), s.Router, http.MethodPost, "/webhooks/stripe", signed.Payload, headers)
			assert.Equal(s.T(), http.StatusOK, w.Code)
			assert.JSONEq(s.T(), `{"received":true}`, w.Body.String())
		}

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/bookings/"+id.String(), nil)
		var confirmed resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &confirmed)
		assert.Equal(s.T(), "confirmed", confirmed.Status)
		assert.Equal(s.T(), 1, dbtest.CountNotificationJobs(s.T(), s.DB, "booking_confirmed"))

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/bookings/"+id.String()+"/checkout", nil)
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Booking not pending")
	})

	s.Run("checkout for unknown booking", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/bookings/"+uuid.NewString()+"/checkout", nil)
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Booking not found")
	})

	s.Run("tampered signature is rejected", func() {
		id := s.createBooking(futureDay(80), futureDay(82))
		signed := s.signedWebhook(id, "cs_test_tampered")

		w := httptest.PerformRawRequest(s.T(), s.Router, http.MethodPost, "/webhooks/stripe", signed.Payload,
			map[string]string{"Stripe-Signature": "t=1,v1=deadbeef"})
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Webhook signature verification failed")

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/bookings/"+id.String(), nil)
		var got resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
		assert.Equal(s.T(), "pending", got.Status)
		assert.Zero(s.T(), dbtest.CountNotificationJobs(s.T(), s.DB, "booking_confirmed"))
	})

	s.Run("event for an unknown booking is acknowledged", func() {
		signed := s.signedWebhook(uuid.New(), "cs_test_orphan")
		w := httptest.PerformRawRequest(s.T(), s.Router, http.MethodPost, "/webhooks/stripe", signed.Payload,
			map[string]string{"Stripe-Signature": signed.Header})
		assert.Equal(s.T(), http.StatusOK, w.Code)
	})
}
