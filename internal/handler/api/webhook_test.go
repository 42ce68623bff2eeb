//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"rental-backend/internal/handler/api"
	"rental-backend/internal/pkg/errs"
	"rental-backend/tests/common/httptest"
	commandsmock "rental-backend/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newWebhookRouter(t *testing.T) (*gin.Engine, *commandsmock.MockBookingCommands) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	cmds := commandsmock.NewMockBookingCommands(ctrl)

	router := gin.New()
	router.POST("/webhooks/stripe", api.NewWebhookHandler(cmds).Stripe)
	router.GET("/success", api.PaymentSuccess)
	router.GET("/cancel", api.PaymentCancelled)
	return router, cmds
}

func TestWebhookHandler_Stripe(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	headers := map[string]string{"Stripe-Signature": "t=1,v1=abc", "Content-Type": "application/json"}

	t.Run("acknowledges a verified event with the raw payload", func(t *testing.T) {
		router, cmds := newWebhookRouter(t)
		cmds.EXPECT().HandlePaymentEvent(gomock.Any(), payload, "t=1,v1=abc").Return(nil).Times(1)

		rec := httptest.PerformRawRequest(t, router, http.MethodPost, "/webhooks/stripe", payload, headers)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	})

	t.Run("rejects an unverifiable event with 400", func(t *testing.T) {
		router, cmds := newWebhookRouter(t)
		cmds.EXPECT().HandlePaymentEvent(gomock.Any(), payload, "").
			Return(errs.Mark(errors.New("no signature"), errs.ErrSignatureInvalid)).Times(1)

		rec := httptest.PerformRawRequest(t, router, http.MethodPost, "/webhooks/stripe", payload, nil)
		httptest.AssertErrorResponse(t, rec, http.StatusBadRequest, "signature verification failed")
	})

	t.Run("asks for redelivery when confirmation cannot be stored", func(t *testing.T) {
		router, cmds := newWebhookRouter(t)
		cmds.EXPECT().HandlePaymentEvent(gomock.Any(), payload, gomock.Any()).
			Return(errs.Mark(errors.New("conn reset"), errs.ErrStorage)).Times(1)

		rec := httptest.PerformRawRequest(t, router, http.MethodPost, "/webhooks/stripe", payload, headers)
		httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, "")
	})
}

func TestPaymentLandingPages(t *testing.T) {
	router, _ := newWebhookRouter(t)

	rec := httptest.PerformRequest(t, router, http.MethodGet, "/success?session_id=cs_test_1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment Successful")

	rec = httptest.PerformRequest(t, router, http.MethodGet, "/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment Cancelled")
}
