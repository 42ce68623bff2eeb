package httperr

import (
	"errors"
	"net/http"

	"rental-backend/internal/domain/rate"
	"rental-backend/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

type MinimumStayDetail struct {
	MinimumStay int `json:"minimumStay"`
	Nights      int `json:"nights"`
}

// Abort responds with the status and message registered for the taxonomy sentinel err carries.
func Abort(c *gin.Context, err error) {
	status, msg, detail := Classify(err)
	AbortWithError(c, status, err, msg, detail)
}

func Classify(err error) (status int, msg string, detail any) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, "Invalid request", nil
	case errors.Is(err, errs.ErrDatesUnavailable):
		return http.StatusConflict, "Dates not available", nil
	case errors.Is(err, errs.ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found", nil
	case errors.Is(err, errs.ErrInvalidState):
		return http.StatusBadRequest, "Booking not pending", nil
	case errors.Is(err, errs.ErrMinimumStayNotMet):
		var minStay *rate.MinimumStayError
		if errors.As(err, &minStay) {
			return http.StatusUnprocessableEntity, "Minimum stay not met",
				MinimumStayDetail{MinimumStay: minStay.Required, Nights: minStay.Nights}
		}
		return http.StatusUnprocessableEntity, "Minimum stay not met", nil
	case errors.Is(err, errs.ErrNoRatesAvailable):
		return http.StatusUnprocessableEntity, "No rates available for the requested dates", nil
	case errors.Is(err, errs.ErrSignatureInvalid):
		return http.StatusBadRequest, "Webhook signature verification failed", nil
	case errors.Is(err, errs.ErrPaymentInitFailed):
		return http.StatusBadGateway, "Payment initialization failed", nil
	default:
		return http.StatusInternalServerError, "Internal server error", nil
	}
}
