package errs

import "errors"

// Error taxonomy shared by the usecase and handler layers
var (
	// Input errors
	ErrValidation = errors.New("validation error")

	// Booking errors
	ErrBookingNotFound  = errors.New("booking not found")
	ErrDatesUnavailable = errors.New("dates not available")
	ErrInvalidState     = errors.New("invalid booking state")

	// Pricing errors
	ErrMinimumStayNotMet = errors.New("minimum stay not met")
	ErrNoRatesAvailable  = errors.New("no rates available")

	// Payment errors
	ErrSignatureInvalid  = errors.New("payment event signature invalid")
	ErrPaymentInitFailed = errors.New("payment initialization failed")

	// Infrastructure errors
	ErrStorage      = errors.New("storage operation failed")
	ErrUpstreamSync = errors.New("upstream sync failed")
)
