package api

import (
	"io"
	"net/http"

	"rental-backend/internal/handler/httperr"
	"rental-backend/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBodyBytes   = 65536
)

type WebhookHandler struct {
	cmds commands.BookingCommands
}

func NewWebhookHandler(cmds commands.BookingCommands) *WebhookHandler {
	return &WebhookHandler{cmds: cmds}
}

// @Summary Stripe webhook
// @Description Verify a signed payment event and confirm the booking it names
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature header"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) Stripe(c *gin.Context) {
	// Signature verification needs the body byte for byte.
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payload", nil)
		return
	}

	if err := h.cmds.HandlePaymentEvent(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader)); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
