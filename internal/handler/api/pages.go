package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Landing pages for the checkout redirect.

func PaymentSuccess(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<h1>Payment Successful! Booking confirmed.</h1>"))
}

func PaymentCancelled(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<h1>Payment Cancelled.</h1>"))
}
