package api

import (
	"net/http"

	reqdto "rental-backend/internal/handler/dto/request"
	resdto "rental-backend/internal/handler/dto/response"
	"rental-backend/internal/handler/httperr"
	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	q queries.BookingQueries
}

func NewPricingHandler(q queries.BookingQueries) *PricingHandler {
	return &PricingHandler{q: q}
}

// @Summary Quote a stay
// @Description Price a stay from the cached daily rates, including the per-night breakdown
// @Tags pricing
// @Produce json
// @Param startDate query string true "Check-in date (YYYY-MM-DD)"
// @Param endDate query string true "Check-out date (YYYY-MM-DD)"
// @Success 200 {object} resdto.QuoteResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/pricing/quote [get]
func (h *PricingHandler) Quote(c *gin.Context) {
	var q reqdto.StayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Missing required fields", nil)
		return
	}
	r, err := q.ToRange()
	if err != nil {
		httperr.Abort(c, errs.Mark(err, errs.ErrValidation))
		return
	}

	view, err := h.q.CalculatePrice(c.Request.Context(), r)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromQuoteView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
