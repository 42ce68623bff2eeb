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

type AvailabilityHandler struct {
	q queries.BookingQueries
}

func NewAvailabilityHandler(q queries.BookingQueries) *AvailabilityHandler {
	return &AvailabilityHandler{q: q}
}

// @Summary List blocked ranges
// @Description Active bookings merged with external calendar blocks that end after today, ordered by start
// @Tags availability
// @Produce json
// @Param merged query bool false "Coalesce overlapping or touching ranges"
// @Success 200 {array} resdto.BlockedRangeResponse
// @Failure 400 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/availability/blocked [get]
func (h *AvailabilityHandler) Blocked(c *gin.Context) {
	var q reqdto.BlockedRangesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	views, err := h.q.ListBlockedRanges(c.Request.Context(), q.ToQuery())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromBlockedRanges(views)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Check availability
// @Description Report whether a stay range is free of bookings and calendar blocks
// @Tags availability
// @Produce json
// @Param startDate query string true "Check-in date (YYYY-MM-DD)"
// @Param endDate query string true "Check-out date (YYYY-MM-DD)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/availability [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
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

	view, err := h.q.CheckAvailability(c.Request.Context(), r)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromAvailabilityView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
