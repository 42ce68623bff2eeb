package api

import (
	"net/http"

	reqdto "rental-backend/internal/handler/dto/request"
	resdto "rental-backend/internal/handler/dto/response"
	"rental-backend/internal/handler/httperr"
	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/commands"
	"rental-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create booking
// @Description Hold a date range as a pending booking priced at the supplied flat nightly rate
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body reqdto.CreateBookingRequest true "Create booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Missing required fields", nil)
		return
	}
	input, err := req.ToInput()
	if err != nil {
		httperr.Abort(c, errs.Mark(err, errs.ErrValidation))
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), input)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	c.Header("Location", "/api/bookings/"+result.BookingID.String())
	c.JSON(http.StatusCreated, resdto.CreateBookingResponse{BookingID: result.BookingID})
}

// @Summary Get booking
// @Description Get a booking by ID
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromBookingView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Start checkout
// @Description Reprice a pending booking, attach optional guest details and open a payment checkout session
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body reqdto.CheckoutRequest false "Guest details"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/bookings/{id}/checkout [post]
func (h *BookingHandler) Checkout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	var req reqdto.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
			return
		}
	}
	guest, err := req.ToDomain()
	if err != nil {
		httperr.Abort(c, errs.Mark(err, errs.ErrValidation))
		return
	}

	result, err := h.cmds.InitiateCheckout(c.Request.Context(), id, guest)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCheckoutResult(result))
}
