package api

import (
	"net/http"
	"time"

	resdto "rental-backend/internal/handler/dto/response"

	"github.com/gin-gonic/gin"
)

type CalendarStatus interface {
	// LastRefreshed is zero until the first successful feed fetch.
	LastRefreshed() time.Time
}

type HealthHandler struct {
	calendar CalendarStatus
}

func NewHealthHandler(calendar CalendarStatus) *HealthHandler {
	return &HealthHandler{calendar: calendar}
}

// @Summary Health check
// @Description Check if the service is healthy and when the external calendar was last synced
// @Tags health
// @Produce json
// @Success 200 {object} resdto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, resdto.NewHealthResponse(h.calendar.LastRefreshed()))
}
